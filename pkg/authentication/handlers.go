// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/canonical/tenant-crm/internal/http/types"
	"github.com/canonical/tenant-crm/internal/logging"
	"github.com/canonical/tenant-crm/internal/monitoring"
	"github.com/canonical/tenant-crm/internal/tracing"
)

const maxLoginBodyBytes = 4096

type LoginRequest struct {
	Username string `json:"username" validate:"required,max=255"`
	Password string `json:"password" validate:"required,max=1024"`
}

type API struct {
	service   ServiceInterface
	validator *validator.Validate

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// RegisterEndpoints expects mux to already resolve the tenant.
func (a *API) RegisterEndpoints(mux chi.Router) {
	mux.Post("/api/v0/auth/login", a.login)
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "authentication.API.login")
	defer span.End()

	var req LoginRequest

	// malformed bodies get the same answer as wrong credentials
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxLoginBodyBytes)).Decode(&req); err != nil {
		a.logger.Debugf("failed to decode login request: %v", err)
		a.unauthorized(w)
		return
	}

	if err := a.validator.Struct(req); err != nil {
		a.logger.Debugf("invalid login request: %v", err)
		a.unauthorized(w)
		return
	}

	result, err := a.service.Login(ctx, req.Username, req.Password)

	switch {
	case errors.Is(err, ErrInvalidCredentials):
		a.unauthorized(w)
		return
	case err != nil:
		a.logger.Errorf("login failed: %v", err)

		if err := types.WriteError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)); err != nil {
			a.logger.Errorf("failed to encode error response: %v", err)
		}
		return
	}

	if err := types.WriteJSON(w, http.StatusOK, result); err != nil {
		a.logger.Errorf("failed to encode login response: %v", err)
	}
}

func (a *API) unauthorized(w http.ResponseWriter) {
	if err := types.WriteUnauthorized(w); err != nil {
		a.logger.Errorf("failed to encode unauthorized response: %v", err)
	}
}

func NewAPI(service ServiceInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *API {
	return &API{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
		tracer:    tracer,
		monitor:   monitor,
		logger:    logger,
	}
}
