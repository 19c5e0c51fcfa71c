// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package status

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/canonical/tenant-crm/internal/http/types"
	"github.com/canonical/tenant-crm/internal/logging"
	"github.com/canonical/tenant-crm/internal/monitoring"
	"github.com/canonical/tenant-crm/internal/tracing"
	"github.com/canonical/tenant-crm/internal/version"
)

const pingTimeout = 2 * time.Second

type Status struct {
	Version  string `json:"version"`
	Database string `json:"database"`
}

type API struct {
	db PingerInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (a *API) RegisterEndpoints(mux chi.Router) {
	mux.Get("/api/v0/status", a.status)
}

// status answers 503 when the database is unreachable.
func (a *API) status(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "status.API.status")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	s := Status{Version: version.Version, Database: "ok"}
	code := http.StatusOK

	if err := a.db.Ping(ctx); err != nil {
		a.logger.Errorf("database ping failed: %v", err)
		s.Database = "unavailable"
		code = http.StatusServiceUnavailable
	}

	if err := types.WriteJSON(w, code, types.Response{Data: s, Message: "Status", Status: code}); err != nil {
		a.logger.Errorf("failed to encode status response: %v", err)
	}
}

func NewAPI(db PingerInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *API {
	return &API{
		db:      db,
		tracer:  tracer,
		monitor: monitor,
		logger:  logger,
	}
}
