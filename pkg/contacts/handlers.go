// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package contacts

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/canonical/tenant-crm/internal/db"
	"github.com/canonical/tenant-crm/internal/http/types"
	"github.com/canonical/tenant-crm/internal/logging"
	"github.com/canonical/tenant-crm/internal/monitoring"
	"github.com/canonical/tenant-crm/internal/storage"
	"github.com/canonical/tenant-crm/internal/tenancy"
	"github.com/canonical/tenant-crm/internal/tracing"
	dtypes "github.com/canonical/tenant-crm/internal/types"
)

const maxContactBodyBytes = 64 << 10

// ContactRequest is the body accepted by create and update.
type ContactRequest struct {
	FirstName       string     `json:"first_name" validate:"required,max=100"`
	LastName        string     `json:"last_name" validate:"required,max=100"`
	ContactType     string     `json:"contact_type" validate:"required,oneof=Colleague Mentor Client IndustryPeer Recruiter Friend Other"`
	Company         *string    `json:"company" validate:"omitempty,max=200"`
	JobTitle        *string    `json:"job_title" validate:"omitempty,max=200"`
	Email           *string    `json:"email" validate:"omitempty,email,max=255"`
	Phone           *string    `json:"phone" validate:"omitempty,max=50"`
	LinkedInURL     *string    `json:"linkedin_url" validate:"omitempty,url,max=500"`
	Location        *string    `json:"location" validate:"omitempty,max=200"`
	Notes           *string    `json:"notes" validate:"omitempty,max=10000"`
	Tags            []string   `json:"tags" validate:"omitempty,max=50,dive,required,max=50"`
	DateMet         *time.Time `json:"date_met"`
	LastContactedAt *time.Time `json:"last_contacted_at"`
	IsPriority      bool       `json:"is_priority"`
}

func (r *ContactRequest) contact() *dtypes.Contact {
	return &dtypes.Contact{
		FirstName:       r.FirstName,
		LastName:        r.LastName,
		ContactType:     dtypes.ContactType(r.ContactType),
		Company:         r.Company,
		JobTitle:        r.JobTitle,
		Email:           r.Email,
		Phone:           r.Phone,
		LinkedInURL:     r.LinkedInURL,
		Location:        r.Location,
		Notes:           r.Notes,
		Tags:            dtypes.Tags(r.Tags),
		DateMet:         r.DateMet,
		LastContactedAt: r.LastContactedAt,
		IsPriority:      r.IsPriority,
	}
}

type API struct {
	service   ServiceInterface
	validator *validator.Validate

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// RegisterEndpoints expects mux to already authenticate the request.
func (a *API) RegisterEndpoints(mux chi.Router) {
	mux.Get("/api/v0/contacts", a.handleList)
	mux.Post("/api/v0/contacts", a.handleCreate)
	mux.Get("/api/v0/contacts/{id}", a.handleGet)
	mux.Put("/api/v0/contacts/{id}", a.handleUpdate)
	mux.Delete("/api/v0/contacts/{id}", a.handleDelete)
}

func (a *API) handleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "contacts.API.handleList")
	defer span.End()

	opts, err := parseListOptions(r)
	if err != nil {
		a.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	contacts, total, err := a.service.ListContacts(ctx, opts)
	if err != nil {
		a.handleServiceError(w, err)
		return
	}

	size := db.PageSize(opts.Size)
	page := opts.Page
	if page <= 0 {
		page = 1
	}

	a.writeJSON(w, http.StatusOK, types.Response{
		Data:    contacts,
		Meta:    &types.Pagination{Page: page, Size: size, Total: total},
		Message: "List of contacts",
		Status:  http.StatusOK,
	})
}

func (a *API) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "contacts.API.handleGet")
	defer span.End()

	contact, err := a.service.GetContact(ctx, chi.URLParam(r, "id"))
	if err != nil {
		a.handleServiceError(w, err)
		return
	}

	a.writeJSON(w, http.StatusOK, types.Response{
		Data:    contact,
		Message: "Contact details",
		Status:  http.StatusOK,
	})
}

func (a *API) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "contacts.API.handleCreate")
	defer span.End()

	req, ok := a.decode(w, r)
	if !ok {
		return
	}

	contact, err := a.service.CreateContact(ctx, req.contact())
	if err != nil {
		a.handleServiceError(w, err)
		return
	}

	a.writeJSON(w, http.StatusCreated, types.Response{
		Data:    contact,
		Message: "Contact created",
		Status:  http.StatusCreated,
	})
}

func (a *API) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "contacts.API.handleUpdate")
	defer span.End()

	req, ok := a.decode(w, r)
	if !ok {
		return
	}

	contact, err := a.service.UpdateContact(ctx, chi.URLParam(r, "id"), req.contact())
	if err != nil {
		a.handleServiceError(w, err)
		return
	}

	a.writeJSON(w, http.StatusOK, types.Response{
		Data:    contact,
		Message: "Contact updated",
		Status:  http.StatusOK,
	})
}

func (a *API) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "contacts.API.handleDelete")
	defer span.End()

	if err := a.service.DeleteContact(ctx, chi.URLParam(r, "id")); err != nil {
		a.handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (a *API) decode(w http.ResponseWriter, r *http.Request) (*ContactRequest, bool) {
	req := new(ContactRequest)

	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxContactBodyBytes)).Decode(req); err != nil {
		a.writeError(w, http.StatusBadRequest, "invalid request body")
		return nil, false
	}

	if err := a.validator.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			a.writeError(w, http.StatusBadRequest, "invalid field "+verrs[0].Field())
			return nil, false
		}

		a.writeError(w, http.StatusBadRequest, "invalid request body")
		return nil, false
	}

	return req, true
}

func (a *API) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		a.writeError(w, http.StatusNotFound, "contact not found")
	case errors.Is(err, ErrInvalidContact), errors.Is(err, storage.ErrInvalidQuery):
		a.writeError(w, http.StatusBadRequest, "invalid contact")
	case errors.Is(err, storage.ErrDuplicateKey):
		a.writeError(w, http.StatusConflict, "contact already exists")
	case errors.Is(err, tenancy.ErrTenantMissing):
		a.writeError(w, http.StatusUnauthorized, types.UnauthorizedMessage)
	default:
		a.logger.Errorf("contacts request failed: %v", err)
		a.writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}

func (a *API) writeJSON(w http.ResponseWriter, status int, body any) {
	if err := types.WriteJSON(w, status, body); err != nil {
		a.logger.Errorf("failed to encode response: %v", err)
	}
}

func (a *API) writeError(w http.ResponseWriter, status int, message string) {
	if err := types.WriteError(w, status, message); err != nil {
		a.logger.Errorf("failed to encode error response: %v", err)
	}
}

func parseListOptions(r *http.Request) (ListOptions, error) {
	var opts ListOptions
	q := r.URL.Query()

	if v := q.Get("page"); v != "" {
		page, err := strconv.ParseInt(v, 10, 64)
		if err != nil || page < 1 {
			return opts, errors.New("invalid page")
		}
		opts.Page = page
	}

	if v := q.Get("size"); v != "" {
		size, err := strconv.ParseInt(v, 10, 64)
		if err != nil || size < 1 {
			return opts, errors.New("invalid size")
		}
		opts.Size = size
	}

	if v := q.Get("contact_type"); v != "" {
		t := dtypes.ContactType(v)
		if !t.Valid() {
			return opts, errors.New("invalid contact_type")
		}
		opts.ContactType = t
	}

	if v := q.Get("priority"); v != "" {
		priority, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.New("invalid priority")
		}
		opts.PriorityOnly = priority
	}

	return opts, nil
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
