// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package contacts

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/canonical/tenant-crm/internal/logging"
	"github.com/canonical/tenant-crm/internal/monitoring"
	"github.com/canonical/tenant-crm/internal/storage"
	"github.com/canonical/tenant-crm/internal/tracing"
	"github.com/canonical/tenant-crm/internal/types"
)

// ListOptions filters and pages ListContacts, zero values mean no filter.
type ListOptions struct {
	Page         int64
	Size         int64
	ContactType  types.ContactType
	PriorityOnly bool
}

func (o ListOptions) predicate() sq.Sqlizer {
	filter := sq.Eq{}

	if o.ContactType != "" {
		filter["contact_type"] = string(o.ContactType)
	}

	if o.PriorityOnly {
		filter["is_priority"] = true
	}

	if len(filter) == 0 {
		return nil
	}

	return filter
}

var _ ServiceInterface = (*Service)(nil)

type Service struct {
	storage StorageInterface

	now func() time.Time

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// ListContacts returns one page of contacts of the current tenant and the total
// number of contacts matching the filter, most recently created first.
func (s *Service) ListContacts(ctx context.Context, opts ListOptions) ([]*types.Contact, int64, error) {
	ctx, span := s.tracer.Start(ctx, "contacts.Service.ListContacts")
	defer span.End()

	pred := opts.predicate()

	contacts, err := s.storage.FindMany(ctx, pred,
		storage.WithPage(opts.Page, opts.Size),
		storage.WithOrderBy("created_at", true),
	)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.storage.Count(ctx, pred)
	if err != nil {
		return nil, 0, err
	}

	return contacts, total, nil
}

func (s *Service) GetContact(ctx context.Context, id string) (*types.Contact, error) {
	ctx, span := s.tracer.Start(ctx, "contacts.Service.GetContact")
	defer span.End()

	return s.storage.FindByID(ctx, id)
}

func (s *Service) CreateContact(ctx context.Context, contact *types.Contact) (*types.Contact, error) {
	ctx, span := s.tracer.Start(ctx, "contacts.Service.CreateContact")
	defer span.End()

	if err := validateContact(contact); err != nil {
		return nil, err
	}

	// identifiers and timestamps are always assigned server side
	contact.ID = ""
	contact.UpdatedAt = nil

	if contact.Tags == nil {
		contact.Tags = types.Tags{}
	}

	if err := s.storage.Create(ctx, contact); err != nil {
		return nil, err
	}

	return contact, nil
}

// UpdateContact replaces the mutable fields of the contact with the given id.
func (s *Service) UpdateContact(ctx context.Context, id string, contact *types.Contact) (*types.Contact, error) {
	ctx, span := s.tracer.Start(ctx, "contacts.Service.UpdateContact")
	defer span.End()

	if err := validateContact(contact); err != nil {
		return nil, err
	}

	existing, err := s.storage.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()

	contact.ID = existing.ID
	contact.TenantID = existing.TenantID
	contact.CreatedAt = existing.CreatedAt
	contact.UpdatedAt = &now

	if contact.Tags == nil {
		contact.Tags = types.Tags{}
	}

	if err := s.storage.Update(ctx, contact); err != nil {
		return nil, err
	}

	return contact, nil
}

func (s *Service) DeleteContact(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "contacts.Service.DeleteContact")
	defer span.End()

	return s.storage.Delete(ctx, id)
}

func validateContact(contact *types.Contact) error {
	if contact == nil {
		return fmt.Errorf("contact is required: %w", ErrInvalidContact)
	}

	if contact.FirstName == "" || contact.LastName == "" {
		return fmt.Errorf("first and last name are required: %w", ErrInvalidContact)
	}

	if !contact.ContactType.Valid() {
		return fmt.Errorf("unknown contact type %q: %w", contact.ContactType, ErrInvalidContact)
	}

	return nil
}

func NewService(storage StorageInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Service {
	return &Service{
		storage: storage,
		now:     time.Now,
		tracer:  tracer,
		monitor: monitor,
		logger:  logger,
	}
}
