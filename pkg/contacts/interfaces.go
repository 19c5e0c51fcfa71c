// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package contacts

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/canonical/tenant-crm/internal/storage"
	"github.com/canonical/tenant-crm/internal/types"
)

type ServiceInterface interface {
	ListContacts(ctx context.Context, opts ListOptions) ([]*types.Contact, int64, error)
	GetContact(ctx context.Context, id string) (*types.Contact, error)
	CreateContact(ctx context.Context, contact *types.Contact) (*types.Contact, error)
	UpdateContact(ctx context.Context, id string, contact *types.Contact) (*types.Contact, error)
	DeleteContact(ctx context.Context, id string) error
}

// StorageInterface is the tenant scoped view over contacts.
type StorageInterface interface {
	FindByID(ctx context.Context, id string) (*types.Contact, error)
	FindMany(ctx context.Context, pred sq.Sqlizer, opts ...storage.QueryOption) ([]*types.Contact, error)
	Count(ctx context.Context, pred sq.Sqlizer) (int64, error)
	Create(ctx context.Context, contact *types.Contact) error
	Update(ctx context.Context, contact *types.Contact) error
	Delete(ctx context.Context, id string) error
}
