// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"time"
)

// Record is a row living inside a tenant partition.
// Columns and Values list the data columns in the same order, Targets
// returns scan destinations for id, tenant_id, created_at followed by Columns.
type Record interface {
	TableName() string
	GetID() string
	SetID(string)
	GetTenantID() string
	SetTenantID(string)
	GetCreatedAt() time.Time
	SetCreatedAt(time.Time)
	Columns() []string
	Values() []any
	Targets() []any
}

// RecordPointer constrains P to be a pointer to T implementing Record.
type RecordPointer[T any] interface {
	*T
	Record
}
