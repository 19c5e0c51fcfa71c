// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/canonical/tenant-crm/internal/db"
	"github.com/canonical/tenant-crm/internal/logging"
	"github.com/canonical/tenant-crm/internal/monitoring"
	"github.com/canonical/tenant-crm/internal/tenancy"
	"github.com/canonical/tenant-crm/internal/tracing"
)

const tenantColumn = "tenant_id"

// TenantStore gives access to the rows of one table, restricted to the
// tenant bound to the context of every call.
// There is no method taking a tenant identifier as an argument.
type TenantStore[T any, P RecordPointer[T]] struct {
	db db.DBClientInterface

	table   string
	columns []string

	logger  logging.LoggerInterface
	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
}

func NewTenantStore[T any, P RecordPointer[T]](c db.DBClientInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *TenantStore[T, P] {
	s := new(TenantStore[T, P])

	record := P(new(T))
	s.table = record.TableName()
	s.columns = record.Columns()

	s.db = c

	s.logger = logger
	s.tracer = tracer
	s.monitor = monitor

	return s
}

func (s *TenantStore[T, P]) start(ctx context.Context, op string) (context.Context, trace.Span, string, error) {
	ctx, span := s.tracer.Start(ctx, "storage.TenantStore."+op)
	span.SetAttributes(attribute.String("db.table", s.table))

	tenantID, err := tenancy.TenantID(ctx)
	if err != nil {
		return ctx, span, "", err
	}

	span.SetAttributes(attribute.String("tenant.id", tenantID))

	return ctx, span, tenantID, nil
}

func (s *TenantStore[T, P]) selectColumns() []string {
	return append([]string{"id", tenantColumn, "created_at"}, s.columns...)
}

func (s *TenantStore[T, P]) isColumn(name string) bool {
	return slices.Contains(s.selectColumns(), name)
}

// scope combines the caller predicate with the tenant filter.
func (s *TenantStore[T, P]) scope(pred sq.Sqlizer, tenantID string) sq.Sqlizer {
	filter := sq.Eq{tenantColumn: tenantID}

	if pred == nil {
		return sq.And{filter}
	}

	return sq.And{group{pred: pred}, filter}
}

// owned rejects rows that do not belong to tenantID, the filter already
// guarantees it so a mismatch means the query was built wrong.
func (s *TenantStore[T, P]) owned(record P, tenantID string) bool {
	if record.GetTenantID() == tenantID {
		return true
	}

	s.logger.Security().CrossTenantAccess(tenantID, s.table, record.GetID())
	return false
}

// FindOne returns the first row matching pred within the current tenant.
func (s *TenantStore[T, P]) FindOne(ctx context.Context, pred sq.Sqlizer) (P, error) {
	var zero P

	ctx, span, tenantID, err := s.start(ctx, "FindOne")
	defer span.End()

	if err != nil {
		return zero, err
	}

	record := P(new(T))

	err = s.db.Statement(ctx).
		Select(s.selectColumns()...).
		From(s.table).
		Where(s.scope(pred, tenantID)).
		Limit(1).
		QueryRowContext(ctx).
		Scan(record.Targets()...)

	if err != nil {
		if isNoRows(err) {
			return zero, ErrNotFound
		}
		return zero, fmt.Errorf("failed to query %s: %w", s.table, err)
	}

	if !s.owned(record, tenantID) {
		return zero, ErrNotFound
	}

	return record, nil
}

// FindByID returns the row with the given id within the current tenant.
// Malformed identifiers are reported as ErrNotFound.
func (s *TenantStore[T, P]) FindByID(ctx context.Context, id string) (P, error) {
	var zero P

	if _, err := uuid.Parse(id); err != nil {
		return zero, ErrNotFound
	}

	return s.FindOne(ctx, sq.Eq{"id": id})
}

// FindMany returns every row matching pred within the current tenant.
func (s *TenantStore[T, P]) FindMany(ctx context.Context, pred sq.Sqlizer, opts ...QueryOption) ([]P, error) {
	ctx, span, tenantID, err := s.start(ctx, "FindMany")
	defer span.End()

	if err != nil {
		return nil, err
	}

	o := new(queryOptions)
	for _, opt := range opts {
		opt(o)
	}

	query := s.db.Statement(ctx).
		Select(s.selectColumns()...).
		From(s.table).
		Where(s.scope(pred, tenantID))

	if o.orderBy != "" {
		if !s.isColumn(o.orderBy) {
			return nil, fmt.Errorf("cannot order %s by %q: %w", s.table, o.orderBy, ErrInvalidQuery)
		}

		direction := "ASC"
		if o.desc {
			direction = "DESC"
		}
		query = query.OrderBy(o.orderBy + " " + direction)
	} else {
		query = query.OrderBy("created_at ASC")
	}

	if o.paginate {
		size := db.PageSize(o.size)
		query = query.Limit(size).Offset(db.Offset(o.page, size))
	}

	rows, err := query.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.table, err)
	}
	defer rows.Close()

	records := make([]P, 0)
	for rows.Next() {
		record := P(new(T))
		if err := rows.Scan(record.Targets()...); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", s.table, err)
		}

		if !s.owned(record, tenantID) {
			continue
		}

		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s rows: %w", s.table, err)
	}

	return records, nil
}

// Count returns the number of rows matching pred within the current tenant.
func (s *TenantStore[T, P]) Count(ctx context.Context, pred sq.Sqlizer) (int64, error) {
	ctx, span, tenantID, err := s.start(ctx, "Count")
	defer span.End()

	if err != nil {
		return 0, err
	}

	var count int64
	err = s.db.Statement(ctx).
		Select("COUNT(*)").
		From(s.table).
		Where(s.scope(pred, tenantID)).
		QueryRowContext(ctx).
		Scan(&count)

	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", s.table, err)
	}

	return count, nil
}

// Create inserts record into the current tenant, overwriting any tenant
// identifier already set on it. An empty id is replaced with a UUIDv7.
func (s *TenantStore[T, P]) Create(ctx context.Context, record P) error {
	ctx, span, tenantID, err := s.start(ctx, "Create")
	defer span.End()

	if err != nil {
		return err
	}

	record.SetTenantID(tenantID)

	if record.GetID() == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate %s ID: %w", s.table, err)
		}
		record.SetID(id.String())
	}

	columns := append([]string{"id", tenantColumn}, s.columns...)
	values := append([]any{record.GetID(), tenantID}, record.Values()...)

	var createdAt time.Time
	err = s.db.Statement(ctx).
		Insert(s.table).
		Columns(columns...).
		Values(values...).
		Suffix("RETURNING created_at").
		QueryRowContext(ctx).
		Scan(&createdAt)

	if err != nil {
		if IsDuplicateKeyError(err) {
			return WrapDuplicateKeyError(err, fmt.Sprintf("failed to insert into %s", s.table))
		}
		return fmt.Errorf("failed to insert into %s: %w", s.table, err)
	}

	record.SetCreatedAt(createdAt)

	return nil
}

// Update writes the data columns of record. The row is first looked up
// within the current tenant, rows owned by other tenants are ErrNotFound.
func (s *TenantStore[T, P]) Update(ctx context.Context, record P) error {
	ctx, span, tenantID, err := s.start(ctx, "Update")
	defer span.End()

	if err != nil {
		return err
	}

	id := record.GetID()

	existing, err := s.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.logger.Security().ResourceNotFound(tenantID, s.table, id)
		}
		return err
	}

	set := make(map[string]interface{}, len(s.columns))
	for i, v := range record.Values() {
		set[s.columns[i]] = v
	}

	res, err := s.db.Statement(ctx).
		Update(s.table).
		SetMap(set).
		Where(sq.And{sq.Eq{"id": id}, sq.Eq{tenantColumn: tenantID}}).
		ExecContext(ctx)

	if err != nil {
		if IsDuplicateKeyError(err) {
			return WrapDuplicateKeyError(err, fmt.Sprintf("failed to update %s", s.table))
		}
		return fmt.Errorf("failed to update %s: %w", s.table, err)
	}

	if err := checkAffected(res); err != nil {
		return err
	}

	record.SetTenantID(tenantID)
	record.SetCreatedAt(existing.GetCreatedAt())

	return nil
}

// Delete removes the row with the given id from the current tenant.
func (s *TenantStore[T, P]) Delete(ctx context.Context, id string) error {
	ctx, span, tenantID, err := s.start(ctx, "Delete")
	defer span.End()

	if err != nil {
		return err
	}

	if _, err := s.FindByID(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			s.logger.Security().ResourceNotFound(tenantID, s.table, id)
		}
		return err
	}

	res, err := s.db.Statement(ctx).
		Delete(s.table).
		Where(sq.And{sq.Eq{"id": id}, sq.Eq{tenantColumn: tenantID}}).
		ExecContext(ctx)

	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", s.table, err)
	}

	return checkAffected(res)
}

func checkAffected(res sql.Result) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}

	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows)
}
