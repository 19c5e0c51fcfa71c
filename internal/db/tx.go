// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const txTimeout = 60 * time.Second

type txKey struct{}

// pendingTx is the transaction of one WithTx call. BEGIN is only sent once
// a statement needs it, so units of work that never touch the database
// never open a transaction.
type pendingTx struct {
	db *sql.DB

	tx     TxInterface
	cancel context.CancelFunc
	err    error
}

func (p *pendingTx) begin() (TxInterface, error) {
	if p.tx != nil || p.err != nil {
		return p.tx, p.err
	}

	// not tied to the request context, a client hanging up must not
	// roll back work the handler already reported as done
	ctx, cancel := context.WithTimeout(context.Background(), txTimeout)

	tx, err := p.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		cancel()
		p.err = err
		return nil, err
	}

	p.tx = tx
	p.cancel = cancel

	return tx, nil
}

func (p *pendingTx) finish(commit bool) error {
	if p.cancel != nil {
		defer p.cancel()
	}

	if p.tx == nil {
		return nil
	}

	if commit {
		return p.tx.Commit()
	}

	if err := p.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}

	return nil
}

// txFromContext returns the transaction bound to ctx, beginning it if needed.
// A nil transaction and nil error mean ctx carries no unit of work.
func txFromContext(ctx context.Context) (TxInterface, error) {
	p, ok := ctx.Value(txKey{}).(*pendingTx)
	if !ok {
		return nil, nil
	}

	return p.begin()
}

// WithTx runs fn as one unit of work. Statements built from the context
// passed to fn share a transaction, committed when fn returns nil and
// rolled back otherwise.
func (d *DBClient) WithTx(ctx context.Context, fn func(context.Context) error) error {
	ctx, span := d.tracer.Start(ctx, "db.DBClient.WithTx")
	defer span.End()

	// nested calls join the outer unit of work
	if _, ok := ctx.Value(txKey{}).(*pendingTx); ok {
		return fn(ctx)
	}

	p := &pendingTx{db: d.db}

	if err := fn(context.WithValue(ctx, txKey{}, p)); err != nil {
		if rerr := p.finish(false); rerr != nil {
			d.logger.Errorf("failed to roll back transaction: %v", rerr)
		}
		return err
	}

	if err := p.finish(true); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
