// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"

	"github.com/canonical/tenant-crm/internal/db"
	"github.com/canonical/tenant-crm/internal/logging"
	"github.com/canonical/tenant-crm/internal/monitoring"
	"github.com/canonical/tenant-crm/internal/tracing"
)

// addDSNFlag registers --dsn, falling back to the DSN environment variable used by serve.
func addDSNFlag(cmd *cobra.Command) {
	cmd.Flags().String("dsn", os.Getenv("DSN"), "PostgreSQL DSN connection string (defaults to $DSN)")
}

func openDB(cmd *cobra.Command) (*sql.DB, error) {
	dsn, _ := cmd.Flags().GetString("dsn")
	if dsn == "" {
		return nil, errors.New("a DSN is required, use --dsn or set DSN")
	}

	config, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("DSN validation failed: %v", err)
	}

	conn := stdlib.OpenDB(*config)

	if err := conn.PingContext(cmd.Context()); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("DB connection failed: %v", err)
	}

	return conn, nil
}

// newCLIClient returns a database client for one-shot commands, spans and metrics are discarded.
func newCLIClient(cmd *cobra.Command) (*db.DBClient, logging.LoggerInterface, error) {
	conn, err := openDB(cmd)
	if err != nil {
		return nil, nil, err
	}

	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "info"
	}

	logger := logging.NewLogger(level)
	client := db.NewDBClientFromDB(conn, tracing.NewNoopTracer(), monitoring.NewNoopMonitor("tenant-crm-cli", logger), logger)

	return client, logger, nil
}
