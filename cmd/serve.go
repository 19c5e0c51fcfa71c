// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"

	"github.com/canonical/tenant-crm/internal/config"
	"github.com/canonical/tenant-crm/internal/db"
	"github.com/canonical/tenant-crm/internal/logging"
	"github.com/canonical/tenant-crm/internal/monitoring/prometheus"
	"github.com/canonical/tenant-crm/internal/tenancy"
	"github.com/canonical/tenant-crm/internal/tracing"
	"github.com/canonical/tenant-crm/pkg/authentication"
	"github.com/canonical/tenant-crm/pkg/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "serve starts the web server",
	Long:  `Launch the web application, list of environment variables is available in the readme`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := serve(); err != nil {
			fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve() error {
	specs := new(config.EnvSpec)
	if err := envconfig.Process("", specs); err != nil {
		return fmt.Errorf("issues with environment sourcing: %s", err)
	}

	if err := specs.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := logging.NewLogger(specs.LogLevel)
	defer logger.Sync()

	monitor := prometheus.NewMonitor("tenant-crm", logger)
	tracer := tracing.NewTracer(tracing.NewConfig(specs.TracingEnabled, specs.OtelGRPCEndpoint, specs.OtelHTTPEndpoint, logger))

	dbConfig := db.Config{
		DSN:             specs.DSN,
		MaxConns:        specs.DBMaxConns,
		MinConns:        specs.DBMinConns,
		MaxConnLifetime: specs.DBMaxConnLifetime,
		MaxConnIdleTime: specs.DBMaxConnIdleTime,
		TracingEnabled:  specs.TracingEnabled,
	}
	dbClient, err := db.NewDBClient(dbConfig, tracer, monitor, logger)
	if err != nil {
		return fmt.Errorf("failed to create database client: %v", err)
	}
	defer dbClient.Close()

	resolver, err := tenancy.NewResolver(specs.TenantHeader, specs.DefaultTenantID, specs.IsDevelopment())
	if err != nil {
		return fmt.Errorf("invalid tenant configuration: %w", err)
	}

	if specs.IsDevelopment() {
		logger.Warnf("development mode, requests without %s fall back to tenant %s", resolver.Header(), specs.DefaultTenantID)
	}

	tokens, err := authentication.NewTokens(
		authentication.TokenConfig{
			Secret:   []byte(specs.JWTSecret),
			Issuer:   specs.JWTIssuer,
			Audience: specs.JWTAudience,
			Lifetime: specs.TokenLifetime,
		},
		tracer,
		monitor,
		logger,
	)
	if err != nil {
		return fmt.Errorf("invalid token configuration: %w", err)
	}

	hasher := authentication.NewHasher(specs.PasswordHashConcurrency, tracer, monitor, logger)

	router := web.NewRouter(
		dbClient,
		resolver,
		hasher,
		tokens,
		specs.CORSAllowedOrigins,
		tracer,
		monitor,
		logger,
	)
	logger.Infof("Starting HTTP server on port %v", specs.Port)

	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%v", specs.Port),
		WriteTimeout: time.Second * 60,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
		Handler:      router,
	}

	var serverError error
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Security().SystemStartup()
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverError = fmt.Errorf("server error: %w", err)
			c <- os.Interrupt
		}
	}()

	<-c

	// Create a deadline to wait for.
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	logger.Security().SystemShutdown()
	if err := srv.Shutdown(ctx); err != nil {
		serverError = fmt.Errorf("server shutdown error: %w", err)
	}

	return serverError
}
