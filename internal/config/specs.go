// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package config

import (
	"fmt"
	"time"
)

const (
	EnvironmentDevelopment = "development"
	EnvironmentProduction  = "production"

	// DevelopmentTenantID is the tenant seeded for local development
	DevelopmentTenantID = "3e802e65-916e-4f2c-8068-abdd3b93dc2c"

	minJWTSecretLength = 32
)

// EnvSpec is the basic environment configuration setup needed for the app to start
type EnvSpec struct {
	OtelGRPCEndpoint string `envconfig:"otel_grpc_endpoint"`
	OtelHTTPEndpoint string `envconfig:"otel_http_endpoint"`
	TracingEnabled   bool   `envconfig:"tracing_enabled" default:"true"`

	LogLevel string `envconfig:"log_level" default:"error"`
	Debug    bool   `envconfig:"debug" default:"false"`

	Port int `envconfig:"port" default:"8080"`

	Environment string `envconfig:"environment" default:"production"`

	DSN string `envconfig:"DSN" required:"true"`

	DBMaxConns        int32         `envconfig:"db_max_conns" default:"25"`
	DBMinConns        int32         `envconfig:"db_min_conns" default:"2"`
	DBMaxConnLifetime time.Duration `envconfig:"db_max_conn_lifetime" default:"1h"`
	DBMaxConnIdleTime time.Duration `envconfig:"db_max_conn_idle_time" default:"30m"`

	TenantHeader    string `envconfig:"tenant_header" default:"X-Tenant-Id"`
	DefaultTenantID string `envconfig:"default_tenant_id" default:"3e802e65-916e-4f2c-8068-abdd3b93dc2c"`

	JWTSecret     string        `envconfig:"jwt_secret" required:"true"`
	JWTIssuer     string        `envconfig:"jwt_issuer" default:"tenant-crm"`
	JWTAudience   string        `envconfig:"jwt_audience" default:"tenant-crm-api"`
	TokenLifetime time.Duration `envconfig:"token_lifetime" default:"1h"`

	PasswordHashConcurrency int64 `envconfig:"password_hash_concurrency" default:"4"`

	CORSAllowedOrigins []string `envconfig:"cors_allowed_origins" default:"*"`
}

// IsDevelopment reports whether development-only fallbacks are allowed.
func (s *EnvSpec) IsDevelopment() bool {
	return s.Environment == EnvironmentDevelopment
}

// Validate checks the constraints envconfig tags cannot express.
func (s *EnvSpec) Validate() error {
	switch s.Environment {
	case EnvironmentDevelopment, EnvironmentProduction:
	default:
		return fmt.Errorf("invalid environment %q", s.Environment)
	}

	if len(s.JWTSecret) < minJWTSecretLength {
		return fmt.Errorf("jwt secret must be at least %d bytes", minJWTSecretLength)
	}

	if s.TokenLifetime <= 0 {
		return fmt.Errorf("token lifetime must be positive")
	}

	if s.PasswordHashConcurrency <= 0 {
		return fmt.Errorf("password hash concurrency must be positive")
	}

	return nil
}
