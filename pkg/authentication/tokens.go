// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/canonical/tenant-crm/internal/logging"
	"github.com/canonical/tenant-crm/internal/monitoring"
	"github.com/canonical/tenant-crm/internal/tracing"
)

const minSecretLength = 32

var (
	ErrTokenInvalid = errors.New("token is invalid")
	ErrTokenExpired = errors.New("token is expired")
	ErrSecretLength = fmt.Errorf("token secret must be at least %d bytes", minSecretLength)
)

// Claims carried by access tokens, on top of the registered ones.
type Claims struct {
	TenantID string   `json:"tenant"`
	Username string   `json:"name,omitempty"`
	Roles    []string `json:"roles,omitempty"`

	jwt.RegisteredClaims
}

// TokenConfig configures signing and validation of access tokens.
type TokenConfig struct {
	Secret   []byte
	Issuer   string
	Audience string
	Lifetime time.Duration
}

var (
	_ TokenIssuerInterface   = (*Tokens)(nil)
	_ TokenVerifierInterface = (*Tokens)(nil)
)

// Tokens issues and verifies HS256 signed access tokens.
type Tokens struct {
	secret   []byte
	issuer   string
	audience string
	lifetime time.Duration

	now func() time.Time

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (t *Tokens) IssueToken(ctx context.Context, userID, tenantID, username string, roles []string) (string, time.Time, error) {
	_, span := t.tracer.Start(ctx, "authentication.Tokens.IssueToken")
	defer span.End()

	if userID == "" || tenantID == "" {
		return "", time.Time{}, fmt.Errorf("user and tenant are required to issue a token")
	}

	jti, err := uuid.NewV7()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate token id: %w", err)
	}

	now := t.now().UTC().Truncate(time.Second)
	expiresAt := now.Add(t.lifetime)

	claims := Claims{
		TenantID: tenantID,
		Username: username,
		Roles:    roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti.String(),
			Subject:   userID,
			Issuer:    t.issuer,
			Audience:  jwt.ClaimStrings{t.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, expiresAt, nil
}

// VerifyToken checks signature, algorithm, issuer, audience and time claims.
// Every failure maps to ErrTokenInvalid or ErrTokenExpired.
func (t *Tokens) VerifyToken(ctx context.Context, rawToken string) (*Claims, error) {
	_, span := t.tracer.Start(ctx, "authentication.Tokens.VerifyToken")
	defer span.End()

	if rawToken == "" {
		return nil, ErrTokenInvalid
	}

	claims := new(Claims)

	token, err := jwt.ParseWithClaims(
		rawToken,
		claims,
		func(*jwt.Token) (any, error) { return t.secret, nil },
		t.parserOptions()...,
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}

		t.logger.Debugf("token rejected: %v", err)
		return nil, ErrTokenInvalid
	}

	if !token.Valid || claims.Subject == "" || claims.TenantID == "" {
		return nil, ErrTokenInvalid
	}

	if _, err := uuid.Parse(claims.TenantID); err != nil {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

func (t *Tokens) parserOptions() []jwt.ParserOption {
	return []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithAudience(t.audience),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(t.now),
	}
}

// NewTokens fails when the secret is shorter than 32 bytes or the lifetime is not positive.
func NewTokens(cfg TokenConfig, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) (*Tokens, error) {
	if len(cfg.Secret) < minSecretLength {
		return nil, ErrSecretLength
	}

	if cfg.Lifetime <= 0 {
		return nil, fmt.Errorf("token lifetime must be positive")
	}

	t := new(Tokens)
	t.secret = cfg.Secret
	t.issuer = cfg.Issuer
	t.audience = cfg.Audience
	t.lifetime = cfg.Lifetime
	t.now = time.Now

	t.tracer = tracer
	t.monitor = monitor
	t.logger = logger

	return t, nil
}
