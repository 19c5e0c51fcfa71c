// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/canonical/tenant-crm/internal/logging"
	"github.com/canonical/tenant-crm/internal/monitoring"
	"github.com/canonical/tenant-crm/internal/storage"
	"github.com/canonical/tenant-crm/internal/tenancy"
	"github.com/canonical/tenant-crm/internal/tracing"
)

// ErrInvalidCredentials covers unknown users, wrong passwords and missing tenants alike.
var ErrInvalidCredentials = errors.New("invalid credentials")

const (
	outcomeSuccess            = "success"
	outcomeInvalidCredentials = "invalid_credentials"
	outcomeError              = "error"
)

// UserInfo is the public part of a user returned on login.
type UserInfo struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      UserInfo  `json:"user"`
}

var _ ServiceInterface = (*Service)(nil)

type Service struct {
	users  UserStoreInterface
	roles  RoleResolverInterface
	hasher PasswordHasherInterface
	issuer TokenIssuerInterface

	// verified in place of a real user so unknown usernames cost a full derivation
	decoyHash []byte
	decoySalt []byte

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// Login authenticates username within the tenant bound to ctx.
// Credential failures return ErrInvalidCredentials, storage or signing
// failures are wrapped and returned as is.
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	ctx, span := s.tracer.Start(ctx, "authentication.Service.Login")
	defer span.End()

	rc, ok := tenancy.FromContext(ctx)
	if !ok {
		s.fail(username, "", "tenant missing")
		return nil, ErrInvalidCredentials
	}

	span.SetAttributes(attribute.String("tenant.id", rc.TenantID))

	if username == "" || password == "" {
		s.fail(username, rc.TenantID, "empty credentials")
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.FindOne(ctx, sq.Eq{"username": username})

	switch {
	case errors.Is(err, storage.ErrNotFound):
		// result ignored, the derivation only equalises response time
		_, _ = s.hasher.Verify(ctx, password, s.decoyHash, s.decoySalt)

		s.fail(username, rc.TenantID, "unknown user")
		return nil, ErrInvalidCredentials
	case err != nil:
		s.outcome(outcomeError)
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	match, err := s.hasher.Verify(ctx, password, user.PasswordHash, user.PasswordSalt)
	if err != nil {
		if errors.Is(err, ErrCorruptCredentials) {
			s.logger.Errorf("user %s in tenant %s has corrupt credentials", user.ID, rc.TenantID)
			s.fail(username, rc.TenantID, "corrupt credentials")
			return nil, ErrInvalidCredentials
		}

		s.outcome(outcomeError)
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}

	if !match {
		s.fail(username, rc.TenantID, "wrong password")
		return nil, ErrInvalidCredentials
	}

	roles, err := s.roles.RoleNames(ctx, user.ID)
	if err != nil {
		s.outcome(outcomeError)
		return nil, fmt.Errorf("failed to resolve roles: %w", err)
	}

	token, expiresAt, err := s.issuer.IssueToken(ctx, user.ID, rc.TenantID, user.Username, roles)
	if err != nil {
		s.outcome(outcomeError)
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.outcome(outcomeSuccess)
	s.logger.Security().AuthnSuccess(user.ID, rc.TenantID)

	return &LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		User: UserInfo{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
			Roles:    roles,
		},
	}, nil
}

func (s *Service) fail(username, tenantID, reason string) {
	s.outcome(outcomeInvalidCredentials)
	s.logger.Security().AuthnFailure(username, tenantID, reason)
}

func (s *Service) outcome(outcome string) {
	if err := s.monitor.SetLoginOutcomeMetric(map[string]string{"outcome": outcome}); err != nil {
		s.logger.Debugf("failed to record login outcome: %v", err)
	}
}

func NewService(users UserStoreInterface, roles RoleResolverInterface, hasher PasswordHasherInterface, issuer TokenIssuerInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Service {
	s := new(Service)

	s.users = users
	s.roles = roles
	s.hasher = hasher
	s.issuer = issuer

	s.decoyHash = make([]byte, keyLength)
	s.decoySalt = make([]byte, saltLength)

	// crypto/rand.Read never returns an error
	_, _ = rand.Read(s.decoyHash)
	_, _ = rand.Read(s.decoySalt)

	s.tracer = tracer
	s.monitor = monitor
	s.logger = logger

	return s
}
