// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package logging

import (
	"fmt"

	"go.uber.org/zap"
)

const (
	appID = "tenant-crm"
)

var _ SecurityLoggerInterface = (*SecurityLogger)(nil)

type SecurityLogger struct {
	l *zap.Logger
}

func (s *SecurityLogger) log(level, event, description string, fields ...zap.Field) {
	fields = append(
		fields,
		zap.String("appid", appID),
		zap.String("event", event),
		zap.String("level", level),
		zap.String("description", description),
	)

	switch level {
	case "WARN":
		s.l.Warn(description, fields...)
	case "CRITICAL":
		s.l.Error(description, fields...)
	default:
		s.l.Info(description, fields...)
	}
}

func (s *SecurityLogger) AuthnSuccess(userID, tenantID string) {
	s.log(
		"INFO",
		fmt.Sprintf("authn_login_success:%s", userID),
		fmt.Sprintf("User %s logged in successfully", userID),
		zap.String("tenant_id", tenantID),
	)
}

// AuthnFailure records a failed login, the username is only what the client sent.
func (s *SecurityLogger) AuthnFailure(username, tenantID, reason string) {
	s.log(
		"WARN",
		fmt.Sprintf("authn_login_fail:%s", username),
		fmt.Sprintf("User %s login failed", username),
		zap.String("tenant_id", tenantID),
		zap.String("reason", reason),
	)
}

func (s *SecurityLogger) AuthnTokenInvalid(reason string) {
	s.log(
		"WARN",
		"authn_token_invalid",
		"Bearer token rejected",
		zap.String("reason", reason),
	)
}

func (s *SecurityLogger) AuthzFailure(userID, resource string) {
	s.log(
		"CRITICAL",
		fmt.Sprintf("authz_fail:%s,%s", userID, resource),
		fmt.Sprintf("User %s attempted to access %s without entitlement", userID, resource),
	)
}

func (s *SecurityLogger) CrossTenantAccess(tenantID, resource, resourceID string) {
	s.log(
		"CRITICAL",
		fmt.Sprintf("authz_fail:%s,%s", tenantID, resource),
		fmt.Sprintf("Tenant %s attempted to access %s %s outside its partition", tenantID, resource, resourceID),
		zap.String("tenant_id", tenantID),
		zap.String("resource_id", resourceID),
	)
}

// ResourceNotFound records a lookup by id that matched nothing within the
// tenant, the id may not exist at all or belong to another tenant.
func (s *SecurityLogger) ResourceNotFound(tenantID, resource, resourceID string) {
	s.log(
		"INFO",
		fmt.Sprintf("authz_not_found_in_tenant:%s,%s", tenantID, resource),
		fmt.Sprintf("Tenant %s referenced %s %s which does not exist in its partition", tenantID, resource, resourceID),
		zap.String("tenant_id", tenantID),
		zap.String("resource_id", resourceID),
	)
}

func (s *SecurityLogger) SystemStartup() {
	s.log("WARN", "sys_startup", "Service started")
}

func (s *SecurityLogger) SystemShutdown() {
	s.log("WARN", "sys_shutdown", "Service stopped")
}
