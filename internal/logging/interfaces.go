// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package logging

type LoggerInterface interface {
	Errorf(string, ...interface{})
	Infof(string, ...interface{})
	Warnf(string, ...interface{})
	Debugf(string, ...interface{})
	Fatalf(string, ...interface{})
	Error(...interface{})
	Info(...interface{})
	Warn(...interface{})
	Debug(...interface{})
	Fatal(...interface{})
	Sync() error

	Security() SecurityLoggerInterface
}

// SecurityLoggerInterface emits audit events using the OWASP logging vocabulary.
type SecurityLoggerInterface interface {
	AuthnSuccess(userID, tenantID string)
	AuthnFailure(username, tenantID, reason string)
	AuthnTokenInvalid(reason string)
	AuthzFailure(userID, resource string)
	CrossTenantAccess(tenantID, resource, resourceID string)
	ResourceNotFound(tenantID, resource, resourceID string)
	SystemStartup()
	SystemShutdown()
}
