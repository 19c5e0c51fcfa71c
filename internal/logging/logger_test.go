// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestDebugLogger(t *testing.T) {
	func() {
		_ = recover()
		NewLogger("DEBUG")
	}()
}

func TestInvalidLevel(t *testing.T) {
	func() {
		_ = recover()
		NewLogger("invalid")
	}()
}

func TestNoopLoggerSecurity(t *testing.T) {
	l := NewNoopLogger()

	if l.Security() == nil {
		t.Fatal("expected security logger")
	}

	l.Security().AuthnFailure("alice", "tenant", "bad password")
}

func TestSecurityLoggerEvents(t *testing.T) {
	tests := []struct {
		name          string
		emit          func(SecurityLoggerInterface)
		expectedEvent string
		expectedLevel zapcore.Level
	}{
		{
			name:          "login success",
			emit:          func(s SecurityLoggerInterface) { s.AuthnSuccess("user-1", "tenant-1") },
			expectedEvent: "authn_login_success:user-1",
			expectedLevel: zap.InfoLevel,
		},
		{
			name:          "login failure",
			emit:          func(s SecurityLoggerInterface) { s.AuthnFailure("alice", "tenant-1", "unknown user") },
			expectedEvent: "authn_login_fail:alice",
			expectedLevel: zap.WarnLevel,
		},
		{
			name:          "token rejected",
			emit:          func(s SecurityLoggerInterface) { s.AuthnTokenInvalid("expired") },
			expectedEvent: "authn_token_invalid",
			expectedLevel: zap.WarnLevel,
		},
		{
			name:          "cross tenant",
			emit:          func(s SecurityLoggerInterface) { s.CrossTenantAccess("tenant-1", "contacts", "c-1") },
			expectedEvent: "authz_fail:tenant-1,contacts",
			expectedLevel: zap.ErrorLevel,
		},
		{
			name:          "not found within tenant",
			emit:          func(s SecurityLoggerInterface) { s.ResourceNotFound("tenant-1", "contacts", "c-1") },
			expectedEvent: "authz_not_found_in_tenant:tenant-1,contacts",
			expectedLevel: zap.InfoLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zap.DebugLevel)
			s := &SecurityLogger{l: zap.New(core)}

			tt.emit(s)

			entries := logs.All()
			if len(entries) != 1 {
				t.Fatalf("expected 1 entry, got %d", len(entries))
			}

			if entries[0].Level != tt.expectedLevel {
				t.Errorf("expected level %v, got %v", tt.expectedLevel, entries[0].Level)
			}

			if event := entries[0].ContextMap()["event"]; event != tt.expectedEvent {
				t.Errorf("expected event %q, got %q", tt.expectedEvent, event)
			}
		})
	}
}
