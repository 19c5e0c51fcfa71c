// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/canonical/tenant-crm/internal/logging"
	"github.com/canonical/tenant-crm/internal/monitoring"
	"github.com/canonical/tenant-crm/internal/tracing"
)

func newTestHasher(concurrency int64) *Hasher {
	logger := logging.NewNoopLogger()
	return NewHasher(concurrency, tracing.NewNoopTracer(), monitoring.NewNoopMonitor("test", logger), logger)
}

func TestHasher_HashIsSalted(t *testing.T) {
	h := newTestHasher(2)
	ctx := context.Background()

	hash1, salt1, err := h.Hash(ctx, "DevPassword123!")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	hash2, salt2, err := h.Hash(ctx, "DevPassword123!")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(hash1) != int(keyLength) || len(salt1) != saltLength {
		t.Errorf("unexpected lengths, hash %d salt %d", len(hash1), len(salt1))
	}

	if bytes.Equal(salt1, salt2) {
		t.Error("expected a fresh salt per hash")
	}

	if bytes.Equal(hash1, hash2) {
		t.Error("expected different hashes for the same password")
	}
}

func TestHasher_Verify(t *testing.T) {
	h := newTestHasher(2)
	ctx := context.Background()

	hash, salt, err := h.Hash(ctx, "DevPassword123!")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name     string
		password string
		hash     []byte
		salt     []byte
		expected bool
		err      error
	}{
		{
			name:     "Correct password",
			password: "DevPassword123!",
			hash:     hash,
			salt:     salt,
			expected: true,
		},
		{
			name:     "Wrong password",
			password: "devpassword123!",
			hash:     hash,
			salt:     salt,
			expected: false,
		},
		{
			name:     "Empty password",
			password: "",
			hash:     hash,
			salt:     salt,
			expected: false,
		},
		{
			name:     "Truncated hash",
			password: "DevPassword123!",
			hash:     hash[:16],
			salt:     salt,
			expected: false,
		},
		{
			name:     "Missing salt",
			password: "DevPassword123!",
			hash:     hash,
			expected: false,
			err:      ErrCorruptCredentials,
		},
		{
			name:     "Missing hash",
			password: "DevPassword123!",
			salt:     salt,
			expected: false,
			err:      ErrCorruptCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			match, err := h.Verify(ctx, tt.password, tt.hash, tt.salt)

			if !errors.Is(err, tt.err) {
				t.Errorf("expected error %v, got %v", tt.err, err)
			}

			if match != tt.expected {
				t.Errorf("expected match %v, got %v", tt.expected, match)
			}
		})
	}
}

func TestHasher_HashEmptyPassword(t *testing.T) {
	h := newTestHasher(1)

	if _, _, err := h.Hash(context.Background(), ""); !errors.Is(err, ErrEmptyPassword) {
		t.Errorf("expected ErrEmptyPassword, got %v", err)
	}
}

func TestHasher_HashHonoursContextWhenSaturated(t *testing.T) {
	h := newTestHasher(1)

	// occupy the only slot
	if err := h.sem.Acquire(context.Background(), 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer h.sem.Release(1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, _, err := h.Hash(ctx, "DevPassword123!"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestNewHasher_ClampsConcurrency(t *testing.T) {
	h := newTestHasher(0)

	if !h.sem.TryAcquire(1) {
		t.Fatal("expected one slot to be available")
	}
	defer h.sem.Release(1)

	if h.sem.TryAcquire(1) {
		t.Error("expected concurrency to be clamped to one")
	}
}
