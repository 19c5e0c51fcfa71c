// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/sync/semaphore"

	"github.com/canonical/tenant-crm/internal/logging"
	"github.com/canonical/tenant-crm/internal/monitoring"
	"github.com/canonical/tenant-crm/internal/tracing"
)

// Argon2id parameters, changing any of them invalidates every stored hash.
const (
	argonTime    uint32 = 3
	argonMemory  uint32 = 64 * 1024
	argonThreads uint8  = 2
	keyLength    uint32 = 32
	saltLength          = 32
)

var (
	ErrEmptyPassword      = errors.New("password must not be empty")
	ErrCorruptCredentials = errors.New("stored credentials are corrupt")
)

var _ PasswordHasherInterface = (*Hasher)(nil)

// Hasher derives salted Argon2id password hashes.
type Hasher struct {
	// bounds the number of concurrent derivations, each one holds argonMemory KiB
	sem *semaphore.Weighted

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// Hash returns a hash of password and the fresh random salt used to derive it.
func (h *Hasher) Hash(ctx context.Context, password string) ([]byte, []byte, error) {
	ctx, span := h.tracer.Start(ctx, "authentication.Hasher.Hash")
	defer span.End()

	if password == "" {
		return nil, nil, ErrEmptyPassword
	}

	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	hash, err := h.derive(ctx, password, salt)
	if err != nil {
		return nil, nil, err
	}

	return hash, salt, nil
}

// Verify reports whether password matches hash under salt.
// A mismatch is not an error, empty stored values are.
func (h *Hasher) Verify(ctx context.Context, password string, hash, salt []byte) (bool, error) {
	ctx, span := h.tracer.Start(ctx, "authentication.Hasher.Verify")
	defer span.End()

	if len(salt) == 0 || len(hash) == 0 {
		return false, ErrCorruptCredentials
	}

	derived, err := h.derive(ctx, password, salt)
	if err != nil {
		return false, err
	}

	return subtle.ConstantTimeCompare(derived, hash) == 1, nil
}

func (h *Hasher) derive(ctx context.Context, password string, salt []byte) ([]byte, error) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("password hashing aborted: %w", err)
	}
	defer h.sem.Release(1)

	return argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, keyLength), nil
}

// NewHasher returns a Hasher running at most concurrency derivations at once.
func NewHasher(concurrency int64, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Hasher {
	if concurrency <= 0 {
		concurrency = 1
	}

	h := new(Hasher)
	h.sem = semaphore.NewWeighted(concurrency)

	h.tracer = tracer
	h.monitor = monitor
	h.logger = logger

	return h
}
