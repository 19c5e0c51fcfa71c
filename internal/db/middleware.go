// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package db

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/canonical/tenant-crm/internal/http/types"
	"github.com/canonical/tenant-crm/internal/logging"
)

var errHandlerFailed = errors.New("handler answered with an error status")

// TransactionMiddleware runs every mutating request in one transaction.
// The handler's response is held back until the transaction is settled: a
// status >= 400 rolls back, anything else commits, and a failed commit is
// answered with 500 instead of the held back response.
func TransactionMiddleware(db DBClientInterface, logger logging.LoggerInterface) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			held := newHeldResponse(w)

			err := db.WithTx(r.Context(), func(ctx context.Context) error {
				next.ServeHTTP(held, r.WithContext(ctx))

				if held.status >= http.StatusBadRequest {
					return fmt.Errorf("%w: %d", errHandlerFailed, held.status)
				}
				return nil
			})

			if err != nil && !errors.Is(err, errHandlerFailed) {
				logger.Errorf("transaction for %s %s failed: %v", r.Method, r.URL.Path, err)

				if werr := types.WriteError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)); werr != nil {
					logger.Errorf("failed to write error response: %v", werr)
				}
				return
			}

			if err := held.flush(); err != nil {
				logger.Errorf("failed to write response: %v", err)
			}
		})
	}
}

// heldResponse buffers status and body, headers go straight to the real writer's map.
type heldResponse struct {
	w      http.ResponseWriter
	status int
	body   bytes.Buffer
	wrote  bool
}

func newHeldResponse(w http.ResponseWriter) *heldResponse {
	return &heldResponse{w: w, status: http.StatusOK}
}

func (h *heldResponse) Header() http.Header {
	return h.w.Header()
}

func (h *heldResponse) WriteHeader(status int) {
	if h.wrote {
		return
	}
	h.status = status
	h.wrote = true
}

func (h *heldResponse) Write(b []byte) (int, error) {
	h.wrote = true
	return h.body.Write(b)
}

func (h *heldResponse) flush() error {
	h.w.WriteHeader(h.status)

	if h.body.Len() == 0 {
		return nil
	}

	_, err := h.w.Write(h.body.Bytes())
	return err
}
