// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package types

import (
	"encoding/json"
	"net/http"
)

// UnauthorizedMessage is the only message clients ever see for tenant,
// credential or token failures.
const UnauthorizedMessage = "unauthorized"

// Pagination describes the page returned alongside list responses.
type Pagination struct {
	Page  int64  `json:"page"`
	Size  uint64 `json:"size"`
	Total int64  `json:"total"`
}

// Response is the standard json envelope for every API answer.
type Response struct {
	Data    any         `json:"data,omitempty"`
	Meta    *Pagination `json:"_meta,omitempty"`
	Message string      `json:"message"`
	Status  int         `json:"status"`
}

// ErrorResponse is returned when a request fails.
type ErrorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// WriteJSON encodes body with the given status code.
func WriteJSON(w http.ResponseWriter, status int, body any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	return json.NewEncoder(w).Encode(body)
}

// WriteError writes an ErrorResponse with the given status code and message.
func WriteError(w http.ResponseWriter, status int, message string) error {
	return WriteJSON(w, status, ErrorResponse{Status: status, Message: message})
}

// WriteUnauthorized writes the generic 401 body shared by every authentication failure.
func WriteUnauthorized(w http.ResponseWriter) error {
	return WriteError(w, http.StatusUnauthorized, UnauthorizedMessage)
}
