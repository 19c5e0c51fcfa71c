// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/canonical/tenant-crm/internal/types"
	"github.com/canonical/tenant-crm/pkg/authentication"
)

// apiClient talks to a running server over its JSON API.
type apiClient struct {
	endpoint     string
	tenantHeader string
	tenantID     string
	token        string

	client *http.Client
}

func newAPIClient(endpoint, tenantHeader, tenantID, token string) *apiClient {
	if !strings.HasPrefix(endpoint, "http") {
		endpoint = "http://" + endpoint
	}

	return &apiClient{
		endpoint:     strings.TrimSuffix(endpoint, "/"),
		tenantHeader: tenantHeader,
		tenantID:     tenantID,
		token:        token,
		client:       &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *apiClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, body)
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	if c.tenantID != "" {
		req.Header.Set(c.tenantHeader, c.tenantID)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("api error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

func (c *apiClient) Login(ctx context.Context, username, password string) (*authentication.LoginResult, error) {
	out := new(authentication.LoginResult)
	in := authentication.LoginRequest{Username: username, Password: password}

	if err := c.do(ctx, http.MethodPost, "/api/v0/auth/login", in, out); err != nil {
		return nil, err
	}

	return out, nil
}

type contactList struct {
	Data []*types.Contact `json:"data"`
	Meta struct {
		Total int64 `json:"total"`
	} `json:"_meta"`
}

func (c *apiClient) ListContacts(ctx context.Context, page, size int64) (*contactList, error) {
	out := new(contactList)
	path := fmt.Sprintf("/api/v0/contacts?page=%d&size=%d", page, size)

	if err := c.do(ctx, http.MethodGet, path, nil, out); err != nil {
		return nil, err
	}

	return out, nil
}
