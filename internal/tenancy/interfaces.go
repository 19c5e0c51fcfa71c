// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tenancy

import "net/http"

type ResolverInterface interface {
	Header() string
	Resolve(http.Header) (string, error)
}
