// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package contacts

import "errors"

var ErrInvalidContact = errors.New("invalid contact")
