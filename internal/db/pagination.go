// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package db

const (
	defaultPageSize uint64 = 100
	maxPageSize     uint64 = 500
)

// PageSize turns a client supplied size into a LIMIT, falling back to
// defaultPageSize and never exceeding maxPageSize.
func PageSize(size int64) uint64 {
	switch {
	case size <= 0:
		return defaultPageSize
	case uint64(size) > maxPageSize:
		return maxPageSize
	default:
		return uint64(size)
	}
}

// Offset is the OFFSET of a 1-based page, pages below 1 read the first page.
func Offset(page int64, size uint64) uint64 {
	if page < 1 {
		return 0
	}
	return uint64(page-1) * size
}
