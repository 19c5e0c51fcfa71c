// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package db

import "testing"

func TestOffset(t *testing.T) {
	tests := []struct {
		page     int64
		size     uint64
		expected uint64
	}{
		{page: 0, size: 10, expected: 0},
		{page: -3, size: 10, expected: 0},
		{page: 1, size: 10, expected: 0},
		{page: 3, size: 25, expected: 50},
	}

	for _, tt := range tests {
		if got := Offset(tt.page, tt.size); got != tt.expected {
			t.Errorf("Offset(%d, %d): expected %d, got %d", tt.page, tt.size, tt.expected, got)
		}
	}
}

func TestPageSize(t *testing.T) {
	tests := []struct {
		size     int64
		expected uint64
	}{
		{size: 0, expected: defaultPageSize},
		{size: -1, expected: defaultPageSize},
		{size: 20, expected: 20},
		{size: 10000, expected: maxPageSize},
	}

	for _, tt := range tests {
		if got := PageSize(tt.size); got != tt.expected {
			t.Errorf("PageSize(%d): expected %d, got %d", tt.size, tt.expected, got)
		}
	}
}
