// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	sq "github.com/Masterminds/squirrel"
)

type queryOptions struct {
	paginate bool
	page     int64
	size     int64

	orderBy string
	desc    bool
}

// QueryOption shapes the result set of FindMany, it never touches the filter.
type QueryOption func(*queryOptions)

// WithPage limits the result set to one page, pages start at 1.
func WithPage(page, size int64) QueryOption {
	return func(o *queryOptions) {
		o.paginate = true
		o.page = page
		o.size = size
	}
}

// WithOrderBy sorts by column, which must be one of the record columns.
func WithOrderBy(column string, desc bool) QueryOption {
	return func(o *queryOptions) {
		o.orderBy = column
		o.desc = desc
	}
}

// group renders its predicate inside parentheses so that operators in a
// caller supplied expression cannot bind across the tenant filter.
type group struct {
	pred sq.Sqlizer
}

func (g group) ToSql() (string, []interface{}, error) {
	sql, args, err := g.pred.ToSql()
	if err != nil {
		return "", nil, err
	}

	if sql == "" {
		return "", args, nil
	}

	return "(" + sql + ")", args, nil
}
