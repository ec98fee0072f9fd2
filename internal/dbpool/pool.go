// Copyright 2026 Google LLC
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package dbpool wraps a bounded MySQL connection pool and generically
// decodes result rows into map[string]any values.
package dbpool

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/ideabase/dbgateway/internal/apperr"
)

// Row is a generically decoded database row.
type Row = map[string]any

// Pool is a bounded MySQL connection pool exposing the row-shaped query
// surface the rest of the gateway is built on.
type Pool struct {
	db *sql.DB
}

// Open opens a pool against dsn, grounded in the teacher source packages'
// Initialize() pattern (fixed pool-size limits, short idle lifetime).
func Open(dsn string) (*Pool, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, apperr.ConfigError("opening mysql pool", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	return &Pool{db: db}, nil
}

// DB returns the underlying *sql.DB, e.g. for introspection queries run
// directly by the schema registry.
func (p *Pool) DB() *sql.DB { return p.db }

// Close closes the pool.
func (p *Pool) Close() error { return p.db.Close() }

// QueryList runs query and decodes every returned row.
func (p *Pool) QueryList(ctx context.Context, query string, args ...any) ([]Row, error) {
	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.SQLError(err)
	}
	defer rows.Close()
	return decodeRows(rows)
}

// QueryOne runs query, appending "limit 1" if the statement doesn't already
// have one, and returns the single decoded row or nil if there were none.
func (p *Pool) QueryOne(ctx context.Context, query string, args ...any) (Row, error) {
	if !strings.Contains(strings.ToLower(query), "limit") {
		query = query + " limit 1"
	}
	rowsList, err := p.QueryList(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if len(rowsList) == 0 {
		return nil, nil
	}
	return rowsList[0], nil
}

// Count runs a `select count(1) ...`-shaped query and returns the scalar.
func (p *Pool) Count(ctx context.Context, query string, args ...any) (int64, error) {
	var n int64
	if err := p.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, apperr.SQLError(err)
	}
	return n, nil
}

// Exec runs a write statement and returns the number of affected rows.
func (p *Pool) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := p.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, apperr.SQLError(err)
	}
	return res.RowsAffected()
}

// decodeRows decodes every row in rs using the column-type decode table in
// ConvertToType, producing one map[string]any per row.
func decodeRows(rs *sql.Rows) ([]Row, error) {
	cols, err := rs.Columns()
	if err != nil {
		return nil, apperr.SQLError(err)
	}
	colTypes, err := rs.ColumnTypes()
	if err != nil {
		return nil, apperr.SQLError(err)
	}

	var out []Row
	for rs.Next() {
		rawValues := make([]any, len(cols))
		scanDests := make([]any, len(cols))
		for i := range rawValues {
			scanDests[i] = &rawValues[i]
		}
		if err := rs.Scan(scanDests...); err != nil {
			return nil, apperr.SQLError(err)
		}

		row := make(Row, len(cols))
		for i, col := range cols {
			v, err := ConvertToType(colTypes[i], rawValues[i])
			if err != nil {
				return nil, apperr.SQLError(fmt.Errorf("decoding column %q: %w", col, err))
			}
			row[col] = v
		}
		out = append(out, row)
	}
	if err := rs.Err(); err != nil {
		return nil, apperr.SQLError(err)
	}
	return out, nil
}
