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

// Package querybuilder assembles a single SELECT statement for one query
// node: table, projected columns, WHERE conditions, ordering and paging.
package querybuilder

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ideabase/dbgateway/internal/apperr"
	"github.com/ideabase/dbgateway/internal/registry"
)

// DefaultPageSize is the row cap applied to a list node with no explicit
// page size, grounded in the original's DEFAULT_MAX_COUNT.
const DefaultPageSize = 10

// Builder is a mutable, single-use SQL SELECT builder for one query node.
type Builder struct {
	schema    string
	table     string
	columns   []string
	where     []string
	params    []any
	order     string
	page      int
	limit     int
	singular  bool // true for a non-list node, which is capped to one row
}

// New returns a Builder defaulted to a single-row result (a non-list node).
func New() *Builder {
	return &Builder{limit: 1, singular: true}
}

// ParseTable resolves schema and a table name (e.g. "Moment[]" or
// "User") against reg and sets schema/table. It strips a trailing "[]".
func (b *Builder) ParseTable(reg *registry.Registry, schema, path string) error {
	table := strings.TrimSuffix(path, "[]")
	if !reg.Exists(schema, table) {
		return apperr.UnknownTable("unknown table: %s.%s", schema, table)
	}
	b.schema = schema
	b.table = table
	return nil
}

// AddColumn appends col to the projection unless columns is already "*"
// (empty slice) or col is already present.
func (b *Builder) AddColumn(col string) {
	if len(b.columns) == 0 {
		return
	}
	for _, c := range b.columns {
		if c == col {
			return
		}
	}
	b.columns = append(b.columns, col)
}

// SetColumns replaces the projection list. An empty list means "*".
func (b *Builder) SetColumns(cols []string) { b.columns = cols }

// ParseCondition applies one request attribute to the builder. key "@order"
// and "@column" are directives rather than WHERE conditions; a key ending
// in "$" becomes a LIKE condition; an array value becomes an IN (...)
// condition; anything else becomes an equality condition.
func (b *Builder) ParseCondition(key string, value any) error {
	switch key {
	case "@order":
		order, ok := value.(string)
		if !ok {
			return apperr.BadRequest("@order must be a string")
		}
		b.order = order
		return nil
	case "@column":
		switch v := value.(type) {
		case string:
			b.SetColumns(splitAndTrim(v))
		case []any:
			cols := make([]string, 0, len(v))
			for _, c := range v {
				if s, ok := c.(string); ok {
					cols = append(cols, s)
				}
			}
			b.SetColumns(cols)
		default:
			return apperr.BadRequest("@column must be a string or array")
		}
		return nil
	}

	if strings.HasSuffix(key, "$") {
		field := strings.TrimSuffix(key, "$")
		s, ok := value.(string)
		if !ok {
			return apperr.BadRequest("%s: like condition requires a string value", key)
		}
		b.where = append(b.where, fmt.Sprintf("`%s` LIKE ?", field))
		b.params = append(b.params, s)
		return nil
	}

	switch v := value.(type) {
	case []any:
		if len(v) == 0 {
			b.where = append(b.where, "1 = 0")
			return nil
		}
		placeholders := make([]string, len(v))
		for i, item := range v {
			placeholders[i] = "?"
			b.params = append(b.params, item)
		}
		b.where = append(b.where, fmt.Sprintf("`%s` IN (%s)", key, strings.Join(placeholders, ", ")))
	default:
		b.where = append(b.where, fmt.Sprintf("`%s` = ?", key))
		b.params = append(b.params, value)
	}
	return nil
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// PageSize sets the pagination window for a list node: page index and page
// size (falling back to DefaultPageSize when size is nil/invalid). It also
// marks the node as a list node (singular = false), removing the implicit
// single-row cap.
func (b *Builder) PageSize(page, size any) {
	b.singular = false
	b.page = toInt(page, 0)
	b.limit = toInt(size, DefaultPageSize)
}

// Limit forces an explicit row cap, e.g. len(ids) when resolving a
// dependent node against a known set of parent values.
func (b *Builder) Limit(n int) {
	b.singular = false
	b.limit = n
}

func toInt(v any, fallback int) int {
	switch t := v.(type) {
	case int:
		return t
	case int64:
		return int(t)
	case float64:
		return int(t)
	case string:
		n, err := strconv.Atoi(t)
		if err != nil {
			return fallback
		}
		return n
	default:
		return fallback
	}
}

// ToSQL renders the SELECT statement and its bound parameters.
func (b *Builder) ToSQL() (string, []any) {
	cols := "*"
	if len(b.columns) > 0 {
		quoted := make([]string, len(b.columns))
		for i, c := range b.columns {
			quoted[i] = fmt.Sprintf("`%s`", c)
		}
		cols = strings.Join(quoted, ", ")
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s FROM `%s`.`%s`", cols, b.schema, b.table)
	if len(b.where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(b.where, " AND "))
	}
	if b.order != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(b.order)
	}
	if b.singular {
		sb.WriteString(" LIMIT 1")
	} else {
		limit := b.limit
		if limit <= 0 {
			limit = DefaultPageSize
		}
		fmt.Fprintf(&sb, " LIMIT %d OFFSET %d", limit, b.page*limit)
	}
	return sb.String(), b.params
}

// IsSingular reports whether this builder targets a single-row result.
func (b *Builder) IsSingular() bool { return b.singular }

// Table returns the resolved schema and table name.
func (b *Builder) Table() (schema, table string) { return b.schema, b.table }
