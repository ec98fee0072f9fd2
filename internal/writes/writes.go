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

// Package writes implements the batch write handlers (C6): per-table-key
// insert/update/delete/count against a live, introspected schema.
package writes

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ideabase/dbgateway/internal/dbpool"
	"github.com/ideabase/dbgateway/internal/registry"
	"github.com/ideabase/dbgateway/internal/snowflake"
)

// Method is one of the four batch write operations.
type Method string

const (
	MethodPost   Method = "post"   // insert
	MethodPut    Method = "put"    // update
	MethodDelete Method = "delete" // delete
	MethodHead   Method = "head"   // count
)

// Result is the outcome of a batch write over a table-keyed body: Payload
// holds the per-key response, and BadRequest is set if any key failed,
// which the HTTP layer promotes to a 400 status.
type Result struct {
	Payload    map[string]any
	BadRequest bool
}

// Handle dispatches a table-keyed body to the given write method. Every key
// in body is processed independently; a per-key failure is recorded in the
// payload and promotes the result to BadRequest rather than aborting the
// whole batch.
func Handle(ctx context.Context, method Method, reg *registry.Registry, pool *dbpool.Pool, body map[string]any) (*Result, error) {
	result := &Result{Payload: map[string]any{}}

	keys := make([]string, 0, len(body))
	for k := range body {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		fields, ok := body[key].(map[string]any)
		if !ok {
			result.Payload[key] = "value must be an object"
			result.BadRequest = true
			continue
		}

		schema, table, ok := strings.Cut(key, ".")
		if !ok || schema == "" || table == "" {
			result.Payload[key] = fmt.Sprintf("%s's schema empty", key)
			result.BadRequest = true
			continue
		}
		if !reg.Exists(schema, table) {
			result.Payload[key] = fmt.Sprintf("unknown table: %s", key)
			result.BadRequest = true
			continue
		}

		var (
			value   any
			failMsg string
		)
		switch method {
		case MethodPost:
			value, failMsg = insertOne(ctx, pool, schema, table, fields)
		case MethodPut:
			value, failMsg = updateOne(ctx, pool, schema, table, fields)
		case MethodDelete:
			value, failMsg = deleteRows(ctx, pool, schema, table, fields)
		case MethodHead:
			value, failMsg = countRows(ctx, pool, schema, table, fields)
		default:
			failMsg = fmt.Sprintf("unknown method: %s", method)
		}

		if failMsg != "" {
			result.Payload[key] = failMsg
			result.BadRequest = true
			continue
		}
		result.Payload[key] = value
	}

	return result, nil
}

func insertOne(ctx context.Context, pool *dbpool.Pool, schema, table string, fields map[string]any) (any, string) {
	id := snowflake.NextID()

	cols := []string{"id"}
	vals := []string{fmt.Sprint(id)}
	for _, k := range sortedKeys(fields) {
		cols = append(cols, fmt.Sprintf("`%s`", k))
		vals = append(vals, sqlLiteral(fields[k]))
	}

	stmt := fmt.Sprintf("INSERT INTO `%s`.`%s`(%s) VALUES(%s)", schema, table,
		strings.Join(cols, ", "), strings.Join(vals, ", "))

	n, err := pool.Exec(ctx, stmt)
	if err != nil {
		return nil, err.Error()
	}
	if n == 0 {
		return int64(-1), ""
	}
	return id, ""
}

func updateOne(ctx context.Context, pool *dbpool.Pool, schema, table string, fields map[string]any) (any, string) {
	rawID, ok := fields["id"]
	if !ok {
		return nil, "data update must have 'id' field"
	}
	id, ok := asInt(rawID)
	if !ok {
		return nil, "'id' type is not num"
	}

	var sets []string
	for _, k := range sortedKeys(fields) {
		if k == "id" {
			continue
		}
		sets = append(sets, fmt.Sprintf("`%s`=%s", k, sqlLiteral(fields[k])))
	}
	if len(sets) == 0 {
		return id, ""
	}

	stmt := fmt.Sprintf("UPDATE `%s`.`%s` SET %s WHERE id=%d", schema, table, strings.Join(sets, ", "), id)
	n, err := pool.Exec(ctx, stmt)
	if err != nil {
		return nil, err.Error()
	}
	if n == 0 {
		return int64(-1), ""
	}
	return id, ""
}

func deleteRows(ctx context.Context, pool *dbpool.Pool, schema, table string, fields map[string]any) (any, string) {
	if arr, ok := fields["id{}"].([]any); ok {
		if len(arr) == 0 {
			return int64(0), ""
		}
		placeholders := make([]string, len(arr))
		args := make([]any, len(arr))
		for i, v := range arr {
			placeholders[i] = "?"
			args[i] = v
		}
		stmt := fmt.Sprintf("DELETE FROM `%s`.`%s` WHERE id IN (%s)", schema, table, strings.Join(placeholders, ", "))
		n, err := pool.Exec(ctx, stmt, args...)
		if err != nil {
			return nil, err.Error()
		}
		return n, ""
	}

	id, ok := asInt(fields["id"])
	if !ok {
		return nil, "'id' or 'id{}' field is required"
	}
	stmt := fmt.Sprintf("DELETE FROM `%s`.`%s` WHERE id=?", schema, table)
	n, err := pool.Exec(ctx, stmt, id)
	if err != nil {
		return nil, err.Error()
	}
	return n, ""
}

func countRows(ctx context.Context, pool *dbpool.Pool, schema, table string, fields map[string]any) (any, string) {
	var where []string
	var args []any
	for _, k := range sortedKeys(fields) {
		where = append(where, fmt.Sprintf("`%s`=?", k))
		args = append(args, fields[k])
	}

	stmt := fmt.Sprintf("SELECT count(1) FROM `%s`.`%s`", schema, table)
	if len(where) > 0 {
		stmt += " WHERE " + strings.Join(where, " AND ")
	}

	n, err := pool.Count(ctx, stmt, args...)
	if err != nil {
		return nil, err.Error()
	}
	return n, ""
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func asInt(v any) (int64, bool) {
	switch t := v.(type) {
	case int64:
		return t, true
	case int:
		return int64(t), true
	case float64:
		return int64(t), true
	default:
		return 0, false
	}
}

// sqlLiteral renders value as a SQL literal for string-interpolated write
// statements (§4.7, §9: write builders are not fully parameterized in the
// source this gateway follows). Strings are quoted with their single
// quotes doubled; this is not a substitute for parameterization and callers
// of these endpoints are expected to be trusted/authenticated.
func sqlLiteral(value any) string {
	switch v := value.(type) {
	case nil:
		return "NULL"
	case string:
		return "'" + strings.ReplaceAll(v, "'", "''") + "'"
	case bool:
		if v {
			return "1"
		}
		return "0"
	case map[string]any, []any:
		return sqlLiteral(fmt.Sprint(v))
	default:
		return fmt.Sprint(v)
	}
}
