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

// Package registry is the process-wide, read-mostly catalog of databases,
// tables and columns, populated once at startup by introspecting
// information_schema the way a DBA tool would.
package registry

import (
	"context"
	"fmt"
	"sync"

	"github.com/ideabase/dbgateway/internal/apperr"
	"github.com/ideabase/dbgateway/internal/dbpool"
)

// systemSchemas are excluded from the catalog: they hold MySQL's own
// metadata, never application data a gateway request should touch.
var systemSchemas = map[string]bool{
	"information_schema": true,
	"mysql":               true,
	"performance_schema":  true,
	"sys":                 true,
}

// Column describes a single table column as reported by SHOW FULL COLUMNS.
type Column struct {
	Field   string
	Type    string
	Null    bool
	Key     string
	Default *string
	Extra   string
	Comment string
}

// Table describes a single base table.
type Table struct {
	Schema  string
	Name    string
	Comment string
	Columns map[string]*Column
}

// Database describes a single schema (database) and its tables.
type Database struct {
	Name   string
	Size   int64
	Tables map[string]*Table
}

// Registry is the process-wide schema catalog.
type Registry struct {
	mu sync.RWMutex
	db map[string]*Database
}

// New returns an empty registry. Call Load to populate it.
func New() *Registry {
	return &Registry{db: map[string]*Database{}}
}

// Load introspects pool and (re)populates the registry. It is intended to
// run once at startup; callers that want to pick up schema changes later
// call Load again and the registry swaps in the new catalog atomically.
func (r *Registry) Load(ctx context.Context, pool *dbpool.Pool) error {
	databases, err := loadDatabases(ctx, pool)
	if err != nil {
		return err
	}
	for schema, db := range databases {
		tables, err := loadTables(ctx, pool, schema)
		if err != nil {
			return err
		}
		db.Tables = tables
	}

	r.mu.Lock()
	r.db = databases
	r.mu.Unlock()
	return nil
}

func loadDatabases(ctx context.Context, pool *dbpool.Pool) (map[string]*Database, error) {
	rows, err := pool.QueryList(ctx, `
		SELECT table_schema AS schema_name, SUM(data_length + index_length) AS size
		FROM information_schema.tables
		GROUP BY table_schema`)
	if err != nil {
		return nil, err
	}

	out := map[string]*Database{}
	for _, row := range rows {
		name, _ := row["schema_name"].(string)
		if name == "" || systemSchemas[name] {
			continue
		}
		var size int64
		switch v := row["size"].(type) {
		case int64:
			size = v
		case string:
			fmt.Sscanf(v, "%d", &size)
		case []byte:
			fmt.Sscanf(string(v), "%d", &size)
		}
		out[name] = &Database{Name: name, Size: size, Tables: map[string]*Table{}}
	}
	return out, nil
}

func loadTables(ctx context.Context, pool *dbpool.Pool, schema string) (map[string]*Table, error) {
	rows, err := pool.QueryList(ctx, `
		SELECT table_name, table_comment
		FROM information_schema.tables
		WHERE table_schema = ? AND table_type = 'BASE TABLE'`, schema)
	if err != nil {
		return nil, err
	}

	out := map[string]*Table{}
	for _, row := range rows {
		name, _ := row["TABLE_NAME"].(string)
		if name == "" {
			name, _ = row["table_name"].(string)
		}
		comment, _ := row["TABLE_COMMENT"].(string)
		if comment == "" {
			comment, _ = row["table_comment"].(string)
		}
		cols, err := loadColumns(ctx, pool, schema, name)
		if err != nil {
			return nil, err
		}
		out[name] = &Table{Schema: schema, Name: name, Comment: comment, Columns: cols}
	}
	return out, nil
}

func loadColumns(ctx context.Context, pool *dbpool.Pool, schema, table string) (map[string]*Column, error) {
	rows, err := pool.QueryList(ctx, fmt.Sprintf("SHOW FULL COLUMNS FROM `%s`.`%s`", schema, table))
	if err != nil {
		return nil, err
	}

	out := map[string]*Column{}
	for _, row := range rows {
		field, _ := row["Field"].(string)
		typ, _ := row["Type"].(string)
		nullStr, _ := row["Null"].(string)
		key, _ := row["Key"].(string)
		extra, _ := row["Extra"].(string)
		comment, _ := row["Comment"].(string)
		var def *string
		if v, ok := row["Default"].(string); ok {
			def = &v
		}
		out[field] = &Column{
			Field:   field,
			Type:    typ,
			Null:    nullStr == "YES",
			Key:     key,
			Default: def,
			Extra:   extra,
			Comment: comment,
		}
	}
	return out, nil
}

// Exists reports whether schema.table is a known base table.
func (r *Registry) Exists(schema, table string) bool {
	_, _, ok := r.Lookup(schema, table)
	return ok
}

// Lookup returns the Database and Table for schema.table.
func (r *Registry) Lookup(schema, table string) (*Database, *Table, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	db, ok := r.db[schema]
	if !ok {
		return nil, nil, false
	}
	tbl, ok := db.Tables[table]
	if !ok {
		return db, nil, false
	}
	return db, tbl, true
}

// Tables returns the name of every table known in schema.
func (r *Registry) Tables(schema string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	db, ok := r.db[schema]
	if !ok {
		return nil, apperr.UnknownTable("unknown schema: %s", schema)
	}
	names := make([]string, 0, len(db.Tables))
	for name := range db.Tables {
		names = append(names, name)
	}
	return names, nil
}

// Databases returns every known schema name.
func (r *Registry) Databases() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.db))
	for name := range r.db {
		names = append(names, name)
	}
	return names
}
