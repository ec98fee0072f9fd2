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

// Package vectoretl implements the vector ETL pipeline (C7): a paginated
// main table scan drives placeholder-bound sub-queries, and the joined
// rows are flattened into text documents, chunked, and written to a vector
// index.
package vectoretl

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/ideabase/dbgateway/internal/apperr"
)

// PageSize is the main-scan page size (§4.8 step 2).
const PageSize = 1000

// SubQuery is one named `@<key>` sub-query in a collection's manifest.
type SubQuery struct {
	Title string `json:"title"`
	SQL   string `json:"sql"`
}

// Config is one collection/source_type entry of a vector.json manifest:
// {collection: {source_type: Config}}, grounded on the original's
// init_collection_documents/parse_main_query_params walk.
type Config struct {
	Database   string              `json:"database"`
	Table      string              `json:"table"`
	Column     string              `json:"column"`
	Metadata   map[string]string   `json:"metadata"` // main-row field -> output metadata key
	SubQueries map[string]SubQuery `json:"-"`        // key without the leading "@"
}

// UnmarshalJSON additionally lifts every `@<key>` entry in the object into
// SubQueries, the way the original's parse_columns/parse_sub_queries treats
// sub-query definitions as siblings of database/table/column rather than a
// nested field.
func (c *Config) UnmarshalJSON(data []byte) error {
	type plain struct {
		Database string            `json:"database"`
		Table    string            `json:"table"`
		Column   string            `json:"column"`
		Metadata map[string]string `json:"metadata"`
	}
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	c.Database, c.Table, c.Column, c.Metadata = p.Database, p.Table, p.Column, p.Metadata

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.SubQueries = map[string]SubQuery{}
	for key, val := range raw {
		if !strings.HasPrefix(key, "@") {
			continue
		}
		var sq SubQuery
		if err := json.Unmarshal(val, &sq); err != nil {
			return err
		}
		c.SubQueries[strings.TrimPrefix(key, "@")] = sq
	}
	return nil
}

// parsedColumns splits Column into plain column names and sub-query refs.
type parsedColumns struct {
	normalCols []string
	subRefs    []string // keys into Config.SubQueries
}

func (c *Config) parseColumns() (parsedColumns, error) {
	var out parsedColumns
	for _, token := range strings.Split(c.Column, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		if strings.HasPrefix(token, "@") {
			key := strings.TrimPrefix(token, "@")
			if _, ok := c.SubQueries[key]; !ok {
				return out, apperr.BadRequest("vector config: unknown sub-query reference @%s", key)
			}
			out.subRefs = append(out.subRefs, key)
			continue
		}
		out.normalCols = append(out.normalCols, token)
	}
	if c.Database == "" || c.Table == "" {
		return out, apperr.BadRequest("vector config: database and table are required")
	}
	return out, nil
}

var placeholderRe = regexp.MustCompile(`\?(\w+)`)

// placeholderFields returns the main-table field names referenced by sql's
// `?field` placeholders.
func placeholderFields(sql string) []string {
	matches := placeholderRe.FindAllStringSubmatch(sql, -1)
	seen := map[string]bool{}
	var out []string
	for _, m := range matches {
		if !seen[m[1]] {
			seen[m[1]] = true
			out = append(out, m[1])
		}
	}
	return out
}

// substitutePlaceholders textually replaces each `?field` in sql with the
// comma-joined, stringified values for that field (§4.8 step 4, and the
// Open Question in §9: this substitution is textual, not parameterized,
// and only primitive-typed fields are supported).
func substitutePlaceholders(sql string, values map[string][]any) string {
	return placeholderRe.ReplaceAllStringFunc(sql, func(match string) string {
		field := match[1:]
		vals, ok := values[field]
		if !ok {
			return match
		}
		parts := make([]string, len(vals))
		for i, v := range vals {
			parts[i] = stringifyPrimitive(v)
		}
		return strings.Join(parts, ",")
	})
}

func stringifyPrimitive(v any) string {
	switch t := v.(type) {
	case string:
		return "'" + strings.ReplaceAll(t, "'", "''") + "'"
	case nil:
		return "NULL"
	default:
		return toString(t)
	}
}
