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

package vectoretl

import (
	"sort"
	"strings"

	"github.com/ideabase/dbgateway/internal/dbpool"
)

// Document is one chunked, embeddable unit written to the vector index.
type Document struct {
	Content  string
	Metadata map[string]any
}

// formatRow renders row as newline-separated "key: value" pairs (§4.8 step
// 5), sorted by key for determinism.
func formatRow(row dbpool.Row) string {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(toString(row[k]))
	}
	return b.String()
}

// formatSubRows renders the sub-query rows correlated with one main row as
// "title:\n - k: v k: v...\n - ..." — fields within one sub-row are
// space-joined, sub-rows are newline-joined.
func formatSubRows(title string, rows []dbpool.Row) string {
	var b strings.Builder
	b.WriteString(title)
	b.WriteString(":\n")
	for i, row := range rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(" - ")
		keys := make([]string, 0, len(row))
		for k := range row {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for j, k := range keys {
			if j > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(k)
			b.WriteString(": ")
			b.WriteString(toString(row[k]))
		}
	}
	return b.String()
}

// buildContent assembles one main row's full document body: the row
// itself, followed by one section per sub-query that has correlated rows.
func buildContent(row dbpool.Row, subSections []string) string {
	parts := []string{formatRow(row)}
	parts = append(parts, subSections...)
	return strings.Join(parts, "\n\n")
}

// buildMetadata maps the configured main-row fields onto their output
// metadata keys and tags the document with its source type.
func buildMetadata(row dbpool.Row, fieldToKey map[string]string, srcType string) map[string]any {
	meta := map[string]any{"src_type": srcType}
	for field, key := range fieldToKey {
		meta[key] = row[field]
	}
	return meta
}
