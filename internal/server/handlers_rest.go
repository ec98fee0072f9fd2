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

package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ideabase/dbgateway/internal/apperr"
	"github.com/ideabase/dbgateway/internal/executor"
	"github.com/ideabase/dbgateway/internal/writes"
)

type handlers struct {
	deps Deps
}

// handleRest is the generic tree-shaped query/write endpoint: POST
// /rest/{method}.json where method selects get/post/put/delete/head (§6).
func (h *handlers) handleRest(w http.ResponseWriter, r *http.Request) {
	method := chi.URLParam(r, "method")

	var body map[string]any
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	switch method {
	case "get":
		result, err := executor.Run(r.Context(), h.deps.Logger, h.deps.Registry, h.deps.Pool, body)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, result)
	case "post", "put", "delete", "head":
		result, err := writes.Handle(r.Context(), writes.Method(method), h.deps.Registry, h.deps.Pool, body)
		if err != nil {
			writeError(w, r, err)
			return
		}
		status := http.StatusOK
		if result.BadRequest {
			status = http.StatusBadRequest
		}
		writeJSON(w, r, status, result.Payload)
	default:
		writeError(w, r, apperr.BadRequest("unknown rest method: %s", method))
	}
}

// handleListTables serves GET /rest/{schema}/tables.json.
func (h *handlers) handleListTables(w http.ResponseWriter, r *http.Request) {
	schema := chi.URLParam(r, "schema")
	names, err := h.deps.Registry.Tables(schema)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"tables": names})
}

// handleTableMeta serves GET /rest/{schema}/{table}.json: the catalog
// Table entity (name, comment, columns), not a data query — matching the
// original's get_table_meta.
func (h *handlers) handleTableMeta(w http.ResponseWriter, r *http.Request) {
	schema := chi.URLParam(r, "schema")
	table := chi.URLParam(r, "table")

	_, tbl, ok := h.deps.Registry.Lookup(schema, table)
	if !ok {
		writeError(w, r, apperr.UnknownTable("table not found"))
		return
	}
	writeJSON(w, r, http.StatusOK, tbl)
}
