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

// Package server wires the gateway's HTTP surface (§6): the generic
// rest.json query/write endpoints, the schema introspection endpoints, the
// AI conversation/recall endpoints and account management, on a chi router.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"

	"github.com/ideabase/dbgateway/internal/auth"
	"github.com/ideabase/dbgateway/internal/dbpool"
	"github.com/ideabase/dbgateway/internal/llm"
	"github.com/ideabase/dbgateway/internal/log"
	"github.com/ideabase/dbgateway/internal/registry"
	"github.com/ideabase/dbgateway/internal/vectoretl"
)

// Deps collects the collaborators the HTTP layer dispatches to.
type Deps struct {
	Logger      log.Logger
	Registry    *registry.Registry
	Pool        *dbpool.Pool
	Auth        *auth.Service
	LLM         *llm.Client // nil when no LLM config is configured
	VectorStore vectoretl.Store
}

// NewRouter builds the full /api/v1 router.
func NewRouter(deps Deps) chi.Router {
	r := chi.NewRouter()

	level, _ := log.SeverityToLevel("info")
	httpLogger := httplog.NewLogger("dbgateway", httplog.Options{
		LogLevel: level,
		JSON:     true,
	})
	r.Use(httplog.RequestLogger(httpLogger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "HEAD", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, req, http.StatusOK, map[string]any{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		h := &handlers{deps: deps}

		r.Post("/rest/{method}.json", h.handleRest)
		r.Get("/rest/{schema}/tables.json", h.handleListTables)
		r.Get("/rest/{schema}/{table}.json", h.handleTableMeta)

		r.Post("/ai/conversation.json", h.handleConversation)
		r.Post("/ai/rag/recall.json", h.handleRecall)

		r.Post("/auth/logon.json", h.handleLogon)
		r.Post("/auth/account.json", h.handleCreateAccount)
		r.Post("/auth/account/api-key.json", h.handleIssueAPIKey)
	})

	return r
}
