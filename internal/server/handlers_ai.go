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
	"context"
	"net/http"

	"github.com/ideabase/dbgateway/internal/apperr"
	"github.com/ideabase/dbgateway/internal/vectoretl"
)

type recallRequest struct {
	Collection string `json:"collection"`
	Query      string `json:"query"`
	TopK       int    `json:"top_k"`
}

type conversationRequest struct {
	Collection string `json:"collection"`
	Message    string `json:"message"`
	TopK       int    `json:"top_k"`
}

// handleRecall serves POST /ai/rag/recall.json: embed the query text and
// return the nearest documents from the named collection.
func (h *handlers) handleRecall(w http.ResponseWriter, r *http.Request) {
	if h.deps.LLM == nil || h.deps.VectorStore == nil {
		writeError(w, r, apperr.ConfigError("vector search is not configured", nil))
		return
	}

	var req recallRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Collection == "" || req.Query == "" {
		writeError(w, r, apperr.BadRequest("collection and query are required"))
		return
	}
	if req.TopK <= 0 {
		req.TopK = 5
	}

	docs, err := h.recall(r.Context(), req.Collection, req.Query, req.TopK)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"documents": docs})
}

// handleConversation serves POST /ai/conversation.json: recall relevant
// documents (when a collection is named) and answer message grounded in
// them.
func (h *handlers) handleConversation(w http.ResponseWriter, r *http.Request) {
	if h.deps.LLM == nil {
		writeError(w, r, apperr.ConfigError("conversation is not configured", nil))
		return
	}

	var req conversationRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Message == "" {
		writeError(w, r, apperr.BadRequest("message is required"))
		return
	}
	if req.TopK <= 0 {
		req.TopK = 5
	}

	var contexts []string
	if req.Collection != "" && h.deps.VectorStore != nil {
		docs, err := h.recall(r.Context(), req.Collection, req.Message, req.TopK)
		if err != nil {
			writeError(w, r, err)
			return
		}
		for _, d := range docs {
			contexts = append(contexts, d.Content)
		}
	}

	answer, err := h.deps.LLM.Converse(r.Context(), req.Message, contexts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"answer": answer})
}

// recall embeds query and returns the topK nearest documents from
// collection, the shared logic behind both the recall and conversation
// endpoints.
func (h *handlers) recall(ctx context.Context, collection, query string, topK int) ([]vectoretl.Document, error) {
	embeddings, err := h.deps.LLM.Embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, apperr.VectorStoreError("embedding query produced no vector", nil)
	}
	return h.deps.VectorStore.Search(ctx, collection, embeddings[0], topK)
}
