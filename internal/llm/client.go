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

// Package llm wraps the embedding and chat-completion calls the RAG/ETL
// boundary invokes. Per spec §1, only the operations invoked are in scope
// here — not a general client.
package llm

import (
	"context"

	"google.golang.org/genai"

	"github.com/ideabase/dbgateway/internal/apperr"
)

// Config names the embedding and conversation models this gateway talks to.
type Config struct {
	APIKey            string
	EmbeddingModel    string
	ConversationModel string
}

// Client wraps a genai client for the two operations the gateway needs:
// embedding text for the vector store, and answering a conversational
// prompt grounded in recalled documents.
type Client struct {
	cfg Config
	gc  *genai.Client
}

// New constructs a Client. cfg.APIKey must be non-empty; callers should
// only construct a Client when the optional LLM configuration is present.
func New(ctx context.Context, cfg Config) (*Client, error) {
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return nil, apperr.ConfigError("constructing genai client", err)
	}
	return &Client{cfg: cfg, gc: gc}, nil
}

// Embed embeds a batch of texts using cfg.EmbeddingModel.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	contents := make([]*genai.Content, len(texts))
	for i, t := range texts {
		contents[i] = genai.NewContentFromText(t, genai.RoleUser)
	}

	resp, err := c.gc.Models.EmbedContent(ctx, c.cfg.EmbeddingModel, contents, nil)
	if err != nil {
		return nil, apperr.VectorStoreError("embedding texts", err)
	}

	out := make([][]float32, len(resp.Embeddings))
	for i, e := range resp.Embeddings {
		out[i] = e.Values
	}
	return out, nil
}

// Converse answers message, grounded by the recalled document contents.
func (c *Client) Converse(ctx context.Context, message string, recalled []string) (string, error) {
	prompt := message
	for _, doc := range recalled {
		prompt += "\n\ncontext: " + doc
	}

	resp, err := c.gc.Models.GenerateContent(ctx, c.cfg.ConversationModel,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}, nil)
	if err != nil {
		return "", apperr.VectorStoreError("generating conversation response", err)
	}
	return resp.Text(), nil
}
