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

import "context"

// Store is the vector index this pipeline writes to. The gateway's
// concrete implementation (internal/vectorstore) backs this with Redis's
// RediSearch vector commands.
type Store interface {
	// DropCollection removes a collection and its documents if present.
	DropCollection(ctx context.Context, collection string) error
	// EnsureCollection creates the collection if it doesn't already exist.
	EnsureCollection(ctx context.Context, collection string, dims int) error
	// AddDocuments writes a batch of embedded chunks to collection.
	AddDocuments(ctx context.Context, collection string, docs []EmbeddedDocument) error
	// Search returns the topK documents nearest to query in collection.
	Search(ctx context.Context, collection string, query []float32, topK int) ([]Document, error)
}

// Embedder turns text into vectors for storage and similarity search.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// EmbeddedDocument is a chunk ready to write to the store.
type EmbeddedDocument struct {
	Document
	Embedding []float32
}
