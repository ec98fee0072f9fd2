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

// Package vectorstore backs the ETL pipeline's Store interface with a
// Redis instance running RediSearch, using FT.* commands through a
// go-redis client built from the configured URL with go-redis's default
// options.
package vectorstore

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/ideabase/dbgateway/internal/apperr"
	"github.com/ideabase/dbgateway/internal/vectoretl"
)

// Store is a RediSearch-backed vectoretl.Store.
type Store struct {
	client *redis.Client
}

// New connects to a Redis/RediSearch endpoint at url, authenticating with
// apiKey as the password when set.
func New(url, apiKey string) (*Store, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, apperr.ConfigError("parsing vector store url", err)
	}
	if apiKey != "" {
		opts.Password = apiKey
	}
	return &Store{client: redis.NewClient(opts)}, nil
}

func indexName(collection string) string { return "idx:" + collection }
func keyPrefix(collection string) string { return "doc:" + collection + ":" }

// DropCollection deletes the RediSearch index and its documents if present.
func (s *Store) DropCollection(ctx context.Context, collection string) error {
	err := s.client.Do(ctx, "FT.DROPINDEX", indexName(collection), "DD").Err()
	if err != nil && !isUnknownIndex(err) {
		return apperr.VectorStoreError("dropping collection", err)
	}
	return nil
}

// EnsureCollection creates a RediSearch index over hash documents with a
// flat-indexed float32 vector field, if it doesn't already exist.
func (s *Store) EnsureCollection(ctx context.Context, collection string, dims int) error {
	if dims <= 0 {
		dims = 1536
	}
	err := s.client.Do(ctx, "FT.CREATE", indexName(collection),
		"ON", "HASH", "PREFIX", "1", keyPrefix(collection),
		"SCHEMA",
		"content", "TEXT",
		"metadata", "TEXT",
		"embedding", "VECTOR", "FLAT", "6",
		"TYPE", "FLOAT32", "DIM", dims, "DISTANCE_METRIC", "COSINE",
	).Err()
	if err != nil && !isIndexExists(err) {
		return apperr.VectorStoreError("creating collection", err)
	}
	return nil
}

// AddDocuments writes a batch of embedded chunks as RediSearch hash docs.
func (s *Store) AddDocuments(ctx context.Context, collection string, docs []vectoretl.EmbeddedDocument) error {
	pipe := s.client.Pipeline()
	for i, doc := range docs {
		meta, err := json.Marshal(doc.Metadata)
		if err != nil {
			return apperr.VectorStoreError("marshaling metadata", err)
		}
		key := fmt.Sprintf("%s%d:%d", keyPrefix(collection), i, len(doc.Content))
		pipe.HSet(ctx, key, map[string]any{
			"content":   doc.Content,
			"metadata":  string(meta),
			"embedding": encodeVector(doc.Embedding),
		})
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return apperr.VectorStoreError("writing documents", err)
	}
	return nil
}

// Search runs a RediSearch KNN vector query and decodes the topK nearest
// documents.
func (s *Store) Search(ctx context.Context, collection string, query []float32, topK int) ([]vectoretl.Document, error) {
	res, err := s.client.Do(ctx, "FT.SEARCH", indexName(collection),
		fmt.Sprintf("*=>[KNN %d @embedding $vec AS score]", topK),
		"PARAMS", "2", "vec", encodeVector(query),
		"SORTBY", "score",
		"DIALECT", "2",
	).Slice()
	if err != nil {
		return nil, apperr.VectorStoreError("searching collection", err)
	}
	return decodeSearchResults(res), nil
}

func decodeSearchResults(raw []any) []vectoretl.Document {
	var docs []vectoretl.Document
	for _, item := range raw {
		fields, ok := item.([]any)
		if !ok {
			continue
		}
		doc := vectoretl.Document{Metadata: map[string]any{}}
		for i := 0; i+1 < len(fields); i += 2 {
			key, _ := fields[i].(string)
			val, _ := fields[i+1].(string)
			switch key {
			case "content":
				doc.Content = val
			case "metadata":
				_ = json.Unmarshal([]byte(val), &doc.Metadata)
			}
		}
		if doc.Content != "" {
			docs = append(docs, doc)
		}
	}
	return docs
}

func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func isIndexExists(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "index already exists")
}

func isUnknownIndex(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "unknown index name")
}
