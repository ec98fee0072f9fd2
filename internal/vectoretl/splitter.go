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

import "strings"

// DefaultChunkTokens and DefaultChunkOverlap are the token splitter's
// defaults (§4.8 step 6).
const (
	DefaultChunkTokens  = 512
	DefaultChunkOverlap = 20
)

// TokenSplitter splits a document's content into overlapping chunks by
// whitespace-delimited token count. Any deterministic splitter honoring
// the same non-empty-chunk, metadata-preserving contract is a conforming
// substitute (§4.8 step 6 is explicitly pluggable).
type TokenSplitter struct {
	ChunkTokens int
	Overlap     int
}

// NewTokenSplitter returns a splitter with the pipeline's defaults.
func NewTokenSplitter() *TokenSplitter {
	return &TokenSplitter{ChunkTokens: DefaultChunkTokens, Overlap: DefaultChunkOverlap}
}

// Split breaks doc's content into chunk documents, each carrying a copy of
// the original metadata.
func (s *TokenSplitter) Split(doc Document) []Document {
	tokens := strings.Fields(doc.Content)
	if len(tokens) == 0 {
		return nil
	}

	step := s.ChunkTokens - s.Overlap
	if step <= 0 {
		step = s.ChunkTokens
	}

	var out []Document
	for start := 0; start < len(tokens); start += step {
		end := start + s.ChunkTokens
		if end > len(tokens) {
			end = len(tokens)
		}
		meta := make(map[string]any, len(doc.Metadata))
		for k, v := range doc.Metadata {
			meta[k] = v
		}
		out = append(out, Document{Content: strings.Join(tokens[start:end], " "), Metadata: meta})
		if end == len(tokens) {
			break
		}
	}
	return out
}
