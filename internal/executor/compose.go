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

package executor

import (
	"sort"
	"strings"
)

// Compose turns a flat map whose keys are slash-delimited paths (segments
// may end "[]" to denote an array level) into a nested object. It is the
// only shape-transforming step in response assembly (§4.6) and is
// idempotent: a map with no slash-delimited keys passes through unchanged.
func Compose(flat map[string]any) map[string]any {
	out := map[string]any{}
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		insertPath(out, strings.Split(key, "/"), flat[key])
	}
	return out
}

func insertPath(out map[string]any, segments []string, value any) {
	seg := segments[0]
	bare := strings.TrimSuffix(seg, "[]")
	isArray := strings.HasSuffix(seg, "[]")
	rest := segments[1:]

	if len(rest) == 0 {
		if isArray {
			out[bare] = append(asArray(out[bare]), asArray(value)...)
			return
		}
		out[bare] = value
		return
	}

	if isArray {
		items := value
		arr, ok := value.([]any)
		if !ok {
			arr = []any{items}
		}
		existing := asArray(out[bare])
		for _, item := range arr {
			existing = append(existing, wrapSegments(rest, item))
		}
		out[bare] = existing
		return
	}

	child, ok := out[bare].(map[string]any)
	if !ok {
		child = map[string]any{}
	}
	insertPath(child, rest, value)
	out[bare] = child
}

// wrapSegments builds, from the leaf outward, the nested structure implied
// by the remaining path segments around a single array element.
func wrapSegments(segments []string, leaf any) any {
	if len(segments) == 0 {
		return leaf
	}
	seg := segments[0]
	bare := strings.TrimSuffix(seg, "[]")
	inner := wrapSegments(segments[1:], leaf)
	if strings.HasSuffix(seg, "[]") {
		inner = []any{inner}
	}
	return map[string]any{bare: inner}
}

func asArray(v any) []any {
	if v == nil {
		return nil
	}
	if arr, ok := v.([]any); ok {
		return arr
	}
	return []any{v}
}

// MergeInto copies every key of src into dst, overwriting on collision.
func MergeInto(dst, src map[string]any) {
	for k, v := range src {
		dst[k] = v
	}
}
