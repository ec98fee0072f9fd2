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
	"encoding/json"
	"os"

	"github.com/ideabase/dbgateway/internal/apperr"
)

// ManifestEntry is one collection/source_type pair read from a vector.json
// manifest.
type ManifestEntry struct {
	Collection string
	SourceType string
	Config     Config
}

// LoadManifest reads and parses the vector.json manifest at path: a JSON
// object of {collection: {source_type: config}}, mirroring the original's
// load_env_json("vector.json") walk in init_vector_db. A missing file is
// not an error — the ETL pipeline is entirely optional (§5, §6).
func LoadManifest(path string) ([]ManifestEntry, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.ConfigError("reading vector manifest", err)
	}

	var raw map[string]map[string]Config
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, apperr.ConfigError("parsing vector manifest", err)
	}

	var entries []ManifestEntry
	for collection, sources := range raw {
		for sourceType, cfg := range sources {
			entries = append(entries, ManifestEntry{Collection: collection, SourceType: sourceType, Config: cfg})
		}
	}
	return entries, nil
}
