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

// Package config loads the gateway's layered YAML configuration:
// yml_dir/application.yaml merged with yml_dir/application-<profile>.yaml,
// with ${VAR}/${VAR:default} environment substitution applied to every
// string value. Grounded on original_source/common/core/src/yaml.rs's
// PROFILE/YML_DIR layering, reworked from figment's Rust merge semantics
// into goccy/go-yaml's Go idiom.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/goccy/go-yaml"

	"github.com/ideabase/dbgateway/internal/apperr"
)

// MySQLConfig names the primary database connection.
type MySQLConfig struct {
	DSN string `yaml:"dsn"`
}

// VectorStoreConfig names the optional vector-store connection.
type VectorStoreConfig struct {
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key"`
}

// LLMConfig names the optional embedding/conversation model endpoint.
type LLMConfig struct {
	APIKey            string `yaml:"api_key"`
	EmbeddingModel    string `yaml:"embedding_model"`
	ConversationModel string `yaml:"conversation_model"`
}

// AuthConfig names JWT signing parameters.
type AuthConfig struct {
	Secret     string `yaml:"secret"`
	ExpiryHour int    `yaml:"expiry_hour"`
}

// BinlogConfig names the CDC listener's upstream connection, if enabled.
type BinlogConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Addr       string `yaml:"addr"`
	User       string `yaml:"user"`
	Password   string `yaml:"password"`
	ServerID   uint32 `yaml:"server_id"`
	BinlogFile string `yaml:"binlog_file"`
}

// Config is the gateway's fully parsed, env-substituted configuration.
type Config struct {
	MySQL       MySQLConfig       `yaml:"mysql"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	LLM         LLMConfig         `yaml:"llm"`
	Auth        AuthConfig        `yaml:"auth"`
	Binlog      BinlogConfig      `yaml:"binlog"`
}

// Load reads yml_dir/application.yaml and yml_dir/application-<profile>.yaml,
// merging the latter over the former, substitutes environment references in
// every scalar, and validates the required fields are present.
func Load(ymlDir, profile string) (*Config, error) {
	if ymlDir == "" {
		ymlDir = "yaml"
	}
	if profile == "" {
		profile = "dev"
	}

	merged := map[string]any{}
	mainPath := filepath.Join(ymlDir, "application.yaml")
	activePath := filepath.Join(ymlDir, fmt.Sprintf("application-%s.yaml", profile))

	if err := mergeYAMLFile(merged, mainPath); err != nil {
		return nil, err
	}
	if err := mergeYAMLFile(merged, activePath); err != nil {
		return nil, err
	}

	if err := substituteTree(merged); err != nil {
		return nil, apperr.ConfigError("substituting environment variables", err)
	}

	raw, err := yaml.Marshal(merged)
	if err != nil {
		return nil, apperr.ConfigError("re-marshaling merged config", err)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, apperr.ConfigError("parsing merged config", err)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func mergeYAMLFile(dst map[string]any, path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return apperr.ConfigError(fmt.Sprintf("reading %s", path), err)
	}
	var layer map[string]any
	if err := yaml.Unmarshal(data, &layer); err != nil {
		return apperr.ConfigError(fmt.Sprintf("parsing %s", path), err)
	}
	mergeMaps(dst, layer)
	return nil
}

// mergeMaps deep-merges src into dst, with src's scalars and maps taking
// precedence; src's map values merge recursively rather than replacing.
func mergeMaps(dst, src map[string]any) {
	for k, v := range src {
		if sub, ok := v.(map[string]any); ok {
			if existing, ok := dst[k].(map[string]any); ok {
				mergeMaps(existing, sub)
				continue
			}
		}
		dst[k] = v
	}
}

var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:([^}]*))?\}`)

// substituteTree walks a parsed YAML tree in place, substituting
// ${VAR}/${VAR:default} references in every string value. It returns the
// first error substituteEnv reports.
func substituteTree(node any) error {
	switch v := node.(type) {
	case map[string]any:
		for k, val := range v {
			if s, ok := val.(string); ok {
				replaced, err := substituteEnv(s)
				if err != nil {
					return err
				}
				v[k] = replaced
				continue
			}
			if err := substituteTree(val); err != nil {
				return err
			}
		}
	case []any:
		for i, val := range v {
			if s, ok := val.(string); ok {
				replaced, err := substituteEnv(s)
				if err != nil {
					return err
				}
				v[i] = replaced
				continue
			}
			if err := substituteTree(val); err != nil {
				return err
			}
		}
	}
	return nil
}

// substituteEnv expands ${VAR} and ${VAR:default} references within s.
// A reference with no default and no set environment variable is an error.
func substituteEnv(s string) (string, error) {
	var outerErr error
	result := envRef.ReplaceAllStringFunc(s, func(match string) string {
		groups := envRef.FindStringSubmatch(match)
		name := groups[1]
		hasDefault := groups[2] != ""
		def := groups[3]
		if val, ok := os.LookupEnv(name); ok {
			return val
		}
		if hasDefault {
			return def
		}
		outerErr = fmt.Errorf("environment variable not found: %q", name)
		return match
	})
	if outerErr != nil {
		return "", outerErr
	}
	return result, nil
}

func validate(cfg *Config) error {
	if cfg.MySQL.DSN == "" {
		return apperr.ConfigError("mysql.dsn is required", nil)
	}
	if cfg.Auth.Secret == "" {
		return apperr.ConfigError("auth.secret is required", nil)
	}
	if cfg.Auth.ExpiryHour <= 0 {
		return apperr.ConfigError("auth.expiry_hour is required", nil)
	}
	return nil
}
