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

// Package cmd implements the dbgateway CLI: a single `serve` command that
// loads configuration, introspects the schema and starts the HTTP server.
package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ideabase/dbgateway/internal/auth"
	"github.com/ideabase/dbgateway/internal/binlog"
	"github.com/ideabase/dbgateway/internal/config"
	"github.com/ideabase/dbgateway/internal/dbpool"
	"github.com/ideabase/dbgateway/internal/llm"
	"github.com/ideabase/dbgateway/internal/log"
	"github.com/ideabase/dbgateway/internal/registry"
	"github.com/ideabase/dbgateway/internal/server"
	"github.com/ideabase/dbgateway/internal/vectoretl"
	"github.com/ideabase/dbgateway/internal/vectorstore"
)

// Command is the root *cobra.Command, constructed fresh per invocation so
// tests can run Execute repeatedly against distinct flag sets.
type Command struct {
	*cobra.Command

	address       string
	port          int
	loggingFormat string
	logLevel      string
	profile       string
	ymlDir        string
}

// NewCommand builds the root command: running it loads configuration,
// introspects the schema and starts the HTTP server.
func NewCommand() *Command {
	c := &Command{}

	c.Command = &cobra.Command{
		Use:           "dbgateway",
		Short:         "dbgateway is a generic database-access gateway for MySQL",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	flags := c.Command.PersistentFlags()
	flags.StringVarP(&c.address, "address", "a", "0.0.0.0", "address the server listens on")
	flags.IntVarP(&c.port, "port", "p", 8080, "port the server listens on")
	flags.StringVar(&c.loggingFormat, "logging-format", "standard", "logging format: standard or json")
	flags.StringVar(&c.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	flags.StringVar(&c.profile, "profile", "", "config profile (overrides PROFILE env var)")
	flags.StringVar(&c.ymlDir, "yml-dir", "", "config directory (overrides YML_DIR env var)")

	c.Command.RunE = func(cmd *cobra.Command, args []string) error {
		return c.serve(cmd.Context())
	}

	return c
}

func (c *Command) serve(ctx context.Context) error {
	logger, err := log.NewLogger(c.loggingFormat, c.logLevel, os.Stdout, os.Stderr)
	if err != nil {
		return err
	}

	profile := c.profile
	if profile == "" {
		profile = os.Getenv("PROFILE")
	}
	ymlDir := c.ymlDir
	if ymlDir == "" {
		ymlDir = os.Getenv("YML_DIR")
	}

	cfg, err := config.Load(ymlDir, profile)
	if err != nil {
		return err
	}

	pool, err := dbpool.Open(cfg.MySQL.DSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	reg := registry.New()
	if err := reg.Load(ctx, pool); err != nil {
		return err
	}
	logger.InfoContext(ctx, "schema registry loaded", "schemas", reg.Databases())

	authSvc, err := auth.New(auth.Config{Secret: cfg.Auth.Secret, ExpiryHour: cfg.Auth.ExpiryHour}, pool)
	if err != nil {
		return err
	}

	deps := server.Deps{
		Logger:   logger,
		Registry: reg,
		Pool:     pool,
		Auth:     authSvc,
	}

	if cfg.LLM.APIKey != "" {
		llmClient, err := llm.New(ctx, llm.Config{
			APIKey:            cfg.LLM.APIKey,
			EmbeddingModel:    cfg.LLM.EmbeddingModel,
			ConversationModel: cfg.LLM.ConversationModel,
		})
		if err != nil {
			return err
		}
		deps.LLM = llmClient
	}

	if cfg.VectorStore.URL != "" {
		store, err := vectorstore.New(cfg.VectorStore.URL, cfg.VectorStore.APIKey)
		if err != nil {
			return err
		}
		deps.VectorStore = store
	}

	if cfg.Binlog.Enabled {
		sink := &logOnlySink{logger: logger}
		listener := binlog.New(binlog.Config{
			Addr:       cfg.Binlog.Addr,
			User:       cfg.Binlog.User,
			Password:   cfg.Binlog.Password,
			ServerID:   cfg.Binlog.ServerID,
			BinlogFile: cfg.Binlog.BinlogFile,
		}, sink, logger)
		go listener.Run(ctx)
	}

	if deps.LLM != nil && deps.VectorStore != nil {
		manifestDir := ymlDir
		if manifestDir == "" {
			manifestDir = "yaml"
		}
		entries, err := vectoretl.LoadManifest(filepath.Join(manifestDir, "vector.json"))
		if err != nil {
			// Vector ETL is a background task (§5): a bad manifest is logged,
			// not fatal to the HTTP server's startup.
			logger.ErrorContext(ctx, "vectoretl.manifest_failed", "err", err)
		}
		for collection, collectionEntries := range groupByCollection(entries) {
			pipeline := vectoretl.New(pool, deps.VectorStore, deps.LLM, logger)
			go runVectorETL(ctx, logger, pipeline, collection, collectionEntries)
		}
	}

	router := server.NewRouter(deps)
	addr := fmt.Sprintf("%s:%d", c.address, c.port)
	logger.InfoContext(ctx, "starting server", "address", addr)
	return http.ListenAndServe(addr, router)
}

// groupByCollection buckets manifest entries by their target collection,
// preserving each collection's first-seen source-type order.
func groupByCollection(entries []vectoretl.ManifestEntry) map[string][]vectoretl.ManifestEntry {
	out := map[string][]vectoretl.ManifestEntry{}
	for _, e := range entries {
		out[e.Collection] = append(out[e.Collection], e)
	}
	return out
}

// runVectorETL reinitializes collection (drop + recreate, via the first
// source type's config) then runs every remaining source type's ETL in
// turn against the now-initialized collection. Per §5, this is a
// background task: a failure is logged and does not reach the HTTP
// server's startup path.
func runVectorETL(ctx context.Context, logger log.Logger, pipeline *vectoretl.Pipeline, collection string, entries []vectoretl.ManifestEntry) {
	if err := pipeline.Reinit(ctx, collection, entries[0].Config); err != nil {
		logger.ErrorContext(ctx, "vectoretl.init_failed", "collection", collection, "source_type", entries[0].SourceType, "err", err)
		return
	}
	for _, entry := range entries[1:] {
		if err := pipeline.Run(ctx, collection, entry.Config); err != nil {
			logger.ErrorContext(ctx, "vectoretl.run_failed", "collection", collection, "source_type", entry.SourceType, "err", err)
		}
	}
}

// logOnlySink is the default CDC sink until a concrete downstream consumer
// is wired: it logs every row-change event at debug level.
type logOnlySink struct {
	logger log.Logger
}

func (s *logOnlySink) HandleEvent(ctx context.Context, ev binlog.Event) error {
	s.logger.DebugContext(ctx, "binlog.event", "kind", ev.Kind, "schema", ev.Schema, "table", ev.Table)
	return nil
}

// Execute runs the root command against the real process args/streams.
func Execute() error {
	return NewCommand().Command.Execute()
}
