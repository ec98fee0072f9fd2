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
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/ideabase/dbgateway/internal/dbpool"
	"github.com/ideabase/dbgateway/internal/log"
)

// Pipeline drives one collection's manifest through the main/sub-query
// scan, document assembly, chunking and vector-store write.
type Pipeline struct {
	Pool     *dbpool.Pool
	Store    Store
	Embedder Embedder
	Logger   log.Logger
	Splitter *TokenSplitter
}

// New returns a Pipeline with the default token splitter.
func New(pool *dbpool.Pool, store Store, embedder Embedder, logger log.Logger) *Pipeline {
	return &Pipeline{Pool: pool, Store: store, Embedder: embedder, Logger: logger, Splitter: NewTokenSplitter()}
}

// Reinit drops, recreates and fully reingests collection from cfg — the
// gateway's startup responsibility when a vector.json manifest names a
// collection (§4.8).
func (p *Pipeline) Reinit(ctx context.Context, collection string, cfg Config) error {
	if err := p.Store.DropCollection(ctx, collection); err != nil {
		return err
	}
	if err := p.Store.EnsureCollection(ctx, collection, 0); err != nil {
		return err
	}
	return p.Run(ctx, collection, cfg)
}

// Run executes the full paged ETL for one collection.
func (p *Pipeline) Run(ctx context.Context, collection string, cfg Config) error {
	cols, err := cfg.parseColumns()
	if err != nil {
		return err
	}

	selectCols := map[string]bool{}
	for _, c := range cols.normalCols {
		selectCols[c] = true
	}
	subPlaceholders := map[string][]string{} // subKey -> placeholder fields
	for _, key := range cols.subRefs {
		fields := placeholderFields(cfg.SubQueries[key].SQL)
		subPlaceholders[key] = fields
		for _, f := range fields {
			selectCols[f] = true
		}
	}

	selectColList := make([]string, 0, len(selectCols))
	for c := range selectCols {
		selectColList = append(selectColList, c)
	}

	total, err := p.Pool.Count(ctx, fmt.Sprintf("SELECT count(1) FROM `%s`.`%s`", cfg.Database, cfg.Table))
	if err != nil {
		return err
	}

	pages := int(math.Ceil(float64(total) / float64(PageSize)))
	for page := 0; page < pages; page++ {
		if err := p.runPage(ctx, collection, cfg, selectColList, subPlaceholders, cols, page); err != nil {
			p.Logger.ErrorContext(ctx, "vectoretl.page_failed", "collection", collection, "page", page, "err", err)
			continue
		}
	}
	return nil
}

func (p *Pipeline) runPage(ctx context.Context, collection string, cfg Config, selectCols []string, subPlaceholders map[string][]string, cols parsedColumns, page int) error {
	quoted := make([]string, len(selectCols))
	for i, c := range selectCols {
		quoted[i] = fmt.Sprintf("`%s`", c)
	}
	mainSQL := fmt.Sprintf("SELECT %s FROM `%s`.`%s` LIMIT %d OFFSET %d",
		strings.Join(quoted, ", "), cfg.Database, cfg.Table, PageSize, page*PageSize)

	mainRows, err := p.Pool.QueryList(ctx, mainSQL)
	if err != nil {
		return err
	}
	if len(mainRows) == 0 {
		return nil
	}

	// sub-query results, bucketed by "<subKey>/<field>/<value>"
	subBuckets := map[string][]dbpool.Row{}
	for _, key := range cols.subRefs {
		fields := subPlaceholders[key]
		values := map[string][]any{}
		for _, f := range fields {
			for _, row := range mainRows {
				values[f] = append(values[f], row[f])
			}
		}
		sql := substitutePlaceholders(cfg.SubQueries[key].SQL, values)
		rows, err := p.Pool.QueryList(ctx, sql)
		if err != nil {
			return err
		}
		for _, f := range fields {
			for _, row := range rows {
				bucketKey := fmt.Sprintf("%s/%s/%v", key, f, row[f])
				subBuckets[bucketKey] = append(subBuckets[bucketKey], row)
			}
		}
	}

	var docs []Document
	for _, row := range mainRows {
		var sections []string
		for _, key := range cols.subRefs {
			fields := subPlaceholders[key]
			if len(fields) == 0 {
				continue
			}
			bucketKey := fmt.Sprintf("%s/%s/%v", key, fields[0], row[fields[0]])
			rows := subBuckets[bucketKey]
			if len(rows) == 0 {
				continue
			}
			sections = append(sections, formatSubRows(cfg.SubQueries[key].Title, rows))
		}
		docs = append(docs, Document{
			Content:  buildContent(row, sections),
			Metadata: buildMetadata(row, cfg.Metadata, cfg.Table),
		})
	}

	var chunks []Document
	for _, doc := range docs {
		chunks = append(chunks, p.Splitter.Split(doc)...)
	}
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	embeddings, err := p.Embedder.Embed(ctx, texts)
	if err != nil {
		return err
	}

	embedded := make([]EmbeddedDocument, len(chunks))
	for i, c := range chunks {
		var vec []float32
		if i < len(embeddings) {
			vec = embeddings[i]
		}
		embedded[i] = EmbeddedDocument{Document: c, Embedding: vec}
	}

	return p.Store.AddDocuments(ctx, collection, embedded)
}
