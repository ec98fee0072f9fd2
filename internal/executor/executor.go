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

// Package executor drives a planned request (internal/planner) against the
// schema registry and connection pool, harvests referenced column values
// from primary rows into dependent filters, and assembles the nested JSON
// response.
package executor

import (
	"context"
	"fmt"
	"strings"

	"github.com/ideabase/dbgateway/internal/dbpool"
	"github.com/ideabase/dbgateway/internal/log"
	"github.com/ideabase/dbgateway/internal/planner"
	"github.com/ideabase/dbgateway/internal/querybuilder"
	"github.com/ideabase/dbgateway/internal/registry"
)

// Run parses body, executes every planned node in order and assembles the
// nested JSON response described in §4.5.
func Run(ctx context.Context, logger log.Logger, reg *registry.Registry, pool *dbpool.Pool, body map[string]any) (map[string]any, error) {
	plan, err := planner.Parse(body)
	if err != nil {
		return nil, err
	}

	state := &execState{
		primaryData:        map[string][]dbpool.Row{},
		relatedFieldValues: map[string]any{},
		slaveRelateData:    map[string]map[string][]dbpool.Row{},
	}
	for primaryPath, fields := range plan.PrimaryRelateKV {
		for field := range fields {
			state.relatedFieldValues[primaryPath+"/"+field] = nil
		}
	}

	for _, node := range plan.Order {
		if node.IsPrimary() {
			if err := state.runPrimary(ctx, logger, reg, pool, plan, node); err != nil {
				return nil, err
			}
		} else {
			if err := state.runDependent(ctx, logger, reg, pool, plan, node); err != nil {
				return nil, err
			}
		}
	}

	return state.assemble(plan), nil
}

type execState struct {
	primaryData        map[string][]dbpool.Row
	relatedFieldValues map[string]any // "<path>/<field>" -> captured value (scalar or []any)
	slaveRelateData    map[string]map[string][]dbpool.Row // nodePath -> "field/value" -> rows
}

func (s *execState) runPrimary(ctx context.Context, logger log.Logger, reg *registry.Registry, pool *dbpool.Pool, plan *planner.Plan, node *planner.Node) error {
	b := querybuilder.New()
	if err := b.ParseTable(reg, node.Schema, node.Table); err != nil {
		return err
	}
	for field := range plan.PrimaryRelateKV[node.Path] {
		b.AddColumn(field)
	}
	for key, value := range node.Attributes {
		if err := b.ParseCondition(key, value); err != nil {
			return err
		}
	}
	if node.IsList {
		page, count := namespacePageCount(plan, node.Path)
		b.PageSize(page, count)
	}

	sqlText, params := b.ToSQL()
	logger.DebugContext(ctx, "executor.primary", "path", node.Path, "sql", sqlText, "params", params)

	rows, err := pool.QueryList(ctx, sqlText, params...)
	if err != nil {
		return err
	}
	s.primaryData[node.Path] = rows

	for _, row := range rows {
		for field := range plan.PrimaryRelateKV[node.Path] {
			key := node.Path + "/" + field
			if node.IsList {
				arr, _ := s.relatedFieldValues[key].([]any)
				s.relatedFieldValues[key] = append(arr, row[field])
			} else {
				s.relatedFieldValues[key] = row[field]
			}
		}
	}
	return nil
}

func (s *execState) runDependent(ctx context.Context, logger log.Logger, reg *registry.Registry, pool *dbpool.Pool, plan *planner.Plan, node *planner.Node) error {
	b := querybuilder.New()
	if err := b.ParseTable(reg, node.Schema, node.Table); err != nil {
		return err
	}

	for field, primaryFieldPath := range plan.SlaveRelateKV[node.Path] {
		value, captured := s.relatedFieldValues[primaryFieldPath]
		if !captured || value == nil {
			return nil // referenced primary value absent: this node yields no rows
		}
		if arr, ok := value.([]any); ok {
			b.PageSize(0, len(arr))
			if err := b.ParseCondition(field, arr); err != nil {
				return err
			}
		} else {
			if err := b.ParseCondition(field, value); err != nil {
				return err
			}
		}
		b.AddColumn(field)
	}

	for key, value := range node.Attributes {
		if err := b.ParseCondition(key, value); err != nil {
			return err
		}
	}
	if node.IsList {
		page, count := namespacePageCount(plan, node.Path)
		b.PageSize(page, count)
	}

	sqlText, params := b.ToSQL()
	logger.DebugContext(ctx, "executor.dependent", "path", node.Path, "sql", sqlText, "params", params)

	rows, err := pool.QueryList(ctx, sqlText, params...)
	if err != nil {
		return err
	}

	bucket := s.slaveRelateData[node.Path]
	if bucket == nil {
		bucket = map[string][]dbpool.Row{}
		s.slaveRelateData[node.Path] = bucket
	}
	for field := range plan.SlaveRelateKV[node.Path] {
		for _, row := range rows {
			key := fmt.Sprintf("%s/%v", field, row[field])
			bucket[key] = append(bucket[key], row)
		}
	}
	return nil
}

// assemble walks every primary node and builds the nested response.
func (s *execState) assemble(plan *planner.Plan) map[string]any {
	response := map[string]any{}

	for _, node := range plan.Order {
		if !node.IsPrimary() {
			continue
		}
		namespace := parentPath(node.Path)
		rows := s.primaryData[node.Path]

		if node.IsList {
			arr := make([]any, 0, len(rows))
			for _, row := range rows {
				arr = append(arr, Compose(s.buildPrimaryFlat(plan, node, row, namespace)))
			}
			response[namespaceKey(node, namespace)] = arr
			continue
		}

		if len(rows) == 0 {
			continue
		}
		MergeInto(response, Compose(s.buildPrimaryFlat(plan, node, rows[0], namespace)))
	}

	return response
}

// namespaceKey is the response key a list primary's rows are collected
// under: the enclosing namespace's bare name, or the entity's own bare name
// if it is a root-level list with no wrapping namespace.
func namespaceKey(node *planner.Node, namespace string) string {
	if namespace == "" {
		return bareName(node.Name)
	}
	return bareName(lastSegment(namespace))
}

func (s *execState) buildPrimaryFlat(plan *planner.Plan, node *planner.Node, row dbpool.Row, namespace string) map[string]any {
	flat := map[string]any{bareName(node.Name): row}

	for primaryField, depFieldPath := range plan.PrimaryRelateKV[node.Path] {
		idx := strings.LastIndex(depFieldPath, "/")
		depPath, depField := depFieldPath[:idx], depFieldPath[idx+1:]
		depNode := plan.Nodes[depPath]
		if depNode == nil {
			continue
		}

		bucketKey := fmt.Sprintf("%s/%v", depField, row[primaryField])
		bucket := s.slaveRelateData[depPath][bucketKey]

		var value any
		if depNode.IsList {
			value = rowsToAny(bucket)
		} else if len(bucket) > 0 {
			value = bucket[0]
		}

		relPath := relativePath(depPath, namespace)
		flat[relPath] = value
	}
	return flat
}

// relativePath strips the namespace prefix (and its trailing slash) from
// path, producing the key relative to the primary's enclosing namespace.
func relativePath(path, namespace string) string {
	if namespace == "" {
		return path
	}
	return strings.TrimPrefix(path, namespace+"/")
}

// namespacePageCount resolves the page/count a list node adopts from its
// enclosing namespace (§4.5(3)), falling back to {0, DefaultPageSize} when
// the node has no wrapping namespace or the namespace left them unset.
func namespacePageCount(plan *planner.Plan, path string) (page, count any) {
	ns := plan.Namespaces[parentPath(path)]
	if ns == nil {
		return 0, querybuilder.DefaultPageSize
	}
	page, count = ns.Attributes["page"], ns.Attributes["count"]
	if page == nil {
		page = 0
	}
	if count == nil {
		count = querybuilder.DefaultPageSize
	}
	return page, count
}

func parentPath(path string) string {
	idx := strings.LastIndex(path, "/")
	if idx < 0 {
		return ""
	}
	return path[:idx]
}

func lastSegment(path string) string {
	idx := strings.LastIndex(path, "/")
	if idx < 0 {
		return path
	}
	return path[idx+1:]
}

func bareName(name string) string { return strings.TrimSuffix(name, "[]") }

func rowsToAny(rows []dbpool.Row) []any {
	out := make([]any, len(rows))
	for i, r := range rows {
		out[i] = r
	}
	return out
}
