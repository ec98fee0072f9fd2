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

// Package planner parses a tree-shaped request body into a DAG of query
// nodes, classifies each as primary or dependent, and computes the layered,
// weighted execution order the executor walks.
package planner

import (
	"sort"
	"strings"

	"github.com/ideabase/dbgateway/internal/apperr"
)

// PrimaryWeight and RelatedUnit are the constants the weighting scheme in
// §4.4 is built from.
const (
	PrimaryWeight = 10000
	RelatedUnit   = 10
)

// Node is a single planned query against one table.
type Node struct {
	Name       string // the original request key, e.g. "timeline.Moment[]"
	Path       string // slash-joined path from the request root
	Schema     string
	Table      string
	IsList     bool
	Depth      int
	Attributes map[string]any // scalar, non-link, non-@ kv pairs
	Page       any
	Count      any

	// OutgoingLinks holds this node's own <field>@ entries: field name ->
	// the raw link target string ("<primaryPath>/<primaryField>").
	OutgoingLinks map[string]string

	Weight int
}

// IsPrimary reports whether the node has no outgoing link.
func (n *Node) IsPrimary() bool { return len(n.OutgoingLinks) == 0 }

// Namespace is a non-entity grouping container (a "…[]" key with no
// "schema.table" in it) carrying shared pagination attributes for its
// children.
type Namespace struct {
	Path       string
	Attributes map[string]any
}

// Plan is the fully parsed, weighted request.
type Plan struct {
	Nodes      map[string]*Node
	Namespaces map[string]*Namespace

	// PrimaryRelateKV[primaryPath][primaryField] = dependent field path
	// ("<dependentPath>/<dependentField>").
	PrimaryRelateKV map[string]map[string]string
	// SlaveRelateKV[dependentPath][dependentField] = primary field path
	// ("<primaryPath>/<primaryField>").
	SlaveRelateKV map[string]map[string]string

	// Order is the final execution order: layer (depth) ascending, weight
	// descending within a layer.
	Order []*Node
}

type rawLink struct {
	nodePath string
	field    string
	target   string
}

type parser struct {
	nodes      map[string]*Node
	namespaces map[string]*Namespace
	links      []rawLink
}

// Parse builds a Plan from a decoded JSON request body.
func Parse(body map[string]any) (*Plan, error) {
	p := &parser{
		nodes:      map[string]*Node{},
		namespaces: map[string]*Namespace{},
	}
	for key, value := range body {
		obj, ok := value.(map[string]any)
		if !ok {
			return nil, apperr.BadRequest("request key %q must be an object", key)
		}
		switch {
		case isEntityKey(key):
			if err := p.parseEntity(key, obj, "", 1); err != nil {
				return nil, err
			}
		case strings.HasSuffix(key, "[]"):
			if err := p.parseNamespace(key, obj, "", 2); err != nil {
				return nil, err
			}
		default:
			return nil, apperr.BadRequest("entity key %q must be schema.table", key)
		}
	}

	plan := &Plan{
		Nodes:           p.nodes,
		Namespaces:      p.namespaces,
		PrimaryRelateKV: map[string]map[string]string{},
		SlaveRelateKV:   map[string]map[string]string{},
	}
	if err := resolveLinks(plan, p.links); err != nil {
		return nil, err
	}
	computeWeights(plan)
	plan.Order = layerOrder(plan)
	return plan, nil
}

// isEntityKey reports whether key (after stripping a trailing "[]") has the
// "schema.table" shape that marks it as an entity rather than a grouping
// namespace.
func isEntityKey(key string) bool {
	bare := strings.TrimSuffix(key, "[]")
	return strings.Contains(bare, ".")
}

func joinPath(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "/" + key
}

func (p *parser) parseNamespace(key string, obj map[string]any, parentPath string, depth int) error {
	path := joinPath(parentPath, key)
	ns := &Namespace{Path: path, Attributes: map[string]any{}}

	for k, v := range obj {
		if child, ok := v.(map[string]any); ok {
			if isEntityKey(k) {
				if err := p.parseEntity(k, child, path, depth); err != nil {
					return err
				}
			} else {
				if err := p.parseNamespace(k, child, path, depth+1); err != nil {
					return err
				}
			}
			continue
		}
		ns.Attributes[k] = v
	}
	p.namespaces[path] = ns
	return nil
}

func (p *parser) parseEntity(key string, obj map[string]any, parentPath string, depth int) error {
	path := joinPath(parentPath, key)
	bare := strings.TrimSuffix(key, "[]")
	schema, table, ok := strings.Cut(bare, ".")
	if !ok {
		return apperr.BadRequest("entity key %q must be schema.table", key)
	}

	node := &Node{
		Name:          key,
		Path:          path,
		Schema:        schema,
		Table:         table,
		IsList:        strings.HasSuffix(parentPath, "[]") || strings.HasSuffix(key, "[]"),
		Depth:         depth,
		Attributes:    map[string]any{},
		OutgoingLinks: map[string]string{},
	}

	for k, v := range obj {
		if k == "page" || k == "count" {
			if k == "page" {
				node.Page = v
			} else {
				node.Count = v
			}
			continue
		}
		if strings.HasSuffix(k, "@") {
			field := strings.TrimSuffix(k, "@")
			target, ok := v.(string)
			if !ok {
				return apperr.BadRequest("%s: link target must be a string path", k)
			}
			p.links = append(p.links, rawLink{nodePath: path, field: field, target: target})
			if field == "id" {
				node.IsList = false
			}
			continue
		}
		if child, ok := v.(map[string]any); ok {
			if isEntityKey(k) {
				if err := p.parseEntity(k, child, path, depth+1); err != nil {
					return err
				}
			} else {
				if err := p.parseNamespace(k, child, path, depth+1); err != nil {
					return err
				}
			}
			continue
		}
		if k == "id" {
			node.IsList = false
		}
		node.Attributes[k] = v
	}

	p.nodes[path] = node
	return nil
}

func resolveLinks(plan *Plan, links []rawLink) error {
	for _, l := range links {
		node, ok := plan.Nodes[l.nodePath]
		if !ok {
			return apperr.UnresolvedLink("link source node not found: %s", l.nodePath)
		}
		idx := strings.LastIndex(l.target, "/")
		if idx < 0 {
			return apperr.UnresolvedLink("malformed link target: %s", l.target)
		}
		primaryPath, primaryField := l.target[:idx], l.target[idx+1:]
		if _, ok := plan.Nodes[primaryPath]; !ok {
			return apperr.UnresolvedLink("link target node not found: %s", primaryPath)
		}

		node.OutgoingLinks[l.field] = l.target

		if plan.SlaveRelateKV[l.nodePath] == nil {
			plan.SlaveRelateKV[l.nodePath] = map[string]string{}
		}
		plan.SlaveRelateKV[l.nodePath][l.field] = l.target

		if plan.PrimaryRelateKV[primaryPath] == nil {
			plan.PrimaryRelateKV[primaryPath] = map[string]string{}
		}
		plan.PrimaryRelateKV[primaryPath][primaryField] = l.nodePath + "/" + l.field
	}
	return nil
}

func computeWeights(plan *Plan) {
	count := map[string]int{}
	for primaryPath, fields := range plan.PrimaryRelateKV {
		count[primaryPath] = len(fields)
	}

	for path, node := range plan.Nodes {
		c := count[path]
		w := intPow(RelatedUnit, c)
		if node.IsPrimary() {
			w += PrimaryWeight
		}
		node.Weight = w
	}
}

func intPow(base, exp int) int {
	result := 1
	for i := 0; i < exp; i++ {
		result *= base
	}
	return result
}

func layerOrder(plan *Plan) []*Node {
	byDepth := map[int][]*Node{}
	var depths []int
	for _, node := range plan.Nodes {
		if _, ok := byDepth[node.Depth]; !ok {
			depths = append(depths, node.Depth)
		}
		byDepth[node.Depth] = append(byDepth[node.Depth], node)
	}
	sort.Ints(depths)

	var order []*Node
	for _, d := range depths {
		nodes := byDepth[d]
		sort.SliceStable(nodes, func(i, j int) bool { return nodes[i].Weight > nodes[j].Weight })
		order = append(order, nodes...)
	}
	return order
}
