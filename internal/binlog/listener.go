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

// Package binlog implements the CDC listener (C8): a supervised task that
// reads MySQL's binlog in replica protocol and forwards row-change events
// to a sink, reconnecting on failure.
package binlog

import (
	"context"
	"time"

	"github.com/go-mysql-org/go-mysql/canal"
	"github.com/go-mysql-org/go-mysql/replication"

	"github.com/ideabase/dbgateway/internal/log"
)

// ReconnectBackoff is the fixed delay between a read failure and the next
// connection attempt (§4.9, S6).
const ReconnectBackoff = 5 * time.Second

// EventKind classifies a row-change event.
type EventKind string

const (
	EventInsert EventKind = "insert"
	EventUpdate EventKind = "update"
	EventDelete EventKind = "delete"
)

// Event is one semantic row-change event forwarded to a Sink.
type Event struct {
	Kind   EventKind
	Schema string
	Table  string
	Before map[string]any // set for Update only
	After  map[string]any // set for Insert and Update; holds the deleted row for Delete
}

// Sink receives decoded row-change events.
type Sink interface {
	HandleEvent(ctx context.Context, ev Event) error
}

// Config configures the listener's connection to the upstream server.
type Config struct {
	Addr            string
	User            string
	Password        string
	ServerID        uint32
	BinlogFile      string
	HeartbeatPeriod time.Duration
}

// Listener is a supervised binlog reader. Run blocks, reconnecting after
// ReconnectBackoff on any read error, until ctx is cancelled.
type Listener struct {
	cfg    Config
	sink   Sink
	logger log.Logger
}

// New returns a Listener for cfg, forwarding decoded events to sink.
func New(cfg Config, sink Sink, logger log.Logger) *Listener {
	if cfg.HeartbeatPeriod == 0 {
		cfg.HeartbeatPeriod = 10 * time.Second
	}
	return &Listener{cfg: cfg, sink: sink, logger: logger}
}

// Run is the listener's supervised loop. It is a leaf collaborator: callers
// run it in its own goroutine and it never blocks the HTTP server.
func (l *Listener) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		if err := l.runOnce(ctx); err != nil {
			l.logger.ErrorContext(ctx, "binlog.read_failed", "err", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(ReconnectBackoff):
		}
	}
}

func (l *Listener) runOnce(ctx context.Context) error {
	c, err := newCanal(l.cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	handler := &eventHandler{listener: l, ctx: ctx}
	c.SetEventHandler(handler)

	pos := replication.Position{Name: l.cfg.BinlogFile}
	return c.RunFrom(pos)
}

func newCanal(cfg Config) (*canal.Canal, error) {
	canalCfg := canal.NewDefaultConfig()
	canalCfg.Addr = cfg.Addr
	canalCfg.User = cfg.User
	canalCfg.Password = cfg.Password
	canalCfg.ServerID = cfg.ServerID
	canalCfg.HeartbeatPeriod = cfg.HeartbeatPeriod
	canalCfg.Dump.ExecutionPath = "" // skip initial dump: this is a tailing listener, not a snapshot loader
	return canal.NewCanal(canalCfg)
}

// eventHandler adapts go-mysql's canal callbacks to this package's Sink.
type eventHandler struct {
	canal.DummyEventHandler
	listener *Listener
	ctx      context.Context
}

func (h *eventHandler) OnRow(e *canal.RowsEvent) error {
	switch e.Action {
	case canal.InsertAction:
		for _, row := range e.Rows {
			h.emit(Event{Kind: EventInsert, Schema: e.Table.Schema, Table: e.Table.Name, After: rowToMap(e.Table, row)})
		}
	case canal.UpdateAction:
		for i := 0; i+1 < len(e.Rows); i += 2 {
			h.emit(Event{
				Kind:   EventUpdate,
				Schema: e.Table.Schema,
				Table:  e.Table.Name,
				Before: rowToMap(e.Table, e.Rows[i]),
				After:  rowToMap(e.Table, e.Rows[i+1]),
			})
		}
	case canal.DeleteAction:
		for _, row := range e.Rows {
			h.emit(Event{Kind: EventDelete, Schema: e.Table.Schema, Table: e.Table.Name, After: rowToMap(e.Table, row)})
		}
	}
	return nil
}

func (h *eventHandler) emit(ev Event) {
	if err := h.listener.sink.HandleEvent(h.ctx, ev); err != nil {
		h.listener.logger.ErrorContext(h.ctx, "binlog.sink_failed", "err", err, "table", ev.Table)
	}
}

func rowToMap(table *canal.Table, row []any) map[string]any {
	m := make(map[string]any, len(table.Columns))
	for i, col := range table.Columns {
		if i < len(row) {
			m[col.Name] = row[i]
		}
	}
	return m
}
