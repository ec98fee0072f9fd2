// Package snowflake generates monotonically increasing 64-bit ids in the
// shape the original service used: a custom epoch, a fixed machine id and a
// fixed node id, a millisecond timestamp and a per-millisecond sequence.
//
// No library in the retrieval pack implements this exact epoch/field
// layout (the closest name match, snowflakedb/gosnowflake, is a MySQL
// wire-protocol driver for the Snowflake data warehouse, unrelated to id
// generation), so this is a small hand-rolled generator. See DESIGN.md.
package snowflake

import (
	"sync"
	"time"
)

const (
	epochMillis    = 1420070400000 // 2015-01-01T00:00:00Z
	machineIDBits  = 5
	nodeIDBits     = 5
	sequenceBits   = 12
	maxSequence    = 1<<sequenceBits - 1
	machineIDShift = sequenceBits
	nodeIDShift    = sequenceBits + machineIDBits
	timeShift      = sequenceBits + machineIDBits + nodeIDBits
)

// Generator produces Snowflake-style ids for a fixed machine/node pair.
type Generator struct {
	mu        sync.Mutex
	machineID int64
	nodeID    int64
	lastMilli int64
	sequence  int64
	nowMilli  func() int64
}

// New returns a Generator for the given machine and node id (each must fit
// in 5 bits, i.e. 0-31).
func New(machineID, nodeID int64) *Generator {
	return &Generator{
		machineID: machineID & 0x1F,
		nodeID:    nodeID & 0x1F,
		nowMilli:  func() int64 { return time.Now().UnixMilli() },
	}
}

// Default is the process-wide generator, matching the original's
// machine-id 1 / node-id 1.
var Default = New(1, 1)

// NextID returns the process-wide generator's next id.
func NextID() int64 { return Default.Next() }

// Next returns the generator's next monotonically increasing id.
func (g *Generator) Next() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.nowMilli()
	if now == g.lastMilli {
		g.sequence = (g.sequence + 1) & maxSequence
		if g.sequence == 0 {
			for now <= g.lastMilli {
				now = g.nowMilli()
			}
		}
	} else {
		g.sequence = 0
	}
	g.lastMilli = now

	return (now-epochMillis)<<timeShift | g.nodeID<<nodeIDShift | g.machineID<<machineIDShift | g.sequence
}
