package rle

import "sync"

// Counters is the aggregate statistics block owned by a Transmitter or
// a Receiver (spec §2, §6: counter_{ok,dropped,lost,bytes}). Per the
// Design Notes ("module-level statistics accumulator" replaced by
// "per-context counter blocks"), each instance owns exactly one of
// these rather than exposing a global accumulator; Snapshot is the
// aggregation helper callers use instead of iterating contexts
// themselves.
type Counters struct {
	mu      sync.Mutex
	ok      uint64
	dropped uint64
	lost    uint64
	bytes   uint64
}

// Stats is a point-in-time, read-only snapshot of Counters.
type Stats struct {
	OK      uint64
	Dropped uint64
	Lost    uint64
	Bytes   uint64
}

func (c *Counters) incOK(n uint64) {
	c.mu.Lock()
	c.ok++
	c.bytes += n
	c.mu.Unlock()
}

func (c *Counters) incDropped() {
	c.mu.Lock()
	c.dropped++
	c.mu.Unlock()
}

func (c *Counters) incLost(n uint64) {
	c.mu.Lock()
	c.lost += n
	c.mu.Unlock()
}

// Snapshot returns the current counter values.
func (c *Counters) Snapshot() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{OK: c.ok, Dropped: c.dropped, Lost: c.lost, Bytes: c.bytes}
}
