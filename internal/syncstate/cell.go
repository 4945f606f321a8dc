// Package syncstate implements the Idle -> Loading -> Populated/Errored
// lifecycle of a remotely fetched value, with last-request-wins ordering.
package syncstate

import (
	"context"
	"sync"
)

type Phase int

const (
	Idle Phase = iota
	Loading
	Populated
	Errored
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Populated:
		return "populated"
	case Errored:
		return "errored"
	}
	return "unknown"
}

func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// Cell owns one remotely fetched value. Every request gets a sequence
// number; only the response of the most recently issued request is applied,
// so an older response can never overwrite a newer one. A failed request
// keeps the previous value.
type Cell[T any] struct {
	mu     sync.Mutex
	seq    uint64
	phase  Phase
	value  T
	err    error
	loaded bool
	cancel context.CancelFunc
}

// Snapshot is a read-only copy of a Cell.
type Snapshot[T any] struct {
	Phase Phase
	Value T
	Err   error
	// Loaded is true once any request has succeeded.
	Loaded bool
	Seq    uint64
}

func (s Snapshot[T]) IsLoading() bool { return s.Phase == Loading }

// Begin issues the next sequence number and enters Loading without touching
// the current value. The request previously in flight, if any, is canceled
// through its context.
func (c *Cell[T]) Begin(ctx context.Context) (context.Context, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
	}
	ctx, c.cancel = context.WithCancel(ctx)
	c.seq++
	c.phase = Loading
	return ctx, c.seq
}

// Resolve applies the outcome of request seq. It reports false, changing
// nothing, when a newer request has been issued since.
func (c *Cell[T]) Resolve(seq uint64, v T, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.seq {
		return false
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if err != nil {
		c.phase = Errored
		c.err = err
		return true
	}
	c.phase = Populated
	c.value = v
	c.err = nil
	c.loaded = true
	return true
}

// Run performs Begin, fetch and Resolve. applied is false when the result
// was discarded as stale; err is the fetch error either way.
func (c *Cell[T]) Run(ctx context.Context, fetch func(context.Context) (T, error)) (applied bool, err error) {
	ctx, seq := c.Begin(ctx)
	v, err := fetch(ctx)
	return c.Resolve(seq, v, err), err
}

// Set replaces the value directly, as after a successful mutation whose
// response carries the new value. Requests in flight become stale.
func (c *Cell[T]) Set(v T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.seq++
	c.phase = Populated
	c.value = v
	c.err = nil
	c.loaded = true
}

func (c *Cell[T]) Snapshot() Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot[T]{Phase: c.phase, Value: c.value, Err: c.err, Loaded: c.loaded, Seq: c.seq}
}
