// Package inflight suppresses repeated triggers of the same mutating action
// while an earlier one is still running.
package inflight

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// ErrDuplicate is returned when the key already has a call in flight
var ErrDuplicate = errors.New("request already in progress")

// Key builds the dedup key of an operation on a resource, e.g. Key("return", 42) == "return:42"
func Key(op string, id int64) string {
	return fmt.Sprintf("%s:%d", op, id)
}

// Guard tracks in-flight keys. The zero value is ready to use.
type Guard struct {
	mu      sync.Mutex
	pending map[string]struct{}
}

// Do runs fn unless key is already in flight, in which case it returns ErrDuplicate
// without calling fn. The key is released once fn returns, whatever the outcome.
func (g *Guard) Do(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	if !g.acquire(key) {
		return ErrDuplicate
	}
	defer g.release(key)

	return fn(ctx)
}

// InFlight reports whether key currently has a call running
func (g *Guard) InFlight(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	_, ok := g.pending[key]
	return ok
}

func (g *Guard) acquire(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.pending == nil {
		g.pending = make(map[string]struct{})
	}
	if _, ok := g.pending[key]; ok {
		return false
	}
	g.pending[key] = struct{}{}
	return true
}

func (g *Guard) release(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.pending, key)
}

// Coalescer shares one call among concurrent identical reads
type Coalescer struct {
	group singleflight.Group
}

// Do runs fn once per key at a time; concurrent callers with the same key receive its result.
// shared reports whether the result was handed to more than one caller.
func Do[T any](c *Coalescer, key string, fn func() (T, error)) (value T, shared bool, err error) {
	v, err, shared := c.group.Do(key, func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		var zero T
		return zero, shared, err
	}
	return v.(T), shared, nil
}
