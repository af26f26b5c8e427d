// Package cache memoizes AI generation results in bounded LRU caches.
package cache

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// Stats is a point-in-time view of one cache.
type Stats struct {
	Size   int   `json:"size"`
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
}

// Memo maps a key to a successfully computed value. Concurrent misses on the
// same key share one computation. Failed computations are never stored.
type Memo[V any] struct {
	entries *lru.Cache[string, V]
	group   singleflight.Group
	hits    atomic.Int64
	misses  atomic.Int64
}

// NewMemo returns a Memo holding at most size entries.
func NewMemo[V any](size int) (*Memo[V], error) {
	entries, err := lru.New[string, V](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create lru cache: %w", err)
	}
	return &Memo[V]{entries: entries}, nil
}

// GetOrCompute returns the value for key, calling compute on a miss. The
// boolean reports whether the value came from the cache. compute runs on a
// context detached from ctx's cancellation because other callers may be
// waiting on the same result.
func (m *Memo[V]) GetOrCompute(ctx context.Context, key string, compute func(ctx context.Context) (V, error)) (V, bool, error) {
	if v, ok := m.entries.Get(key); ok {
		m.hits.Add(1)
		return v, true, nil
	}
	m.misses.Add(1)

	res, err, _ := m.group.Do(key, func() (any, error) {
		if v, ok := m.entries.Get(key); ok {
			return v, nil
		}
		v, err := compute(context.WithoutCancel(ctx))
		if err != nil {
			return v, err
		}
		m.entries.Add(key, v)
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, false, err
	}
	return res.(V), false, nil
}

// Clear drops every entry and resets the hit and miss counters.
func (m *Memo[V]) Clear() {
	m.entries.Purge()
	m.hits.Store(0)
	m.misses.Store(0)
}

func (m *Memo[V]) Stats() Stats {
	return Stats{
		Size:   m.entries.Len(),
		Hits:   m.hits.Load(),
		Misses: m.misses.Load(),
	}
}

// IdeasKey is the cache key for an idea generation request.
func IdeasKey(niche, audience string, count int) string {
	return strings.Join([]string{niche, audience, strconv.Itoa(count)}, "\x1f")
}

// ScriptKey is the cache key for a script generation request.
func ScriptKey(idea string) string {
	return idea
}
