// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Memo de-duplicates identical query calls within a single request's
// execution. It never outlives the request: middleware installs a fresh
// Memo per incoming request, so nothing leaks across callers. Duplicate
// concurrent calls for the same key are collapsed into one fetch.
type Memo struct {
	mu      sync.Mutex
	results map[string]any
	flight  singleflight.Group
}

// NewMemo creates an empty request memo.
func NewMemo() *Memo {
	return &Memo{results: map[string]any{}}
}

func (m *Memo) lookup(key string) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.results[key]
	return v, ok
}

func (m *Memo) store(key string, v any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[key] = v
}

// do runs fn once per key, collapsing concurrent duplicates. Successful
// results are remembered for the rest of the request; errors are not,
// so a later identical call may retry.
func (m *Memo) do(key string, fn func() (any, error)) (any, error) {
	if v, ok := m.lookup(key); ok {
		return v, nil
	}
	v, err, _ := m.flight.Do(key, fn)
	if err != nil {
		return nil, err
	}
	m.store(key, v)
	return v, nil
}

type memoContextKey struct{}

// WithMemo attaches a fresh request memo to the context.
func WithMemo(ctx context.Context) context.Context {
	return context.WithValue(ctx, memoContextKey{}, NewMemo())
}

// MemoFromContext returns the request memo, or nil when the caller runs
// outside a request scope (memoization is then skipped entirely).
func MemoFromContext(ctx context.Context) *Memo {
	m, _ := ctx.Value(memoContextKey{}).(*Memo)
	return m
}

// GetOrFetch resolves a query through the layered read path: request
// memo, then the tagged cross-request cache, then the live fetch. A nil
// TaggedCache (or cache failure) degrades to memo + live fetch; a
// missing memo degrades to cache + live fetch. Fetch errors are always
// surfaced and never cached.
func GetOrFetch[T any](ctx context.Context, tc *TaggedCache, key string, ttl time.Duration, tags []string, fetch func(context.Context) (T, error)) (T, error) {
	through := func() (any, error) {
		if tc != nil {
			var cached T
			if tc.Get(ctx, key, &cached) {
				return cached, nil
			}
		}

		fresh, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		if tc != nil {
			tc.Set(ctx, key, fresh, ttl, tags...)
		}
		return fresh, nil
	}

	memo := MemoFromContext(ctx)
	if memo == nil {
		v, err := through()
		if err != nil {
			var zero T
			return zero, err
		}
		return v.(T), nil
	}

	v, err := memo.do(key, through)
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
