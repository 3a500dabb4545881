// Fieldtrail - Field Agent Location Tracking and Trail Processing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldtrail

package cache

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/fieldtrail/internal/metrics"
)

const maxCleanupInterval = 5 * time.Minute

type entry struct {
	data      any
	expiresAt time.Time
}

// Cache is a TTL cache for derived read views of the trail data. Every
// Clear bumps a generation counter so a value computed from data that
// changed mid-computation is never stored.
type Cache struct {
	name string
	ttl  time.Duration

	mu         sync.RWMutex
	entries    map[string]entry
	generation uint64

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64

	now func() time.Time
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	Evictions int64   `json:"evictions"`
	Entries   int     `json:"entries"`
	HitRate   float64 `json:"hit_rate_percent"`
}

// New creates a cache whose entries live for ttl. name labels its metrics.
func New(name string, ttl time.Duration) *Cache {
	return &Cache{
		name:    name,
		ttl:     ttl,
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get returns the value for key if present and unexpired.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if ok && c.now().After(e.expiresAt) {
		c.mu.Lock()
		// Re-check: a concurrent Set may have refreshed it.
		if cur, still := c.entries[key]; still && c.now().After(cur.expiresAt) {
			delete(c.entries, key)
			c.evictions.Add(1)
		}
		c.mu.Unlock()
		ok = false
	}

	c.record(ok)
	if !ok {
		return nil, false
	}
	return e.data, true
}

// GetOrCompute returns the cached value for key, computing and storing it
// on a miss. The computed value is discarded instead of stored when Clear
// ran while compute was in progress. compute runs without the lock held,
// so concurrent misses may compute the same key twice.
func (c *Cache) GetOrCompute(key string, compute func() (any, error)) (any, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	c.mu.RLock()
	gen := c.generation
	c.mu.RUnlock()

	v, err := compute()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.generation == gen {
		c.entries[key] = entry{data: v, expiresAt: c.now().Add(c.ttl)}
	}
	n := len(c.entries)
	c.mu.Unlock()
	metrics.SetCacheEntries(c.name, n)
	return v, nil
}

// Clear drops every entry and invalidates in-flight GetOrCompute calls.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.evictions.Add(int64(len(c.entries)))
	c.entries = make(map[string]entry)
	c.generation++
	c.mu.Unlock()
	metrics.SetCacheEntries(c.name, 0)
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// GetStats returns the current counters. HitRate is hits as a percentage
// of lookups.
func (c *Cache) GetStats() Stats {
	s := Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
		Entries:   c.Len(),
	}
	if total := s.Hits + s.Misses; total > 0 {
		s.HitRate = float64(s.Hits) / float64(total) * 100
	}
	return s
}

// Serve implements suture.Service by sweeping expired entries until ctx ends.
func (c *Cache) Serve(ctx context.Context) error {
	interval := c.ttl
	if interval <= 0 || interval > maxCleanupInterval {
		interval = maxCleanupInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c.cleanup()
		}
	}
}

func (c *Cache) String() string {
	return "cache:" + c.name
}

func (c *Cache) cleanup() {
	now := c.now()
	c.mu.Lock()
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
			c.evictions.Add(1)
		}
	}
	n := len(c.entries)
	c.mu.Unlock()
	metrics.SetCacheEntries(c.name, n)
}

func (c *Cache) record(hit bool) {
	if hit {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	metrics.RecordCacheLookup(c.name, hit)
}

// GenerateKey builds a compact key from a method name and its parameters.
func GenerateKey(method string, params any) string {
	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Sprintf("%s:%v", method, params)
	}
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%x", method, hash[:16])
}
