// Package ristretto is an in-process store.Store on top of ristretto v2.
//
// Ristretto cannot enumerate its keys, so the store keeps a side index of
// written keys for Scan. The index is pruned lazily: Scan drops keys that
// ristretto no longer holds (evicted, expired or rejected).
package ristretto

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	rc "github.com/dgraph-io/ristretto/v2"

	"github.com/unkn0wn-root/asidecache/store"
)

var ErrClosed = errors.New("ristretto store: closed")

type Store struct {
	c *rc.Cache[string, []byte]

	mu     sync.Mutex
	keys   map[string]struct{}
	closed bool
}

var _ store.Store = (*Store)(nil)

type Config struct {
	NumCounters int64
	MaxCost     int64 // total bytes held; each entry costs len(value)
	BufferItems int64
	Metrics     bool
}

func New(cfg Config) (*Store, error) {
	if cfg.NumCounters <= 0 || cfg.MaxCost <= 0 || cfg.BufferItems <= 0 {
		return nil, errors.New("ristretto store: invalid config")
	}
	c, err := rc.NewCache(&rc.Config[string, []byte]{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
		Metrics:     cfg.Metrics,
	})
	if err != nil {
		return nil, err
	}
	return &Store{c: c, keys: make(map[string]struct{})}, nil
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	if s.isClosed() {
		return nil, false, store.Unavailable(ErrClosed)
	}
	v, ok := s.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	return v, true, nil
}

// Set waits for the write buffer to drain so a Get right after Set observes
// the value. A write ristretto refuses to admit is dropped silently; for a
// cache that is just a future miss.
func (s *Store) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if s.isClosed() {
		return store.Unavailable(ErrClosed)
	}
	s.set(key, value, ttl)
	s.c.Wait()
	return nil
}

func (s *Store) set(key string, value []byte, ttl time.Duration) {
	if ttl < 0 {
		ttl = 0
	}
	if s.c.SetWithTTL(key, value, int64(len(value))+1, ttl) {
		s.mu.Lock()
		s.keys[key] = struct{}{}
		s.mu.Unlock()
	}
}

func (s *Store) MGet(ctx context.Context, keys []string) ([][]byte, error) {
	if s.isClosed() {
		return nil, store.Unavailable(ErrClosed)
	}
	out := make([][]byte, len(keys))
	for i, k := range keys {
		if v, ok := s.c.Get(k); ok {
			out[i] = v
		}
	}
	return out, nil
}

func (s *Store) MSet(_ context.Context, items []store.Item) []error {
	if s.isClosed() {
		return store.Fill(len(items), store.Unavailable(ErrClosed))
	}
	for _, it := range items {
		s.set(it.Key, it.Value, it.TTL)
	}
	s.c.Wait()
	return make([]error, len(items))
}

func (s *Store) Scan(_ context.Context, prefix string) ([]string, error) {
	if s.isClosed() {
		return nil, store.Unavailable(ErrClosed)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []string
	for k := range s.keys {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		if _, ok := s.c.Get(k); !ok {
			delete(s.keys, k)
			continue
		}
		out = append(out, k)
	}
	return out, nil
}

func (s *Store) Close(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.c.Wait()
	s.c.Close()
	return nil
}

// Metrics exposes ristretto's counters when Config.Metrics is set.
func (s *Store) Metrics() *rc.Metrics { return s.c.Metrics }

func (s *Store) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
