package redis

import (
	"context"
	"errors"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/asidecache/internal/util"
	"github.com/unkn0wn-root/asidecache/store"
)

var ErrNilClient = errors.New("redis store: nil client")

const defaultScanCount = 100

// Store adapts a go-redis client to store.Store. Every transport or server
// error is reported as store.ErrUnavailable; redis.Nil is a plain miss.
type Store struct {
	rdb         goredis.UniversalClient
	closeClient bool
	scanCount   int64
}

var _ store.Store = (*Store)(nil)

type Config struct {
	Client      goredis.UniversalClient
	CloseClient bool  // set true only if this store exclusively owns the client
	ScanCount   int64 // COUNT hint per SCAN round; 0 => 100
}

func New(cfg Config) (*Store, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	count := cfg.ScanCount
	if count <= 0 {
		count = defaultScanCount
	}
	return &Store{rdb: cfg.Client, closeClient: cfg.CloseClient, scanCount: count}, nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, store.Unavailable(err)
	}
	return b, true, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return store.Unavailable(s.rdb.Set(ctx, key, value, redisTTL(ttl)).Err())
}

// MGet uses a single MGET. Cluster clients cannot MGET across hash slots, so
// there the GETs are pipelined instead (still one round-trip per node).
func (s *Store) MGet(ctx context.Context, keys []string) ([][]byte, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	if _, ok := s.rdb.(*goredis.ClusterClient); ok {
		return s.pipelinedGet(ctx, keys)
	}

	vals, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, store.Unavailable(err)
	}
	out := make([][]byte, len(keys))
	for i, v := range vals {
		switch vv := v.(type) {
		case string:
			out[i] = []byte(vv)
		case []byte:
			out[i] = vv
		}
	}
	return out, nil
}

func (s *Store) pipelinedGet(ctx context.Context, keys []string) ([][]byte, error) {
	cmds := make([]*goredis.StringCmd, len(keys))
	_, err := s.rdb.Pipelined(ctx, func(p goredis.Pipeliner) error {
		for i, k := range keys {
			cmds[i] = p.Get(ctx, k)
		}
		return nil
	})
	if err != nil && !errors.Is(err, goredis.Nil) {
		return nil, store.Unavailable(err)
	}
	out := make([][]byte, len(keys))
	for i, cmd := range cmds {
		b, err := cmd.Bytes()
		if err != nil {
			continue // redis.Nil => absent
		}
		out[i] = b
	}
	return out, nil
}

// MSet pipelines one SET per item. Pipelined returns only the first failure,
// so outcomes are read back from each command.
func (s *Store) MSet(ctx context.Context, items []store.Item) []error {
	errs := make([]error, len(items))
	if len(items) == 0 {
		return errs
	}
	cmds := make([]*goredis.StatusCmd, len(items))
	_, _ = s.rdb.Pipelined(ctx, func(p goredis.Pipeliner) error {
		for i, it := range items {
			cmds[i] = p.Set(ctx, it.Key, it.Value, redisTTL(it.TTL))
		}
		return nil
	})
	for i, cmd := range cmds {
		errs[i] = store.Unavailable(cmd.Err())
	}
	return errs
}

// Scan walks the keyspace with SCAN MATCH <prefix>*. On a cluster every
// master is scanned. Duplicates reported by SCAN are dropped.
func (s *Store) Scan(ctx context.Context, prefix string) ([]string, error) {
	pattern := util.ScanPattern(prefix)

	cc, ok := s.rdb.(*goredis.ClusterClient)
	if !ok {
		keys, err := s.scanNode(ctx, s.rdb, pattern)
		return keys, store.Unavailable(err)
	}

	var (
		mu  sync.Mutex
		out []string
	)
	err := cc.ForEachMaster(ctx, func(ctx context.Context, c *goredis.Client) error {
		keys, err := s.scanNode(ctx, c, pattern)
		if err != nil {
			return err
		}
		mu.Lock()
		out = append(out, keys...)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, store.Unavailable(err)
	}
	return out, nil
}

func (s *Store) scanNode(ctx context.Context, c goredis.Cmdable, pattern string) ([]string, error) {
	seen := make(map[string]struct{})
	var keys []string

	iter := c.Scan(ctx, 0, pattern, s.scanCount).Iterator()
	for iter.Next(ctx) {
		k := iter.Val()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}

// Close releases the underlying redis client only when this store owns it.
// Safe to call multiple times; repeated calls become no-ops.
func (s *Store) Close(context.Context) error {
	if s.closeClient {
		if err := s.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}

// redis treats 0 as "keep forever"; negative TTLs mean the same here.
func redisTTL(ttl time.Duration) time.Duration {
	return max(ttl, 0)
}
