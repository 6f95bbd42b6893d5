package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/lumenkart/shopassist/internal/domain"
	domcat "github.com/lumenkart/shopassist/internal/domain/catalog"
	"github.com/lumenkart/shopassist/internal/domain/record"
)

// store is the consumer interface for the Redis catalog driver (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
	Incr(ctx context.Context, key string) (int64, error)
}

// RedisStore keeps catalog records as JSON values. Each record lives at
// <prefix>catalog:<name>:item:<seq>, with a per-catalog sequence counter and
// a marker key identifying the catalog itself.
type RedisStore struct {
	store  store
	prefix string
}

// NewRedisStore creates a Redis-backed catalog store with the given key prefix.
func NewRedisStore(s store, prefix string) *RedisStore {
	return &RedisStore{store: s, prefix: prefix}
}

// EnsureCatalog registers the named catalog if it does not exist yet.
func (s *RedisStore) EnsureCatalog(ctx context.Context, name string) error {
	if err := s.store.Set(ctx, s.metaKey(name), []byte("1")); err != nil {
		return fmt.Errorf("register catalog %q: %w", name, err)
	}
	return nil
}

// AllRecords returns every record across all catalogs. Records are ordered by
// key, which preserves insertion order within a catalog.
func (s *RedisStore) AllRecords(ctx context.Context) ([]record.Record, error) {
	keys, err := s.store.Scan(ctx, s.prefix+"catalog:*:item:*")
	if err != nil {
		return nil, fmt.Errorf("scan catalog items: %w", err)
	}
	sort.Strings(keys)

	records := make([]record.Record, 0, len(keys))
	for _, key := range keys {
		data, err := s.store.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("get %s: %w", key, err)
		}
		var rec record.Record
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("unmarshal %s: %w", key, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// AddRecord appends the record to the named catalog.
func (s *RedisStore) AddRecord(ctx context.Context, catalogName string, rec record.Record) error {
	exists, err := s.store.Exists(ctx, s.metaKey(catalogName))
	if err != nil {
		return fmt.Errorf("check catalog %q: %w", catalogName, err)
	}
	if !exists {
		return fmt.Errorf("%w: %q", domain.ErrCatalogNotFound, catalogName)
	}

	seq, err := s.store.Incr(ctx, s.seqKey(catalogName))
	if err != nil {
		return fmt.Errorf("next sequence for %q: %w", catalogName, err)
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	if err := s.store.Set(ctx, s.itemKey(catalogName, seq), data); err != nil {
		return fmt.Errorf("store record: %w", err)
	}
	return nil
}

// Filter returns all records satisfying the attribute filter.
func (s *RedisStore) Filter(ctx context.Context, f domcat.Filter) ([]record.Record, error) {
	all, err := s.AllRecords(ctx)
	if err != nil {
		return nil, err
	}

	filtered := make([]record.Record, 0, len(all))
	for _, rec := range all {
		if f.Matches(rec) {
			filtered = append(filtered, rec)
		}
	}
	return filtered, nil
}

func (s *RedisStore) metaKey(name string) string {
	return s.prefix + "catalog:" + name + ":meta"
}

func (s *RedisStore) seqKey(name string) string {
	return s.prefix + "catalog:" + name + ":seq"
}

// itemKey zero-pads the sequence so lexicographic key order matches insertion
// order.
func (s *RedisStore) itemKey(name string, seq int64) string {
	return fmt.Sprintf("%scatalog:%s:item:%012d", s.prefix, name, seq)
}
