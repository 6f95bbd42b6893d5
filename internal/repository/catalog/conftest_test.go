package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/lumenkart/shopassist/internal/db"
)

// fakeStore is an in-memory stand-in for the Redis KV store.
type fakeStore struct {
	mu   sync.Mutex
	data map[string][]byte
	seq  map[string]int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: map[string][]byte{}, seq: map[string]int64{}}
}

func (f *fakeStore) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (f *fakeStore) Set(_ context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value
	return nil
}

func (f *fakeStore) Exists(_ context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.data[key]
	return ok, nil
}

func (f *fakeStore) Scan(_ context.Context, pattern string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	// Supports only the "<prefix>*<suffix-with-*>" patterns used by the repo.
	var keys []string
	for k := range f.data {
		if matchPattern(pattern, k) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (f *fakeStore) Incr(_ context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq[key]++
	return f.seq[key], nil
}

// matchPattern implements glob matching for '*' only, which is all the
// repository emits.
func matchPattern(pattern, s string) bool {
	parts := strings.Split(pattern, "*")
	if !strings.HasPrefix(s, parts[0]) {
		return false
	}
	s = s[len(parts[0]):]
	for i := 1; i < len(parts); i++ {
		part := parts[i]
		if part == "" {
			continue
		}
		idx := strings.Index(s, part)
		if idx < 0 {
			return false
		}
		if i == len(parts)-1 && !strings.HasSuffix(s, part) {
			return false
		}
		s = s[idx+len(part):]
	}
	return true
}
