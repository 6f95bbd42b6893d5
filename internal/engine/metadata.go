package engine

import (
	"fmt"
	"sync"

	"github.com/lumenkart/shopassist/internal/domain"
	"github.com/lumenkart/shopassist/internal/domain/record"
)

// MetadataStore maps record identifiers to opaque records. Identifiers are
// dense and contiguous, mirroring the vector index numbering.
type MetadataStore struct {
	mu      sync.RWMutex
	records []record.Record
}

// NewMetadataStore creates an empty metadata store.
func NewMetadataStore() *MetadataStore {
	return &MetadataStore{}
}

// Insert appends a batch of records and returns the first assigned identifier.
func (s *MetadataStore) Insert(records []record.Record) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := uint32(len(s.records))
	for _, r := range records {
		s.records = append(s.records, r.Clone())
	}
	return start
}

// Get returns the record for id.
func (s *MetadataStore) Get(id uint32) (record.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if int(id) >= len(s.records) {
		return nil, fmt.Errorf("%w: record %d (store holds %d)", domain.ErrNotFound, id, len(s.records))
	}
	return s.records[id], nil
}

// Size returns the number of stored records.
func (s *MetadataStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
