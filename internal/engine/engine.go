// Package engine composes the vector index with the metadata store and keeps
// both in lockstep: the same identifier always refers to the same logical
// insertion in either store.
package engine

import (
	"fmt"
	"sync"

	"github.com/lumenkart/shopassist/internal/domain"
	"github.com/lumenkart/shopassist/internal/domain/record"
	"github.com/lumenkart/shopassist/internal/domain/search/result"
	"github.com/lumenkart/shopassist/internal/index"
)

// Engine is the similarity search engine. Insertion is atomic across the
// vector index and the metadata store; search returns ranked, metadata-enriched
// results.
//
// Concurrency policy: exclusive-write / shared-read. Add holds the write lock
// across both stores, so a concurrent Search observes either the fully-old or
// fully-new state, never a partially-inserted batch.
type Engine struct {
	mu   sync.RWMutex
	idx  *index.Flat
	meta *MetadataStore
}

// New creates an engine over a fresh metadata store.
func New(idx *index.Flat) *Engine {
	return &Engine{idx: idx, meta: NewMetadataStore()}
}

// Add inserts vectors and their records as one atomic batch. The vector index
// validates first; on its rejection the metadata store is untouched.
func (e *Engine) Add(vectors [][]float32, records []record.Record) error {
	if len(vectors) != len(records) {
		return fmt.Errorf("%w: %d vectors, %d records", domain.ErrBatchMismatch, len(vectors), len(records))
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	vecStart, err := e.idx.Insert(vectors)
	if err != nil {
		return fmt.Errorf("insert vectors: %w", err)
	}

	metaStart := e.meta.Insert(records)
	if metaStart != vecStart {
		// Both stores mutated under the same write lock with validated
		// batches; a numbering gap here is a programming error.
		return fmt.Errorf("%w: vector batch at %d, metadata batch at %d",
			domain.ErrStoreDiverged, vecStart, metaStart)
	}
	return nil
}

// Search returns up to k ranked results enriched with their records.
//
// For the Euclidean metric similarity is 1 when distance <= 0, otherwise
// 1/(1+distance). For inner product the raw score is already a similarity, so
// it is reported unchanged.
func (e *Engine) Search(query []float32, k int) ([]result.Result, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	hits, err := e.idx.Search(query, k)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	results := make([]result.Result, len(hits))
	for i, hit := range hits {
		rec, err := e.meta.Get(hit.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: resolve hit %d: %w", domain.ErrStoreDiverged, hit.ID, err)
		}
		dist := float64(hit.Distance)
		results[i] = result.New(hit.ID, rec, dist, similarity(e.idx.Metric(), dist))
	}
	return results, nil
}

// Count returns the number of indexed items. The vector index and metadata
// store always agree on this under correct usage.
func (e *Engine) Count() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.idx.Size()
}

// Dimension returns the configured vector dimension.
func (e *Engine) Dimension() int { return e.idx.Dimension() }

func similarity(m index.Metric, distance float64) float64 {
	if m == index.MetricInnerProduct {
		return distance
	}
	if distance <= 0 {
		return 1
	}
	return 1 / (1 + distance)
}
