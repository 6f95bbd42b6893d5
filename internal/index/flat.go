// Package index provides an exact brute-force vector index over dense
// float32 vectors with a fixed dimension and distance metric.
package index

import (
	"container/heap"
	"fmt"
	"sort"
	"sync"

	"github.com/lumenkart/shopassist/internal/domain"
)

// SearchHit pairs a record identifier with its raw metric value against the
// query. For MetricEuclidean smaller Distance is better; for MetricInnerProduct
// Distance is the dot product and larger is better.
type SearchHit struct {
	ID       uint32
	Distance float32
}

// Flat is an exact k-NN index. Every query scans all stored vectors, so cost
// is O(N*dimension) per search. Record identifiers are dense, zero-based and
// assigned in insertion order; the index is insert-only.
//
// Safe for concurrent use: searches share a read lock, inserts take the write
// lock.
type Flat struct {
	mu        sync.RWMutex
	dimension int
	metric    Metric
	rank      DistanceFunc
	vectors   [][]float32
}

// New creates a flat index with a fixed dimension and metric.
func New(dimension int, metric Metric) (*Flat, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("%w: dimension must be positive, got %d", domain.ErrInvalidDimension, dimension)
	}
	switch metric {
	case MetricEuclidean, MetricInnerProduct:
	default:
		return nil, fmt.Errorf("%w: unknown metric %d", domain.ErrInvalidArgument, int(metric))
	}

	return &Flat{
		dimension: dimension,
		metric:    metric,
		rank:      newDistanceFunc(metric),
	}, nil
}

// Dimension returns the configured vector dimension.
func (f *Flat) Dimension() int { return f.dimension }

// Metric returns the configured distance metric.
func (f *Flat) Metric() Metric { return f.metric }

// Insert appends a batch of vectors and returns the first assigned identifier.
// The batch is all-or-nothing: any dimension mismatch rejects the whole batch
// and leaves the index unchanged.
func (f *Flat) Insert(vectors [][]float32) (uint32, error) {
	for i, v := range vectors {
		if len(v) != f.dimension {
			return 0, fmt.Errorf("%w: vector %d has %d components, index expects %d",
				domain.ErrDimensionMismatch, i, len(v), f.dimension)
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	start := uint32(len(f.vectors))
	for _, v := range vectors {
		// Copy so caller mutations cannot corrupt stored state.
		stored := make([]float32, f.dimension)
		copy(stored, v)
		f.vectors = append(f.vectors, stored)
	}
	return start, nil
}

// Search returns the k best hits for the query: ascending distance for
// MetricEuclidean, descending score for MetricInnerProduct. Ties are broken by
// insertion order (lower ID first). Fewer than k hits are returned when the
// index holds fewer vectors; an empty index yields no hits and no error.
func (f *Flat) Search(query []float32, k int) ([]SearchHit, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: k must be >= 1, got %d", domain.ErrInvalidArgument, k)
	}
	if len(query) != f.dimension {
		return nil, fmt.Errorf("%w: query has %d components, index expects %d",
			domain.ErrDimensionMismatch, len(query), f.dimension)
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	if len(f.vectors) == 0 {
		return nil, nil
	}

	actualK := k
	if actualK > len(f.vectors) {
		actualK = len(f.vectors)
	}

	// Bounded max-heap of the best candidates seen so far. Scanning in ID
	// order and replacing only on strict improvement keeps ties on the
	// earlier-inserted vector.
	top := make(candidateHeap, 0, actualK)
	for id, vec := range f.vectors {
		dist := f.rank(query, vec)

		if top.Len() < actualK {
			heap.Push(&top, candidate{id: uint32(id), distance: dist})
			continue
		}
		if dist < top[0].distance {
			top[0] = candidate{id: uint32(id), distance: dist}
			heap.Fix(&top, 0)
		}
	}

	sort.Slice(top, func(i, j int) bool {
		if top[i].distance != top[j].distance {
			return top[i].distance < top[j].distance
		}
		return top[i].id < top[j].id
	})

	hits := make([]SearchHit, len(top))
	for i, c := range top {
		raw := c.distance
		if f.metric == MetricInnerProduct {
			raw = -raw // undo the internal negation
		}
		hits[i] = SearchHit{ID: c.id, Distance: raw}
	}
	return hits, nil
}

// Size returns the number of stored vectors.
func (f *Flat) Size() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.vectors)
}
