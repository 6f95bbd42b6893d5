// Package result defines the scored search hit produced at query time.
package result

import "github.com/lumenkart/shopassist/internal/domain/record"

// Result is a single ranked search hit. Produced at query time, never stored.
type Result struct {
	id         uint32
	rec        record.Record
	distance   float64
	similarity float64
}

// New creates a search result.
func New(id uint32, rec record.Record, distance, similarity float64) Result {
	return Result{id: id, rec: rec, distance: distance, similarity: similarity}
}

// ID returns the record identifier assigned at insertion.
func (r *Result) ID() uint32 { return r.id }

// Record returns the record attributes.
func (r *Result) Record() record.Record { return r.rec }

// Distance returns the raw metric value against the query.
func (r *Result) Distance() float64 { return r.distance }

// Similarity returns the normalized relevance score, higher is better.
func (r *Result) Similarity() float64 { return r.similarity }
