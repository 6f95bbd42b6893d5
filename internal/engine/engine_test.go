package engine

import (
	"errors"
	"testing"

	"github.com/lumenkart/shopassist/internal/domain"
	"github.com/lumenkart/shopassist/internal/domain/record"
	"github.com/lumenkart/shopassist/internal/index"
)

func mustEngine(t *testing.T, dim int, metric index.Metric) *Engine {
	t.Helper()
	idx, err := index.New(dim, metric)
	if err != nil {
		t.Fatalf("index.New: %v", err)
	}
	return New(idx)
}

func named(name string) record.Record {
	return record.Record{"name": record.String(name)}
}

func TestAdd_LockstepInvariant(t *testing.T) {
	e := mustEngine(t, 2, index.MetricEuclidean)

	batches := [][][]float32{
		{{0, 0}, {1, 0}},
		{{2, 2}},
		{{3, 3}, {4, 4}, {5, 5}},
	}
	for _, vectors := range batches {
		records := make([]record.Record, len(vectors))
		for i := range records {
			records[i] = named("item")
		}
		if err := e.Add(vectors, records); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	if e.Count() != 6 {
		t.Errorf("Count() = %d, want 6", e.Count())
	}
}

func TestAdd_BatchLengthMismatch(t *testing.T) {
	e := mustEngine(t, 2, index.MetricEuclidean)

	err := e.Add([][]float32{{0, 0}, {1, 1}}, []record.Record{named("a"), named("b"), named("c")})
	if !errors.Is(err, domain.ErrBatchMismatch) {
		t.Fatalf("error = %v, want ErrBatchMismatch", err)
	}
	if e.Count() != 0 {
		t.Errorf("Count() = %d after rejected batch, want 0", e.Count())
	}
}

func TestAdd_VectorRejectionLeavesMetadataUntouched(t *testing.T) {
	e := mustEngine(t, 2, index.MetricEuclidean)

	err := e.Add([][]float32{{0, 0, 0}}, []record.Record{named("a")})
	if !errors.Is(err, domain.ErrDimensionMismatch) {
		t.Fatalf("error = %v, want ErrDimensionMismatch", err)
	}
	if e.Count() != 0 {
		t.Errorf("Count() = %d, want 0", e.Count())
	}
	if e.meta.Size() != 0 {
		t.Errorf("metadata size = %d after vector rejection, want 0", e.meta.Size())
	}
}

func TestSearch_ReturnsRankedRecordsWithSimilarity(t *testing.T) {
	e := mustEngine(t, 2, index.MetricEuclidean)
	err := e.Add(
		[][]float32{{0, 0}, {1, 0}, {10, 10}},
		[]record.Record{named("origin"), named("near"), named("far")},
	)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	results, err := e.Search([]float32{0, 0}, 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}

	first := results[0]
	if first.Record().StringAttr("name") != "origin" {
		t.Errorf("first = %q, want origin", first.Record().StringAttr("name"))
	}
	if first.Distance() != 0 || first.Similarity() != 1 {
		t.Errorf("first distance/similarity = %v/%v, want 0/1", first.Distance(), first.Similarity())
	}

	second := results[1]
	if second.Record().StringAttr("name") != "near" {
		t.Errorf("second = %q, want near", second.Record().StringAttr("name"))
	}
	if second.Distance() != 1 || second.Similarity() != 0.5 {
		t.Errorf("second distance/similarity = %v/%v, want 1/0.5", second.Distance(), second.Similarity())
	}
}

func TestSearch_InnerProductSimilarityIsRawScore(t *testing.T) {
	e := mustEngine(t, 2, index.MetricInnerProduct)
	err := e.Add([][]float32{{2, 0}, {1, 0}}, []record.Record{named("strong"), named("weak")})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	results, err := e.Search([]float32{1, 0}, 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if results[0].Record().StringAttr("name") != "strong" {
		t.Errorf("first = %q, want strong", results[0].Record().StringAttr("name"))
	}
	if results[0].Similarity() != 2 {
		t.Errorf("similarity = %v, want raw score 2", results[0].Similarity())
	}
}

func TestSearch_FewerThanK(t *testing.T) {
	e := mustEngine(t, 2, index.MetricEuclidean)
	if err := e.Add([][]float32{{0, 0}}, []record.Record{named("only")}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	results, err := e.Search([]float32{0, 0}, 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("got %d results, want 1", len(results))
	}
}

func TestSearch_EmptyEngine(t *testing.T) {
	e := mustEngine(t, 2, index.MetricEuclidean)

	results, err := e.Search([]float32{0, 0}, 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results, want 0", len(results))
	}
}
