package pipeline

import (
	"context"

	domcat "github.com/lumenkart/shopassist/internal/domain/catalog"
	"github.com/lumenkart/shopassist/internal/domain/record"
	"github.com/lumenkart/shopassist/internal/domain/search/result"
)

// Generator produces natural-language output from ranked results.
type Generator interface {
	Generate(ctx context.Context, query string, results []result.Result) (string, error)
	ExpandQuery(ctx context.Context, query string) (string, error)
}

// Catalog is the persistence contract for product catalogs.
type Catalog interface {
	AllRecords(ctx context.Context) ([]record.Record, error)
	AddRecord(ctx context.Context, catalogName string, rec record.Record) error
	Filter(ctx context.Context, f domcat.Filter) ([]record.Record, error)
}
