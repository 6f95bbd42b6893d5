package shopassist

import (
	"context"

	"github.com/lumenkart/shopassist/internal/domain/record"
)

// Item is a catalog record as plain Go values.
type Item map[string]any

// EmbeddingResult carries an embedding vector and token usage.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// Embedder vectorizes text. Implement it to plug a custom provider into the
// SDK instead of OpenAI.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// Match is one retrieved product with its ranking scores.
type Match struct {
	Item       Item
	Distance   float64
	Similarity float64
}

// Generator turns a query and its matches into a natural-language answer.
// Implement it to plug a custom model into the SDK instead of OpenAI.
type Generator interface {
	Generate(ctx context.Context, query string, matches []Match) (string, error)
}

// Filter selects catalog items by well-known attributes. Zero-value fields
// are inactive.
type Filter struct {
	Category string
	Tags     []string
	MinPrice *float64
	MaxPrice *float64
	InStock  *bool
}

// itemToRecord converts plain Go values into a catalog record.
func itemToRecord(item Item) (record.Record, error) {
	rec := make(record.Record, len(item))
	for k, raw := range item {
		v, err := record.FromAny(raw)
		if err != nil {
			return nil, err
		}
		rec[k] = v
	}
	return rec, nil
}

func recordToItem(rec record.Record) Item {
	item := make(Item, len(rec))
	for k, v := range rec {
		item[k] = valueToAny(v)
	}
	return item
}

func valueToAny(v record.Value) any {
	switch v.Kind() {
	case record.KindString:
		return v.Str()
	case record.KindNumber:
		return v.Num()
	case record.KindBool:
		return v.Truth()
	case record.KindList:
		out := make([]any, len(v.Items()))
		for i, item := range v.Items() {
			out[i] = valueToAny(item)
		}
		return out
	case record.KindObject:
		out := make(map[string]any, len(v.Fields()))
		for k, f := range v.Fields() {
			out[k] = valueToAny(f)
		}
		return out
	default:
		return nil
	}
}
