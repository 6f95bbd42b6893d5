// Package catalog defines catalog-level concepts shared between the
// repositories and the use case layer.
package catalog

import (
	"math"

	"github.com/lumenkart/shopassist/internal/domain/record"
)

// Filter selects catalog records by well-known attributes. Zero-value fields
// are inactive.
type Filter struct {
	Category string
	Tags     []string
	MinPrice *float64
	MaxPrice *float64
	InStock  *bool
}

// IsEmpty reports whether no constraint is active.
func (f Filter) IsEmpty() bool {
	return f.Category == "" && len(f.Tags) == 0 &&
		f.MinPrice == nil && f.MaxPrice == nil && f.InStock == nil
}

// Matches reports whether the record satisfies every active constraint.
func (f Filter) Matches(rec record.Record) bool {
	if f.Category != "" && rec.StringAttr("category") != f.Category {
		return false
	}
	if len(f.Tags) > 0 && !hasAnyTag(rec, f.Tags) {
		return false
	}
	if f.MinPrice != nil && priceOf(rec, 0) < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && priceOf(rec, math.Inf(1)) > *f.MaxPrice {
		return false
	}
	if f.InStock != nil && !stockMatches(rec, *f.InStock) {
		return false
	}
	return true
}

// hasAnyTag reports whether the record's "tags" list shares any entry with want.
func hasAnyTag(rec record.Record, want []string) bool {
	v, ok := rec.Get("tags")
	if !ok || v.Kind() != record.KindList {
		return false
	}
	for _, item := range v.Items() {
		if item.Kind() != record.KindString {
			continue
		}
		for _, w := range want {
			if item.Str() == w {
				return true
			}
		}
	}
	return false
}

// priceOf returns the "price" attribute, or fallback when absent or non-numeric.
func priceOf(rec record.Record, fallback float64) float64 {
	v, ok := rec.Get("price")
	if !ok || v.Kind() != record.KindNumber {
		return fallback
	}
	return v.Num()
}

// stockMatches reads availability.in_stock; a record without availability
// metadata never matches a stock filter.
func stockMatches(rec record.Record, want bool) bool {
	avail, ok := rec.Get("availability")
	if !ok || avail.Kind() != record.KindObject {
		return false
	}
	inStock, ok := avail.Fields()["in_stock"]
	if !ok || inStock.Kind() != record.KindBool {
		return false
	}
	return inStock.Truth() == want
}
