package catalog

import (
	"testing"

	"github.com/lumenkart/shopassist/internal/domain/record"
)

func chair() record.Record {
	return record.Record{
		"name":     record.String("Ergo Chair"),
		"category": record.String("chair"),
		"tags":     record.List(record.String("office"), record.String("ergonomic")),
		"price":    record.Number(249.5),
		"availability": record.Object(map[string]record.Value{
			"in_stock": record.Bool(true),
		}),
	}
}

func fptr(f float64) *float64 { return &f }
func bptr(b bool) *bool       { return &b }

func TestFilter_Category(t *testing.T) {
	if !(Filter{Category: "chair"}).Matches(chair()) {
		t.Error("expected category match")
	}
	if (Filter{Category: "lamp"}).Matches(chair()) {
		t.Error("expected category mismatch")
	}
}

func TestFilter_TagsAnyOverlap(t *testing.T) {
	if !(Filter{Tags: []string{"ergonomic", "gaming"}}).Matches(chair()) {
		t.Error("expected match on overlapping tag")
	}
	if (Filter{Tags: []string{"gaming"}}).Matches(chair()) {
		t.Error("expected no match without overlap")
	}
	rec := record.Record{"name": record.String("untagged")}
	if (Filter{Tags: []string{"office"}}).Matches(rec) {
		t.Error("record without tags must not match a tag filter")
	}
}

func TestFilter_PriceRange(t *testing.T) {
	if !(Filter{MinPrice: fptr(100), MaxPrice: fptr(300)}).Matches(chair()) {
		t.Error("expected price in range")
	}
	if (Filter{MinPrice: fptr(300)}).Matches(chair()) {
		t.Error("expected price below min to fail")
	}
	if (Filter{MaxPrice: fptr(100)}).Matches(chair()) {
		t.Error("expected price above max to fail")
	}

	// A record without a price counts as 0 for min and +inf for max.
	free := record.Record{"name": record.String("brochure")}
	if !(Filter{MinPrice: fptr(0)}).Matches(free) {
		t.Error("priceless record must pass min 0")
	}
	if (Filter{MaxPrice: fptr(1000)}).Matches(free) {
		t.Error("priceless record must fail any max filter")
	}
}

func TestFilter_InStock(t *testing.T) {
	if !(Filter{InStock: bptr(true)}).Matches(chair()) {
		t.Error("expected in-stock match")
	}
	if (Filter{InStock: bptr(false)}).Matches(chair()) {
		t.Error("expected out-of-stock mismatch")
	}
	// No availability metadata: never matches a stock filter.
	rec := record.Record{"name": record.String("mystery")}
	if (Filter{InStock: bptr(true)}).Matches(rec) || (Filter{InStock: bptr(false)}).Matches(rec) {
		t.Error("record without availability must not match stock filters")
	}
}

func TestFilter_Empty(t *testing.T) {
	f := Filter{}
	if !f.IsEmpty() {
		t.Error("zero filter must be empty")
	}
	if !f.Matches(record.Record{}) {
		t.Error("empty filter matches everything")
	}
}
