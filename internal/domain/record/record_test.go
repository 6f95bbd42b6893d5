package record

import (
	"encoding/json"
	"testing"
)

func TestValue_Equal(t *testing.T) {
	cases := []struct {
		name string
		a, b Value
		want bool
	}{
		{"equal strings", String("chair"), String("chair"), true},
		{"different strings", String("chair"), String("desk"), false},
		{"equal numbers", Number(19.99), Number(19.99), true},
		{"different numbers", Number(19.99), Number(20), false},
		{"equal bools", Bool(true), Bool(true), true},
		{"kind mismatch", String("1"), Number(1), false},
		{"equal lists", List(String("a"), String("b")), List(String("a"), String("b")), true},
		{"list order matters", List(String("a"), String("b")), List(String("b"), String("a")), false},
		{"list length differs", List(String("a")), List(String("a"), String("b")), false},
		{
			"equal objects",
			Object(map[string]Value{"in_stock": Bool(true)}),
			Object(map[string]Value{"in_stock": Bool(true)}),
			true,
		},
		{
			"object value differs",
			Object(map[string]Value{"in_stock": Bool(true)}),
			Object(map[string]Value{"in_stock": Bool(false)}),
			false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.Equal(tc.b); got != tc.want {
				t.Errorf("Equal() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestValue_JSONRoundTrip(t *testing.T) {
	src := Record{
		"name":  String("Ergo Chair"),
		"price": Number(249.5),
		"tags":  List(String("office"), String("ergonomic")),
		"availability": Object(map[string]Value{
			"in_stock": Bool(true),
			"count":    Number(12),
		}),
	}

	data, err := json.Marshal(src)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got Record
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	for k, v := range src {
		other, ok := got[k]
		if !ok {
			t.Fatalf("missing key %q after round trip", k)
		}
		if !v.Equal(other) {
			t.Errorf("key %q: %v != %v", k, v.Text(), other.Text())
		}
	}
}

func TestRecord_EmbeddingText(t *testing.T) {
	r := Record{
		"name":        String("Ergo Chair"),
		"description": String("Adjustable office chair"),
		"price":       Number(249.5),
	}
	if got := r.EmbeddingText(); got != "Ergo Chair Adjustable office chair" {
		t.Errorf("EmbeddingText() = %q", got)
	}
}

func TestRecord_EmbeddingText_MissingAttribute(t *testing.T) {
	r := Record{"name": String("Lamp")}
	// Missing description still contributes the separator.
	if got := r.EmbeddingText(); got != "Lamp " {
		t.Errorf("EmbeddingText() = %q", got)
	}
}

func TestRecord_Matches(t *testing.T) {
	r := Record{
		"category": String("chair"),
		"price":    Number(100),
	}

	if !r.Matches(Record{"category": String("chair")}) {
		t.Error("expected match on equal attribute")
	}
	if r.Matches(Record{"category": String("lamp")}) {
		t.Error("expected no match on differing attribute")
	}
	if r.Matches(Record{"color": String("red")}) {
		t.Error("expected no match on absent key")
	}
	if !r.Matches(nil) {
		t.Error("empty constraints must match everything")
	}
}

func TestValue_Text(t *testing.T) {
	v := List(String("office"), String("ergonomic"))
	if got := v.Text(); got != "office, ergonomic" {
		t.Errorf("Text() = %q", got)
	}
	n := Number(42)
	if got := n.Text(); got != "42" {
		t.Errorf("Text() = %q", got)
	}
}

func TestFromAny_UnsupportedType(t *testing.T) {
	if _, err := FromAny(struct{}{}); err == nil {
		t.Error("expected error for unsupported type")
	}
}
