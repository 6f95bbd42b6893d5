// Package record defines the opaque product record: a flat map of attribute
// names to tagged-union values. The index layer never interprets records;
// only the post-filter and the response generator read their attributes.
package record

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Kind discriminates the Value union.
type Kind int

const (
	// KindString is a text attribute.
	KindString Kind = iota
	// KindNumber is a float64 attribute.
	KindNumber
	// KindBool is a boolean attribute.
	KindBool
	// KindList is an ordered list of values.
	KindList
	// KindObject is a nested attribute map.
	KindObject
)

// Value is a tagged-union attribute value.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
	list []Value
	obj  map[string]Value
}

// String creates a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number creates a numeric value.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Bool creates a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// List creates a list value.
func List(vs ...Value) Value { return Value{kind: KindList, list: vs} }

// Object creates a nested object value.
func Object(m map[string]Value) Value { return Value{kind: KindObject, obj: m} }

// Kind returns the value kind.
func (v Value) Kind() Kind { return v.kind }

// Str returns the string payload (zero unless KindString).
func (v Value) Str() string { return v.str }

// Num returns the numeric payload (zero unless KindNumber).
func (v Value) Num() float64 { return v.num }

// Truth returns the boolean payload (zero unless KindBool).
func (v Value) Truth() bool { return v.b }

// Items returns the list payload (nil unless KindList).
func (v Value) Items() []Value { return v.list }

// Fields returns the object payload (nil unless KindObject).
func (v Value) Fields() map[string]Value { return v.obj }

// Equal reports deep, kind-aware equality.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindNumber:
		return v.num == o.num
	case KindBool:
		return v.b == o.b
	case KindList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(o.list[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(v.obj) != len(o.obj) {
			return false
		}
		for k, val := range v.obj {
			other, ok := o.obj[k]
			if !ok || !val.Equal(other) {
				return false
			}
		}
		return true
	}
	return false
}

// Text renders the value for prompt building and display.
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindList:
		parts := make([]string, len(v.list))
		for i, item := range v.list {
			parts[i] = item.Text()
		}
		return strings.Join(parts, ", ")
	case KindObject:
		keys := make([]string, 0, len(v.obj))
		for k := range v.obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + "=" + v.obj[k].Text()
		}
		return strings.Join(parts, ", ")
	}
	return ""
}

// MarshalJSON encodes the value as its natural JSON form.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		return json.Marshal(v.num)
	case KindBool:
		return json.Marshal(v.b)
	case KindList:
		return json.Marshal(v.list)
	case KindObject:
		return json.Marshal(v.obj)
	}
	return []byte("null"), nil
}

// UnmarshalJSON decodes any JSON value into the matching kind.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("decode value: %w", err)
	}
	parsed, err := FromAny(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// FromAny converts a decoded JSON value (string, bool, json.Number, float64,
// []any, map[string]any) into a Value.
func FromAny(raw any) (Value, error) {
	switch t := raw.(type) {
	case nil:
		return String(""), nil
	case string:
		return String(t), nil
	case bool:
		return Bool(t), nil
	case float64:
		return Number(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("parse number %q: %w", t.String(), err)
		}
		return Number(f), nil
	case []any:
		items := make([]Value, len(t))
		for i, item := range t {
			v, err := FromAny(item)
			if err != nil {
				return Value{}, err
			}
			items[i] = v
		}
		return List(items...), nil
	case map[string]any:
		fields := make(map[string]Value, len(t))
		for k, item := range t {
			v, err := FromAny(item)
			if err != nil {
				return Value{}, err
			}
			fields[k] = v
		}
		return Object(fields), nil
	default:
		return Value{}, fmt.Errorf("unsupported attribute type %T", raw)
	}
}

// Record is an opaque attribute map stored verbatim alongside a vector.
type Record map[string]Value

// Get returns the attribute value for key.
func (r Record) Get(key string) (Value, bool) {
	v, ok := r[key]
	return v, ok
}

// StringAttr returns the string payload of key, or "" when absent or non-string.
func (r Record) StringAttr(key string) string {
	v, ok := r[key]
	if !ok || v.Kind() != KindString {
		return ""
	}
	return v.Str()
}

// DefaultEmbeddingKeys are the attributes joined into the embedding input.
var DefaultEmbeddingKeys = []string{"name", "description"}

// EmbeddingText joins the designated textual attributes with a single space.
// Absent attributes contribute an empty string, matching positional joining.
func (r Record) EmbeddingText(keys ...string) string {
	if len(keys) == 0 {
		keys = DefaultEmbeddingKeys
	}
	parts := make([]string, len(keys))
	for i, k := range keys {
		if v, ok := r[k]; ok {
			parts[i] = v.Text()
		}
	}
	return strings.Join(parts, " ")
}

// Matches reports whether every key/value constraint holds on the record.
// A constraint fails when its key is absent or its value differs.
func (r Record) Matches(constraints Record) bool {
	for k, want := range constraints {
		got, ok := r[k]
		if !ok || !got.Equal(want) {
			return false
		}
	}
	return true
}

// Clone returns a shallow copy of the record (values are immutable).
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	c := make(Record, len(r))
	for k, v := range r {
		c[k] = v
	}
	return c
}
