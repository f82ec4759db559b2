// Package jsontree reads optional values out of decoded, schema-less JSON.
//
// A tree is whatever encoding/json produces when decoding into any:
// map[string]any objects, []any arrays and scalar leaves. Lookups never panic;
// a missing key or a non-object node simply yields "absent".
package jsontree

import (
	"math"

	"github.com/spf13/cast"
)

// Get walks keys through nested objects. The boolean is false when a key is
// missing or an intermediate node is not an object. A present JSON null is
// returned as (nil, true).
func Get(v any, keys ...string) (any, bool) {
	cur := v
	for _, key := range keys {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}

		next, ok := obj[key]
		if !ok {
			return nil, false
		}
		cur = next
	}

	return cur, true
}

// GetOr is Get with a default for absent paths.
func GetOr(v any, def any, keys ...string) any {
	val, ok := Get(v, keys...)
	if !ok {
		return def
	}

	return val
}

// String returns the value at keys coerced to a string, or nil when the value
// is absent, null or not representable as a string.
func String(v any, keys ...string) *string {
	val, ok := present(v, keys...)
	if !ok {
		return nil
	}

	s, err := cast.ToStringE(val)
	if err != nil {
		return nil
	}

	return &s
}

// Int returns the value at keys coerced to an integer, or nil. Numeric strings
// in float notation ("2.5", "1.5e6") are truncated toward zero.
func Int(v any, keys ...string) *int64 {
	val, ok := present(v, keys...)
	if !ok {
		return nil
	}

	// Booleans are not counts.
	if _, isBool := val.(bool); isBool {
		return nil
	}

	n, err := cast.ToInt64E(val)
	if err == nil {
		return &n
	}

	f, err := cast.ToFloat64E(val)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > math.MaxInt64 {
		return nil
	}
	n = int64(f)

	return &n
}

// Float returns the value at keys coerced to a float, or nil.
func Float(v any, keys ...string) *float64 {
	val, ok := present(v, keys...)
	if !ok {
		return nil
	}

	if _, isBool := val.(bool); isBool {
		return nil
	}

	f, err := cast.ToFloat64E(val)
	if err != nil {
		return nil
	}

	return &f
}

// Slice returns the array at keys, or nil when absent or not an array.
func Slice(v any, keys ...string) []any {
	val, _ := Get(v, keys...)
	items, _ := val.([]any)

	return items
}

// Object returns the object at keys, or nil when absent or not an object.
func Object(v any, keys ...string) map[string]any {
	val, _ := Get(v, keys...)
	obj, _ := val.(map[string]any)

	return obj
}

func present(v any, keys ...string) (any, bool) {
	val, ok := Get(v, keys...)
	if !ok || val == nil {
		return nil, false
	}

	return val, true
}
