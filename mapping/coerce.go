package mapping

import (
	"encoding/json"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"
)

// toNumber coerces a decoded JSON value to a finite float64. Numbers and
// numeric strings convert; everything else reports false.
func toNumber(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case json.Number:
		var err error
		if f, err = n.Float64(); err != nil {
			return 0, false
		}
	case float64:
		f = n
	case int:
		f = float64(n)
	case string:
		var err error
		if f, err = strconv.ParseFloat(strings.TrimSpace(n), 64); err != nil {
			return 0, false
		}
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func number(v any) float64 {
	f, _ := toNumber(v)
	return f
}

func positiveOr(v any, def float64) float64 {
	if f, ok := toNumber(v); ok && f > 0 {
		return f
	}
	return def
}

func nonNegative(v any) float64 {
	if f, ok := toNumber(v); ok && f > 0 {
		return f
	}
	return 0
}

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case json.Number:
		return s.String()
	}
	return ""
}

func asObject(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func asList(v any) []any {
	switch l := v.(type) {
	case []any:
		return l
	case map[string]any:
		// a lone spot object instead of a one-element list
		return []any{l}
	}
	return nil
}

// first returns the value of the first key present with a non-nil value.
func first(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

// sortedKeys gives map iteration a stable order so spots sharing a key keep
// the same order on every run.
func sortedKeys(m map[string]any) []string {
	return slices.Sorted(maps.Keys(m))
}
