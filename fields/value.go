package fields

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/lvillar/formfill/mapping"
)

// Match reports whether the checkbox identified by compoundKey
// ("field.expected") is checked for rec. Booleans match the literal "true",
// strings compare case-insensitively, numbers compare by their decimal
// text. Match does not modify rec.
func Match(rec Record, compoundKey string) bool {
	field, expected := mapping.SplitCompound(compoundKey)
	switch v := rec[field].(type) {
	case nil:
		return false
	case bool:
		return v && strings.EqualFold(expected, "true")
	case string:
		return strings.EqualFold(v, expected)
	default:
		s := toText(v)
		return s != "" && s == expected
	}
}

func toText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	}
	return ""
}

// isBlank reports whether v counts as "not provided": nil, "", false or 0.
func isBlank(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case bool:
		return !x
	case json.Number:
		f, err := x.Float64()
		return err == nil && f == 0
	case float64:
		return x == 0
	case int:
		return x == 0
	}
	return false
}
