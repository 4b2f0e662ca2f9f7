package tables

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ExtractInt normalizes an integer scalar from the formats the parser and
// hand-written fixtures produce: json.Number, float64, the Go int types and
// numeric strings. Fractional floats are rejected.
//
// Returns ok=false for nil and for anything not representable as an int.
func ExtractInt(val any) (int, bool) {
	if val == nil {
		return 0, false
	}

	switch v := val.(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int(v), true
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n), true
		}
		if f, err := v.Float64(); err == nil && f == math.Trunc(f) {
			return int(f), true
		}
		return 0, false
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n, true
		}
		return 0, false
	default:
		return 0, false
	}
}

// ExtractString normalizes a string scalar. Numbers are formatted in their
// decimal form; nil yields ok=false.
func ExtractString(val any) (string, bool) {
	switch v := val.(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	default:
		return "", false
	}
}

// Int returns the integer value of a column.
func (r Row) Int(col string) (int, bool) {
	return ExtractInt(r[col])
}

// IntPtr returns the integer value of a column, or nil when absent.
func (r Row) IntPtr(col string) *int {
	if n, ok := r.Int(col); ok {
		return &n
	}
	return nil
}

// String returns the string value of a column.
func (r Row) String(col string) (string, bool) {
	return ExtractString(r[col])
}

// StringOr returns the string value of a column or fallback when absent.
func (r Row) StringOr(col, fallback string) string {
	if s, ok := r.String(col); ok {
		return s
	}
	return fallback
}
