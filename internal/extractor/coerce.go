package extractor

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"call-quality-go/internal/types"
)

// Every reader below returns (value, ok). ok=false means "use the default";
// callers never see an error for a missing or mistyped field.

func asObject(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

// unwrap turns the oracle's top-level value into the working object. A
// singleton array is unwrapped; anything that is not an object becomes {}.
func unwrap(raw any) map[string]any {
	if arr, ok := raw.([]any); ok {
		if len(arr) == 0 {
			return map[string]any{}
		}
		raw = arr[0]
	}
	if m, ok := asObject(raw); ok {
		return m
	}
	return map[string]any{}
}

// section reads a nested object, defaulting to {}.
func section(obj map[string]any, keys ...string) map[string]any {
	v, _ := lookup(obj, keys...)
	if m, ok := asObject(v); ok {
		return m
	}
	return map[string]any{}
}

// lookup returns the first non-null value among alternate key names.
func lookup(obj map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := obj[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func asFloat(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case json.Number:
		n, err := x.Float64()
		if err != nil {
			return 0, false
		}
		f = n
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(x), "s")), 64)
		if err != nil {
			return 0, false
		}
		f = n
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func asInt(v any) (int, bool) {
	f, ok := asFloat(v)
	if !ok || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(math.Round(f)), true
}

func asBool(v any) (bool, bool) {
	switch x := v.(type) {
	case bool:
		return x, true
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "true", "yes", "1", "taip":
			return true, true
		case "false", "no", "0", "ne", "":
			return false, true
		}
		return false, false
	}
	if f, ok := asFloat(v); ok {
		return f != 0, true
	}
	return false, false
}

func asString(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case json.Number:
		return x.String(), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(x), true
	}
	return "", false
}

func asList(v any) []any {
	l, _ := v.([]any)
	return l
}

// Defaulting readers over an object.

func num(obj map[string]any, def float64, keys ...string) float64 {
	v, ok := lookup(obj, keys...)
	if !ok {
		return def
	}
	if f, ok := asFloat(v); ok && f >= 0 {
		return f
	}
	return def
}

// score reads a 0-100 value. Out of range is treated like missing.
func score(obj map[string]any, def float64, keys ...string) float64 {
	f := num(obj, -1, keys...)
	if f < 0 || f > 100 {
		return def
	}
	return f
}

// unit reads a 0-1 confidence. Values in (1,100] are read as percentages.
func unit(obj map[string]any, def float64, keys ...string) float64 {
	f := num(obj, -1, keys...)
	switch {
	case f >= 0 && f <= 1:
		return f
	case f > 1 && f <= 100:
		return f / 100
	}
	return def
}

func count(obj map[string]any, def int, keys ...string) int {
	v, ok := lookup(obj, keys...)
	if !ok {
		return def
	}
	if n, ok := asInt(v); ok && n >= 0 {
		return n
	}
	return def
}

func flag(obj map[string]any, def bool, keys ...string) bool {
	v, ok := lookup(obj, keys...)
	if !ok {
		return def
	}
	if b, ok := asBool(v); ok {
		return b
	}
	return def
}

func text(obj map[string]any, def string, keys ...string) string {
	v, ok := lookup(obj, keys...)
	if !ok {
		return def
	}
	if s, ok := asString(v); ok {
		return strings.TrimSpace(s)
	}
	return def
}

// nonEmpty is text with an empty string also falling back to def.
func nonEmpty(obj map[string]any, def string, keys ...string) string {
	if s := text(obj, "", keys...); s != "" {
		return s
	}
	return def
}

// strs reads a list of strings. A bare string is a one-element list;
// non-string entries and blanks are dropped.
func strs(obj map[string]any, keys ...string) []string {
	out := []string{}
	v, ok := lookup(obj, keys...)
	if !ok {
		return out
	}
	if s, ok := v.(string); ok {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
		return out
	}
	for _, e := range asList(v) {
		if len(out) == types.MaxEntries {
			break
		}
		if s, ok := e.(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// enums maps every string in a list through parse.
func enums[T ~string](obj map[string]any, parse func(string) T, keys ...string) []T {
	raw := strs(obj, keys...)
	out := make([]T, 0, len(raw))
	for _, s := range raw {
		out = append(out, parse(s))
	}
	return out
}

// entries converts each object in a list on its own. An entry that fails to
// convert is dropped without affecting the rest.
func entries[T any](obj map[string]any, convert func(map[string]any) (T, bool), keys ...string) []T {
	out := []T{}
	v, _ := lookup(obj, keys...)
	for _, e := range asList(v) {
		if len(out) == types.MaxEntries {
			break
		}
		m, ok := asObject(e)
		if !ok {
			continue
		}
		if item, ok := convert(m); ok {
			out = append(out, item)
		}
	}
	return out
}

// timestamp reads an optional point in time. Absent is 0; present but
// unusable rejects the entry.
func timestamp(obj map[string]any, keys ...string) (float64, bool) {
	v, ok := lookup(obj, keys...)
	if !ok {
		return 0, true
	}
	f, ok := asFloat(v)
	if !ok || f < 0 {
		return 0, false
	}
	return f, true
}

// span reads a required start and end. end may be absent when a duration is given.
func span(obj map[string]any, startKeys, endKeys, durKeys []string) (start, end float64, ok bool) {
	v, ok := lookup(obj, startKeys...)
	if !ok {
		return 0, 0, false
	}
	if start, ok = asFloat(v); !ok || start < 0 {
		return 0, 0, false
	}
	if v, has := lookup(obj, endKeys...); has {
		if end, ok = asFloat(v); !ok {
			return 0, 0, false
		}
	} else if v, has := lookup(obj, durKeys...); has {
		d, ok := asFloat(v)
		if !ok || d < 0 {
			return 0, 0, false
		}
		end = start + d
	} else {
		return 0, 0, false
	}
	if end < start {
		return 0, 0, false
	}
	return start, end, true
}

func round3(f float64) float64 { return math.Round(f*1000) / 1000 }
