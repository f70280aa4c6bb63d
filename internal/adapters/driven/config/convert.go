// Package config holds value conversions shared by ConfigStore implementations.
// Values arrive as whatever the backing format decodes to (TOML yields int64,
// float64 and []any), so accessors normalise them here.
package config

import (
	"sort"
	"strings"
	"time"
)

// ToString returns v as a string, or "" when it isn't one.
func ToString(v any) string {
	s, _ := v.(string)
	return s
}

// ToInt returns v as an int, or 0 when it isn't numeric.
func ToInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

// ToFloat returns v as a float64, widening integers.
func ToFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}

// ToBool returns v as a bool, or false when it isn't one.
func ToBool(v any) bool {
	b, _ := v.(bool)
	return b
}

// ToDuration accepts a Go duration string, a time.Duration, or whole seconds.
func ToDuration(v any) time.Duration {
	switch d := v.(type) {
	case time.Duration:
		return d
	case string:
		parsed, err := time.ParseDuration(strings.TrimSpace(d))
		if err != nil {
			return 0
		}
		return parsed
	case int, int64, float64:
		return time.Duration(ToFloat(d) * float64(time.Second))
	default:
		return 0
	}
}

// ToStringSlice returns v as a []string, dropping non-string elements.
func ToStringSlice(v any) []string {
	switch s := v.(type) {
	case []string:
		return s
	case []any:
		result := make([]string, 0, len(s))
		for _, item := range s {
			if str, ok := item.(string); ok {
				result = append(result, str)
			}
		}
		return result
	default:
		return nil
	}
}

// Unflatten expands dot-notation keys into nested maps for serialisation.
// E.g., {"a.b": 1} becomes {"a": {"b": 1}}. A key whose path collides with a
// value is kept verbatim as a dotted key.
func Unflatten(flat map[string]any) map[string]any {
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	root := make(map[string]any)
	for _, key := range keys {
		if !setPath(root, strings.Split(key, "."), flat[key]) {
			root[key] = flat[key]
		}
	}
	return root
}

func setPath(node map[string]any, parts []string, v any) bool {
	for _, part := range parts[:len(parts)-1] {
		child, exists := node[part]
		if !exists {
			next := make(map[string]any)
			node[part] = next
			node = next
			continue
		}
		next, ok := child.(map[string]any)
		if !ok {
			return false
		}
		node = next
	}
	last := parts[len(parts)-1]
	if _, exists := node[last]; exists {
		return false
	}
	node[last] = v
	return true
}

// Flatten converts nested maps to dot-notation keys.
// E.g., {"a": {"b": 1}} becomes {"a.b": 1}.
func Flatten(m map[string]any, prefix string) map[string]any {
	result := make(map[string]any)

	for key, value := range m {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}

		if nested, ok := value.(map[string]any); ok {
			for k, v := range Flatten(nested, fullKey) {
				result[k] = v
			}
		} else {
			result[fullKey] = value
		}
	}

	return result
}
