package service

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Args is the opaque argument object of a tool or prompt call.
// Numbers arrive as json.Number from the HTTP transports and as float64 from
// the stdio transport; the accessors accept both.
type Args map[string]any

// String returns the argument as a string, or def when absent.
func (a Args) String(key, def string) string {
	v, ok := a[key]
	if !ok || v == nil {
		return def
	}
	switch t := v.(type) {
	case string:
		if t == "" {
			return def
		}
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// RequireString returns a non-empty string argument or a MissingParamsError.
func (a Args) RequireString(key string) (string, error) {
	s := a.String(key, "")
	if strings.TrimSpace(s) == "" {
		return "", &MissingParamsError{Params: []string{key}}
	}
	return s, nil
}

// Int returns the argument as an int, or def when absent or not numeric.
func (a Args) Int(key string, def int) int {
	switch t := a[key].(type) {
	case float64:
		return int(t)
	case int:
		return t
	case int64:
		return int(t)
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return int(n)
		}
		if f, err := t.Float64(); err == nil {
			return int(f)
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
			return n
		}
	}
	return def
}

// Bool returns the argument as a bool, or def when absent.
func (a Args) Bool(key string, def bool) bool {
	switch t := a[key].(type) {
	case bool:
		return t
	case string:
		if b, err := strconv.ParseBool(t); err == nil {
			return b
		}
	}
	return def
}

// StringSlice returns the argument as a list of strings. A comma separated
// string is split.
func (a Args) StringSlice(key string) []string {
	switch t := a[key].(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, v := range t {
			out = append(out, fmt.Sprint(v))
		}
		return out
	case string:
		if strings.TrimSpace(t) == "" {
			return nil
		}
		parts := strings.Split(t, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return nil
}

// ChainID returns the chainId argument, defaulting to Ethereum mainnet.
func (a Args) ChainID() int {
	return a.Int("chainId", 1)
}
