package onebot

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Params is the decoded params object of an ActionRequest. Numbers are kept
// as json.Number so large ids survive decoding.
type Params map[string]any

// Has reports whether key is present with a non-nil value.
func (p Params) Has(key string) bool {
	v, ok := p[key]
	return ok && v != nil
}

// String returns the value under key as a trimmed string, or "".
func (p Params) String(key string) string {
	s, _ := asString(p[key])
	return strings.TrimSpace(s)
}

// ID returns the value under key as a positive numeric id. Ids may arrive as
// numbers or as decimal strings.
func (p Params) ID(key string) (int64, bool) {
	return asID(p[key])
}

func asString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}

func asID(v any) (int64, bool) {
	var (
		n   int64
		err error
	)
	switch t := v.(type) {
	case json.Number:
		n, err = t.Int64()
	case string:
		n, err = strconv.ParseInt(strings.TrimSpace(t), 10, 64)
	case int:
		n = int64(t)
	case int64:
		n = t
	case float64:
		n = int64(t)
		if float64(n) != t {
			return 0, false
		}
	default:
		return 0, false
	}
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
