package formatter

import (
	"fmt"
	"sort"
	"strings"
)

type object = map[string]interface{}

// payload returns the object carried by data: the "data" member of an envelope, or data itself
func payload(data interface{}) (object, bool) {
	m, ok := data.(object)
	if !ok {
		return nil, false
	}
	if inner, ok := m["data"].(object); ok {
		return inner, true
	}
	return m, true
}

// records returns the list carried by data: a bare list or the "data" member of an envelope
func records(data interface{}) ([]object, bool) {
	var list []interface{}
	switch v := data.(type) {
	case []interface{}:
		list = v
	case object:
		inner, ok := v["data"].([]interface{})
		if !ok {
			return nil, false
		}
		list = inner
	default:
		return nil, false
	}

	out := make([]object, 0, len(list))
	for _, item := range list {
		m, ok := item.(object)
		if !ok {
			return nil, false
		}
		out = append(out, m)
	}
	return out, true
}

func str(m object, key string) (string, bool) {
	s, ok := m[key].(string)
	return s, ok
}

func stringList(v interface{}) ([]string, bool) {
	list, ok := v.([]interface{})
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

// pair is one entry of a map field
type pair struct {
	key   string
	value string
}

// sortedPairs renders a map field in key order
func sortedPairs(v interface{}) ([]pair, bool) {
	m, ok := v.(object)
	if !ok {
		return nil, false
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]pair, 0, len(keys))
	for _, k := range keys {
		out = append(out, pair{key: k, value: scalar(m[k])})
	}
	return out, true
}

func scalar(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%g", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// titleKey turns "age_limit" into "Age Limit"
func titleKey(key string) string {
	words := strings.Fields(strings.ReplaceAll(key, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}

func firstN(values []string, n int) []string {
	if len(values) > n {
		return values[:n]
	}
	return values
}
