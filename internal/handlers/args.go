package handlers

import (
	"strconv"
	"time"
)

// Argument values arrive from the query document as int64/string/bool and
// from JSON variables as float64/string/bool; these helpers normalize
// both forms.

func argString(args map[string]any, key string) (string, bool) {
	v, ok := args[key].(string)
	return v, ok
}

func argInt(args map[string]any, key string) (int, bool) {
	switch v := args[key].(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case string:
		n, err := strconv.Atoi(v)
		return n, err == nil
	}
	return 0, false
}

func argBool(args map[string]any, key string) (bool, bool) {
	v, ok := args[key].(bool)
	return v, ok
}

func argMap(args map[string]any, key string) (map[string]any, bool) {
	v, ok := args[key].(map[string]any)
	return v, ok
}

// argID accepts GraphQL ID inputs, which may be numeric or string.
func argID(args map[string]any, key string) (uint, bool) {
	switch v := args[key].(type) {
	case int64:
		return uint(v), true
	case float64:
		return uint(v), true
	case string:
		n, err := strconv.ParseUint(v, 10, 64)
		return uint(n), err == nil
	}
	return 0, false
}

func argIDs(args map[string]any, key string) ([]uint, bool) {
	list, ok := args[key].([]any)
	if !ok {
		return nil, false
	}
	ids := make([]uint, 0, len(list))
	for _, item := range list {
		switch v := item.(type) {
		case int64:
			ids = append(ids, uint(v))
		case float64:
			ids = append(ids, uint(v))
		case string:
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return nil, false
			}
			ids = append(ids, uint(n))
		default:
			return nil, false
		}
	}
	return ids, true
}

func argTime(args map[string]any, key string) (time.Time, bool) {
	s, ok := args[key].(string)
	if !ok {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

type pagination struct {
	Page    int
	PerPage int
}

func argPagination(args map[string]any, key string) (pagination, bool) {
	m, ok := argMap(args, key)
	if !ok {
		return pagination{}, false
	}
	page, ok1 := argInt(m, "page")
	perPage, ok2 := argInt(m, "perPage")
	if !ok1 || !ok2 || page < 1 || perPage < 1 {
		return pagination{}, false
	}
	return pagination{Page: page, PerPage: perPage}, true
}
