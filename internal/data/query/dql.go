// Package query implements DQL, a small SELECT-style language over the
// declaration index, and the service that executes it.
package query

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	dqlSelectRE    = regexp.MustCompile(`(?i)^\s*SELECT\s+(packages|classes|files|callables)(?:\s+WHERE\s+(.+?))?(?:\s+LIMIT\s+([0-9]+))?\s*$`)
	dqlAndSplitRE  = regexp.MustCompile(`(?i)\s+AND\s+`)
	dqlContainsRE  = regexp.MustCompile(`(?i)^\s*([a-z_]+)\s+CONTAINS\s+['"]([^'"]+)['"]\s*$`)
	dqlStringRE    = regexp.MustCompile(`(?i)^\s*([a-z_]+)\s*(=|!=)\s*['"]([^'"]+)['"]\s*$`)
	dqlValidFields = map[string]bool{
		"package": true,
		"name":    true,
		"owner":   true,
		"kind":    true,
		"path":    true,
	}
)

type Query struct {
	Target     string
	Conditions []Condition
	Limit      int
}

type Condition struct {
	Field string
	Op    string // "=", "!=" or "contains"
	Value string
}

func Parse(raw string) (Query, error) {
	matches := dqlSelectRE.FindStringSubmatch(strings.TrimSpace(raw))
	if len(matches) == 0 {
		return Query{}, fmt.Errorf("invalid DQL query: expected SELECT packages|classes|files|callables [WHERE ...] [LIMIT n]")
	}

	query := Query{Target: strings.ToLower(matches[1])}
	if matches[3] != "" {
		limit, err := strconv.Atoi(matches[3])
		if err != nil {
			return Query{}, fmt.Errorf("invalid LIMIT %q: %w", matches[3], err)
		}
		query.Limit = limit
	}

	where := strings.TrimSpace(matches[2])
	if where == "" {
		return query, nil
	}

	parts := dqlAndSplitRE.Split(where, -1)
	query.Conditions = make([]Condition, 0, len(parts))
	for _, part := range parts {
		condition, err := parseCondition(part)
		if err != nil {
			return Query{}, err
		}
		query.Conditions = append(query.Conditions, condition)
	}
	return query, nil
}

func parseCondition(raw string) (Condition, error) {
	if match := dqlContainsRE.FindStringSubmatch(raw); len(match) == 3 {
		return newCondition(match[1], "contains", match[2])
	}
	if match := dqlStringRE.FindStringSubmatch(raw); len(match) == 4 {
		return newCondition(match[1], match[2], match[3])
	}
	return Condition{}, fmt.Errorf("invalid DQL condition %q", strings.TrimSpace(raw))
}

func newCondition(field, op, value string) (Condition, error) {
	field = strings.ToLower(strings.TrimSpace(field))
	if !dqlValidFields[field] {
		return Condition{}, fmt.Errorf("unknown DQL field %q", field)
	}
	return Condition{Field: field, Op: op, Value: strings.TrimSpace(value)}, nil
}

// match evaluates the condition against a row's field values. Fields a row
// does not carry never match.
func (c Condition) match(fields map[string]string) bool {
	value, ok := fields[c.Field]
	if !ok {
		return false
	}
	switch c.Op {
	case "=":
		return value == c.Value
	case "!=":
		return value != c.Value
	case "contains":
		return strings.Contains(strings.ToLower(value), strings.ToLower(c.Value))
	}
	return false
}

func matchAll(conditions []Condition, fields map[string]string) bool {
	for _, c := range conditions {
		if !c.match(fields) {
			return false
		}
	}
	return true
}
