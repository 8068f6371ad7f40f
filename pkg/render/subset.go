package render

import (
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// FieldSubset filters which fields a render pass emits. Filters combine with
// OR: a field is kept when any configured filter matches it. An empty subset
// keeps every field.
type FieldSubset struct {
	// Fields lists field keys or ids.
	Fields []string
	Types  []model.FieldType
	// Rows lists explicit row ids.
	Rows []string
}

// ParseSubset reads a comma separated list of field keys or ids.
func ParseSubset(raw string) FieldSubset {
	return FieldSubset{Fields: parseTokenList(raw)}
}

// Empty reports whether the subset has no filters.
func (s FieldSubset) Empty() bool {
	return newSubsetMatcher(s).empty()
}

// Matches reports whether field passes the subset filters.
func (s FieldSubset) Matches(field model.FieldDefinition) bool {
	return newSubsetMatcher(s).matches(field)
}

type subsetMatcher struct {
	fields map[string]struct{}
	types  map[string]struct{}
	rows   map[string]struct{}
}

func newSubsetMatcher(subset FieldSubset) subsetMatcher {
	types := make([]string, 0, len(subset.Types))
	for _, t := range subset.Types {
		types = append(types, string(t))
	}
	return subsetMatcher{
		fields: normaliseTokens(subset.Fields),
		types:  normaliseTokens(types),
		rows:   normaliseTokens(subset.Rows),
	}
}

func (m subsetMatcher) empty() bool {
	return len(m.fields) == 0 && len(m.types) == 0 && len(m.rows) == 0
}

func (m subsetMatcher) matches(field model.FieldDefinition) bool {
	if m.empty() {
		return true
	}
	if contains(m.fields, field.Key()) || contains(m.fields, field.ID) {
		return true
	}
	if contains(m.types, string(field.Type)) {
		return true
	}
	return field.RowID != "" && contains(m.rows, field.RowID)
}

func contains(set map[string]struct{}, value string) bool {
	if len(set) == 0 {
		return false
	}
	_, ok := set[normaliseToken(value)]
	return ok
}

func normaliseTokens(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	result := make(map[string]struct{}, len(values))
	for _, value := range values {
		token := normaliseToken(value)
		if token == "" {
			continue
		}
		result[token] = struct{}{}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func normaliseToken(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func parseTokenList(raw string) []string {
	parts := strings.FieldsFunc(raw, func(r rune) bool { return r == ',' })
	seen := make(map[string]struct{}, len(parts))
	tokens := make([]string, 0, len(parts))
	for _, part := range parts {
		token := strings.TrimSpace(part)
		if token == "" {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		tokens = append(tokens, token)
	}
	if len(tokens) == 0 {
		return nil
	}
	return tokens
}
