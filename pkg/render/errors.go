package render

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// ErrorMapping splits a server or storage error payload into field-level and
// form-level messages keyed by field key (name, falling back to id).
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// MergeFormErrors concatenates and normalises multiple form-level error
// slices, trimming whitespace and removing duplicates while preserving order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

// MapErrorPayload routes error payload entries onto field keys. Paths may be
// plain keys or ids, JSON pointers ("/body/email") or JSONPath-style
// ("$.data.tags[0]"). Leading envelope segments such as body or data and array
// indexes are skipped; the first remaining segment must name a field. Anything
// else becomes a form-level message so it is never lost.
func MapErrorPayload(schema model.FormSchema, payload map[string][]string) ErrorMapping {
	var mapping ErrorMapping
	if len(payload) == 0 {
		return mapping
	}

	keys := fieldKeys(schema.Fields)
	fields := make(map[string][]string)
	for path, messages := range payload {
		messages = normalizeMessages(messages)
		if len(messages) == 0 {
			continue
		}
		if key, ok := resolveErrorPath(path, keys); ok {
			fields[key] = append(fields[key], messages...)
			continue
		}
		mapping.Form = append(mapping.Form, messages...)
	}

	if len(fields) > 0 {
		mapping.Fields = fields
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

// envelopeSegments are request wrappers servers commonly nest fields under.
var envelopeSegments = map[string]struct{}{
	"body":       {},
	"request":    {},
	"payload":    {},
	"data":       {},
	"attributes": {},
	"fields":     {},
}

func resolveErrorPath(path string, keys map[string]string) (string, bool) {
	if isFormLevelKey(path) {
		return "", false
	}
	for _, segment := range splitErrorPath(path) {
		if key, ok := keys[segment]; ok {
			return key, true
		}
		if _, envelope := envelopeSegments[strings.ToLower(segment)]; envelope {
			continue
		}
		if _, err := strconv.Atoi(segment); err == nil {
			continue
		}
		return "", false
	}
	return "", false
}

// splitErrorPath breaks a pointer or dotted path into unescaped segments.
func splitErrorPath(path string) []string {
	path = strings.TrimLeft(strings.TrimSpace(path), "#$/.")
	parts := strings.FieldsFunc(path, func(r rune) bool {
		return r == '.' || r == '/' || r == '[' || r == ']'
	})
	out := parts[:0]
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		part = strings.ReplaceAll(part, "~1", "/")
		out = append(out, strings.ReplaceAll(part, "~0", "~"))
	}
	return out
}

// fieldKeys maps every key and id to the canonical field key. Keys win over
// ids when they collide.
func fieldKeys(fields []model.FieldDefinition) map[string]string {
	out := make(map[string]string, len(fields)*2)
	for _, field := range fields {
		key := strings.TrimSpace(field.Key())
		if key != "" {
			out[key] = key
		}
	}
	for _, field := range fields {
		key := strings.TrimSpace(field.Key())
		id := strings.TrimSpace(field.ID)
		if key == "" || id == "" {
			continue
		}
		if _, taken := out[id]; !taken {
			out[id] = key
		}
	}
	return out
}

func isFormLevelKey(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", ".", "/", "#", "$", "form", "base", "__all__", "non_field_errors", "non-field-errors":
		return true
	default:
		return false
	}
}

func normalizeMessages(messages []string) []string {
	var out []string
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		message = strings.TrimSpace(message)
		if message == "" {
			continue
		}
		if _, dup := seen[message]; dup {
			continue
		}
		seen[message] = struct{}{}
		out = append(out, message)
	}
	return out
}
