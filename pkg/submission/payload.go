package submission

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/validation"
)

// Payload is the normalised data of an accepted submission, keyed by field
// name falling back to id.
type Payload map[string]any

// Clone returns a shallow copy.
func (p Payload) Clone() Payload {
	if p == nil {
		return nil
	}
	out := make(Payload, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// BuildPayload keeps the values of fields whose key is not listed in hidden,
// coercing number and checkbox values to float64 and bool. Fields without a
// value are omitted.
func BuildPayload(schema model.FormSchema, values map[string]any, hidden []string) Payload {
	skip := make(map[string]struct{}, len(hidden))
	for _, key := range hidden {
		skip[key] = struct{}{}
	}
	payload := make(Payload)
	for _, field := range schema.Fields {
		key := field.Key()
		if _, ok := skip[key]; ok {
			continue
		}
		if _, dup := payload[key]; dup {
			continue
		}
		value, ok := Normalize(field, validation.ValueOf(field, values))
		if !ok {
			continue
		}
		payload[key] = value
	}
	return payload
}

// Normalize coerces a raw value to the representation stored for field. The
// second result is false when the field has no value worth storing.
func Normalize(field model.FieldDefinition, value any) (any, bool) {
	if value == nil {
		return nil, false
	}
	switch field.Type {
	case model.FieldTypeNumber:
		return normalizeNumber(value)
	case model.FieldTypeCheckbox:
		return normalizeBool(value), true
	default:
		return value, true
	}
}

func normalizeNumber(value any) (any, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint64:
		return float64(v), true
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return nil, false
		}
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return f, true
		}
		return v, true
	default:
		return value, true
	}
}

func normalizeBool(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "on", "1", "yes":
			return true
		}
		return false
	case float64:
		return v != 0
	case int:
		return v != 0
	default:
		return false
	}
}
