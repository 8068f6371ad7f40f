package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrDuplicateFieldID = errors.New("model: duplicate field id")
	ErrFieldNotFound    = errors.New("model: field not found")
)

// AddField appends field to the schema. A missing id is generated; an id that
// already exists is rejected. The field is ordered after every existing field.
func (s *FormSchema) AddField(field FieldDefinition) (FieldDefinition, error) {
	if s == nil {
		return field, errors.New("model: schema is nil")
	}
	if strings.TrimSpace(field.ID) == "" {
		id, err := GenerateUniqueFieldID(s.Fields)
		if err != nil {
			return field, err
		}
		field.ID = id
	}
	if _, exists := s.Field(field.ID); exists {
		return field, fmt.Errorf("%w: %q", ErrDuplicateFieldID, field.ID)
	}

	next := 0
	for _, existing := range s.Fields {
		if existing.Order >= next {
			next = existing.Order + 1
		}
	}
	field.Order = next
	s.Fields = append(s.Fields, field)
	return field, nil
}

// RemoveField deletes the field with the given id. Conditions on other fields
// that referenced it are left untouched; schema validation reports them.
func (s *FormSchema) RemoveField(id string) error {
	if s == nil {
		return ErrFieldNotFound
	}
	for i, field := range s.Fields {
		if field.ID == id {
			s.Fields = append(s.Fields[:i:i], s.Fields[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrFieldNotFound, id)
}

// UpdateField replaces the field carrying the same id.
func (s *FormSchema) UpdateField(field FieldDefinition) error {
	if s == nil {
		return ErrFieldNotFound
	}
	for i := range s.Fields {
		if s.Fields[i].ID == field.ID {
			s.Fields[i] = field
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrFieldNotFound, field.ID)
}

// MoveField moves the field to position index (clamped to the valid range)
// and renumbers every field's order to match its new array position.
func (s *FormSchema) MoveField(id string, index int) error {
	if s == nil {
		return ErrFieldNotFound
	}
	from := -1
	for i, field := range s.Fields {
		if field.ID == id {
			from = i
			break
		}
	}
	if from < 0 {
		return fmt.Errorf("%w: %q", ErrFieldNotFound, id)
	}
	if index < 0 {
		index = 0
	}
	if index >= len(s.Fields) {
		index = len(s.Fields) - 1
	}

	moved := s.Fields[from]
	rest := make([]FieldDefinition, 0, len(s.Fields)-1)
	rest = append(rest, s.Fields[:from]...)
	rest = append(rest, s.Fields[from+1:]...)

	out := make([]FieldDefinition, 0, len(s.Fields))
	out = append(out, rest[:index]...)
	out = append(out, moved)
	out = append(out, rest[index:]...)
	for i := range out {
		out[i].Order = i
	}
	s.Fields = out
	return nil
}

// JoinRow places the field in the given row with the given width.
func (s *FormSchema) JoinRow(id, rowID string, width int) error {
	if s == nil {
		return ErrFieldNotFound
	}
	for i := range s.Fields {
		if s.Fields[i].ID == id {
			s.Fields[i].RowID = rowID
			s.Fields[i].Width = width
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrFieldNotFound, id)
}

// DetachFromRow moves the field into a row of its own by assigning a freshly
// generated row id and full width.
func (s *FormSchema) DetachFromRow(id string) error {
	if s == nil {
		return ErrFieldNotFound
	}
	return s.JoinRow(id, "row_"+strings.ReplaceAll(uuid.NewString(), "-", ""), 100)
}

// UpsertValidationRule replaces the last rule of the same type or appends the
// rule when none exists. Earlier duplicates of that type are kept as-is; the
// validation engine still evaluates every entry. The field receives a new
// rule slice, so copies sharing the old one are left untouched.
func UpsertValidationRule(field *FieldDefinition, rule ValidationRule) {
	if field == nil {
		return
	}
	rules := make([]ValidationRule, len(field.Validation), len(field.Validation)+1)
	copy(rules, field.Validation)
	replaced := false
	for i := len(rules) - 1; i >= 0; i-- {
		if rules[i].Type == rule.Type {
			rules[i] = rule
			replaced = true
			break
		}
	}
	if !replaced {
		rules = append(rules, rule)
	}
	field.Validation = rules
	if rule.Type == ValidationRuleRequired {
		field.Required = true
	}
}

// RemoveValidationRule drops every rule of the given type. Removing the
// required rule also clears the Required flag. Like UpsertValidationRule it
// never writes into the existing slice.
func RemoveValidationRule(field *FieldDefinition, kind ValidationRuleType) {
	if field == nil {
		return
	}
	kept := make([]ValidationRule, 0, len(field.Validation))
	for _, rule := range field.Validation {
		if rule.Type != kind {
			kept = append(kept, rule)
		}
	}
	if len(kept) == 0 {
		kept = nil
	}
	field.Validation = kept
	if kind == ValidationRuleRequired {
		field.Required = false
	}
}
