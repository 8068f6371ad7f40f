package model

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

const fieldIDPrefix = "field_"

// maxIDAttempts bounds collision retries in GenerateUniqueFieldID.
const maxIDAttempts = 8

var ErrFieldIDExhausted = errors.New("model: could not generate a unique field id")

// GenerateFieldID returns a new field id. UUIDv7 encodes a millisecond
// timestamp followed by random bits, so ids sort by creation time.
func GenerateFieldID() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return fieldIDPrefix + strings.ReplaceAll(id.String(), "-", "")
}

// GenerateUniqueFieldID returns an id that does not collide with any field
// already in fields.
func GenerateUniqueFieldID(fields []FieldDefinition) (string, error) {
	taken := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		taken[field.ID] = struct{}{}
	}
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id := GenerateFieldID()
		if _, exists := taken[id]; !exists {
			return id, nil
		}
	}
	return "", ErrFieldIDExhausted
}
