package submission

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/validation"
)

var (
	// ErrRejected is matched by every RejectedError.
	ErrRejected = errors.New("submission: rejected")
	// ErrStoreRequired is returned by New when no store is supplied.
	ErrStoreRequired = errors.New("submission: store is required")
)

// RejectedError carries the validation result of a rejected submission so
// callers can render the violations back to the user.
type RejectedError struct {
	SchemaID string
	Result   validation.Result
}

func (e *RejectedError) Error() string {
	keys := make([]string, 0, len(e.Result.Fields))
	for key := range e.Result.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return fmt.Sprintf("submission: rejected: %d invalid field(s): %s", len(keys), strings.Join(keys, ", "))
}

func (e *RejectedError) Unwrap() error {
	return ErrRejected
}
