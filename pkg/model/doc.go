// Package model defines the form schema consumed by the evaluator, organizer,
// validator and renderers. A FormSchema is an ordered list of FieldDefinition
// values plus form-level Settings; it round-trips through JSON and YAML via the
// struct tags declared here. Field types form a closed set and every type has
// an entry in the defaults table used by NewField, so adding a type without
// defaults is caught by TestDefaultsCoverEveryFieldType.
//
// The package also hosts builder-side editing helpers (AddField, MoveField,
// UpsertValidationRule). These are authoring operations: they dedupe rules by
// type, whereas the validation engine always processes every rule entry.
package model
