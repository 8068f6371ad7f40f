package validation

import (
	"sort"

	"github.com/goliatone/go-formbuilder/pkg/diag"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/visibility"
)

// Result is the outcome of validating a whole submission.
type Result struct {
	Valid bool `json:"valid"`
	// Fields maps a field key to its violation messages. Only failing fields
	// appear.
	Fields map[string][]string `json:"fields,omitempty"`
	// Hidden lists the keys of fields skipped because their condition hid
	// them, sorted.
	Hidden []string `json:"hidden,omitempty"`
	// Disabled lists the keys of visible fields that do not accept input,
	// sorted.
	Disabled []string `json:"disabled,omitempty"`
}

// SubmissionOption configures ValidateSubmission.
type SubmissionOption func(*submissionConfig)

type submissionConfig struct {
	evaluator visibility.Evaluator
	extras    map[string]any
	sink      diag.Sink
	rules     []Option
}

// WithEvaluator reuses an existing evaluator, typically a visibility.Engine
// built once for the schema, instead of building one per call.
func WithEvaluator(evaluator visibility.Evaluator) SubmissionOption {
	return func(c *submissionConfig) {
		c.evaluator = evaluator
	}
}

// WithExtras passes extra context to expression conditions.
func WithExtras(extras map[string]any) SubmissionOption {
	return func(c *submissionConfig) {
		c.extras = extras
	}
}

// WithSubmissionSink routes diagnostics from condition and rule evaluation to
// sink.
func WithSubmissionSink(sink diag.Sink) SubmissionOption {
	return func(c *submissionConfig) {
		c.sink = diag.OrNop(sink)
	}
}

// WithRuleOptions forwards options to each per-field Validate call.
func WithRuleOptions(opts ...Option) SubmissionOption {
	return func(c *submissionConfig) {
		c.rules = append(c.rules, opts...)
	}
}

// ValidateSubmission validates every currently visible field of schema.
// Hidden fields are exempt, including from required checks. Disabled fields
// are validated only when they carry a value, since the user could not have
// supplied one.
func ValidateSubmission(schema model.FormSchema, values map[string]any, opts ...SubmissionOption) Result {
	cfg := &submissionConfig{sink: diag.Nop}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	if cfg.evaluator == nil {
		cfg.evaluator = visibility.NewEngine(schema, visibility.WithSink(cfg.sink))
	}
	ruleOpts := append([]Option{WithSink(cfg.sink)}, cfg.rules...)
	ctx := visibility.Context{Values: values, Extras: cfg.extras}

	result := Result{Valid: true}
	for _, field := range schema.Fields {
		key := field.Key()
		state := cfg.evaluator.State(field.ID, ctx)
		if !state.Visible {
			result.Hidden = append(result.Hidden, key)
			continue
		}
		value := ValueOf(field, values)
		if !state.Enabled {
			result.Disabled = append(result.Disabled, key)
			if missing(field, value) {
				continue
			}
		}
		messages := Validate(field, value, ruleOpts...)
		if len(messages) == 0 {
			continue
		}
		if result.Fields == nil {
			result.Fields = make(map[string][]string)
		}
		result.Fields[key] = append(result.Fields[key], messages...)
		result.Valid = false
	}
	sort.Strings(result.Hidden)
	sort.Strings(result.Disabled)
	return result
}

// ValueOf reads a field's submitted value by key, falling back to its id.
func ValueOf(field model.FieldDefinition, values map[string]any) any {
	if v, ok := values[field.Key()]; ok {
		return v
	}
	if v, ok := values[field.ID]; ok {
		return v
	}
	return nil
}
