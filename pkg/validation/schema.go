package validation

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/diag"
	"github.com/goliatone/go-formbuilder/pkg/layout"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/visibility"
)

// SchemaIssue represents a schema problem with optional location metadata.
type SchemaIssue struct {
	Path     string        `json:"path,omitempty"`
	Field    string        `json:"field,omitempty"`
	Code     diag.Code     `json:"code"`
	Severity diag.Severity `json:"severity"`
	Message  string        `json:"message"`
}

// SchemaValidationResult captures validation outcomes for builder previews
// and linting. Valid is false when any issue has error severity; warnings
// alone leave the schema valid.
type SchemaValidationResult struct {
	Valid  bool          `json:"valid"`
	Issues []SchemaIssue `json:"issues,omitempty"`
}

// Errors returns the error-severity issues.
func (r SchemaValidationResult) Errors() []SchemaIssue {
	var out []SchemaIssue
	for _, issue := range r.Issues {
		if issue.Severity == diag.SeverityError {
			out = append(out, issue)
		}
	}
	return out
}

// ValidateSchema checks the invariants a schema must satisfy before it is
// persisted or rendered: unique ids, known field types, option lists, widths,
// rule parameters, and condition references. Reference resolution, cycles
// and row overflow are checked with the same code the evaluators use, so the
// builder sees exactly what a render pass would degrade.
func ValidateSchema(schema model.FormSchema, opts ...Option) SchemaValidationResult {
	collector := diag.NewCollector()
	cfg := newConfig(opts)
	sink := diag.Tee(collector, cfg.sink)

	for _, field := range schema.Fields {
		checkField(field, sink)
	}
	visibility.NewEngine(schema, visibility.WithSink(sink), visibility.WithCacheSize(0))
	layout.OrganizeIntoRows(schema.Fields, schema.Settings, sink)

	index := schema.Index()
	result := SchemaValidationResult{Valid: true}
	for _, d := range collector.Diagnostics() {
		issue := SchemaIssue{
			Field:    d.FieldID,
			Code:     d.Code,
			Severity: d.Severity,
			Message:  d.Message,
		}
		if i, ok := index[d.FieldID]; ok && d.FieldID != "" {
			issue.Path = fmt.Sprintf("#/fields/%d", i)
		} else if d.FieldID == "" {
			issue.Path = "#/settings"
		}
		if d.Severity == diag.SeverityError {
			result.Valid = false
		}
		result.Issues = append(result.Issues, issue)
	}
	return result
}

func checkField(field model.FieldDefinition, sink diag.Sink) {
	id := field.ID
	if strings.TrimSpace(id) == "" {
		diag.Error(sink, diag.CodeMissingFieldID, "", "field %q has no id", field.DisplayLabel())
	}
	if !field.Type.Valid() {
		diag.Error(sink, diag.CodeUnknownFieldType, id, "unknown field type %q", field.Type)
	}

	switch {
	case field.Type.HasOptions() && len(field.Options) == 0:
		diag.Error(sink, diag.CodeMissingOptions, id, "%s field needs at least one option", field.Type)
	case field.Type.HasOptions():
		seen := make(map[string]struct{}, len(field.Options))
		for _, opt := range field.Options {
			if _, dup := seen[opt.Value]; dup {
				diag.Error(sink, diag.CodeDuplicateOption, id, "option value %q appears more than once", opt.Value)
				continue
			}
			seen[opt.Value] = struct{}{}
		}
	case len(field.Options) > 0:
		diag.Warn(sink, diag.CodeUnexpectedOptions, id, "%s field ignores its options", field.Type)
	}

	if field.Width < 0 || field.Width > layout.FullWidth {
		diag.Warn(sink, diag.CodeInvalidWidth, id, "width %d is outside 1..100", field.Width)
	}

	for _, rule := range field.Validation {
		switch rule.Type {
		case model.ValidationRuleRequired:
		case model.ValidationRuleMinLength, model.ValidationRuleMaxLength, model.ValidationRuleMin, model.ValidationRuleMax:
			if _, ok := ParamNumber(rule.Value); !ok {
				diag.Error(sink, diag.CodeInvalidRuleValue, id, "%s rule needs a numeric value, got %v", rule.Type, rule.Value)
			}
		case model.ValidationRulePattern:
			source, ok := rule.Value.(string)
			if !ok {
				diag.Error(sink, diag.CodeInvalidRuleValue, id, "pattern rule needs a string value, got %v", rule.Value)
				continue
			}
			if _, err := CompilePattern(source); err != nil {
				diag.Error(sink, diag.CodeInvalidPattern, id, "%v", err)
			}
		default:
			diag.Error(sink, diag.CodeUnknownRuleType, id, "unknown validation rule %q", rule.Type)
		}
	}
}
