package render

import (
	"github.com/goliatone/go-formbuilder/pkg/diag"
	"github.com/goliatone/go-formbuilder/pkg/layout"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/validation"
	"github.com/goliatone/go-formbuilder/pkg/visibility"
)

// Plan is everything a renderer needs for one pass: the fields to draw, grouped
// into rows, with their state, value and errors already resolved.
type Plan struct {
	SchemaID string
	Settings model.Settings
	Mode     Mode
	// Method is the verb the browser submits with; MethodOverride carries the
	// original verb when it had to be tunnelled through POST.
	Method         string
	MethodOverride string
	Action         string
	Locale         string
	Rows           []PlanRow
	FormErrors     []string
	HiddenFields   []HiddenField
	// Schema is the schema the plan was built from. Interactive renderers
	// re-evaluate conditions against it as answers arrive.
	Schema model.FormSchema
}

// PlanRow is one visual row.
type PlanRow struct {
	ID     string
	Fields []PlanField
}

// PlanField is a field prepared for rendering.
type PlanField struct {
	Definition model.FieldDefinition
	Key        string
	Width      int
	Visible    bool
	Enabled    bool
	Value      any
	Errors     []string
}

// Fields flattens the rows in render order.
func (p Plan) Fields() []PlanField {
	var out []PlanField
	for _, row := range p.Rows {
		out = append(out, row.Fields...)
	}
	return out
}

// Field finds a planned field by key or id.
func (p Plan) Field(key string) (PlanField, bool) {
	for _, row := range p.Rows {
		for _, field := range row.Fields {
			if field.Key == key || field.Definition.ID == key {
				return field, true
			}
		}
	}
	return PlanField{}, false
}

// BuildPlan evaluates conditions for the supplied values and organises the
// resulting fields into rows. Public plans contain only visible fields; preview
// plans contain every field with Visible reporting its condition outcome. A nil
// evaluator builds an Engine for the schema. The schema is never mutated.
func BuildPlan(schema model.FormSchema, evaluator visibility.Evaluator, options RenderOptions, sink diag.Sink) Plan {
	sink = diag.OrNop(sink)
	if evaluator == nil {
		evaluator = visibility.NewEngine(schema, visibility.WithSink(sink))
	}
	mode := options.Mode
	if mode != ModePreview {
		mode = ModePublic
	}

	ctx := visibility.Context{Values: options.Values, Extras: options.Extras}
	matcher := newSubsetMatcher(options.Subset)
	states := make(map[string]visibility.State, len(schema.Fields))
	byID := make(map[string]model.FieldDefinition, len(schema.Fields))
	laidOut := make([]model.FieldDefinition, 0, len(schema.Fields))

	for _, field := range schema.Fields {
		if _, dup := byID[field.ID]; dup || !matcher.matches(field) {
			continue
		}
		state := evaluator.State(field.ID, ctx)
		states[field.ID] = state
		byID[field.ID] = field
		if state.Visible || mode == ModePreview {
			laidOut = append(laidOut, field)
		}
	}

	mapping := MapErrorPayload(schema, options.Errors)
	method, override := methodOverride(options.Method)
	plan := Plan{
		SchemaID:       schema.ID,
		Settings:       schema.Settings,
		Mode:           mode,
		Method:         method,
		MethodOverride: override,
		Action:         options.Action,
		Locale:         options.Locale,
		FormErrors:     MergeFormErrors(options.FormErrors, mapping.Form...),
		HiddenFields:   SortedHiddenFields(options.HiddenFields),
		Schema:         schema.Clone(),
	}

	for _, row := range layout.OrganizeIntoRows(laidOut, schema.Settings, sink) {
		planRow := PlanRow{ID: row.ID, Fields: make([]PlanField, 0, len(row.Cells))}
		for _, cell := range row.Cells {
			field := byID[cell.FieldID]
			state := states[cell.FieldID]
			value := validation.ValueOf(field, options.Values)
			if value == nil {
				value = field.DefaultValue
			}
			planRow.Fields = append(planRow.Fields, PlanField{
				Definition: field.Clone(),
				Key:        field.Key(),
				Width:      cell.Width,
				Visible:    state.Visible,
				Enabled:    state.Enabled,
				Value:      value,
				Errors:     mapping.Fields[field.Key()],
			})
		}
		plan.Rows = append(plan.Rows, planRow)
	}

	LocalizePlan(&plan, options)
	return plan
}
