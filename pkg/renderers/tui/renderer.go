package tui

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/goliatone/go-formbuilder/pkg/diag"
	"github.com/goliatone/go-formbuilder/pkg/layout"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/submission"
	"github.com/goliatone/go-formbuilder/pkg/validation"
	"github.com/goliatone/go-formbuilder/pkg/visibility"
)

const noneOption = "(none)"

// Renderer implements render.Renderer for terminal-driven sessions. Rather
// than drawing the form it walks the user through it one prompt at a time and
// returns the collected submission.
type Renderer struct {
	driver            PromptDriver
	outputFormat      OutputFormat
	submitTransformer SubmitTransformer
	theme             Theme
	sink              diag.Sink
	rules             []validation.Option
}

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		driver:       newSurveyDriver(),
		outputFormat: OutputFormatJSON,
		sink:         diag.Nop,
	}

	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}

	if r.driver == nil {
		r.driver = newSurveyDriver()
	}

	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain"
	default:
		return "application/json"
	}
}

// Render prompts for every field of the plan in reading order. Conditions are
// re-evaluated before each prompt, so fields appear and disappear as answers
// arrive. Disabled fields are skipped and keep their prefilled value. Each
// answer is validated on the spot and asked again until it passes. The output
// holds the visible fields only, serialized in the configured format.
func (r *Renderer) Render(ctx context.Context, plan render.Plan, opts render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.driver == nil {
		return nil, errors.New("tui: prompt driver is nil")
	}

	schema := plan.Schema
	if len(schema.Fields) == 0 {
		schema = schemaFromPlan(plan)
	}
	fields := promptOrder(schema, opts.Subset)
	if len(fields) == 0 {
		return nil, ErrNoFields
	}
	display := displayDefinitions(plan)
	engine := visibility.NewEngine(schema, visibility.WithSink(r.sink))
	state := NewState(opts.Values, opts.Errors)

	if err := r.intro(ctx, plan); err != nil {
		return nil, err
	}

	asked := make(map[string]bool, len(fields))
	for {
		progressed := false
		for _, field := range fields {
			if asked[field.ID] {
				continue
			}
			fieldState := engine.State(field.ID, visibility.Context{Values: state.Values(), Extras: opts.Extras})
			if !fieldState.Visible || !fieldState.Enabled {
				continue
			}
			asked[field.ID] = true
			progressed = true
			if shown, ok := display[field.ID]; ok {
				field = withDisplay(field, shown)
			}
			if err := r.promptField(ctx, field, state); err != nil {
				return nil, err
			}
		}
		if !progressed {
			break
		}
	}

	scope := schema
	scope.Fields = fields
	result := validation.ValidateSubmission(scope, state.Values(),
		validation.WithEvaluator(engine),
		validation.WithExtras(opts.Extras),
		validation.WithSubmissionSink(r.sink),
		validation.WithRuleOptions(r.rules...),
	)
	if !result.Valid {
		return nil, &submission.RejectedError{SchemaID: schema.ID, Result: result}
	}

	values := map[string]any(submission.BuildPayload(scope, state.Values(), result.Hidden))
	if r.submitTransformer != nil {
		var err error
		values, err = r.submitTransformer(values)
		if err != nil {
			return nil, fmt.Errorf("tui: submit transformer: %w", err)
		}
	}

	return r.serialize(values)
}

func (r *Renderer) intro(ctx context.Context, plan render.Plan) error {
	if title := strings.TrimSpace(plan.Settings.Title); title != "" {
		if err := r.driver.Info(ctx, r.theme.InfoPrefix+title); err != nil {
			return err
		}
	}
	if desc := strings.TrimSpace(plan.Settings.Description); desc != "" {
		if err := r.driver.Info(ctx, r.theme.InfoPrefix+desc); err != nil {
			return err
		}
	}
	for _, msg := range plan.FormErrors {
		if err := r.driver.Info(ctx, r.theme.ErrorPrefix+msg); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) promptField(ctx context.Context, field model.FieldDefinition, state *State) error {
	key := field.Key()
	label := r.theme.PromptPrefix + field.DisplayLabel()

	for _, msg := range state.ErrorsFor(key) {
		_ = r.driver.Info(ctx, fmt.Sprintf("%s%s: %s", r.theme.ErrorPrefix, field.DisplayLabel(), msg))
	}

	ruleOpts := append([]validation.Option{validation.WithSink(r.sink)}, r.rules...)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		value, err := r.ask(ctx, field, label, state)
		if err != nil {
			var invalid *invalidAnswerError
			if errors.As(err, &invalid) {
				_ = r.driver.Info(ctx, fmt.Sprintf("%sInvalid %s: %s", r.theme.ErrorPrefix, field.DisplayLabel(), invalid.msg))
				continue
			}
			return err
		}

		messages := validation.Validate(field, value, ruleOpts...)
		if len(messages) == 0 {
			state.Set(key, value)
			return nil
		}
		for _, msg := range messages {
			_ = r.driver.Info(ctx, fmt.Sprintf("%sInvalid %s: %s", r.theme.ErrorPrefix, field.DisplayLabel(), msg))
		}
	}
}

type invalidAnswerError struct {
	msg string
}

func (e *invalidAnswerError) Error() string {
	return "tui: " + e.msg
}

// ask runs the prompt matching the field type and converts the answer to the
// value stored for it. Blank optional answers map to nil.
func (r *Renderer) ask(ctx context.Context, field model.FieldDefinition, label string, state *State) (any, error) {
	current, _ := state.Value(field.Key())
	if current == nil {
		current = field.DefaultValue
	}
	help := strings.TrimSpace(field.Description)

	switch field.Type {
	case model.FieldTypeCheckbox:
		return r.driver.Confirm(ctx, ConfirmConfig{
			Message: label,
			Default: truthy(current),
			Help:    help,
		})

	case model.FieldTypeSelect, model.FieldTypeRadio:
		options, values := choiceOptions(field)
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message:      label,
			Options:      options,
			DefaultIndex: indexOfValue(values, current),
			Help:         help,
		})
		if err != nil {
			return nil, err
		}
		if idx < 0 || idx >= len(values) {
			return nil, &invalidAnswerError{msg: "choose one of the listed options"}
		}
		if values[idx] == nil {
			return nil, nil
		}
		return *values[idx], nil

	case model.FieldTypeTextarea:
		answer, err := r.driver.TextArea(ctx, TextAreaConfig{
			Message: label,
			Default: stringify(current),
			Help:    help,
		})
		return blankToNil(answer), err

	case model.FieldTypePassword:
		answer, err := r.driver.Password(ctx, InputConfig{Message: label, Help: help})
		return blankToNil(answer), err

	case model.FieldTypeNumber:
		answer, err := r.driver.Input(ctx, InputConfig{
			Message:     label,
			Default:     stringify(current),
			Help:        help,
			Placeholder: field.Placeholder,
		})
		if err != nil {
			return nil, err
		}
		trimmed := strings.TrimSpace(answer)
		if trimmed == "" {
			return nil, nil
		}
		n, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return nil, &invalidAnswerError{msg: "enter a number"}
		}
		return n, nil

	default:
		answer, err := r.driver.Input(ctx, InputConfig{
			Message:     label,
			Default:     stringify(current),
			Help:        help,
			Placeholder: field.Placeholder,
		})
		return blankToNil(answer), err
	}
}

func (r *Renderer) serialize(values map[string]any) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return []byte(flattenForm(values)), nil
	case OutputFormatPrettyText:
		return []byte(prettyPrint(values)), nil
	default:
		return json.Marshal(values)
	}
}

// promptOrder returns the fields in the reading order of the schema layout,
// restricted to subset.
func promptOrder(schema model.FormSchema, subset render.FieldSubset) []model.FieldDefinition {
	byID := make(map[string]model.FieldDefinition, len(schema.Fields))
	candidates := make([]model.FieldDefinition, 0, len(schema.Fields))
	for _, field := range schema.Fields {
		if _, dup := byID[field.ID]; dup || !subset.Matches(field) {
			continue
		}
		byID[field.ID] = field
		candidates = append(candidates, field)
	}
	var out []model.FieldDefinition
	for _, row := range layout.OrganizeIntoRows(candidates, schema.Settings, diag.Nop) {
		for _, id := range row.FieldIDs() {
			out = append(out, byID[id])
		}
	}
	return out
}

func schemaFromPlan(plan render.Plan) model.FormSchema {
	schema := model.FormSchema{ID: plan.SchemaID, Settings: plan.Settings}
	for _, field := range plan.Fields() {
		schema.Fields = append(schema.Fields, field.Definition)
	}
	return schema
}

// displayDefinitions indexes the plan's localized definitions by id.
func displayDefinitions(plan render.Plan) map[string]model.FieldDefinition {
	out := make(map[string]model.FieldDefinition)
	for _, field := range plan.Fields() {
		out[field.Definition.ID] = field.Definition
	}
	return out
}

func withDisplay(field, shown model.FieldDefinition) model.FieldDefinition {
	field.Label = shown.Label
	field.Placeholder = shown.Placeholder
	field.Description = shown.Description
	return field
}

func choiceOptions(field model.FieldDefinition) ([]string, []*string) {
	var (
		labels []string
		values []*string
	)
	if !isRequired(field) {
		labels = append(labels, noneOption)
		values = append(values, nil)
	}
	for _, opt := range field.Options {
		label := opt.Label
		if strings.TrimSpace(label) == "" {
			label = opt.Value
		}
		value := opt.Value
		labels = append(labels, label)
		values = append(values, &value)
	}
	return labels, values
}

func indexOfValue(values []*string, current any) int {
	want := stringify(current)
	for i, v := range values {
		if v != nil && *v == want && want != "" {
			return i
		}
	}
	return 0
}

func isRequired(field model.FieldDefinition) bool {
	return field.Required || field.HasRule(model.ValidationRuleRequired)
}

func blankToNil(answer string) any {
	if strings.TrimSpace(answer) == "" {
		return nil
	}
	return answer
}

func truthy(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "on", "1", "yes":
			return true
		}
	}
	return false
}

func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func flattenForm(values map[string]any) string {
	flattened := url.Values{}
	flatten("", values, flattened)
	return flattened.Encode()
}

func flatten(prefix string, value any, out url.Values) {
	switch v := value.(type) {
	case map[string]any:
		for key, val := range v {
			next := key
			if prefix != "" {
				next = prefix + "." + key
			}
			flatten(next, val, out)
		}
	case []any:
		for _, val := range v {
			out.Add(prefix+"[]", stringify(val))
		}
	default:
		out.Set(prefix, stringify(v))
	}
}

func prettyPrint(values map[string]any) string {
	var b strings.Builder
	writePretty(&b, "", values)
	return b.String()
}

func writePretty(b *strings.Builder, prefix string, value any) {
	switch v := value.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			next := key
			if prefix != "" {
				next = prefix + "." + key
			}
			writePretty(b, next, v[key])
		}
	case []any:
		for idx, val := range v {
			writePretty(b, fmt.Sprintf("%s[%d]", prefix, idx), val)
		}
	default:
		if prefix != "" {
			fmt.Fprintf(b, "%s=%s\n", prefix, stringify(v))
		}
	}
}
