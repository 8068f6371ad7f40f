package openapi

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/diag"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/schema"
)

// Option configures parsing and import.
type Option func(*config)

type config struct {
	externalRefs bool
	validate     bool
	sink         diag.Sink
}

func newConfig(opts []Option) *config {
	cfg := &config{validate: true, sink: diag.Nop}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

// WithExternalRefs allows $ref pointers to other documents.
func WithExternalRefs(enabled bool) Option {
	return func(c *config) {
		c.externalRefs = enabled
	}
}

// WithValidation toggles OpenAPI document validation before import.
func WithValidation(enabled bool) Option {
	return func(c *config) {
		c.validate = enabled
	}
}

// WithSink reports skipped properties to sink.
func WithSink(sink diag.Sink) Option {
	return func(c *config) {
		c.sink = diag.OrNop(sink)
	}
}

// Importer builds form schemas from OpenAPI documents.
type Importer struct {
	opts []Option
	cfg  *config
}

// NewImporter constructs an Importer.
func NewImporter(opts ...Option) *Importer {
	return &Importer{opts: opts, cfg: newConfig(opts)}
}

// Import builds the form for operationID's request body.
func (im *Importer) Import(ctx context.Context, raw []byte, operationID string) (model.FormSchema, error) {
	operations, err := Operations(ctx, raw, im.opts...)
	if err != nil {
		return model.FormSchema{}, err
	}
	op, ok := operations[operationID]
	if !ok {
		return model.FormSchema{}, fmt.Errorf("openapi: operation %q not found", operationID)
	}
	return im.FormFromOperation(op)
}

// ImportSource loads the document through loader before importing it.
func (im *Importer) ImportSource(ctx context.Context, loader schema.Loader, src schema.Source, operationID string) (model.FormSchema, error) {
	if loader == nil {
		loader = schema.NewLoader()
	}
	doc, err := loader.Load(ctx, src)
	if err != nil {
		return model.FormSchema{}, err
	}
	return im.Import(ctx, doc.Raw(), operationID)
}

// FormFromOperation converts an operation's request body into a form. Object
// properties become fields in name order. Read-only properties are dropped;
// nested objects and arrays have no field equivalent and are reported to the
// sink.
func (im *Importer) FormFromOperation(op Operation) (model.FormSchema, error) {
	body := op.RequestBody
	if body.Type != "object" && len(body.Properties) == 0 {
		return model.FormSchema{}, fmt.Errorf("openapi: operation %q has no object request body", op.ID)
	}

	form := model.FormSchema{
		ID:       op.ID,
		Settings: model.DefaultSettings(),
	}
	form.Settings.Title = strings.TrimSpace(op.Summary)
	if form.Settings.Title == "" {
		form.Settings.Title = Label(op.ID)
	}
	form.Settings.Description = strings.TrimSpace(op.Description)

	names := make([]string, 0, len(body.Properties))
	for name := range body.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		prop := body.Properties[name]
		if prop.ReadOnly {
			continue
		}
		field, ok := fieldFromProperty(name, prop, body.IsRequired(name))
		if !ok {
			diag.Warn(im.cfg.sink, diag.CodeUnsupportedProperty, name, "property %q (%s) has no form field equivalent", name, prop.DebugString())
			continue
		}
		field.Order = len(form.Fields)
		form.Fields = append(form.Fields, field)
	}
	return form, nil
}

func fieldFromProperty(name string, prop Schema, required bool) (model.FieldDefinition, bool) {
	fieldType, ok := fieldTypeFor(prop)
	if !ok {
		return model.FieldDefinition{}, false
	}
	field := model.FieldDefinition{
		ID:           name,
		Name:         name,
		Type:         fieldType,
		Label:        firstNonEmpty(prop.Title, Label(name)),
		Description:  prop.Description,
		Required:     required,
		DefaultValue: prop.Default,
	}
	if example, ok := prop.Example.(string); ok {
		field.Placeholder = example
	}

	for _, value := range prop.Enum {
		text := fmt.Sprint(value)
		field.Options = append(field.Options, model.Option{Label: Label(text), Value: text})
	}

	if required {
		field.Validation = append(field.Validation, model.ValidationRule{Type: model.ValidationRuleRequired})
	}
	if prop.MinLength != nil {
		field.Validation = append(field.Validation, model.ValidationRule{Type: model.ValidationRuleMinLength, Value: *prop.MinLength})
	}
	if prop.MaxLength != nil {
		field.Validation = append(field.Validation, model.ValidationRule{Type: model.ValidationRuleMaxLength, Value: *prop.MaxLength})
	}
	if prop.Minimum != nil {
		field.Validation = append(field.Validation, model.ValidationRule{Type: model.ValidationRuleMin, Value: *prop.Minimum})
	}
	if prop.Maximum != nil {
		field.Validation = append(field.Validation, model.ValidationRule{Type: model.ValidationRuleMax, Value: *prop.Maximum})
	}
	if prop.Pattern != "" {
		field.Validation = append(field.Validation, model.ValidationRule{Type: model.ValidationRulePattern, Value: prop.Pattern})
	}

	applyExtensions(&field, prop.Extensions)
	return field, true
}

func fieldTypeFor(prop Schema) (model.FieldType, bool) {
	if widget, ok := prop.Extensions["widget"].(string); ok {
		if t := model.FieldType(strings.ToLower(widget)); t.Valid() {
			return t, true
		}
	}
	switch prop.Type {
	case "boolean":
		return model.FieldTypeCheckbox, true
	case "integer", "number":
		return model.FieldTypeNumber, true
	case "array", "object":
		return "", false
	}
	if len(prop.Enum) > 0 {
		return model.FieldTypeSelect, true
	}
	switch strings.ToLower(prop.Format) {
	case "email":
		return model.FieldTypeEmail, true
	case "password":
		return model.FieldTypePassword, true
	case "uri", "url":
		return model.FieldTypeURL, true
	case "date", "date-time":
		return model.FieldTypeDate, true
	case "binary":
		return model.FieldTypeFile, true
	case "tel", "phone":
		return model.FieldTypeTel, true
	case "textarea":
		return model.FieldTypeTextarea, true
	}
	if prop.MaxLength != nil && *prop.MaxLength > longTextThreshold {
		return model.FieldTypeTextarea, true
	}
	return model.FieldTypeText, true
}

const longTextThreshold = 255

// applyExtensions reads x-formbuilder: label, placeholder, rowId, width.
func applyExtensions(field *model.FieldDefinition, ext map[string]any) {
	if len(ext) == 0 {
		return
	}
	if v, ok := ext["label"].(string); ok && v != "" {
		field.Label = v
	}
	if v, ok := ext["placeholder"].(string); ok {
		field.Placeholder = v
	}
	if v, ok := ext["rowId"].(string); ok {
		field.RowID = v
	}
	switch v := ext["width"].(type) {
	case float64:
		field.Width = int(v)
	case int:
		field.Width = v
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
