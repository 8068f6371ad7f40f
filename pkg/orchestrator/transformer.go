package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/goccy/go-json"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// Transformer mutates a FormSchema after it is resolved and before it is
// validated. Implementations can relabel fields, rename submission keys or
// adjust settings per deployment.
type Transformer interface {
	Transform(ctx context.Context, form *model.FormSchema) error
}

// TransformerFunc adapts plain functions to the Transformer interface.
type TransformerFunc func(ctx context.Context, form *model.FormSchema) error

// Transform executes the wrapped function when non-nil.
func (fn TransformerFunc) Transform(ctx context.Context, form *model.FormSchema) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, form)
}

// ChainTransformers runs transformers in order, stopping at the first error.
func ChainTransformers(transformers ...Transformer) Transformer {
	return TransformerFunc(func(ctx context.Context, form *model.FormSchema) error {
		for _, t := range transformers {
			if t == nil {
				continue
			}
			if err := t.Transform(ctx, form); err != nil {
				return err
			}
		}
		return nil
	})
}

// JSONPresetTransformer applies declarative overrides loaded from a JSON file.
// The document shape supports settings and per-field patches keyed by field
// id or name:
//
//	{
//	  "settings": {"title": "Join us", "submitButtonText": "Sign up"},
//	  "fields": {
//	    "email": {"label": "Work email", "rename": "work_email", "width": 50}
//	  }
//	}
type JSONPresetTransformer struct {
	document jsonTransformDocument
}

type jsonTransformDocument struct {
	Settings jsonSettingsPatch         `json:"settings"`
	Fields   map[string]jsonFieldPatch `json:"fields"`
}

type jsonSettingsPatch struct {
	Title            string `json:"title"`
	Description      string `json:"description"`
	Layout           string `json:"layout"`
	SubmitButtonText string `json:"submitButtonText"`
	CancelButtonText string `json:"cancelButtonText"`
}

type jsonFieldPatch struct {
	Label       string `json:"label"`
	Description string `json:"description"`
	Placeholder string `json:"placeholder"`
	Rename      string `json:"rename"`
	RowID       string `json:"rowId"`
	Width       int    `json:"width"`
	Order       *int   `json:"order"`
	Required    *bool  `json:"required"`
}

// NewJSONPresetTransformer constructs a transformer from raw JSON bytes.
func NewJSONPresetTransformer(data []byte) (*JSONPresetTransformer, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("json preset transformer: document is empty")
	}
	var document jsonTransformDocument
	if err := json.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("json preset transformer: parse document: %w", err)
	}
	return &JSONPresetTransformer{document: document}, nil
}

// NewJSONPresetTransformerFromFS loads a JSON transformer document from the
// provided filesystem path.
func NewJSONPresetTransformerFromFS(fsys fs.FS, path string) (*JSONPresetTransformer, error) {
	if fsys == nil {
		return nil, errors.New("json preset transformer: filesystem is nil")
	}
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("json preset transformer: path is required")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("json preset transformer: read %s: %w", path, err)
	}
	return NewJSONPresetTransformer(data)
}

// Transform applies the declarative patches onto the supplied schema.
func (t *JSONPresetTransformer) Transform(ctx context.Context, form *model.FormSchema) error {
	if form == nil {
		return errors.New("json preset transformer: schema is nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	applySettingsPatch(&form.Settings, t.document.Settings)

	for key, patch := range t.document.Fields {
		field := findField(form.Fields, key)
		if field == nil {
			return fmt.Errorf("json preset transformer: field %q not found", key)
		}
		applyFieldPatch(field, patch)
	}
	return nil
}

func applySettingsPatch(settings *model.Settings, patch jsonSettingsPatch) {
	if patch.Title != "" {
		settings.Title = patch.Title
	}
	if patch.Description != "" {
		settings.Description = patch.Description
	}
	if patch.Layout != "" {
		settings.Layout = model.LayoutMode(patch.Layout)
	}
	if patch.SubmitButtonText != "" {
		settings.SubmitButtonText = patch.SubmitButtonText
	}
	if patch.CancelButtonText != "" {
		settings.CancelButtonText = patch.CancelButtonText
	}
}

func applyFieldPatch(field *model.FieldDefinition, patch jsonFieldPatch) {
	if patch.Label != "" {
		field.Label = patch.Label
	}
	if patch.Description != "" {
		field.Description = patch.Description
	}
	if patch.Placeholder != "" {
		field.Placeholder = patch.Placeholder
	}
	if patch.RowID != "" {
		field.RowID = patch.RowID
	}
	if patch.Width > 0 {
		field.Width = patch.Width
	}
	if patch.Order != nil {
		field.Order = *patch.Order
	}
	if patch.Required != nil {
		field.Required = *patch.Required
		if !field.Required {
			model.RemoveValidationRule(field, model.ValidationRuleRequired)
		}
	}
	if strings.TrimSpace(patch.Rename) != "" {
		field.Name = strings.TrimSpace(patch.Rename)
	}
}

func findField(fields []model.FieldDefinition, key string) *model.FieldDefinition {
	if strings.TrimSpace(key) == "" {
		return nil
	}
	for idx := range fields {
		if fields[idx].ID == key {
			return &fields[idx]
		}
	}
	for idx := range fields {
		if fields[idx].Key() == key {
			return &fields[idx]
		}
	}
	return nil
}
