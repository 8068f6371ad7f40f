package html

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/validation"
	"github.com/goliatone/go-formbuilder/pkg/visibility"
	"github.com/goliatone/go-formbuilder/pkg/widgets"
)

type attrView struct {
	Name  string `json:"name"`
	Value string `json:"value,omitempty"`
}

type optionView struct {
	Label    string `json:"label"`
	Value    string `json:"value"`
	Selected bool   `json:"selected,omitempty"`
}

type fieldView struct {
	Key         string       `json:"key"`
	Label       string       `json:"label"`
	Widget      string       `json:"widget"`
	InputType   string       `json:"input_type"`
	Value       string       `json:"value,omitempty"`
	Checked     bool         `json:"checked,omitempty"`
	Placeholder string       `json:"placeholder,omitempty"`
	Description string       `json:"description,omitempty"`
	Required    bool         `json:"required,omitempty"`
	Visible     bool         `json:"visible"`
	Width       int          `json:"width"`
	Options     []optionView `json:"options,omitempty"`
	Attrs       []attrView   `json:"attrs,omitempty"`
	Errors      []string     `json:"errors,omitempty"`
	DependsOn   string       `json:"depends_on,omitempty"`
}

type rowView struct {
	ID     string      `json:"id"`
	Fields []fieldView `json:"fields"`
}

type formView struct {
	SchemaID       string `json:"schema_id,omitempty"`
	Title          string `json:"title,omitempty"`
	Description    string `json:"description,omitempty"`
	Method         string `json:"method"`
	MethodOverride string `json:"method_override,omitempty"`
	Action         string `json:"action,omitempty"`
	Mode           string `json:"mode"`
	Spacing        string `json:"spacing,omitempty"`
	Multipart      bool   `json:"multipart,omitempty"`
}

type buttonsView struct {
	Layout      string `json:"layout"`
	SubmitText  string `json:"submit_text"`
	SubmitColor string `json:"submit_color,omitempty"`
	ShowCancel  bool   `json:"show_cancel,omitempty"`
	CancelText  string `json:"cancel_text,omitempty"`
	CancelColor string `json:"cancel_color,omitempty"`
}

func (r *Renderer) buildView(plan render.Plan, themed themeView) map[string]any {
	settings := plan.Settings
	form := formView{
		SchemaID:       plan.SchemaID,
		Title:          settings.Title,
		Description:    settings.Description,
		Method:         plan.Method,
		MethodOverride: plan.MethodOverride,
		Action:         plan.Action,
		Mode:           string(plan.Mode),
		Spacing:        settings.Spacing,
	}
	if form.Method == "" {
		form.Method = "POST"
	}

	rows := make([]rowView, 0, len(plan.Rows))
	for _, row := range plan.Rows {
		rv := rowView{ID: row.ID, Fields: make([]fieldView, 0, len(row.Fields))}
		for _, field := range row.Fields {
			if field.Definition.Type == model.FieldTypeFile {
				form.Multipart = true
			}
			rv.Fields = append(rv.Fields, r.fieldView(field))
		}
		rows = append(rows, rv)
	}

	view := map[string]any{
		"form":          form,
		"rows":          rows,
		"form_errors":   plan.FormErrors,
		"hidden_fields": hiddenViews(plan.HiddenFields),
		"buttons":       buttons(settings, themed.Tokens),
		"classes":       chromeClasses(),
		"show_labels":   settings.LabelsVisible(),
		"theme":         themed,
	}
	if r.inlineStyles {
		view["stylesheet"] = defaultStylesheet()
	}
	return view
}

func (r *Renderer) fieldView(field render.PlanField) fieldView {
	def := field.Definition
	widget := r.widgets.ResolveOr(def, widgets.WidgetInput)
	required := def.Required || def.HasRule(model.ValidationRuleRequired)

	view := fieldView{
		Key:         field.Key,
		Label:       def.DisplayLabel(),
		Widget:      widget,
		InputType:   inputType(def.Type),
		Placeholder: def.Placeholder,
		Required:    required,
		Visible:     field.Visible,
		Width:       field.Width,
		Errors:      field.Errors,
		DependsOn:   strings.Join(dependencies(def), " "),
	}
	if def.Description != "" {
		view.Description = strings.TrimSpace(r.policy.Sanitize(def.Description))
	}

	switch {
	case def.Type == model.FieldTypeCheckbox:
		view.Checked = truthy(field.Value)
	case def.Type.HasOptions():
		selected := selectedValues(field.Value)
		for _, opt := range def.Options {
			_, isSelected := selected[opt.Value]
			view.Options = append(view.Options, optionView{Label: opt.Label, Value: opt.Value, Selected: isSelected})
		}
	case def.Type == model.FieldTypePassword, def.Type == model.FieldTypeFile:
	default:
		view.Value = stringify(field.Value)
	}

	view.Attrs = fieldAttrs(def, field, required)
	return view
}

func fieldAttrs(def model.FieldDefinition, field render.PlanField, required bool) []attrView {
	var attrs []attrView
	if required {
		attrs = append(attrs, attrView{Name: "required"})
	}
	if !field.Enabled {
		attrs = append(attrs, attrView{Name: "disabled"})
	}
	if len(field.Errors) > 0 {
		attrs = append(attrs, attrView{Name: "aria-invalid", Value: "true"})
	}

	for _, rule := range def.Validation {
		switch rule.Type {
		case model.ValidationRuleMinLength, model.ValidationRuleMaxLength:
			if !def.Type.IsTextual() {
				continue
			}
			if n, ok := validation.ParamNumber(rule.Value); ok {
				attrs = append(attrs, attrView{Name: strings.ToLower(string(rule.Type)), Value: formatNumber(n)})
			}
		case model.ValidationRuleMin, model.ValidationRuleMax:
			if def.Type != model.FieldTypeNumber {
				continue
			}
			if n, ok := validation.ParamNumber(rule.Value); ok {
				attrs = append(attrs, attrView{Name: string(rule.Type), Value: formatNumber(n)})
			}
		case model.ValidationRulePattern:
			if source, ok := rule.Value.(string); ok && def.Type.IsTextual() {
				if _, err := validation.CompilePattern(source); err == nil {
					attrs = append(attrs, attrView{Name: "pattern", Value: source})
				}
			}
		}
	}
	return attrs
}

func dependencies(def model.FieldDefinition) []string {
	if def.Condition.Empty() {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	add := func(name string) {
		if name == "" {
			return
		}
		if _, dup := seen[name]; dup {
			return
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	for _, rule := range def.Condition.Rules {
		add(rule.Field)
	}
	if def.Condition.Expression != "" {
		if idents, err := visibility.ExpressionIdentifiers(def.Condition.Expression); err == nil {
			for _, ident := range idents {
				if ident != "extras" {
					add(ident)
				}
			}
		}
	}
	return out
}

func buttons(settings model.Settings, tokens map[string]string) buttonsView {
	view := buttonsView{
		Layout:      string(settings.ButtonLayout),
		SubmitText:  settings.SubmitButtonText,
		SubmitColor: settings.SubmitButtonColor,
		ShowCancel:  settings.ShowCancelButton,
		CancelText:  settings.CancelButtonText,
		CancelColor: settings.CancelButtonColor,
	}
	if view.Layout == "" {
		view.Layout = string(model.ButtonLayoutRight)
	}
	if view.SubmitText == "" {
		view.SubmitText = "Submit"
	}
	if view.CancelText == "" {
		view.CancelText = "Cancel"
	}
	if view.SubmitColor == "" {
		view.SubmitColor = tokens[TokenSubmitButton]
	}
	if view.CancelColor == "" {
		view.CancelColor = tokens[TokenCancelButton]
	}
	return view
}

func hiddenViews(fields []render.HiddenField) []attrView {
	out := make([]attrView, 0, len(fields))
	for _, field := range fields {
		out = append(out, attrView{Name: field.Name, Value: field.Value})
	}
	return out
}

func inputType(t model.FieldType) string {
	switch t {
	case model.FieldTypeEmail, model.FieldTypePassword, model.FieldTypeNumber, model.FieldTypeTel,
		model.FieldTypeURL, model.FieldTypeDate, model.FieldTypeFile:
		return string(t)
	default:
		return "text"
	}
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

func selectedValues(value any) map[string]struct{} {
	out := make(map[string]struct{})
	switch v := value.(type) {
	case nil:
	case []any:
		for _, item := range v {
			out[stringify(item)] = struct{}{}
		}
	case []string:
		for _, item := range v {
			out[item] = struct{}{}
		}
	default:
		out[stringify(v)] = struct{}{}
	}
	return out
}

func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return formatNumber(v)
	case float32:
		return formatNumber(float64(v))
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, stringify(item))
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(v)
	}
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}
