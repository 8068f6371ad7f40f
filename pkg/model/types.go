package model

import "strings"

// FieldType is the closed set of input kinds a form field can take.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeEmail    FieldType = "email"
	FieldTypePassword FieldType = "password"
	FieldTypeNumber   FieldType = "number"
	FieldTypeTel      FieldType = "tel"
	FieldTypeURL      FieldType = "url"
	FieldTypeTextarea FieldType = "textarea"
	FieldTypeDate     FieldType = "date"
	FieldTypeFile     FieldType = "file"
	FieldTypeCheckbox FieldType = "checkbox"
	FieldTypeRadio    FieldType = "radio"
	FieldTypeSelect   FieldType = "select"
)

// FieldTypes lists every supported field type in builder palette order.
func FieldTypes() []FieldType {
	return []FieldType{
		FieldTypeText,
		FieldTypeEmail,
		FieldTypePassword,
		FieldTypeNumber,
		FieldTypeTel,
		FieldTypeURL,
		FieldTypeTextarea,
		FieldTypeDate,
		FieldTypeFile,
		FieldTypeCheckbox,
		FieldTypeRadio,
		FieldTypeSelect,
	}
}

// Valid reports whether t belongs to the closed FieldType set.
func (t FieldType) Valid() bool {
	_, ok := fieldDefaults[t]
	return ok
}

// HasOptions reports whether fields of this type carry an option list.
func (t FieldType) HasOptions() bool {
	return t == FieldTypeRadio || t == FieldTypeSelect
}

// IsTextual reports whether the type collects free-form string input.
func (t FieldType) IsTextual() bool {
	switch t {
	case FieldTypeText, FieldTypeEmail, FieldTypePassword, FieldTypeTel, FieldTypeURL, FieldTypeTextarea, FieldTypeDate:
		return true
	default:
		return false
	}
}

// Option is a single label/value pair offered by select and radio fields.
type Option struct {
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
}

// ValidationRuleType enumerates the supported validation rule kinds.
type ValidationRuleType string

const (
	ValidationRuleRequired  ValidationRuleType = "required"
	ValidationRuleMinLength ValidationRuleType = "minLength"
	ValidationRuleMaxLength ValidationRuleType = "maxLength"
	ValidationRuleMin       ValidationRuleType = "min"
	ValidationRuleMax       ValidationRuleType = "max"
	ValidationRulePattern   ValidationRuleType = "pattern"
)

// ValidationRuleTypes lists the supported rule kinds.
func ValidationRuleTypes() []ValidationRuleType {
	return []ValidationRuleType{
		ValidationRuleRequired,
		ValidationRuleMinLength,
		ValidationRuleMaxLength,
		ValidationRuleMin,
		ValidationRuleMax,
		ValidationRulePattern,
	}
}

// ValidationRule is one constraint applied to a field value. Value holds the
// numeric bound for length and range rules, the regular expression source for
// pattern rules, and is empty for required rules.
type ValidationRule struct {
	Type    ValidationRuleType `json:"type" yaml:"type"`
	Value   any                `json:"value,omitempty" yaml:"value,omitempty"`
	Message string             `json:"message,omitempty" yaml:"message,omitempty"`
}

// Operator names a comparison applied by a condition rule. Operators are data
// so new comparisons can be registered without changing the schema format.
type Operator string

const (
	OperatorEquals      Operator = "=="
	OperatorNotEquals   Operator = "!="
	OperatorIn          Operator = "in"
	OperatorNotIn       Operator = "not_in"
	OperatorGreater     Operator = ">"
	OperatorGreaterOrEq Operator = ">="
	OperatorLess        Operator = "<"
	OperatorLessOrEq    Operator = "<="
	OperatorContains    Operator = "contains"
	OperatorEmpty       Operator = "empty"
	OperatorNotEmpty    Operator = "not_empty"
)

// Logic combines the outcomes of a condition's rules.
type Logic string

const (
	LogicAnd Logic = "AND"
	LogicOr  Logic = "OR"
)

// Normalize returns the effective combinator, defaulting to AND.
func (l Logic) Normalize() Logic {
	if strings.EqualFold(strings.TrimSpace(string(l)), string(LogicOr)) {
		return LogicOr
	}
	return LogicAnd
}

// ConditionAction selects what a condition controls. The zero value controls
// both visibility and enablement.
type ConditionAction string

const (
	ConditionActionBoth   ConditionAction = ""
	ConditionActionShow   ConditionAction = "show"
	ConditionActionEnable ConditionAction = "enable"
)

// ControlsVisibility reports whether the condition gates visibility.
func (a ConditionAction) ControlsVisibility() bool {
	return a != ConditionActionEnable
}

// ControlsEnablement reports whether the condition gates enablement.
func (a ConditionAction) ControlsEnablement() bool {
	return a != ConditionActionShow
}

// ConditionRule compares the current value of another field with a target.
type ConditionRule struct {
	Field    string   `json:"field" yaml:"field"`
	Operator Operator `json:"operator,omitempty" yaml:"operator,omitempty"`
	Value    any      `json:"value,omitempty" yaml:"value,omitempty"`
}

// ConditionSpec gates a field's visibility and/or enablement on other fields'
// values. Expression is an optional boolean expression over field keys that is
// combined with the rule outcome using AND.
type ConditionSpec struct {
	Rules      []ConditionRule `json:"rules" yaml:"rules"`
	Logic      Logic           `json:"logic,omitempty" yaml:"logic,omitempty"`
	Action     ConditionAction `json:"action,omitempty" yaml:"action,omitempty"`
	Expression string          `json:"expression,omitempty" yaml:"expression,omitempty"`
}

// Empty reports whether the condition constrains nothing.
func (c *ConditionSpec) Empty() bool {
	return c == nil || (len(c.Rules) == 0 && strings.TrimSpace(c.Expression) == "")
}

// FieldDefinition describes one input of a form.
type FieldDefinition struct {
	ID           string           `json:"id" yaml:"id"`
	Name         string           `json:"name,omitempty" yaml:"name,omitempty"`
	Type         FieldType        `json:"type" yaml:"type"`
	Label        string           `json:"label,omitempty" yaml:"label,omitempty"`
	Placeholder  string           `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Description  string           `json:"description,omitempty" yaml:"description,omitempty"`
	Required     bool             `json:"required" yaml:"required"`
	Options      []Option         `json:"options,omitempty" yaml:"options,omitempty"`
	Validation   []ValidationRule `json:"validation,omitempty" yaml:"validation,omitempty"`
	Order        int              `json:"order" yaml:"order"`
	RowID        string           `json:"rowId,omitempty" yaml:"rowId,omitempty"`
	Width        int              `json:"width,omitempty" yaml:"width,omitempty"`
	Condition    *ConditionSpec   `json:"condition,omitempty" yaml:"condition,omitempty"`
	DefaultValue any              `json:"defaultValue,omitempty" yaml:"defaultValue,omitempty"`
}

// Key returns the submission data key: the logical name when present,
// otherwise the field id.
func (f FieldDefinition) Key() string {
	if name := strings.TrimSpace(f.Name); name != "" {
		return name
	}
	return f.ID
}

// DisplayLabel returns the label or falls back to the key.
func (f FieldDefinition) DisplayLabel() string {
	if label := strings.TrimSpace(f.Label); label != "" {
		return label
	}
	return f.Key()
}

// HasRule reports whether the field declares a rule of the given type.
func (f FieldDefinition) HasRule(kind ValidationRuleType) bool {
	for _, rule := range f.Validation {
		if rule.Type == kind {
			return true
		}
	}
	return false
}

// LayoutMode selects how the organizer arranges fields into rows.
type LayoutMode string

const (
	LayoutAuto         LayoutMode = "auto"
	LayoutSingleColumn LayoutMode = "single-column"
	LayoutSingle       LayoutMode = "single"
	LayoutTwoColumn    LayoutMode = "two-column"
	LayoutGrid         LayoutMode = "grid"
)

// ButtonLayout controls submit/cancel button placement.
type ButtonLayout string

const (
	ButtonLayoutLeft      ButtonLayout = "left"
	ButtonLayoutCenter    ButtonLayout = "center"
	ButtonLayoutRight     ButtonLayout = "right"
	ButtonLayoutFullWidth ButtonLayout = "full-width"
)

// Settings carries form-level presentation configuration.
type Settings struct {
	Title             string       `json:"title,omitempty" yaml:"title,omitempty"`
	Description       string       `json:"description,omitempty" yaml:"description,omitempty"`
	Layout            LayoutMode   `json:"layout,omitempty" yaml:"layout,omitempty"`
	Spacing           string       `json:"spacing,omitempty" yaml:"spacing,omitempty"`
	GridColumns       int          `json:"gridColumns,omitempty" yaml:"gridColumns,omitempty"`
	SubmitButtonText  string       `json:"submitButtonText,omitempty" yaml:"submitButtonText,omitempty"`
	SubmitButtonColor string       `json:"submitButtonColor,omitempty" yaml:"submitButtonColor,omitempty"`
	CancelButtonText  string       `json:"cancelButtonText,omitempty" yaml:"cancelButtonText,omitempty"`
	CancelButtonColor string       `json:"cancelButtonColor,omitempty" yaml:"cancelButtonColor,omitempty"`
	ShowCancelButton  bool         `json:"showCancelButton,omitempty" yaml:"showCancelButton,omitempty"`
	ButtonLayout      ButtonLayout `json:"buttonLayout,omitempty" yaml:"buttonLayout,omitempty"`
	ShowLabels        *bool        `json:"showLabels,omitempty" yaml:"showLabels,omitempty"`
}

// LabelsVisible reports whether labels should be drawn; labels are shown
// unless explicitly disabled.
func (s Settings) LabelsVisible() bool {
	return s.ShowLabels == nil || *s.ShowLabels
}

// FormSchema is the serialisable description of a whole form.
type FormSchema struct {
	ID       string            `json:"id,omitempty" yaml:"id,omitempty"`
	Fields   []FieldDefinition `json:"fields" yaml:"fields"`
	Settings Settings          `json:"settings" yaml:"settings"`
}

// Field returns the field with the given id.
func (s FormSchema) Field(id string) (FieldDefinition, bool) {
	for _, field := range s.Fields {
		if field.ID == id {
			return field, true
		}
	}
	return FieldDefinition{}, false
}

// Index maps field ids to their array position. When ids repeat the first
// occurrence wins.
func (s FormSchema) Index() map[string]int {
	index := make(map[string]int, len(s.Fields))
	for i, field := range s.Fields {
		if _, exists := index[field.ID]; !exists {
			index[field.ID] = i
		}
	}
	return index
}

// Clone returns a deep copy so builder edits never alias a schema that has
// been handed to an evaluator.
func (s FormSchema) Clone() FormSchema {
	out := s
	if s.Settings.ShowLabels != nil {
		show := *s.Settings.ShowLabels
		out.Settings.ShowLabels = &show
	}
	if s.Fields == nil {
		return out
	}
	out.Fields = make([]FieldDefinition, len(s.Fields))
	for i, field := range s.Fields {
		out.Fields[i] = field.Clone()
	}
	return out
}

// Clone returns a deep copy of the field definition.
func (f FieldDefinition) Clone() FieldDefinition {
	out := f
	if f.Options != nil {
		out.Options = append([]Option(nil), f.Options...)
	}
	if f.Validation != nil {
		out.Validation = append([]ValidationRule(nil), f.Validation...)
	}
	if f.Condition != nil {
		cond := *f.Condition
		cond.Rules = append([]ConditionRule(nil), f.Condition.Rules...)
		out.Condition = &cond
	}
	return out
}
