package model

// FieldDefaults holds the values NewField seeds for a field type.
type FieldDefaults struct {
	Label       string
	Placeholder string
	Options     []Option
}

var fieldDefaults = map[FieldType]FieldDefaults{
	FieldTypeText:     {Label: "Text Field", Placeholder: "Enter text"},
	FieldTypeEmail:    {Label: "Email", Placeholder: "Enter your email"},
	FieldTypePassword: {Label: "Password", Placeholder: "Enter password"},
	FieldTypeNumber:   {Label: "Number", Placeholder: "Enter a number"},
	FieldTypeTel:      {Label: "Phone Number", Placeholder: "Enter phone number"},
	FieldTypeURL:      {Label: "Website", Placeholder: "https://example.com"},
	FieldTypeTextarea: {Label: "Text Area", Placeholder: "Enter your message"},
	FieldTypeDate:     {Label: "Date"},
	FieldTypeFile:     {Label: "File Upload"},
	FieldTypeCheckbox: {Label: "Checkbox"},
	FieldTypeRadio: {
		Label: "Radio Group",
		Options: []Option{
			{Label: "Option 1", Value: "option1"},
			{Label: "Option 2", Value: "option2"},
		},
	},
	FieldTypeSelect: {
		Label:       "Select",
		Placeholder: "Select an option",
		Options: []Option{
			{Label: "Option 1", Value: "option1"},
			{Label: "Option 2", Value: "option2"},
		},
	},
}

// DefaultsFor returns the seed values for t. Unknown types yield the text
// defaults and false.
func DefaultsFor(t FieldType) (FieldDefaults, bool) {
	defaults, ok := fieldDefaults[t]
	if !ok {
		return fieldDefaults[FieldTypeText], false
	}
	defaults.Options = append([]Option(nil), defaults.Options...)
	if len(defaults.Options) == 0 {
		defaults.Options = nil
	}
	return defaults, true
}

// NewField builds a field of the given type with a fresh id, the type's
// default label and placeholder, full row width and, for select and radio,
// two seeded options.
func NewField(t FieldType) FieldDefinition {
	defaults, _ := DefaultsFor(t)
	return FieldDefinition{
		ID:          GenerateFieldID(),
		Type:        t,
		Label:       defaults.Label,
		Placeholder: defaults.Placeholder,
		Options:     defaults.Options,
		Width:       100,
	}
}

// DefaultSettings returns the settings a new form starts with.
func DefaultSettings() Settings {
	return Settings{
		Layout:           LayoutAuto,
		Spacing:          "normal",
		GridColumns:      2,
		SubmitButtonText: "Submit",
		CancelButtonText: "Cancel",
		ButtonLayout:     ButtonLayoutRight,
	}
}

// NewSchema returns an empty schema with default settings.
func NewSchema(title string) FormSchema {
	settings := DefaultSettings()
	settings.Title = title
	return FormSchema{Settings: settings}
}
