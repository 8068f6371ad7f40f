package render

import (
	"errors"
	"strings"
)

// ErrMissingTranslator is passed to the missing handler when no Translator is
// configured.
var ErrMissingTranslator = errors.New("render: translator not configured")

// Translator resolves a message key for a locale.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// TranslatorFunc adapts a function to Translator.
type TranslatorFunc func(locale, key string, args ...any) (string, error)

func (fn TranslatorFunc) Translate(locale, key string, args ...any) (string, error) {
	return fn(locale, key, args...)
}

// MissingTranslationHandler decides the text used when a key cannot be
// translated. fallback is the untranslated schema text.
type MissingTranslationHandler func(locale, key, fallback string, err error) string

func missingTranslationDefault(_ string, key, fallback string, _ error) string {
	if strings.TrimSpace(fallback) != "" {
		return fallback
	}
	return key
}

// Message keys follow "<prefix>.<fieldKey>.<attribute>" for fields and
// "<prefix>.form.<attribute>" for settings. The prefix is the schema id, or
// "form" when the schema has none.
const (
	attrLabel       = "label"
	attrPlaceholder = "placeholder"
	attrDescription = "description"
	attrTitle       = "title"
	attrSubmit      = "submit"
	attrCancel      = "cancel"
)

// TranslationKey builds the message key for a field attribute.
func TranslationKey(schemaID, fieldKey, attribute string) string {
	prefix := strings.TrimSpace(schemaID)
	if prefix == "" {
		prefix = "form"
	}
	return prefix + "." + fieldKey + "." + attribute
}

// LocalizePlan translates author-facing text in place. Untranslated keys keep
// the schema text unless opts.OnMissing says otherwise.
func LocalizePlan(plan *Plan, opts RenderOptions) {
	if plan == nil || opts.Translator == nil {
		return
	}
	onMissing := opts.OnMissing
	if onMissing == nil {
		onMissing = missingTranslationDefault
	}
	tr := func(fieldKey, attribute, fallback string) string {
		return translate(opts.Locale, TranslationKey(plan.SchemaID, fieldKey, attribute), fallback, opts.Translator, onMissing)
	}

	plan.Settings.Title = tr("form", attrTitle, plan.Settings.Title)
	plan.Settings.Description = tr("form", attrDescription, plan.Settings.Description)
	plan.Settings.SubmitButtonText = tr("form", attrSubmit, plan.Settings.SubmitButtonText)
	plan.Settings.CancelButtonText = tr("form", attrCancel, plan.Settings.CancelButtonText)

	for r := range plan.Rows {
		for i := range plan.Rows[r].Fields {
			field := &plan.Rows[r].Fields[i]
			def := &field.Definition
			def.Label = tr(field.Key, attrLabel, def.Label)
			if def.Placeholder != "" {
				def.Placeholder = tr(field.Key, attrPlaceholder, def.Placeholder)
			}
			if def.Description != "" {
				def.Description = tr(field.Key, attrDescription, def.Description)
			}
		}
	}
}

func translate(locale, key, fallback string, t Translator, onMissing MissingTranslationHandler) string {
	if t == nil {
		return onMissing(locale, key, fallback, ErrMissingTranslator)
	}
	result, err := t.Translate(locale, key)
	if err == nil && strings.TrimSpace(result) != "" {
		return result
	}
	return onMissing(locale, key, fallback, err)
}
