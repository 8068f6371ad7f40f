package render

import "strings"

// Mode selects between the authoring preview and the end-user form.
type Mode string

const (
	// ModePublic renders only the fields visible for the current values.
	ModePublic Mode = "public"
	// ModePreview renders every field and marks hidden ones so authors can
	// inspect conditional logic.
	ModePreview Mode = "preview"
)

// ParseMode maps user input to a Mode, defaulting to public.
func ParseMode(raw string) Mode {
	if strings.EqualFold(strings.TrimSpace(raw), string(ModePreview)) {
		return ModePreview
	}
	return ModePublic
}

// RenderOptions describe per-request data that renderers can use to customise
// their output without mutating the schema.
type RenderOptions struct {
	Mode Mode
	// Method overrides the form method. Renderers translate verbs browsers
	// cannot submit into POST plus a hidden _method input.
	Method string
	Action string
	// Values pre-populates controls and drives condition evaluation. Keys are
	// field names, falling back to ids.
	Values map[string]any
	// Extras exposes request-scoped data to expression conditions.
	Extras map[string]any
	// Errors surfaces server-side validation feedback keyed by field path.
	// Paths are normalised with MapErrorPayload.
	Errors     map[string][]string
	FormErrors []string
	// HiddenFields are emitted as hidden inputs (CSRF tokens, versions).
	HiddenFields map[string]string
	ThemeName    string
	ThemeVariant string
	Locale       string
	Translator   Translator
	OnMissing    MissingTranslationHandler
	// Subset restricts the rendered fields, e.g. one page of a long form.
	// Fields outside the subset still take part in condition evaluation.
	Subset FieldSubset
}
