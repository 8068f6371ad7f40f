package html

// ChromeClass is a semantic CSS class applied to form chrome.
type ChromeClass string

const (
	ClassForm        ChromeClass = "fb-form"
	ClassHeader      ChromeClass = "fb-header"
	ClassRow         ChromeClass = "fb-row"
	ClassField       ChromeClass = "fb-field"
	ClassFieldHidden ChromeClass = "fb-field-hidden"
	ClassDescription ChromeClass = "fb-description"
	ClassError       ChromeClass = "fb-error"
	ClassFormErrors  ChromeClass = "fb-errors"
	ClassActions     ChromeClass = "fb-actions"
)

func chromeClasses() map[string]string {
	return map[string]string{
		"form":        string(ClassForm),
		"header":      string(ClassHeader),
		"row":         string(ClassRow),
		"field":       string(ClassField),
		"hidden":      string(ClassFieldHidden),
		"description": string(ClassDescription),
		"error":       string(ClassError),
		"form_errors": string(ClassFormErrors),
		"actions":     string(ClassActions),
	}
}
