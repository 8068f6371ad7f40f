package html

import (
	"fmt"
	"sort"
	"strings"
)

// Theme token names consulted when the schema leaves button colors unset.
const (
	TokenSubmitButton = "button.submit"
	TokenCancelButton = "button.cancel"
)

type themeView struct {
	Name    string            `json:"name,omitempty"`
	Variant string            `json:"variant,omitempty"`
	Tokens  map[string]string `json:"tokens,omitempty"`
	CSS     string            `json:"css,omitempty"`
}

func (r *Renderer) resolveTheme(name, variant string) (themeView, error) {
	if r.themes == nil {
		return themeView{}, nil
	}
	selection, err := r.themes.Select(name, variant)
	if err != nil {
		return themeView{}, fmt.Errorf("html renderer: select theme: %w", err)
	}
	if selection == nil {
		return themeView{}, nil
	}

	view := themeView{Name: selection.Theme, Variant: selection.Variant}
	if manifest := selection.Manifest; manifest != nil {
		tokens := make(map[string]string, len(manifest.Tokens))
		for key, value := range manifest.Tokens {
			tokens[key] = value
		}
		if v, ok := manifest.Variants[selection.Variant]; ok {
			for key, value := range v.Tokens {
				tokens[key] = value
			}
		}
		if len(tokens) > 0 {
			view.Tokens = tokens
		}
	}
	view.CSS = cssVarsStyle(view.Tokens)
	return view, nil
}

// cssVarsStyle renders tokens as custom properties, "button.submit" becoming
// "--button-submit".
func cssVarsStyle(tokens map[string]string) string {
	if len(tokens) == 0 {
		return ""
	}
	keys := make([]string, 0, len(tokens))
	for key := range tokens {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(".fb-form {\n")
	for _, key := range keys {
		value := tokens[key]
		if strings.ContainsAny(value, ";{}<>") {
			continue
		}
		b.WriteString("  --")
		b.WriteString(strings.NewReplacer(".", "-", " ", "-").Replace(key))
		b.WriteString(": ")
		b.WriteString(value)
		b.WriteString(";\n")
	}
	b.WriteString("}")
	return b.String()
}
