package render

import (
	"fmt"
	"strings"
)

// TemplateI18nConfig configures template-level translation helpers.
type TemplateI18nConfig struct {
	// FuncName customizes the translator helper name (defaults to "translate").
	FuncName  string
	OnMissing MissingTranslationHandler
}

// TemplateI18nFuncs returns helpers suitable for injecting into template
// engines. The translate helper has the signature
//
//	translate(localeSrc, key, ...args) string
//
// where localeSrc is a locale string, a Plan, or a map with a "locale" entry.
func TemplateI18nFuncs(t Translator, cfg TemplateI18nConfig) map[string]any {
	translateName := strings.TrimSpace(cfg.FuncName)
	if translateName == "" {
		translateName = "translate"
	}
	onMissing := cfg.OnMissing
	if onMissing == nil {
		onMissing = missingTranslationDefault
	}

	return map[string]any{
		translateName: func(localeSrc any, key string, params ...any) string {
			key = strings.TrimSpace(key)
			if key == "" {
				return ""
			}
			locale := resolveLocale(localeSrc)
			if t == nil {
				return onMissing(locale, key, "", ErrMissingTranslator)
			}
			msg, err := t.Translate(locale, key, params...)
			if err != nil || strings.TrimSpace(msg) == "" {
				return onMissing(locale, key, "", err)
			}
			return msg
		},
		"current_locale": resolveLocale,
	}
}

func resolveLocale(src any) string {
	switch data := src.(type) {
	case nil:
		return ""
	case string:
		return data
	case Plan:
		return data.Locale
	case *Plan:
		if data == nil {
			return ""
		}
		return data.Locale
	case map[string]string:
		return data["locale"]
	case map[string]any:
		if v, ok := data["locale"]; ok && v != nil {
			return strings.TrimSpace(fmt.Sprint(v))
		}
	}
	return ""
}
