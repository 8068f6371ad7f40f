package widgets

import (
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// Built-in widget identifiers exposed by the registry.
const (
	WidgetInput      = "input"
	WidgetTextarea   = "textarea"
	WidgetSelect     = "select"
	WidgetRadioGroup = "radio-group"
	WidgetSegmented  = "segmented"
	WidgetCheckbox   = "checkbox"
	WidgetFile       = "file"
)

// segmentedMaxOptions is the largest radio option list drawn as a segmented
// control.
const segmentedMaxOptions = 3

// Matcher decides whether a widget renderer should handle the supplied field.
type Matcher func(field model.FieldDefinition) bool

type rule struct {
	name     string
	priority int
	match    Matcher
	order    int
}

// Registry selects widget renderers for fields based on registered matchers.
// Higher priority wins; ties fall back to registration order. An empty
// registry never resolves a widget.
type Registry struct {
	mu    sync.RWMutex
	rules []rule
}

// NewRegistry constructs a registry with the built-in widget matchers
// registered.
func NewRegistry() *Registry {
	reg := &Registry{}
	reg.registerBuiltins()
	return reg
}

// Register adds a widget matcher with the provided name and priority. Higher
// priority values take precedence.
func (r *Registry) Register(name string, priority int, matcher Matcher) {
	if r == nil || matcher == nil {
		return
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules = append(r.rules, rule{
		name:     trimmed,
		priority: priority,
		match:    matcher,
		order:    len(r.rules),
	})
}

// Resolve returns the widget name for a field.
func (r *Registry) Resolve(field model.FieldDefinition) (string, bool) {
	if r == nil {
		return "", false
	}
	r.mu.RLock()
	if len(r.rules) == 0 {
		r.mu.RUnlock()
		return "", false
	}
	rules := append([]rule(nil), r.rules...)
	r.mu.RUnlock()
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].priority == rules[j].priority {
			return rules[i].order < rules[j].order
		}
		return rules[i].priority > rules[j].priority
	})
	for _, entry := range rules {
		if entry.match(field) {
			return entry.name, true
		}
	}
	return "", false
}

// ResolveOr returns the resolved widget or fallback.
func (r *Registry) ResolveOr(field model.FieldDefinition, fallback string) string {
	if widget, ok := r.Resolve(field); ok {
		return widget
	}
	return fallback
}

func (r *Registry) registerBuiltins() {
	r.Register(WidgetCheckbox, 90, func(field model.FieldDefinition) bool {
		return field.Type == model.FieldTypeCheckbox
	})

	r.Register(WidgetSegmented, 85, func(field model.FieldDefinition) bool {
		return field.Type == model.FieldTypeRadio && len(field.Options) > 0 && len(field.Options) <= segmentedMaxOptions
	})

	r.Register(WidgetRadioGroup, 80, func(field model.FieldDefinition) bool {
		return field.Type == model.FieldTypeRadio
	})

	r.Register(WidgetSelect, 70, func(field model.FieldDefinition) bool {
		return field.Type == model.FieldTypeSelect
	})

	r.Register(WidgetTextarea, 60, func(field model.FieldDefinition) bool {
		return field.Type == model.FieldTypeTextarea
	})

	r.Register(WidgetFile, 50, func(field model.FieldDefinition) bool {
		return field.Type == model.FieldTypeFile
	})

	r.Register(WidgetInput, 0, func(field model.FieldDefinition) bool {
		return field.Type.Valid()
	})
}
