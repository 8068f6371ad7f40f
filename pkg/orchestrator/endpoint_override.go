package orchestrator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/render"
)

// EndpointOverride sets where a schema's form submits. Overrides fill the
// method and action only when the request leaves them empty.
type EndpointOverride struct {
	SchemaID string
	Method   string
	Action   string
	// HiddenFields are merged beneath the request's own hidden fields.
	HiddenFields map[string]string
}

// WithEndpointOverrides registers endpoint overrides keyed by schema id.
// Invalid overrides surface as an error from Generate.
func WithEndpointOverrides(overrides ...EndpointOverride) Option {
	return func(o *Orchestrator) {
		if len(overrides) == 0 || o == nil {
			return
		}
		if o.endpointOverrides == nil {
			o.endpointOverrides = make(map[string]EndpointOverride)
		}
		for _, override := range overrides {
			if err := validateEndpointOverride(override); err != nil {
				o.initialiseErr = appendInitialiseError(o.initialiseErr, err)
				continue
			}
			override.HiddenFields = cloneStringMap(override.HiddenFields)
			o.endpointOverrides[override.SchemaID] = override
		}
	}
}

func validateEndpointOverride(override EndpointOverride) error {
	if strings.TrimSpace(override.SchemaID) == "" {
		return errors.New("orchestrator: endpoint override missing schema id")
	}
	if strings.TrimSpace(override.Action) == "" && strings.TrimSpace(override.Method) == "" {
		return fmt.Errorf("orchestrator: endpoint override %q sets neither method nor action", override.SchemaID)
	}
	return nil
}

func appendInitialiseError(existing, next error) error {
	if existing == nil {
		return next
	}
	return fmt.Errorf("%v; %w", existing, next)
}

func cloneStringMap(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}

// renderOptions applies the override registered for schemaID.
func (o *Orchestrator) renderOptions(schemaID string, options render.RenderOptions) render.RenderOptions {
	override, ok := o.endpointOverrides[schemaID]
	if !ok {
		return options
	}
	if strings.TrimSpace(options.Method) == "" {
		options.Method = override.Method
	}
	if strings.TrimSpace(options.Action) == "" {
		options.Action = override.Action
	}
	if len(override.HiddenFields) > 0 {
		merged := cloneStringMap(override.HiddenFields)
		for k, v := range options.HiddenFields {
			merged[k] = v
		}
		options.HiddenFields = merged
	}
	return options
}
