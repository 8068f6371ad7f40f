package html

import (
	"context"
	"errors"
	"strings"
	"testing"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/render"
)

func profileSchema() model.FormSchema {
	return model.FormSchema{
		ID: "profile",
		Fields: []model.FieldDefinition{
			{
				ID:       "gender",
				Type:     model.FieldTypeSelect,
				Label:    "Gender",
				Required: true,
				Options:  []model.Option{{Label: "Male", Value: "MALE"}, {Label: "Female", Value: "FEMALE"}},
			},
			{
				ID:      "race",
				Type:    model.FieldTypeRadio,
				Label:   "Race",
				Order:   1,
				Options: []model.Option{{Label: "Other", Value: "other"}},
				Condition: &model.ConditionSpec{
					Rules: []model.ConditionRule{{Field: "gender", Operator: model.OperatorEquals, Value: "MALE"}},
				},
			},
			{
				ID:          "bio",
				Type:        model.FieldTypeTextarea,
				Label:       "Bio",
				Order:       2,
				Description: `Tell us <b>more</b><script>alert(1)</script>`,
				Validation:  []model.ValidationRule{{Type: model.ValidationRuleMaxLength, Value: float64(140)}},
			},
			{
				ID:         "age",
				Type:       model.FieldTypeNumber,
				Label:      "Age & years",
				Order:      3,
				Validation: []model.ValidationRule{{Type: model.ValidationRuleMin, Value: 18}},
			},
		},
		Settings: model.Settings{Title: "Profile", Layout: model.LayoutSingleColumn, ShowCancelButton: true},
	}
}

func renderPlan(t *testing.T, r *Renderer, schema model.FormSchema, options render.RenderOptions) string {
	t.Helper()
	plan := render.BuildPlan(schema, nil, options, nil)
	out, err := r.Render(context.Background(), plan, options)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return string(out)
}

func newRenderer(t *testing.T, opts ...Option) *Renderer {
	t.Helper()
	r, err := New(append([]Option{WithInlineStylesheet(false)}, opts...)...)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return r
}

func assertContains(t *testing.T, out string, fragments ...string) {
	t.Helper()
	for _, fragment := range fragments {
		if !strings.Contains(out, fragment) {
			t.Fatalf("expected output to contain %q\n%s", fragment, out)
		}
	}
}

func assertNotContains(t *testing.T, out string, fragments ...string) {
	t.Helper()
	for _, fragment := range fragments {
		if strings.Contains(out, fragment) {
			t.Fatalf("expected output to omit %q\n%s", fragment, out)
		}
	}
}

func TestRenderPublicOmitsHiddenFields(t *testing.T) {
	r := newRenderer(t)

	out := renderPlan(t, r, profileSchema(), render.RenderOptions{Values: map[string]any{"gender": "FEMALE"}})
	assertContains(t, out,
		`data-mode="public"`,
		`<h2>Profile</h2>`,
		`<option value="FEMALE" selected>Female</option>`,
		`data-field="bio"`,
	)
	assertNotContains(t, out, `data-field="race"`, `data-hidden`)

	out = renderPlan(t, r, profileSchema(), render.RenderOptions{Values: map[string]any{"gender": "MALE"}})
	assertContains(t, out, `data-field="race"`, `data-depends-on="gender"`, `data-widget="segmented"`)
}

func TestRenderPreviewMarksHiddenFields(t *testing.T) {
	r := newRenderer(t)

	out := renderPlan(t, r, profileSchema(), render.RenderOptions{Mode: render.ModePreview})
	assertContains(t, out,
		`data-mode="preview"`,
		`data-field="race" data-widget="segmented" data-hidden="true"`,
		string(ClassFieldHidden),
	)
}

func TestRenderFieldMarkup(t *testing.T) {
	r := newRenderer(t)

	out := renderPlan(t, r, profileSchema(), render.RenderOptions{
		Method:       "put",
		Action:       "/profiles/7",
		Values:       map[string]any{"gender": "MALE", "age": float64(17)},
		Errors:       map[string][]string{"/body/age": {"Adults only"}},
		HiddenFields: map[string]string{"_csrf": "token"},
	})
	assertContains(t, out,
		`method="POST"`,
		`action="/profiles/7"`,
		`<input type="hidden" name="_method" value="PUT">`,
		`<input type="hidden" name="_csrf" value="token">`,
		`<label for="field-age">Age &amp; years</label>`,
		`<input type="number" id="field-age" name="age" value="17" aria-invalid="true" min="18">`,
		`<p class="fb-error" role="alert">Adults only</p>`,
		`maxlength="140"`,
		`Tell us <b>more</b>`,
		`<select id="field-gender" name="gender" required>`,
		`<button type="reset">Cancel</button>`,
	)
	assertNotContains(t, out, `<script>`)
}

func TestRenderDisabledField(t *testing.T) {
	r := newRenderer(t)

	schema := model.FormSchema{Fields: []model.FieldDefinition{
		{ID: "edit", Type: model.FieldTypeCheckbox, Label: "Edit"},
		{
			ID:    "notes",
			Type:  model.FieldTypeText,
			Order: 1,
			Condition: &model.ConditionSpec{
				Action: model.ConditionActionEnable,
				Rules:  []model.ConditionRule{{Field: "edit", Value: true}},
			},
		},
	}}

	out := renderPlan(t, r, schema, render.RenderOptions{Values: map[string]any{"edit": false, "notes": "kept"}})
	assertContains(t, out, `name="notes" value="kept" disabled>`)
	assertNotContains(t, out, `checked`)

	out = renderPlan(t, r, schema, render.RenderOptions{Values: map[string]any{"edit": true}})
	assertContains(t, out, `value="true" checked>`)
	assertNotContains(t, out, `disabled`)
}

type stubSelector struct {
	selection *theme.Selection
	err       error
	calls     [][2]string
}

func (s *stubSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	s.calls = append(s.calls, [2]string{name, variant})
	return s.selection, s.err
}

func TestRenderAppliesThemeTokens(t *testing.T) {
	selector := &stubSelector{selection: &theme.Selection{
		Theme:   "acme",
		Variant: "dark",
		Manifest: &theme.Manifest{
			Name:    "acme",
			Version: "1.0.0",
			Tokens:  map[string]string{TokenSubmitButton: "#123456", TokenCancelButton: "#eeeeee"},
			Variants: map[string]theme.Variant{
				"dark": {Tokens: map[string]string{TokenSubmitButton: "#654321"}},
			},
		},
	}}
	r := newRenderer(t, WithThemeSelector(selector))

	schema := profileSchema()
	schema.Settings.CancelButtonColor = "#ff0000"
	out := renderPlan(t, r, schema, render.RenderOptions{ThemeName: "acme", ThemeVariant: "dark"})

	if len(selector.calls) != 1 || selector.calls[0] != [2]string{"acme", "dark"} {
		t.Fatalf("unexpected selector calls %v", selector.calls)
	}
	assertContains(t, out,
		`data-theme="acme"`,
		`--button-submit: #654321;`,
		`<button type="submit" style="background-color: #654321">Submit</button>`,
		`<button type="reset" style="background-color: #ff0000">Cancel</button>`,
	)

	selector.err = errors.New("unknown theme")
	plan := render.BuildPlan(schema, nil, render.RenderOptions{}, nil)
	if _, err := r.Render(context.Background(), plan, render.RenderOptions{ThemeName: "nope"}); err == nil {
		t.Fatalf("expected theme selection error")
	}
}

func TestRenderHonoursContext(t *testing.T) {
	r := newRenderer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Render(ctx, render.Plan{}, render.RenderOptions{}); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestDefaultStylesheetEmbedded(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	out := renderPlan(t, r, profileSchema(), render.RenderOptions{})
	assertContains(t, out, ".fb-form {")
	if r.Name() != Name || !strings.HasPrefix(r.ContentType(), "text/html") {
		t.Fatalf("unexpected renderer identity")
	}
}
