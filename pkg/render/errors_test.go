package render_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/render"
)

func TestMapErrorPayload_PointerAndWrapperPaths(t *testing.T) {
	t.Parallel()

	schema := model.FormSchema{
		Fields: []model.FieldDefinition{
			{ID: "field_name", Name: "name", Type: model.FieldTypeText},
			{ID: "field_email", Name: "email", Type: model.FieldTypeEmail},
			{ID: "tags", Type: model.FieldTypeSelect},
			{ID: "phone", Type: model.FieldTypeTel},
		},
	}

	payload := map[string][]string{
		"/body/name":                 {"Name is required"},
		"request.payload.email":      {"Email invalid", " Email invalid "},
		"$.body.tags[0]":             {"Tags must be unique"},
		"field_email":                {"Email taken"},
		"data/attributes/phone":      {"Phone malformed"},
		"non_field_errors":           {"Form level error"},
		"request/body/unknown-field": {"Should fall back to form errors"},
		"":                           {"Unscoped form error"},
	}

	mapped := render.MapErrorPayload(schema, payload)

	wantFields := map[string][]string{
		"name":  {"Name is required"},
		"email": {"Email invalid", "Email taken"},
		"tags":  {"Tags must be unique"},
		"phone": {"Phone malformed"},
	}
	sortSlices := cmpopts.SortSlices(func(a, b string) bool { return a < b })
	if diff := cmp.Diff(wantFields, mapped.Fields, sortSlices); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}

	wantForm := []string{"Form level error", "Should fall back to form errors", "Unscoped form error"}
	if diff := cmp.Diff(wantForm, mapped.Form, sortSlices); diff != "" {
		t.Fatalf("form errors mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeFormErrors(t *testing.T) {
	t.Parallel()

	merged := render.MergeFormErrors([]string{" First ", "Second"}, "Second", "third", "  ")
	want := []string{"First", "Second", "third"}

	if diff := cmp.Diff(want, merged); diff != "" {
		t.Fatalf("merged form errors mismatch (-want +got):\n%s", diff)
	}
}

func TestMapErrorPayload_NestedPathsStayFormLevel(t *testing.T) {
	t.Parallel()

	schema := model.FormSchema{Fields: []model.FieldDefinition{
		{ID: "data", Type: model.FieldTypeText},
		{ID: "city", Type: model.FieldTypeText},
	}}
	mapped := render.MapErrorPayload(schema, map[string][]string{
		"address.city": {"City unknown"},
		"/data":        {"Data required"},
		"#/fields/0":   {"Broken"},
		"items[1]":     {"  "},
	})

	if diff := cmp.Diff(map[string][]string{"data": {"Data required"}}, mapped.Fields); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}
	sortSlices := cmpopts.SortSlices(func(a, b string) bool { return a < b })
	if diff := cmp.Diff([]string{"Broken", "City unknown"}, mapped.Form, sortSlices); diff != "" {
		t.Fatalf("form errors mismatch (-want +got):\n%s", diff)
	}
}
