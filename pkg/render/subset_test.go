package render_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/render"
)

func plannedKeys(plan render.Plan) []string {
	var keys []string
	for _, field := range plan.Fields() {
		keys = append(keys, field.Key)
	}
	return keys
}

func TestBuildPlanSubset(t *testing.T) {
	t.Parallel()

	schema := model.FormSchema{Fields: []model.FieldDefinition{
		{ID: "name", Type: model.FieldTypeText, Order: 0},
		{ID: "email", Type: model.FieldTypeEmail, Order: 1},
		{ID: "street", Type: model.FieldTypeText, Order: 2, RowID: "address"},
		{ID: "city", Type: model.FieldTypeText, Order: 3, RowID: "address"},
		{ID: "notes", Type: model.FieldTypeTextarea, Order: 4, Condition: &model.ConditionSpec{
			Rules: []model.ConditionRule{{Field: "name", Operator: model.OperatorNotEmpty}},
		}},
	}}

	cases := []struct {
		name   string
		subset render.FieldSubset
		values map[string]any
		want   []string
	}{
		{name: "empty keeps all visible", want: []string{"name", "email", "street", "city"}},
		{name: "by key", subset: render.ParseSubset("email, NAME,email"), want: []string{"name", "email"}},
		{name: "by type", subset: render.FieldSubset{Types: []model.FieldType{model.FieldTypeEmail}}, want: []string{"email"}},
		{name: "by row", subset: render.FieldSubset{Rows: []string{"address"}}, want: []string{"street", "city"}},
		{
			name:   "conditions see fields outside the subset",
			subset: render.FieldSubset{Fields: []string{"notes"}},
			values: map[string]any{"name": "Ada"},
			want:   []string{"notes"},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			plan := render.BuildPlan(schema, nil, render.RenderOptions{Subset: tc.subset, Values: tc.values}, nil)
			if diff := cmp.Diff(tc.want, plannedKeys(plan)); diff != "" {
				t.Fatalf("keys mismatch (-want +got):\n%s", diff)
			}
		})
	}

	if !render.ParseSubset(" , ").Empty() {
		t.Fatalf("expected blank subset to be empty")
	}
}
