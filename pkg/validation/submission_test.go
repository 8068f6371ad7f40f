package validation

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/diag"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/visibility"
)

func genderRaceSchema() model.FormSchema {
	return model.FormSchema{Fields: []model.FieldDefinition{
		{
			ID:         "gender",
			Type:       model.FieldTypeSelect,
			Required:   true,
			Options:    []model.Option{{Label: "Male", Value: "MALE"}, {Label: "Female", Value: "FEMALE"}},
			Validation: []model.ValidationRule{{Type: model.ValidationRuleRequired, Message: "Pick a gender"}},
		},
		{
			ID:   "race",
			Type: model.FieldTypeSelect,
			Condition: &model.ConditionSpec{
				Rules: []model.ConditionRule{{Field: "gender", Operator: model.OperatorEquals, Value: "MALE"}},
			},
			Options:    []model.Option{{Label: "A", Value: "a"}},
			Validation: []model.ValidationRule{{Type: model.ValidationRuleRequired, Message: "Pick a race"}},
			Order:      1,
		},
	}}
}

func TestValidateSubmissionSkipsHiddenFields(t *testing.T) {
	t.Parallel()

	schema := genderRaceSchema()

	hidden := ValidateSubmission(schema, map[string]any{"gender": "FEMALE"})
	if !hidden.Valid {
		t.Fatalf("hidden race must be exempt from required, got %+v", hidden.Fields)
	}
	if diff := cmp.Diff([]string{"race"}, hidden.Hidden); diff != "" {
		t.Fatalf("hidden mismatch (-want +got):\n%s", diff)
	}

	visible := ValidateSubmission(schema, map[string]any{"gender": "MALE"})
	want := map[string][]string{"race": {"Pick a race"}}
	if visible.Valid {
		t.Fatalf("visible race must be validated")
	}
	if diff := cmp.Diff(want, visible.Fields); diff != "" {
		t.Fatalf("violations mismatch (-want +got):\n%s", diff)
	}

	empty := ValidateSubmission(schema, nil)
	if diff := cmp.Diff(map[string][]string{"gender": {"Pick a gender"}}, empty.Fields); diff != "" {
		t.Fatalf("violations mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateSubmissionUsesFieldKeys(t *testing.T) {
	t.Parallel()

	schema := model.FormSchema{Fields: []model.FieldDefinition{{
		ID:         "field_1",
		Name:       "email",
		Type:       model.FieldTypeEmail,
		Validation: []model.ValidationRule{{Type: model.ValidationRulePattern, Value: "@", Message: "Enter an email"}},
	}}}
	result := ValidateSubmission(schema, map[string]any{"email": "nope"})
	if diff := cmp.Diff(map[string][]string{"email": {"Enter an email"}}, result.Fields); diff != "" {
		t.Fatalf("violations mismatch (-want +got):\n%s", diff)
	}
	if !ValidateSubmission(schema, map[string]any{"field_1": "a@b"}).Valid {
		t.Fatalf("expected id fallback lookup")
	}
}

func TestValidateSubmissionDisabledFields(t *testing.T) {
	t.Parallel()

	schema := model.FormSchema{Fields: []model.FieldDefinition{
		{ID: "edit", Type: model.FieldTypeCheckbox},
		{
			ID:   "notes",
			Type: model.FieldTypeText,
			Condition: &model.ConditionSpec{
				Action: model.ConditionActionEnable,
				Rules:  []model.ConditionRule{{Field: "edit", Value: true}},
			},
			Validation: []model.ValidationRule{
				{Type: model.ValidationRuleRequired, Message: "required"},
				{Type: model.ValidationRuleMaxLength, Value: 3, Message: "too long"},
			},
		},
	}}

	result := ValidateSubmission(schema, map[string]any{"edit": false})
	if !result.Valid {
		t.Fatalf("empty disabled field must not be required, got %+v", result.Fields)
	}
	if diff := cmp.Diff([]string{"notes"}, result.Disabled); diff != "" {
		t.Fatalf("disabled mismatch:\n%s", diff)
	}

	result = ValidateSubmission(schema, map[string]any{"edit": false, "notes": "prefilled"})
	if diff := cmp.Diff(map[string][]string{"notes": {"too long"}}, result.Fields); diff != "" {
		t.Fatalf("violations mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateSubmissionWithEvaluator(t *testing.T) {
	t.Parallel()

	schema := genderRaceSchema()
	hideAll := visibility.EvaluatorFunc(func(string, visibility.Context) visibility.State {
		return visibility.State{}
	})
	result := ValidateSubmission(schema, nil, WithEvaluator(hideAll))
	if !result.Valid || len(result.Hidden) != 2 {
		t.Fatalf("expected every field hidden, got %+v", result)
	}

	sink := diag.NewCollector()
	engine := visibility.NewEngine(schema, visibility.WithSink(sink))
	result = ValidateSubmission(schema, map[string]any{"gender": "MALE", "race": "a"}, WithEvaluator(engine))
	if !result.Valid {
		t.Fatalf("expected valid submission, got %+v", result.Fields)
	}
}
