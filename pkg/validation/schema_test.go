package validation

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/diag"
	"github.com/goliatone/go-formbuilder/pkg/model"
)

func issueCodes(result SchemaValidationResult) []string {
	var out []string
	for _, issue := range result.Issues {
		out = append(out, issue.Field+":"+string(issue.Code))
	}
	sort.Strings(out)
	return out
}

func TestValidateSchemaValid(t *testing.T) {
	t.Parallel()

	result := ValidateSchema(genderRaceSchema())
	if !result.Valid || len(result.Issues) != 0 {
		t.Fatalf("expected valid schema, got %+v", result.Issues)
	}
}

func TestValidateSchemaReportsProblems(t *testing.T) {
	t.Parallel()

	schema := model.FormSchema{Fields: []model.FieldDefinition{
		{ID: "dup", Type: model.FieldTypeText},
		{ID: "dup", Type: model.FieldTypeText},
		{ID: "kind", Type: "color"},
		{ID: "choice", Type: model.FieldTypeRadio},
		{ID: "choice2", Type: model.FieldTypeSelect, Options: []model.Option{{Value: "a"}, {Value: "a"}}},
		{ID: "plain", Type: model.FieldTypeText, Options: []model.Option{{Value: "x"}}, Width: 140},
		{ID: "rules", Type: model.FieldTypeText, Validation: []model.ValidationRule{
			{Type: model.ValidationRuleMinLength, Value: "many"},
			{Type: model.ValidationRulePattern, Value: "("},
			{Type: "uppercase"},
		}},
		{ID: "loop_a", Type: model.FieldTypeText, Condition: &model.ConditionSpec{Rules: []model.ConditionRule{{Field: "loop_b", Value: "x"}}}},
		{ID: "loop_b", Type: model.FieldTypeText, Condition: &model.ConditionSpec{Rules: []model.ConditionRule{{Field: "loop_a", Value: "x"}}}},
		{ID: "orphan", Type: model.FieldTypeText, Condition: &model.ConditionSpec{Rules: []model.ConditionRule{{Field: "ghost", Value: "x"}}}},
	}}

	result := ValidateSchema(schema)
	if result.Valid {
		t.Fatalf("expected invalid schema")
	}

	want := []string{
		"choice2:duplicate_option",
		"choice:missing_options",
		"dup:duplicate_field_id",
		"kind:unknown_field_type",
		"loop_a:dependency_cycle",
		"orphan:unresolved_reference",
		"plain:invalid_width",
		"plain:unexpected_options",
		"rules:invalid_pattern",
		"rules:invalid_rule_value",
		"rules:unknown_rule_type",
	}
	if diff := cmp.Diff(want, issueCodes(result)); diff != "" {
		t.Fatalf("issues mismatch (-want +got):\n%s", diff)
	}

	for _, issue := range result.Issues {
		if issue.Field == "kind" && issue.Path != "#/fields/2" {
			t.Fatalf("unexpected path %q", issue.Path)
		}
	}
}

func TestValidateSchemaWarningsKeepSchemaValid(t *testing.T) {
	t.Parallel()

	schema := model.FormSchema{
		Fields: []model.FieldDefinition{
			{ID: "a", Type: model.FieldTypeText, RowID: "r", Width: 80},
			{ID: "b", Type: model.FieldTypeText, RowID: "r", Width: 80},
		},
		Settings: model.Settings{Layout: model.LayoutAuto},
	}
	result := ValidateSchema(schema)
	if !result.Valid {
		t.Fatalf("warnings must not invalidate the schema: %+v", result.Issues)
	}
	if len(result.Issues) != 1 || result.Issues[0].Code != diag.CodeRowOverflow {
		t.Fatalf("expected a row overflow warning, got %+v", result.Issues)
	}
	if len(result.Errors()) != 0 {
		t.Fatalf("expected no errors")
	}
}

func TestValidateSchemaForwardsToSink(t *testing.T) {
	t.Parallel()

	sink := diag.NewCollector()
	ValidateSchema(model.FormSchema{Fields: []model.FieldDefinition{{ID: "", Type: model.FieldTypeText, Label: "Nameless"}}}, WithSink(sink))
	if !sink.Has(diag.CodeMissingFieldID) {
		t.Fatalf("expected diagnostics forwarded to the caller sink")
	}
}
