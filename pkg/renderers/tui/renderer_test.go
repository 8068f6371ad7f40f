package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/submission"
)

type stubDriver struct {
	inputs       []string
	selectIdx    []int
	confirm      []bool
	textAreas    []string
	passwords    []string
	infoMessages []string
	prompted     []string
	inputPos     int
	selectPos    int
	confirmPos   int
	textPos      int
	passPos      int
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	s.prompted = append(s.prompted, cfg.Message)
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Password(_ context.Context, cfg InputConfig) (string, error) {
	s.prompted = append(s.prompted, cfg.Message)
	if s.passPos >= len(s.passwords) {
		return "", errors.New("no password scripted")
	}
	val := s.passwords[s.passPos]
	s.passPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, cfg ConfirmConfig) (bool, error) {
	s.prompted = append(s.prompted, cfg.Message)
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	s.prompted = append(s.prompted, cfg.Message)
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, cfg TextAreaConfig) (string, error) {
	s.prompted = append(s.prompted, cfg.Message)
	if s.textPos >= len(s.textAreas) {
		return "", errors.New("no textarea scripted")
	}
	val := s.textAreas[s.textPos]
	s.textPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func profileSchema() model.FormSchema {
	return model.FormSchema{
		ID: "profile",
		Fields: []model.FieldDefinition{
			{
				ID:       "gender",
				Label:    "Gender",
				Type:     model.FieldTypeSelect,
				Required: true,
				Options:  []model.Option{{Label: "Male", Value: "MALE"}, {Label: "Female", Value: "FEMALE"}},
			},
			{
				ID:      "race",
				Label:   "Race",
				Type:    model.FieldTypeRadio,
				Options: []model.Option{{Label: "A", Value: "a"}, {Label: "B", Value: "b"}},
				Condition: &model.ConditionSpec{
					Rules: []model.ConditionRule{{Field: "gender", Operator: model.OperatorEquals, Value: "MALE"}},
				},
				Order: 1,
			},
			{
				ID:         "age",
				Label:      "Age",
				Type:       model.FieldTypeNumber,
				Validation: []model.ValidationRule{{Type: model.ValidationRuleMin, Value: 18, Message: "Adults only"}},
				Order:      2,
			},
		},
	}
}

func collect(t *testing.T, driver *stubDriver, schema model.FormSchema, options render.RenderOptions, opts ...Option) ([]byte, error) {
	t.Helper()
	r, err := New(append([]Option{WithPromptDriver(driver)}, opts...)...)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	plan := render.BuildPlan(schema, nil, options, nil)
	return r.Render(context.Background(), plan, options)
}

func decode(t *testing.T, out []byte) map[string]any {
	t.Helper()
	var got map[string]any
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	return got
}

func TestRenderRevealsDependentFields(t *testing.T) {
	t.Parallel()

	driver := &stubDriver{
		selectIdx: []int{0, 2},
		inputs:    []string{"30"},
	}
	out, err := collect(t, driver, profileSchema(), render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if diff := cmp.Diff([]string{"Gender", "Race", "Age"}, driver.prompted); diff != "" {
		t.Fatalf("prompt order mismatch (-want +got):\n%s", diff)
	}
	want := map[string]any{"gender": "MALE", "race": "b", "age": float64(30)}
	if diff := cmp.Diff(want, decode(t, out)); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderSkipsHiddenFields(t *testing.T) {
	t.Parallel()

	driver := &stubDriver{
		selectIdx: []int{1},
		inputs:    []string{""},
	}
	out, err := collect(t, driver, profileSchema(), render.RenderOptions{
		Values: map[string]any{"race": "a"},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if diff := cmp.Diff([]string{"Gender", "Age"}, driver.prompted); diff != "" {
		t.Fatalf("prompt order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]any{"gender": "FEMALE"}, decode(t, out)); diff != "" {
		t.Fatalf("hidden prefill must be dropped (-want +got):\n%s", diff)
	}
}

func TestRenderRepromptsInvalidAnswers(t *testing.T) {
	t.Parallel()

	driver := &stubDriver{
		selectIdx: []int{1},
		inputs:    []string{"old", "16", "21"},
	}
	out, err := collect(t, driver, profileSchema(), render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := []string{"Invalid Age: enter a number", "Invalid Age: Adults only"}
	if diff := cmp.Diff(want, driver.infoMessages); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}
	if got := decode(t, out)["age"]; got != float64(21) {
		t.Fatalf("expected age 21, got %v", got)
	}
}

func TestRenderKeepsDisabledPrefill(t *testing.T) {
	t.Parallel()

	schema := model.FormSchema{Fields: []model.FieldDefinition{
		{ID: "edit", Label: "Edit", Type: model.FieldTypeCheckbox},
		{
			ID:    "notes",
			Label: "Notes",
			Type:  model.FieldTypeTextarea,
			Condition: &model.ConditionSpec{
				Action: model.ConditionActionEnable,
				Rules:  []model.ConditionRule{{Field: "edit", Value: true}},
			},
			Order: 1,
		},
	}}
	driver := &stubDriver{confirm: []bool{false}}
	out, err := collect(t, driver, schema, render.RenderOptions{Values: map[string]any{"notes": "keep me"}})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if diff := cmp.Diff([]string{"Edit"}, driver.prompted); diff != "" {
		t.Fatalf("disabled field must not be prompted (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]any{"edit": false, "notes": "keep me"}, decode(t, out)); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderAsksFieldsRevealedByLaterAnswers(t *testing.T) {
	t.Parallel()

	schema := model.FormSchema{Fields: []model.FieldDefinition{
		{
			ID:    "company",
			Label: "Company",
			Type:  model.FieldTypeText,
			Condition: &model.ConditionSpec{
				Rules: []model.ConditionRule{{Field: "employed", Value: true}},
			},
		},
		{ID: "employed", Label: "Employed", Type: model.FieldTypeCheckbox, Order: 1},
	}}
	driver := &stubDriver{confirm: []bool{true}, inputs: []string{"Acme"}}
	out, err := collect(t, driver, schema, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if diff := cmp.Diff([]string{"Employed", "Company"}, driver.prompted); diff != "" {
		t.Fatalf("prompt order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]any{"employed": true, "company": "Acme"}, decode(t, out)); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderShowsServerErrorsAndSettings(t *testing.T) {
	t.Parallel()

	schema := profileSchema()
	schema.Settings.Title = "Profile"
	driver := &stubDriver{selectIdx: []int{1}, inputs: []string{"40"}}
	_, err := collect(t, driver, schema, render.RenderOptions{
		Errors:     map[string][]string{"age": {"Age was rejected"}},
		FormErrors: []string{"Try again"},
	}, WithTheme(Theme{InfoPrefix: "> ", ErrorPrefix: "! "}))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := []string{"> Profile", "! Try again", "! Age: Age was rejected"}
	if diff := cmp.Diff(want, driver.infoMessages); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderRejectsInvalidDisabledPrefill(t *testing.T) {
	t.Parallel()

	schema := model.FormSchema{Fields: []model.FieldDefinition{
		{ID: "edit", Label: "Edit", Type: model.FieldTypeCheckbox},
		{
			ID:         "code",
			Type:       model.FieldTypeText,
			Validation: []model.ValidationRule{{Type: model.ValidationRuleMaxLength, Value: 2, Message: "too long"}},
			Condition: &model.ConditionSpec{
				Action: model.ConditionActionEnable,
				Rules:  []model.ConditionRule{{Field: "edit", Value: true}},
			},
			Order: 1,
		},
	}}
	driver := &stubDriver{confirm: []bool{false}}
	_, err := collect(t, driver, schema, render.RenderOptions{Values: map[string]any{"code": "abcd"}})
	if !errors.Is(err, submission.ErrRejected) {
		t.Fatalf("expected rejection, got %v", err)
	}
}

func TestRenderOutputFormats(t *testing.T) {
	t.Parallel()

	schema := model.FormSchema{Fields: []model.FieldDefinition{
		{ID: "name", Label: "Name", Type: model.FieldTypeText},
		{ID: "secret", Label: "Secret", Type: model.FieldTypePassword, Order: 1},
	}}

	form, err := collect(t, &stubDriver{inputs: []string{"Ada Lovelace"}, passwords: []string{"x&y"}}, schema,
		render.RenderOptions{}, WithOutputFormat(OutputFormatFormURLEncoded))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got := string(form); got != "name=Ada+Lovelace&secret=x%26y" {
		t.Fatalf("unexpected form output %q", got)
	}

	pretty, err := collect(t, &stubDriver{inputs: []string{"Ada"}, passwords: []string{"pw"}}, schema,
		render.RenderOptions{}, WithOutputFormat(OutputFormatPrettyText))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got := string(pretty); got != "name=Ada\nsecret=pw\n" {
		t.Fatalf("unexpected pretty output %q", got)
	}
}

func TestRenderAbortAndSubset(t *testing.T) {
	t.Parallel()

	abort := &abortingDriver{stubDriver: &stubDriver{}}
	r, _ := New(WithPromptDriver(abort))
	plan := render.BuildPlan(profileSchema(), nil, render.RenderOptions{}, nil)
	if _, err := r.Render(context.Background(), plan, render.RenderOptions{}); !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}

	driver := &stubDriver{inputs: []string{"50"}}
	out, err := collect(t, driver, profileSchema(), render.RenderOptions{Subset: render.ParseSubset("age")})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(string(out), `"age":50`) || len(driver.prompted) != 1 {
		t.Fatalf("expected only age collected, got %s after %v", out, driver.prompted)
	}
}

type abortingDriver struct {
	*stubDriver
}

func (a *abortingDriver) Select(context.Context, SelectConfig) (int, error) {
	return 0, ErrAborted
}

func TestChoiceOptionsOfferNoneWhenOptional(t *testing.T) {
	t.Parallel()

	field := model.FieldDefinition{ID: "c", Type: model.FieldTypeSelect, Options: []model.Option{{Value: "x"}}}
	labels, values := choiceOptions(field)
	if diff := cmp.Diff([]string{noneOption, "x"}, labels); diff != "" {
		t.Fatalf("labels mismatch:\n%s", diff)
	}
	if values[0] != nil || *values[1] != "x" {
		t.Fatalf("unexpected values %v", values)
	}
	if idx := indexOfValue(values, "x"); idx != 1 {
		t.Fatalf("expected default index 1, got %d", idx)
	}
	field.Required = true
	labels, _ = choiceOptions(field)
	if diff := cmp.Diff([]string{"x"}, labels); diff != "" {
		t.Fatalf("required choices must not offer none:\n%s", diff)
	}
}
