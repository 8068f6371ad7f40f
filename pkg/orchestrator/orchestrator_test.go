package orchestrator_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/diag"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/orchestrator"
	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/schema"
	"github.com/goliatone/go-formbuilder/pkg/testsupport"
)

type stubRenderer struct {
	name string
	plan render.Plan
}

func (s *stubRenderer) Name() string        { return s.name }
func (s *stubRenderer) ContentType() string { return "text/plain" }
func (s *stubRenderer) Render(_ context.Context, plan render.Plan, _ render.RenderOptions) ([]byte, error) {
	s.plan = plan
	return []byte(s.name), nil
}

func plannedKeys(plan render.Plan) []string {
	var out []string
	for _, field := range plan.Fields() {
		out = append(out, field.Key)
	}
	return out
}

func TestGenerateRendersSchemaFileWithDefaults(t *testing.T) {
	t.Parallel()

	orch := orchestrator.New()
	out, err := orch.Generate(testsupport.Context(), orchestrator.Request{
		Source: schema.SourceFromFile(filepath.Join("testdata", "profile.json")),
		RenderOptions: render.RenderOptions{
			Values: map[string]any{"gender": "MALE", "age": 16},
			Errors: map[string][]string{"age": {"Adults only"}},
			Method: "PATCH",
			Action: "/profiles/1",
		},
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	html := string(out)
	for _, want := range []string{
		`action="/profiles/1"`,
		`name="_method" value="PATCH"`,
		`data-field="race"`,
		`name="age"`,
		"Adults only",
		"Save",
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected %q in output:\n%s", want, html)
		}
	}
}

func TestGenerateDispatchesToNamedRenderer(t *testing.T) {
	t.Parallel()

	html := &stubRenderer{name: "html"}
	custom := &stubRenderer{name: "custom"}
	orch := orchestrator.New(orchestrator.WithRegistry(render.NewRegistry(html, custom)))
	form := testsupport.MustLoadSchema(t, filepath.Join("testdata", "profile.json"))

	out, err := orch.Generate(context.Background(), orchestrator.Request{Schema: &form, Renderer: "custom"})
	if err != nil || string(out) != "custom" {
		t.Fatalf("expected custom renderer, got %q, %v", out, err)
	}
	if diff := cmp.Diff([]string{"gender", "age"}, plannedKeys(custom.plan)); diff != "" {
		t.Fatalf("plan mismatch (-want +got):\n%s", diff)
	}

	out, err = orch.Generate(context.Background(), orchestrator.Request{Schema: &form})
	if err != nil || string(out) != "html" {
		t.Fatalf("expected default html renderer, got %q, %v", out, err)
	}

	if _, err := orch.Generate(context.Background(), orchestrator.Request{Schema: &form, Renderer: "pdf"}); err == nil {
		t.Fatalf("expected unknown renderer error")
	}
}

func TestGenerateImportsOpenAPIOperations(t *testing.T) {
	t.Parallel()

	stub := &stubRenderer{name: "html"}
	orch := orchestrator.New(
		orchestrator.WithRegistry(render.NewRegistry(stub)),
		orchestrator.WithEndpointOverrides(orchestrator.EndpointOverride{
			SchemaID:     "createProfile",
			Method:       "POST",
			Action:       "/profiles",
			HiddenFields: map[string]string{"_csrf": "token"},
		}),
	)
	_, err := orch.Generate(context.Background(), orchestrator.Request{
		Source:      schema.SourceFromFile(filepath.Join("testdata", "profiles.yaml")),
		OperationID: "createProfile",
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if stub.plan.SchemaID != "createProfile" || stub.plan.Action != "/profiles" {
		t.Fatalf("unexpected plan %+v", stub.plan)
	}
	if diff := cmp.Diff([]render.HiddenField{{Name: "_csrf", Value: "token"}}, stub.plan.HiddenFields); diff != "" {
		t.Fatalf("hidden fields mismatch (-want +got):\n%s", diff)
	}
	if _, ok := stub.plan.Field("email"); !ok {
		t.Fatalf("expected imported email field")
	}
}

func TestGenerateReportsSchemaIssues(t *testing.T) {
	t.Parallel()

	broken := model.FormSchema{ID: "broken", Fields: []model.FieldDefinition{
		{ID: "a", Type: model.FieldTypeText, Condition: &model.ConditionSpec{
			Rules: []model.ConditionRule{{Field: "ghost", Value: "x"}},
		}},
		{ID: "b", Type: model.FieldTypeText, Order: 1},
	}}

	sink := diag.NewCollector()
	stub := &stubRenderer{name: "html"}
	orch := orchestrator.New(orchestrator.WithRegistry(render.NewRegistry(stub)), orchestrator.WithSink(sink))
	if _, err := orch.Generate(context.Background(), orchestrator.Request{Schema: &broken}); err != nil {
		t.Fatalf("lenient mode must render degraded schemas: %v", err)
	}
	if !sink.Has(diag.CodeUnresolvedReference) {
		t.Fatalf("expected unresolved reference diagnostic, got %v", sink.Diagnostics())
	}
	if diff := cmp.Diff([]string{"b"}, plannedKeys(stub.plan)); diff != "" {
		t.Fatalf("plan mismatch (-want +got):\n%s", diff)
	}

	strict := orchestrator.New(orchestrator.WithRegistry(render.NewRegistry(stub)), orchestrator.WithStrict(true))
	_, err := strict.Generate(context.Background(), orchestrator.Request{Schema: &broken})
	var schemaErr *orchestrator.SchemaError
	if !errors.As(err, &schemaErr) || schemaErr.Result.Valid {
		t.Fatalf("expected SchemaError, got %v", err)
	}
}

func TestGenerateRequiresInput(t *testing.T) {
	t.Parallel()

	orch := orchestrator.New()
	if _, err := orch.Generate(context.Background(), orchestrator.Request{}); err == nil {
		t.Fatalf("expected error without schema or source")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := orch.Generate(ctx, orchestrator.Request{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}

	invalid := orchestrator.New(orchestrator.WithEndpointOverrides(orchestrator.EndpointOverride{SchemaID: "x"}))
	form := model.FormSchema{ID: "x"}
	if _, err := invalid.Generate(context.Background(), orchestrator.Request{Schema: &form}); err == nil {
		t.Fatalf("expected invalid override to surface")
	}
}
