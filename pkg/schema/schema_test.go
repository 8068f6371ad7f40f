package schema

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("read fixture %s: %v", name, err)
	}
	return data
}

// normalize flattens numeric rule values so JSON float64 and YAML int compare equal.
func normalize(schema model.FormSchema) model.FormSchema {
	for i := range schema.Fields {
		for j, rule := range schema.Fields[i].Validation {
			if n, ok := rule.Value.(int); ok {
				schema.Fields[i].Validation[j].Value = float64(n)
			}
		}
	}
	return schema
}

func TestDecodeJSONAndYAMLAgree(t *testing.T) {
	t.Parallel()

	fromJSON, err := Decode(readFixture(t, "profile.json"))
	if err != nil {
		t.Fatalf("decode json: %v", err)
	}
	fromYAML, err := Decode(readFixture(t, "profile.yaml"))
	if err != nil {
		t.Fatalf("decode yaml: %v", err)
	}

	if diff := cmp.Diff(normalize(fromJSON), normalize(fromYAML)); diff != "" {
		t.Fatalf("json/yaml mismatch (-json +yaml):\n%s", diff)
	}

	race, ok := fromJSON.Field("race")
	if !ok || race.Condition == nil || race.Condition.Rules[0].Field != "gender" {
		t.Fatalf("condition not decoded: %+v", race)
	}
	if fromJSON.Settings.Layout != model.LayoutAuto {
		t.Fatalf("unexpected layout %q", fromJSON.Settings.Layout)
	}
}

func TestDecodeErrors(t *testing.T) {
	t.Parallel()

	if _, err := Decode([]byte("  \n")); !errors.Is(err, ErrEmptyDocument) {
		t.Fatalf("expected ErrEmptyDocument, got %v", err)
	}
	if _, err := Decode([]byte(`{"fields": [`)); err == nil {
		t.Fatalf("expected error for truncated json")
	}
	if _, err := Decode([]byte("fields: [unclosed")); err == nil {
		t.Fatalf("expected error for malformed yaml")
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	t.Parallel()

	original := normalize(mustDecode(t, readFixture(t, "profile.json")))

	for _, path := range []string{"out.json", "out.yaml"} {
		data, err := EncodeFor(path, original)
		if err != nil {
			t.Fatalf("encode %s: %v", path, err)
		}
		decoded := normalize(mustDecode(t, data))
		if diff := cmp.Diff(original, decoded); diff != "" {
			t.Fatalf("%s round trip mismatch (-want +got):\n%s", path, diff)
		}
	}
}

func mustDecode(t *testing.T, raw []byte) model.FormSchema {
	t.Helper()
	schema, err := Decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return schema
}

func TestLoaderFileAndFS(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	schema, err := Load(ctx, NewLoader(WithoutHTTP()), SourceFromFile("testdata/profile.yaml"))
	if err != nil {
		t.Fatalf("load file: %v", err)
	}
	if len(schema.Fields) != 3 {
		t.Fatalf("expected 3 fields, got %d", len(schema.Fields))
	}

	fsys := fstest.MapFS{"forms/profile.json": {Data: readFixture(t, "profile.json")}}
	loader := NewLoader(WithFileSystem(fsys))
	doc, err := loader.Load(ctx, SourceFromFS("forms/profile.json"))
	if err != nil {
		t.Fatalf("load fs: %v", err)
	}
	if doc.Location() != "forms/profile.json" || doc.Source().Kind() != SourceKindFS {
		t.Fatalf("unexpected document metadata: %s %s", doc.Location(), doc.Source().Kind())
	}

	if _, err := loader.Load(ctx, SourceFromFS("missing.json")); err == nil {
		t.Fatalf("expected error for missing fs entry")
	}
}

func TestLoaderHTTP(t *testing.T) {
	t.Parallel()

	payload := readFixture(t, "profile.json")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(payload)
	}))
	t.Cleanup(server.Close)

	ctx := context.Background()
	loader := NewLoader(WithHTTPClient(server.Client()), WithHTTPFallback(time.Second))

	schema, err := Load(ctx, loader, SourceFromURL(server.URL+"/profile.json"))
	if err != nil {
		t.Fatalf("load url: %v", err)
	}
	if schema.ID != "profile" {
		t.Fatalf("unexpected schema id %q", schema.ID)
	}

	if _, err := loader.Load(ctx, SourceFromURL(server.URL+"/missing")); err == nil {
		t.Fatalf("expected status error")
	}

	offline := NewLoader(WithoutHTTP())
	if _, err := offline.Load(ctx, SourceFromURL(server.URL)); err == nil {
		t.Fatalf("expected http disabled error")
	}
}

func TestDocumentSchemaWrapsLocation(t *testing.T) {
	t.Parallel()

	doc := MustNewDocument(SourceFromFile("broken.json"), []byte(`{"fields": 3`))
	_, err := doc.Schema()
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) || decodeErr.Location != "broken.json" {
		t.Fatalf("expected DecodeError with location, got %v", err)
	}

	if _, err := NewDocument(nil, []byte("x")); err == nil {
		t.Fatalf("expected error for nil source")
	}
	if _, err := NewDocument(SourceFromFile("a.json"), nil); !errors.Is(err, ErrEmptyDocument) {
		t.Fatalf("expected ErrEmptyDocument, got %v", err)
	}
}

func TestParseSource(t *testing.T) {
	t.Parallel()

	cases := []struct {
		ref  string
		kind SourceKind
		err  bool
	}{
		{ref: "forms/a.json", kind: SourceKindFile},
		{ref: "https://example.com/a.yaml", kind: SourceKindURL},
		{ref: "HTTP://example.com/a.yaml", kind: SourceKindURL},
		{ref: "  ", err: true},
	}
	for _, tc := range cases {
		src, err := ParseSource(tc.ref)
		if tc.err {
			if err == nil {
				t.Fatalf("%q: expected error", tc.ref)
			}
			continue
		}
		if err != nil || src.Kind() != tc.kind {
			t.Fatalf("%q: got %v, %v", tc.ref, src, err)
		}
	}

	if !IsSchemaFile("a.YML") || IsSchemaFile("a.txt") {
		t.Fatalf("unexpected IsSchemaFile result")
	}
}
