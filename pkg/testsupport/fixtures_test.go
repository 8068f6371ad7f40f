package testsupport

import (
	"path/filepath"
	"testing"
)

func TestLoadSchema(t *testing.T) {
	t.Parallel()

	form := MustLoadSchema(t, filepath.Join("testdata", "profile.json"))
	if form.ID != "profile" || len(form.Fields) != 3 {
		t.Fatalf("unexpected schema %+v", form)
	}
	if _, err := LoadSchema(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
	if diff := CompareGolden(form, MustLoadSchema(t, filepath.Join("testdata", "profile.json"))); diff != "" {
		t.Fatalf("expected stable decode:\n%s", diff)
	}
}
