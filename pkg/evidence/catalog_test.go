package evidence

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultCatalogCoversKnownCategories(t *testing.T) {
	catalog := DefaultCatalog()

	for _, name := range []string{"cardiac", "diabetes", "cancer", "respiratory", "mental_health", "substance_abuse"} {
		if len(catalog.Condition(name)) == 0 {
			t.Fatalf("expected condition keywords for %q", name)
		}
	}
	for _, name := range []string{"statin", "metformin", "insulin", "opioid", "benzo", "antidepressant", "antipsychotic", "blood_thinner", "gabapentin", "suboxone"} {
		if len(catalog.Drug(name)) == 0 {
			t.Fatalf("expected drug keywords for %q", name)
		}
	}

	if catalog.Condition("nonexistent") != nil {
		t.Fatal("expected nil for unknown condition category")
	}
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	catalog, err := Load("")
	if err != nil {
		t.Fatalf("failed to load default catalog: %v", err)
	}
	if len(catalog.Conditions) == 0 || len(catalog.Drugs) == 0 {
		t.Fatal("expected default catalog to be populated")
	}
}

func TestLoadFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	content := []byte(`
conditions:
  cardiac: [CARDIAC, HEART]
drugs:
  opioid: [OXYCODONE, MORPHINE]
`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("failed to write catalog file: %v", err)
	}

	catalog, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load catalog: %v", err)
	}
	if got := catalog.Condition("cardiac"); len(got) != 2 {
		t.Fatalf("expected two cardiac keywords, got %v", got)
	}
	if got := catalog.Drug("opioid"); len(got) != 2 {
		t.Fatalf("expected two opioid keywords, got %v", got)
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing catalog file")
	}
}

func TestContainsAny(t *testing.T) {
	if !ContainsAny("CARDIAC ARREST HISTORY", []string{"CARDIAC", "HEART"}) {
		t.Fatal("expected cardiac match")
	}
	if ContainsAny("ROUTINE CHECKUP", []string{"CARDIAC", "HEART"}) {
		t.Fatal("expected no match")
	}
	if ContainsAny("anything", []string{""}) {
		t.Fatal("empty needle must never match")
	}
	if ContainsAny("anything", nil) {
		t.Fatal("nil needles must never match")
	}
}
