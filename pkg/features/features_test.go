package features

import (
	"testing"

	"github.com/underwriteiq/platform/pkg/evidence/mib"
	"github.com/underwriteiq/platform/pkg/evidence/rx"
)

func TestCombineUnionsDisjointVocabularies(t *testing.T) {
	mibFeatures := mib.Features{}.Map()
	rxFeatures := rx.Features{}.Map()

	combined := Combine(mibFeatures, rxFeatures)

	if len(combined) != CombinedFeatureCount {
		t.Fatalf("expected %d combined features, got %d", CombinedFeatureCount, len(combined))
	}
	for name := range mibFeatures {
		if _, ok := combined[name]; !ok {
			t.Fatalf("combined mapping missing MIB feature %q", name)
		}
	}
	for name := range rxFeatures {
		if _, ok := combined[name]; !ok {
			t.Fatalf("combined mapping missing RX feature %q", name)
		}
	}
}

func TestCombineDoesNotAliasInputs(t *testing.T) {
	mibFeatures := map[string]interface{}{"mib_hit_count": 1}
	rxFeatures := map[string]interface{}{"rx_total_fills": 2}

	combined := Combine(mibFeatures, rxFeatures)
	combined["mib_hit_count"] = 99

	if mibFeatures["mib_hit_count"] != 1 {
		t.Fatal("expected input mapping to be unchanged")
	}
}

func TestTypedLookups(t *testing.T) {
	m := map[string]interface{}{
		"int":     3,
		"int64":   int64(4),
		"float":   2.9,
		"bool":    true,
		"string":  "not a number",
		"nothing": nil,
	}

	if got := GetInt(m, "int"); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
	if got := GetInt(m, "int64"); got != 4 {
		t.Fatalf("expected 4, got %d", got)
	}
	if got := GetInt(m, "float"); got != 2 {
		t.Fatalf("expected truncation to 2, got %d", got)
	}
	if got := GetInt(m, "string"); got != 0 {
		t.Fatalf("expected 0 for foreign type, got %d", got)
	}
	if got := GetInt(m, "absent"); got != 0 {
		t.Fatalf("expected 0 for absent key, got %d", got)
	}

	if !GetBool(m, "bool") {
		t.Fatal("expected true")
	}
	if GetBool(m, "int") || GetBool(m, "absent") {
		t.Fatal("expected false for foreign type and absent key")
	}

	if got := GetFloat(m, "float"); got != 2.9 {
		t.Fatalf("expected 2.9, got %f", got)
	}
	if got := GetFloat(m, "int"); got != 3.0 {
		t.Fatalf("expected 3.0, got %f", got)
	}
	if got := GetFloat(m, "absent"); got != 0 {
		t.Fatalf("expected 0 for absent key, got %f", got)
	}
}
