package mib

import (
	"math"
	"testing"

	"github.com/underwriteiq/platform/pkg/evidence"
)

func newExtractor() *Extractor {
	return NewExtractor(evidence.DefaultCatalog())
}

func TestExtractEmptyDocumentYieldsDefaults(t *testing.T) {
	f := newExtractor().Extract("")
	m := f.Map()

	if len(m) != FeatureCount {
		t.Fatalf("expected %d features, got %d", FeatureCount, len(m))
	}
	if f.HasHit || f.HitCount != 0 || f.CodeCount != 0 {
		t.Fatalf("expected zero defaults, got %+v", f)
	}
	if f.RiskScore != 0 {
		t.Fatalf("expected zero risk score, got %f", f.RiskScore)
	}
}

func TestExtractCardiacWithElevatedBMI(t *testing.T) {
	xml := `<MIBResponse>
		<ResponseData>CARDIAC CONDITION REPORTED</ResponseData>
		<ResponseData>ROUTINE EXAM</ResponseData>
		<BMI>40.0</BMI>
	</MIBResponse>`

	f := newExtractor().Extract(xml)

	if f.CodeCount != 2 || f.TotalRecords != 2 {
		t.Fatalf("expected two codes, got %d", f.CodeCount)
	}
	if !f.HasCardiacCode {
		t.Fatal("expected cardiac code detection")
	}
	if f.AvgBMI != 40 || f.MaxBMI != 40 || f.MinBMI != 40 {
		t.Fatalf("expected BMI 40, got avg=%f max=%f min=%f", f.AvgBMI, f.MaxBMI, f.MinBMI)
	}
	if !f.BMIOver30 || !f.BMIOver35 {
		t.Fatal("expected BMI threshold flags")
	}
	if f.HighRiskCodeCount != 1 {
		t.Fatalf("expected one high risk code, got %d", f.HighRiskCodeCount)
	}
	// one high risk code, no hit
	if math.Abs(f.RiskScore-0.3) > 1e-9 {
		t.Fatalf("expected risk score 0.3, got %f", f.RiskScore)
	}
}

func TestExtractHitDetection(t *testing.T) {
	xml := `<MIBResponse>
		<RelationRoleCode>HIT</RelationRoleCode>
		<ResponseData>CANCER TREATMENT</ResponseData>
	</MIBResponse>`

	f := newExtractor().Extract(xml)

	if !f.HasHit || f.HitCount != 1 {
		t.Fatal("expected hit detection")
	}
	if !f.HasCancerCode {
		t.Fatal("expected cancer code detection")
	}
	// one high risk code plus hit
	if math.Abs(f.RiskScore-0.5) > 1e-9 {
		t.Fatalf("expected risk score 0.5, got %f", f.RiskScore)
	}
}

func TestExtractMultipleBMIValues(t *testing.T) {
	xml := `<MIBResponse><BMI>28.5</BMI><BMI>31.5</BMI></MIBResponse>`

	f := newExtractor().Extract(xml)

	if math.Abs(f.AvgBMI-30) > 1e-9 {
		t.Fatalf("expected avg BMI 30, got %f", f.AvgBMI)
	}
	if f.MaxBMI != 31.5 || f.MinBMI != 28.5 {
		t.Fatalf("expected max 31.5 min 28.5, got max=%f min=%f", f.MaxBMI, f.MinBMI)
	}
	if !f.BMIOver30 {
		t.Fatal("expected over-30 flag from max BMI")
	}
	if f.BMIOver35 {
		t.Fatal("did not expect over-35 flag")
	}
}

func TestExtractIsIdempotent(t *testing.T) {
	xml := `<MIBResponse><ResponseData>DIABETES DM2</ResponseData><BMI>33</BMI></MIBResponse>`
	e := newExtractor()

	first := e.Extract(xml)
	second := e.Extract(xml)
	if first != second {
		t.Fatalf("expected identical results, got %+v vs %+v", first, second)
	}
}

func TestNamesMatchVocabulary(t *testing.T) {
	names := Names()
	if len(names) != FeatureCount {
		t.Fatalf("expected %d names, got %d", FeatureCount, len(names))
	}
	for _, name := range names {
		if len(name) < 4 || name[:4] != "mib_" {
			t.Fatalf("feature %q missing mib_ prefix", name)
		}
	}
}
