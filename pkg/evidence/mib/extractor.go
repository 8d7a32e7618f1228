// Package mib extracts the fixed MIB feature vocabulary from medical
// information bureau evidence documents.
//
// Extraction is pattern-based on purpose: evidence XML arrives malformed or
// truncated often enough that a validating parse would turn routine partial
// evidence into hard errors. Each pattern is independent and degrades to the
// feature's zero default when it does not match.
package mib

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/underwriteiq/platform/pkg/evidence"
)

// FeatureCount is the size of the MIB feature vocabulary.
const FeatureCount = 38

var (
	responseDataRe = regexp.MustCompile(`<ResponseData>([^<]+)</ResponseData>`)
	bmiRe          = regexp.MustCompile(`<BMI>(\d+\.?\d*)</BMI>`)
)

// Features is the fixed MIB vocabulary. Every field maps to exactly one
// feature name and is always present in Map output; absent or unmatched
// input leaves the zero default. Several fields (severity, complexity,
// medium/low risk counts, most condition flags beyond the six computed ones)
// are declared but not yet computed — downstream scoring weights assume
// their defaults, so they must stay untouched until the model is retrained.
type Features struct {
	// Core metrics
	HitCount     int
	TryCount     int
	CodeCount    int
	TotalRecords int
	HasHit       bool

	// BMI
	AvgBMI    float64
	MaxBMI    float64
	MinBMI    float64
	BMIOver30 bool
	BMIOver35 bool

	// Build data
	AvgHeight     float64
	AvgWeight     float64
	MaxWeight     float64
	WeightOver200 bool

	// Condition codes
	HasCardiacCode          bool
	HasDiabetesCode         bool
	HasCancerCode           bool
	HasRespiratoryCode      bool
	HasMentalHealthCode     bool
	HasSubstanceAbuseCode   bool
	HasLiverCode            bool
	HasKidneyCode           bool
	HasNeurologicalCode     bool
	HasAutoimmuneCode       bool
	HasBloodDisorderCode    bool
	HasGastrointestinalCode bool
	HasMusculoskeletalCode  bool
	HasEndocrineCode        bool
	HasInfectiousCode       bool

	// Risk indicators
	HighRiskCodeCount   int
	MediumRiskCodeCount int
	LowRiskCodeCount    int
	HitRatio            float64
	MultipleHits        bool

	// Derived scores
	RiskScore       float64
	SeverityScore   float64
	ComplexityScore float64
	OverallScore    float64
}

type Extractor struct {
	catalog evidence.Catalog
}

func NewExtractor(catalog evidence.Catalog) *Extractor {
	return &Extractor{catalog: catalog}
}

// Extract scrapes the MIB document and returns the full feature vocabulary.
// It never fails: empty, missing or malformed input yields all defaults.
func (e *Extractor) Extract(xml string) Features {
	var f Features
	if xml == "" {
		return f
	}

	matches := responseDataRe.FindAllStringSubmatch(xml, -1)
	codes := make([]string, 0, len(matches))
	for _, m := range matches {
		codes = append(codes, m[1])
	}
	f.CodeCount = len(codes)
	f.TotalRecords = len(codes)

	if strings.Contains(xml, "HIT") || strings.Contains(xml, "RelationRoleCode>HIT<") {
		f.HitCount = 1
		f.HasHit = true
	}

	if bmiMatches := bmiRe.FindAllStringSubmatch(xml, -1); len(bmiMatches) > 0 {
		var values []float64
		var sum float64
		for _, m := range bmiMatches {
			v, err := strconv.ParseFloat(m[1], 64)
			if err != nil {
				continue
			}
			values = append(values, v)
			sum += v
		}
		if len(values) > 0 {
			f.AvgBMI = sum / float64(len(values))
			f.MaxBMI = values[0]
			f.MinBMI = values[0]
			for _, v := range values[1:] {
				if v > f.MaxBMI {
					f.MaxBMI = v
				}
				if v < f.MinBMI {
					f.MinBMI = v
				}
			}
			f.BMIOver30 = f.MaxBMI > 30
			f.BMIOver35 = f.MaxBMI > 35
		}
	}

	codeStr := strings.ToUpper(strings.Join(codes, " "))
	f.HasCardiacCode = evidence.ContainsAny(codeStr, e.catalog.Condition("cardiac"))
	f.HasDiabetesCode = evidence.ContainsAny(codeStr, e.catalog.Condition("diabetes"))
	f.HasCancerCode = evidence.ContainsAny(codeStr, e.catalog.Condition("cancer"))
	f.HasRespiratoryCode = evidence.ContainsAny(codeStr, e.catalog.Condition("respiratory"))
	f.HasMentalHealthCode = evidence.ContainsAny(codeStr, e.catalog.Condition("mental_health"))
	f.HasSubstanceAbuseCode = evidence.ContainsAny(codeStr, e.catalog.Condition("substance_abuse"))

	highRisk := 0
	for _, flag := range []bool{f.HasCancerCode, f.HasCardiacCode, f.HasSubstanceAbuseCode} {
		if flag {
			highRisk++
		}
	}
	f.HighRiskCodeCount = highRisk
	f.RiskScore = math.Min(1.0, float64(highRisk)*0.3+float64(f.HitCount)*0.2)

	return f
}

// Map renders the features under their canonical wire names.
func (f Features) Map() map[string]interface{} {
	return map[string]interface{}{
		"mib_hit_count":     f.HitCount,
		"mib_try_count":     f.TryCount,
		"mib_code_count":    f.CodeCount,
		"mib_total_records": f.TotalRecords,
		"mib_has_hit":       f.HasHit,

		"mib_avg_bmi":     f.AvgBMI,
		"mib_max_bmi":     f.MaxBMI,
		"mib_min_bmi":     f.MinBMI,
		"mib_bmi_over_30": f.BMIOver30,
		"mib_bmi_over_35": f.BMIOver35,

		"mib_avg_height":      f.AvgHeight,
		"mib_avg_weight":      f.AvgWeight,
		"mib_max_weight":      f.MaxWeight,
		"mib_weight_over_200": f.WeightOver200,

		"mib_has_cardiac_code":          f.HasCardiacCode,
		"mib_has_diabetes_code":         f.HasDiabetesCode,
		"mib_has_cancer_code":           f.HasCancerCode,
		"mib_has_respiratory_code":      f.HasRespiratoryCode,
		"mib_has_mental_health_code":    f.HasMentalHealthCode,
		"mib_has_substance_abuse_code":  f.HasSubstanceAbuseCode,
		"mib_has_liver_code":            f.HasLiverCode,
		"mib_has_kidney_code":           f.HasKidneyCode,
		"mib_has_neurological_code":     f.HasNeurologicalCode,
		"mib_has_autoimmune_code":       f.HasAutoimmuneCode,
		"mib_has_blood_disorder_code":   f.HasBloodDisorderCode,
		"mib_has_gastrointestinal_code": f.HasGastrointestinalCode,
		"mib_has_musculoskeletal_code":  f.HasMusculoskeletalCode,
		"mib_has_endocrine_code":        f.HasEndocrineCode,
		"mib_has_infectious_code":       f.HasInfectiousCode,

		"mib_high_risk_code_count":   f.HighRiskCodeCount,
		"mib_medium_risk_code_count": f.MediumRiskCodeCount,
		"mib_low_risk_code_count":    f.LowRiskCodeCount,
		"mib_hit_ratio":              f.HitRatio,
		"mib_multiple_hits":          f.MultipleHits,

		"mib_risk_score":       f.RiskScore,
		"mib_severity_score":   f.SeverityScore,
		"mib_complexity_score": f.ComplexityScore,
		"mib_overall_score":    f.OverallScore,
	}
}

// Names returns the sorted MIB feature vocabulary.
func Names() []string {
	m := Features{}.Map()
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
