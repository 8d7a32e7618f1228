// Package rx extracts the fixed prescription-history feature vocabulary
// from RX evidence documents. Same tolerance contract as the MIB extractor:
// pattern-based scraping, independent patterns, degrade to defaults.
package rx

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/underwriteiq/platform/pkg/evidence"
)

// FeatureCount is the size of the RX feature vocabulary.
const FeatureCount = 54

var (
	drugNameRe  = regexp.MustCompile(`<DrugGenericName>([^<]+)</DrugGenericName>`)
	specialtyRe = regexp.MustCompile(`<PhysicianSpecialty>([^<]+)</PhysicianSpecialty>`)
)

// Features is the fixed RX vocabulary. The specialty flags, the
// multiple-controlled/multiple-prescribers flags, and the cardiac/metabolic/
// mental-health/overall sub-scores are declared but not computed; their
// defaults are load-bearing for the scoring weights and must be preserved.
type Features struct {
	// Core metrics
	TotalFills        int
	UniqueDrugs       int
	UniqueNDCs        int
	UniqueSpecialties int
	UniquePrescribers int

	// Drug category flags
	DrugStatin            bool
	DrugMetformin         bool
	DrugInsulin           bool
	DrugOpioid            bool
	DrugBenzo             bool
	DrugAntidepressant    bool
	DrugAntipsychotic     bool
	DrugBloodThinner      bool
	DrugACEInhibitor      bool
	DrugBetaBlocker       bool
	DrugCalciumBlocker    bool
	DrugDiuretic          bool
	DrugPPI               bool
	DrugThyroid           bool
	DrugAntibiotic        bool
	DrugSteroid           bool
	DrugImmunosuppressant bool
	DrugChemo             bool
	DrugBiologic          bool
	DrugADHD              bool
	DrugSleep             bool
	DrugMuscleRelaxant    bool
	DrugGabapentin        bool
	DrugSuboxone          bool

	// Specialty flags
	SpecialtyCardiology       bool
	SpecialtyEndocrinology    bool
	SpecialtyOncology         bool
	SpecialtyPsychiatry       bool
	SpecialtyNeurology        bool
	SpecialtyPainManagement   bool
	SpecialtyRheumatology     bool
	SpecialtyPulmonology      bool
	SpecialtyGastroenterology bool
	SpecialtyNephrology       bool
	SpecialtyPrimaryCare      bool
	SpecialtyEmergency        bool

	// Risk flags
	FlagOpioidAndBenzo      bool
	FlagPolypharmacy5       bool
	FlagPolypharmacy10      bool
	FlagHighRiskCombo       bool
	FlagMultipleControlled  bool
	FlagMultiplePrescribers bool

	// Derived scores
	RiskScore             float64
	ComplexityScore       float64
	CardiacRiskScore      float64
	MetabolicRiskScore    float64
	MentalHealthRiskScore float64
	PainRiskScore         float64
	OverallScore          float64
}

type Extractor struct {
	catalog evidence.Catalog
}

func NewExtractor(catalog evidence.Catalog) *Extractor {
	return &Extractor{catalog: catalog}
}

// Extract scrapes the RX document and returns the full feature vocabulary.
// It never fails: empty, missing or malformed input yields all defaults.
func (e *Extractor) Extract(xml string) Features {
	var f Features
	if xml == "" {
		return f
	}

	f.TotalFills = strings.Count(xml, "<DrugFill>")

	drugs := uniqueMatches(drugNameRe, xml)
	f.UniqueDrugs = len(drugs)

	specialties := uniqueMatches(specialtyRe, xml)
	f.UniqueSpecialties = len(specialties)

	drugStr := strings.ToUpper(strings.Join(drugs, " "))

	f.DrugStatin = evidence.ContainsAny(drugStr, e.catalog.Drug("statin"))
	f.DrugMetformin = evidence.ContainsAny(drugStr, e.catalog.Drug("metformin"))
	f.DrugInsulin = evidence.ContainsAny(drugStr, e.catalog.Drug("insulin"))
	f.DrugOpioid = evidence.ContainsAny(drugStr, e.catalog.Drug("opioid"))
	f.DrugBenzo = evidence.ContainsAny(drugStr, e.catalog.Drug("benzo"))
	f.DrugAntidepressant = evidence.ContainsAny(drugStr, e.catalog.Drug("antidepressant"))
	f.DrugAntipsychotic = evidence.ContainsAny(drugStr, e.catalog.Drug("antipsychotic"))
	f.DrugBloodThinner = evidence.ContainsAny(drugStr, e.catalog.Drug("blood_thinner"))
	f.DrugGabapentin = evidence.ContainsAny(drugStr, e.catalog.Drug("gabapentin"))
	f.DrugSuboxone = evidence.ContainsAny(drugStr, e.catalog.Drug("suboxone"))

	f.FlagOpioidAndBenzo = f.DrugOpioid && f.DrugBenzo
	f.FlagPolypharmacy5 = f.UniqueDrugs >= 5
	f.FlagPolypharmacy10 = f.UniqueDrugs >= 10
	f.FlagHighRiskCombo = f.FlagOpioidAndBenzo || (f.DrugOpioid && f.DrugGabapentin)

	pain := 0.0
	if f.DrugOpioid {
		pain += 0.15
	}
	if f.DrugBenzo {
		pain += 0.10
	}
	if f.FlagOpioidAndBenzo {
		pain += 0.25
	}
	f.PainRiskScore = math.Min(1.0, pain)
	f.ComplexityScore = math.Min(1.0, float64(f.UniqueDrugs)*0.08)
	f.RiskScore = f.PainRiskScore*0.5 + f.ComplexityScore*0.5

	return f
}

// uniqueMatches returns the deduplicated first-capture values in document
// order.
func uniqueMatches(re *regexp.Regexp, xml string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, m := range re.FindAllStringSubmatch(xml, -1) {
		if _, ok := seen[m[1]]; ok {
			continue
		}
		seen[m[1]] = struct{}{}
		out = append(out, m[1])
	}
	return out
}

// Map renders the features under their canonical wire names.
func (f Features) Map() map[string]interface{} {
	return map[string]interface{}{
		"rx_total_fills":        f.TotalFills,
		"rx_unique_drugs":       f.UniqueDrugs,
		"rx_unique_ndcs":        f.UniqueNDCs,
		"rx_unique_specialties": f.UniqueSpecialties,
		"rx_unique_prescribers": f.UniquePrescribers,

		"rx_drug_statin":            f.DrugStatin,
		"rx_drug_metformin":         f.DrugMetformin,
		"rx_drug_insulin":           f.DrugInsulin,
		"rx_drug_opioid":            f.DrugOpioid,
		"rx_drug_benzo":             f.DrugBenzo,
		"rx_drug_antidepressant":    f.DrugAntidepressant,
		"rx_drug_antipsychotic":     f.DrugAntipsychotic,
		"rx_drug_blood_thinner":     f.DrugBloodThinner,
		"rx_drug_ace_inhibitor":     f.DrugACEInhibitor,
		"rx_drug_beta_blocker":      f.DrugBetaBlocker,
		"rx_drug_calcium_blocker":   f.DrugCalciumBlocker,
		"rx_drug_diuretic":          f.DrugDiuretic,
		"rx_drug_ppi":               f.DrugPPI,
		"rx_drug_thyroid":           f.DrugThyroid,
		"rx_drug_antibiotic":        f.DrugAntibiotic,
		"rx_drug_steroid":           f.DrugSteroid,
		"rx_drug_immunosuppressant": f.DrugImmunosuppressant,
		"rx_drug_chemo":             f.DrugChemo,
		"rx_drug_biologic":          f.DrugBiologic,
		"rx_drug_adhd":              f.DrugADHD,
		"rx_drug_sleep":             f.DrugSleep,
		"rx_drug_muscle_relaxant":   f.DrugMuscleRelaxant,
		"rx_drug_gabapentin":        f.DrugGabapentin,
		"rx_drug_suboxone":          f.DrugSuboxone,

		"rx_specialty_cardiology":       f.SpecialtyCardiology,
		"rx_specialty_endocrinology":    f.SpecialtyEndocrinology,
		"rx_specialty_oncology":         f.SpecialtyOncology,
		"rx_specialty_psychiatry":       f.SpecialtyPsychiatry,
		"rx_specialty_neurology":        f.SpecialtyNeurology,
		"rx_specialty_pain_management":  f.SpecialtyPainManagement,
		"rx_specialty_rheumatology":     f.SpecialtyRheumatology,
		"rx_specialty_pulmonology":      f.SpecialtyPulmonology,
		"rx_specialty_gastroenterology": f.SpecialtyGastroenterology,
		"rx_specialty_nephrology":       f.SpecialtyNephrology,
		"rx_specialty_primary_care":     f.SpecialtyPrimaryCare,
		"rx_specialty_emergency":        f.SpecialtyEmergency,

		"flag_opioid_and_benzo":     f.FlagOpioidAndBenzo,
		"flag_polypharmacy_5":       f.FlagPolypharmacy5,
		"flag_polypharmacy_10":      f.FlagPolypharmacy10,
		"flag_high_risk_combo":      f.FlagHighRiskCombo,
		"flag_multiple_controlled":  f.FlagMultipleControlled,
		"flag_multiple_prescribers": f.FlagMultiplePrescribers,

		"rx_risk_score":               f.RiskScore,
		"rx_complexity_score":         f.ComplexityScore,
		"rx_cardiac_risk_score":       f.CardiacRiskScore,
		"rx_metabolic_risk_score":     f.MetabolicRiskScore,
		"rx_mental_health_risk_score": f.MentalHealthRiskScore,
		"rx_pain_risk_score":          f.PainRiskScore,
		"rx_overall_score":            f.OverallScore,
	}
}

// Names returns the sorted RX feature vocabulary.
func Names() []string {
	m := Features{}.Map()
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
