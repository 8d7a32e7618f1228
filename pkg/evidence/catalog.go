package evidence

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Catalog holds the keyword lists used to classify extracted evidence text
// into condition and drug categories. The default lists are part of the
// extraction contract; a YAML file may replace them wholesale for tuning.
type Catalog struct {
	Conditions map[string][]string `yaml:"conditions" json:"conditions"`
	Drugs      map[string][]string `yaml:"drugs" json:"drugs"`
}

func Load(path string) (Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return DefaultCatalog(), err
	}

	var cat Catalog
	if err := yaml.Unmarshal(content, &cat); err != nil {
		return Catalog{}, err
	}

	if len(cat.Conditions) == 0 && len(cat.Drugs) == 0 {
		return Catalog{}, errors.New("evidence catalog is empty")
	}

	return cat, nil
}

// Condition returns the keyword list for a condition category.
func (c Catalog) Condition(name string) []string {
	return c.Conditions[name]
}

// Drug returns the keyword list for a drug category.
func (c Catalog) Drug(name string) []string {
	return c.Drugs[name]
}

// ContainsAny reports whether text contains any of the given substrings.
// Callers are expected to upper-case the text to match the catalog casing.
func ContainsAny(text string, needles []string) bool {
	for _, needle := range needles {
		if needle == "" {
			continue
		}
		if strings.Contains(text, needle) {
			return true
		}
	}
	return false
}

func DefaultCatalog() Catalog {
	return Catalog{
		Conditions: map[string][]string{
			"cardiac":         {"CARDIAC", "HEART", "CVD"},
			"diabetes":        {"DIABETES", "DM", "INSULIN"},
			"cancer":          {"CANCER", "TUMOR", "MALIG"},
			"respiratory":     {"COPD", "ASTHMA", "PULM"},
			"mental_health":   {"MENTAL", "PSYCH", "DEPRESS"},
			"substance_abuse": {"SUBSTANCE", "ALCOHOL", "DRUG"},
		},
		Drugs: map[string][]string{
			"statin":         {"STATIN", "ATORVASTATIN", "SIMVASTATIN"},
			"metformin":      {"METFORMIN"},
			"insulin":        {"INSULIN"},
			"opioid":         {"OXYCODONE", "HYDROCODONE", "MORPHINE", "FENTANYL"},
			"benzo":          {"ALPRAZOLAM", "DIAZEPAM", "LORAZEPAM", "CLONAZEPAM"},
			"antidepressant": {"SERTRALINE", "FLUOXETINE", "ESCITALOPRAM"},
			"antipsychotic":  {"QUETIAPINE", "RISPERIDONE", "ARIPIPRAZOLE"},
			"blood_thinner":  {"WARFARIN", "ELIQUIS", "XARELTO"},
			"gabapentin":     {"GABAPENTIN", "PREGABALIN"},
			"suboxone":       {"SUBOXONE", "BUPRENORPHINE"},
		},
	}
}
