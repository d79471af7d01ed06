package queries

import (
	"encoding/json"
	"slices"
	"strings"
)

// Category is the clinical domain a query is routed to. Every clinician
// specialization is a category; CategoryGeneral is the triage fallback.
type Category string

// Clinical categories.
const (
	CategoryCardiology        Category = "cardiology"
	CategoryDermatology       Category = "dermatology"
	CategoryNeurology         Category = "neurology"
	CategoryPediatrics        Category = "pediatrics"
	CategoryPsychiatry        Category = "psychiatry"
	CategoryOrthopedics       Category = "orthopedics"
	CategoryGynecology        Category = "gynecology"
	CategoryOncology          Category = "oncology"
	CategoryEndocrinology     Category = "endocrinology"
	CategoryGastroenterology  Category = "gastroenterology"
	CategoryPulmonology       Category = "pulmonology"
	CategoryNephrology        Category = "nephrology"
	CategoryUrology           Category = "urology"
	CategoryOphthalmology     Category = "ophthalmology"
	CategoryENT               Category = "ent"
	CategoryRheumatology      Category = "rheumatology"
	CategoryHematology        Category = "hematology"
	CategoryInfectiousDisease Category = "infectious_disease"
	CategoryAllergyImmunology Category = "allergy_immunology"
	CategoryEmergency         Category = "emergency_medicine"
	CategoryFamily            Category = "family_medicine"
	CategoryInternal          Category = "internal_medicine"
	CategoryGeneralSurgery    Category = "general_surgery"
	CategoryPlasticSurgery    Category = "plastic_surgery"
	CategoryGeneral           Category = "general"
)

var labels = map[Category]string{
	CategoryCardiology:        "Cardiology",
	CategoryDermatology:       "Dermatology",
	CategoryNeurology:         "Neurology",
	CategoryPediatrics:        "Pediatrics",
	CategoryPsychiatry:        "Psychiatry",
	CategoryOrthopedics:       "Orthopedics",
	CategoryGynecology:        "Gynecology",
	CategoryOncology:          "Oncology",
	CategoryEndocrinology:     "Endocrinology",
	CategoryGastroenterology:  "Gastroenterology",
	CategoryPulmonology:       "Pulmonology",
	CategoryNephrology:        "Nephrology",
	CategoryUrology:           "Urology",
	CategoryOphthalmology:     "Ophthalmology",
	CategoryENT:               "Ear, Nose & Throat",
	CategoryRheumatology:      "Rheumatology",
	CategoryHematology:        "Hematology",
	CategoryInfectiousDisease: "Infectious Disease",
	CategoryAllergyImmunology: "Allergy & Immunology",
	CategoryEmergency:         "Emergency Medicine",
	CategoryFamily:            "Family Medicine",
	CategoryInternal:          "Internal Medicine",
	CategoryGeneralSurgery:    "General Surgery",
	CategoryPlasticSurgery:    "Plastic Surgery",
	CategoryGeneral:           "General Medicine",
}

var specializations = []Category{
	CategoryCardiology,
	CategoryDermatology,
	CategoryNeurology,
	CategoryPediatrics,
	CategoryPsychiatry,
	CategoryOrthopedics,
	CategoryGynecology,
	CategoryOncology,
	CategoryEndocrinology,
	CategoryGastroenterology,
	CategoryPulmonology,
	CategoryNephrology,
	CategoryUrology,
	CategoryOphthalmology,
	CategoryENT,
	CategoryRheumatology,
	CategoryHematology,
	CategoryInfectiousDisease,
	CategoryAllergyImmunology,
	CategoryEmergency,
	CategoryFamily,
	CategoryInternal,
	CategoryGeneralSurgery,
	CategoryPlasticSurgery,
}

// Specializations returns the categories a clinician may specialize in.
func Specializations() []Category {
	return specializations
}

// Categories returns every category, specializations first, then the fallback.
func Categories() []Category {
	return append(slices.Clone(specializations), CategoryGeneral)
}

// Label returns the display name of the category.
func (c Category) Label() string {
	return labels[c]
}

// Specialization reports whether c is a clinician specialization.
func (c Category) Specialization() bool {
	return slices.Contains(specializations, c)
}

// UnmarshalJSON accepts a slug or a display label.
func (c *Category) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, err := ParseCategory(raw)
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// ParseCategory matches s case-insensitively against category slugs and labels.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for c, label := range labels {
		if strings.EqualFold(s, string(c)) || strings.EqualFold(s, label) {
			return c, nil
		}
	}
	return "", ErrInvalidCategory
}
