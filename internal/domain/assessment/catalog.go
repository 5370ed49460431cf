// Package assessment holds the biosecurity risk-assessment questionnaire, its
// weighted scoring rules and the immutable assessment record.
package assessment

import (
	"fmt"
)

// Response is a questionnaire answer on the four-point frequency scale.
type Response int

const (
	ResponseNever Response = iota + 1
	ResponseSometimes
	ResponseUsually
	ResponseAlways
)

// MaxResponse is the best attainable answer for any question.
const MaxResponse = ResponseAlways

// Valid reports whether r lies on the scale.
func (r Response) Valid() bool {
	return r >= ResponseNever && r <= ResponseAlways
}

// String returns the label shown next to the answer.
func (r Response) String() string {
	switch r {
	case ResponseNever:
		return "Never"
	case ResponseSometimes:
		return "Sometimes"
	case ResponseUsually:
		return "Usually"
	case ResponseAlways:
		return "Always"
	default:
		return "Unknown"
	}
}

// Question is a single weighted questionnaire item.
type Question struct {
	ID     string `json:"id" yaml:"id"`
	Text   string `json:"text" yaml:"text"`
	Weight int    `json:"weight" yaml:"weight"`
}

// Area groups the questions of one biosecurity domain.
type Area struct {
	ID          string     `json:"id" yaml:"id"`
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description" yaml:"description"`
	Questions   []Question `json:"questions" yaml:"questions"`
}

// MaxWeightedScore is Σ(weight × 4) over the area's questions.
func (a Area) MaxWeightedScore() int {
	total := 0
	for _, q := range a.Questions {
		total += q.Weight * int(MaxResponse)
	}
	return total
}

// Catalog is the ordered set of assessment areas.
type Catalog struct {
	Version string `json:"version" yaml:"version"`
	Areas   []Area `json:"areas" yaml:"areas"`
}

// QuestionCount returns the number of questions across all areas.
func (c *Catalog) QuestionCount() int {
	n := 0
	for _, a := range c.Areas {
		n += len(a.Questions)
	}
	return n
}

// Area looks up an area by id.
func (c *Catalog) Area(id string) (Area, bool) {
	for _, a := range c.Areas {
		if a.ID == id {
			return a, true
		}
	}
	return Area{}, false
}

// Validate checks the structural invariants of the catalog: at least one
// area, no empty area, unique ids and strictly positive weights.
func (c *Catalog) Validate() error {
	if len(c.Areas) == 0 {
		return fmt.Errorf("catalog has no areas")
	}
	areaIDs := make(map[string]struct{}, len(c.Areas))
	questionIDs := make(map[string]string, c.QuestionCount())
	for _, a := range c.Areas {
		if a.ID == "" {
			return fmt.Errorf("catalog area with empty id")
		}
		if _, dup := areaIDs[a.ID]; dup {
			return fmt.Errorf("duplicate area id %q", a.ID)
		}
		areaIDs[a.ID] = struct{}{}
		if len(a.Questions) == 0 {
			return fmt.Errorf("area %q has no questions", a.ID)
		}
		for _, q := range a.Questions {
			if q.ID == "" {
				return fmt.Errorf("area %q has a question with empty id", a.ID)
			}
			if owner, dup := questionIDs[q.ID]; dup {
				return fmt.Errorf("question %q appears in both %q and %q", q.ID, owner, a.ID)
			}
			questionIDs[q.ID] = a.ID
			if q.Weight <= 0 {
				return fmt.Errorf("question %q has non-positive weight %d", q.ID, q.Weight)
			}
		}
	}
	return nil
}

// CatalogVersion identifies the questionnaire revision persisted with each
// assessment.
const CatalogVersion = "2024.1"

// DefaultCatalog returns the fixed biosecurity questionnaire.  A fresh copy is
// returned on each call so callers cannot mutate shared state.
func DefaultCatalog() *Catalog {
	return &Catalog{
		Version: CatalogVersion,
		Areas: []Area{
			{
				ID:          "access_control",
				Name:        "Access Control",
				Description: "Measures to control who can enter your farm",
				Questions: []Question{
					{ID: "gate_security", Text: "Are all entry points secured with gates or barriers?", Weight: 20},
					{ID: "visitor_log", Text: "Do you maintain a visitor logbook?", Weight: 15},
					{ID: "vehicle_disinfection", Text: "Are vehicles disinfected before entering?", Weight: 25},
					{ID: "restricted_areas", Text: "Are production areas clearly marked as restricted?", Weight: 20},
					{ID: "entry_protocols", Text: "Do all visitors follow biosecurity protocols?", Weight: 20},
				},
			},
			{
				ID:          "animal_health",
				Name:        "Animal Health Management",
				Description: "Health monitoring and disease prevention",
				Questions: []Question{
					{ID: "health_monitoring", Text: "Do you conduct daily health checks on animals?", Weight: 30},
					{ID: "vaccination_program", Text: "Is there a comprehensive vaccination program?", Weight: 25},
					{ID: "quarantine_facilities", Text: "Are quarantine facilities available for sick animals?", Weight: 20},
					{ID: "veterinary_visits", Text: "Are regular veterinary inspections conducted?", Weight: 15},
					{ID: "mortality_disposal", Text: "Is there a proper mortality disposal system?", Weight: 10},
				},
			},
			{
				ID:          "feed_water",
				Name:        "Feed and Water Security",
				Description: "Safety of feed and water sources",
				Questions: []Question{
					{ID: "feed_storage", Text: "Is feed stored in secure, covered areas?", Weight: 25},
					{ID: "water_quality", Text: "Is water quality tested regularly?", Weight: 30},
					{ID: "feed_source", Text: "Do you source feed from approved suppliers only?", Weight: 20},
					{ID: "storage_pest_control", Text: "Are storage areas protected from pests?", Weight: 15},
					{ID: "water_disinfection", Text: "Is water disinfected when necessary?", Weight: 10},
				},
			},
			{
				ID:          "waste_management",
				Name:        "Waste Management",
				Description: "Proper handling of farm waste and by-products",
				Questions: []Question{
					{ID: "waste_disposal", Text: "Is manure disposed of properly?", Weight: 30},
					{ID: "composting_system", Text: "Is there a proper composting system?", Weight: 20},
					{ID: "drainage_system", Text: "Are drainage systems maintained regularly?", Weight: 20},
					{ID: "contamination_prevention", Text: "Are measures in place to prevent cross-contamination?", Weight: 20},
					{ID: "waste_storage", Text: "Are waste storage areas properly secured?", Weight: 10},
				},
			},
		},
	}
}
