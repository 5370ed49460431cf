package assessment

import (
	"fmt"
	"sort"

	"github.com/turtacn/BioSecure-Portal/pkg/errors"
)

// Responses maps question ids to answers for one submission.
type Responses map[string]Response

// Result is the outcome of scoring a complete set of responses.
type Result struct {
	AreaScores map[string]int `json:"area_scores"`
	Overall    int            `json:"overall_score"`
}

// RiskLevel buckets an overall score.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Score thresholds used by RiskLevelFor and Advisories.
const (
	LowRiskThreshold    = 80
	MediumRiskThreshold = 60
	AdvisoryThreshold   = 70
)

// RiskLevelFor maps an overall score to a risk bucket.
func RiskLevelFor(overall int) RiskLevel {
	switch {
	case overall >= LowRiskThreshold:
		return RiskLow
	case overall >= MediumRiskThreshold:
		return RiskMedium
	default:
		return RiskHigh
	}
}

// roundRatio returns round(100 × num / den) with halves rounded up, using
// integer arithmetic so results are exact.  num and den must be non-negative
// and den positive.
func roundRatio(num, den int) int {
	return (200*num + den) / (2 * den)
}

// roundMean returns the half-up rounded mean of values.
func roundMean(values []int) int {
	if len(values) == 0 {
		return 0
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	n := len(values)
	return (2*sum + n) / (2 * n)
}

// ValidateResponses checks that every catalog question has an answer on the
// 1..4 scale and that no unknown question ids are present.  All violations
// are reported at once in the error's Fields.
func (c *Catalog) ValidateResponses(r Responses) error {
	fields := make(map[string]string)
	known := make(map[string]struct{}, c.QuestionCount())
	for _, a := range c.Areas {
		for _, q := range a.Questions {
			known[q.ID] = struct{}{}
			v, ok := r[q.ID]
			switch {
			case !ok:
				fields["responses."+q.ID] = "required"
			case !v.Valid():
				fields["responses."+q.ID] = fmt.Sprintf("must be between %d and %d", ResponseNever, ResponseAlways)
			}
		}
	}
	for id := range r {
		if _, ok := known[id]; !ok {
			fields["responses."+id] = "unknown question"
		}
	}
	if len(fields) == 0 {
		return nil
	}
	ae := errors.New(errors.ErrCodeAssessmentIncomplete,
		fmt.Sprintf("assessment has %d invalid or missing responses", len(fields)))
	ae.Fields = fields
	return ae
}

// AreaScore returns round(100 × Σ(w·r) / Σ(w·4)) for the area.  Absent
// answers contribute nothing; callers that need completeness run
// ValidateResponses first.
func AreaScore(a Area, r Responses) int {
	maxScore := a.MaxWeightedScore()
	if maxScore == 0 {
		return 0
	}
	actual := 0
	for _, q := range a.Questions {
		if v, ok := r[q.ID]; ok && v.Valid() {
			actual += q.Weight * int(v)
		}
	}
	return roundRatio(actual, maxScore)
}

// Score validates r and computes every area score plus the overall score,
// which is the rounded unweighted mean of the area scores.
func (c *Catalog) Score(r Responses) (*Result, error) {
	if err := c.ValidateResponses(r); err != nil {
		return nil, err
	}
	res := &Result{AreaScores: make(map[string]int, len(c.Areas))}
	scores := make([]int, 0, len(c.Areas))
	for _, a := range c.Areas {
		s := AreaScore(a, r)
		res.AreaScores[a.ID] = s
		scores = append(scores, s)
	}
	res.Overall = roundMean(scores)
	return res, nil
}

// Advisories returns one remediation hint per area scoring below
// AdvisoryThreshold, naming the lowest-answered questions of that area.
// Output order follows the catalog so it is stable across calls.
func (c *Catalog) Advisories(res *Result, r Responses) []string {
	if res == nil {
		return nil
	}
	var out []string
	for _, a := range c.Areas {
		score, ok := res.AreaScores[a.ID]
		if !ok || score >= AdvisoryThreshold {
			continue
		}
		weak := weakestQuestions(a, r, 2)
		msg := fmt.Sprintf("%s scored %d%%; prioritise: ", a.Name, score)
		for i, q := range weak {
			if i > 0 {
				msg += "; "
			}
			msg += q.Text
		}
		out = append(out, msg)
	}
	return out
}

// weakestQuestions orders questions by answer ascending then weight
// descending and returns up to n of them.
func weakestQuestions(a Area, r Responses, n int) []Question {
	qs := make([]Question, len(a.Questions))
	copy(qs, a.Questions)
	sort.SliceStable(qs, func(i, j int) bool {
		ri, rj := r[qs[i].ID], r[qs[j].ID]
		if ri != rj {
			return ri < rj
		}
		return qs[i].Weight > qs[j].Weight
	})
	if len(qs) > n {
		qs = qs[:n]
	}
	return qs
}
