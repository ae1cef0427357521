// Package scoring reduces binary element responses into criterion,
// dimension and overall percentages.
//
// The arithmetic is a plain hierarchy of means: a criterion scores the
// share of its elements marked present, a dimension scores the mean of
// its criteria, and the overall score is the mean of the dimensions.
// Every function here is pure; callers recompute on every change.
package scoring

import (
	"math"

	"github.com/HendryAvila/planbarometro/internal/capability"
)

// Response values.
const (
	Absent  = 0
	Present = 1
)

// Responses maps element ids to 0 (absent) or 1 (present).
// An element without an entry has not been answered.
type Responses map[string]int

// CriterionScore is the percentage for one criterion.
type CriterionScore struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Percentage int    `json:"percentage"`
}

// DimensionScore is the percentage for one dimension plus its criteria.
type DimensionScore struct {
	ID         capability.DimensionID `json:"id"`
	Name       string                 `json:"name"`
	Percentage int                    `json:"percentage"`
	Criteria   []CriterionScore       `json:"criteria"`
}

// Scores is the full result of an evaluation.
type Scores struct {
	Overall    int              `json:"overall"`
	Dimensions []DimensionScore `json:"dimensions"`
}

// Percentage returns the score of the dimension with the given id.
func (s Scores) Percentage(id capability.DimensionID) (int, bool) {
	for _, d := range s.Dimensions {
		if d.ID == id {
			return d.Percentage, true
		}
	}
	return 0, false
}

// Compute scores responses against model.
//
// Unanswered elements count as absent: the criterion denominator is the
// total element count, not the answered count. Response keys that do
// not belong to the model are ignored. A nil model yields zero scores.
func Compute(responses Responses, model *capability.Model) Scores {
	if model == nil {
		return Scores{Dimensions: []DimensionScore{}}
	}

	dims := make([]DimensionScore, 0, len(model.Dimensions))
	dimTotal := 0
	for _, d := range model.Dimensions {
		ds := DimensionScore{
			ID:       d.ID,
			Name:     d.Name,
			Criteria: make([]CriterionScore, 0, len(d.Criteria)),
		}
		critTotal := 0
		for _, c := range d.Criteria {
			pct := criterionPercentage(responses, c)
			critTotal += pct
			ds.Criteria = append(ds.Criteria, CriterionScore{ID: c.ID, Name: c.Name, Percentage: pct})
		}
		ds.Percentage = mean(critTotal, len(d.Criteria))
		dimTotal += ds.Percentage
		dims = append(dims, ds)
	}

	return Scores{
		Overall:    mean(dimTotal, len(dims)),
		Dimensions: dims,
	}
}

func criterionPercentage(responses Responses, c capability.Criterion) int {
	if len(c.Elements) == 0 {
		return 0
	}
	present := 0
	for _, e := range c.Elements {
		if responses[e.ID] == Present {
			present++
		}
	}
	return round(float64(present) / float64(len(c.Elements)) * 100)
}

// mean returns the rounded arithmetic mean, or 0 when n is 0.
func mean(sum, n int) int {
	if n == 0 {
		return 0
	}
	return round(float64(sum) / float64(n))
}

// round rounds half up. Inputs here are never negative, so this matches
// rounding half away from zero.
func round(v float64) int {
	return int(math.Floor(v + 0.5))
}
