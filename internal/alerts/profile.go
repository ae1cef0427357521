package alerts

import (
	"math"

	"github.com/HendryAvila/planbarometro/internal/scoring"
)

// Profile holds the four TOPP dimension percentages.
type Profile struct {
	Technical   int
	Operational int
	Political   int
	Prospective int
}

// profileFromScores maps dimension scores positionally onto a Profile.
// ok is false unless there are exactly four dimensions.
func profileFromScores(s scoring.Scores) (Profile, bool) {
	if len(s.Dimensions) != 4 {
		return Profile{}, false
	}
	return Profile{
		Technical:   s.Dimensions[0].Percentage,
		Operational: s.Dimensions[1].Percentage,
		Political:   s.Dimensions[2].Percentage,
		Prospective: s.Dimensions[3].Percentage,
	}, true
}

// Values returns the percentages in TOPP order.
func (p Profile) Values() [4]int {
	return [4]int{p.Technical, p.Operational, p.Political, p.Prospective}
}

// Max returns the highest percentage.
func (p Profile) Max() int {
	v := p.Values()
	m := v[0]
	for _, x := range v[1:] {
		m = max(m, x)
	}
	return m
}

// Min returns the lowest percentage.
func (p Profile) Min() int {
	v := p.Values()
	m := v[0]
	for _, x := range v[1:] {
		m = min(m, x)
	}
	return m
}

// Spread is Max minus Min.
func (p Profile) Spread() int {
	return p.Max() - p.Min()
}

// Average is the unrounded mean of the four percentages.
func (p Profile) Average() float64 {
	v := p.Values()
	return float64(v[0]+v[1]+v[2]+v[3]) / 4
}

// AverageOthers is the mean of the three percentages left after removing
// one occurrence of the maximum.
func (p Profile) AverageOthers() float64 {
	v := p.Values()
	top := p.Max()
	sum, skipped := 0, false
	for _, x := range v {
		if x == top && !skipped {
			skipped = true
			continue
		}
		sum += x
	}
	return float64(sum) / 3
}

// level rounds v and clamps it to [0, 100].
func level(v float64) int {
	r := int(math.Floor(v + 0.5))
	return max(0, min(100, r))
}
