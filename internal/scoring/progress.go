package scoring

import "github.com/HendryAvila/planbarometro/internal/capability"

// Progress counts how much of a model has been answered.
type Progress struct {
	Answered int `json:"answered"`
	Total    int `json:"total"`
}

// Percentage returns the answered share rounded to an integer.
func (p Progress) Percentage() int {
	if p.Total == 0 {
		return 0
	}
	return round(float64(p.Answered) / float64(p.Total) * 100)
}

// Complete reports whether every element has a response.
func (p Progress) Complete() bool {
	return p.Total > 0 && p.Answered == p.Total
}

// ComputeProgress counts the model elements that have a response.
func ComputeProgress(responses Responses, model *capability.Model) Progress {
	if model == nil {
		return Progress{}
	}
	p := Progress{Total: model.ElementCount()}
	for _, d := range model.Dimensions {
		for _, c := range d.Criteria {
			for _, e := range c.Elements {
				if _, ok := responses[e.ID]; ok {
					p.Answered++
				}
			}
		}
	}
	return p
}

// AbsentStats counts entries stored with value 0 among all entries
// present in the map. Keys missing from the map are not counted at all.
type AbsentStats struct {
	Absent   int `json:"absent"`
	Recorded int `json:"recorded"`
}

// Percent returns Absent as a share of Recorded, 0 for an empty map.
func (a AbsentStats) Percent() float64 {
	if a.Recorded == 0 {
		return 0
	}
	return float64(a.Absent) / float64(a.Recorded) * 100
}

// MarkedAbsent computes AbsentStats over every entry of responses.
func MarkedAbsent(responses Responses) AbsentStats {
	s := AbsentStats{Recorded: len(responses)}
	for _, v := range responses {
		if v == Absent {
			s.Absent++
		}
	}
	return s
}
