// Package capability defines the hierarchical capability model used by
// Planbarómetro: Dimensions contain Criteria, Criteria contain Elements.
//
// Elements are the unit of measurement; an evaluator answers each one as
// present (1) or absent (0). Models are treated as immutable values:
// anything that needs a modified model works on a Clone.
package capability

import (
	"fmt"
	"strings"
)

// --- Dimension enum ---

// DimensionID identifies a top-level capability axis.
type DimensionID string

const (
	Technical   DimensionID = "technical"
	Operational DimensionID = "operational"
	Political   DimensionID = "political"
	Prospective DimensionID = "prospective"
)

// TOPPModelID is the id of the four-dimension model the alert engine understands.
const TOPPModelID = "topp"

// TOPPOrder is the positional order of dimensions in a TOPP model.
var TOPPOrder = []DimensionID{Technical, Operational, Political, Prospective}

// --- Core data structures ---

// Element is a leaf of the model tree.
type Element struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Criterion groups Elements under a Dimension.
//
// Weight is kept for compatibility with stored models. Scoring uses a
// plain mean across criteria and never reads it.
type Criterion struct {
	ID       string    `json:"id" yaml:"id"`
	Name     string    `json:"name" yaml:"name"`
	Weight   int       `json:"weight,omitempty" yaml:"weight,omitempty"`
	Elements []Element `json:"elements" yaml:"elements"`
}

// Dimension is a top-level capability axis.
type Dimension struct {
	ID       DimensionID `json:"id" yaml:"id"`
	Name     string      `json:"name" yaml:"name"`
	Criteria []Criterion `json:"criteria" yaml:"criteria"`
}

// Model is a complete capability model.
type Model struct {
	ID          string      `json:"id" yaml:"id"`
	Name        string      `json:"name" yaml:"name"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Dimensions  []Dimension `json:"dimensions" yaml:"dimensions"`
}

// Location tells where an element lives inside a model.
type Location struct {
	Dimension DimensionID
	Criterion string
	Element   Element
}

// Validate checks the model invariants: a non-empty id, non-empty
// element ids, and element ids unique across the whole model.
func (m *Model) Validate() error {
	if strings.TrimSpace(m.ID) == "" {
		return fmt.Errorf("model id is required")
	}

	seen := make(map[string]string)
	for _, d := range m.Dimensions {
		if strings.TrimSpace(string(d.ID)) == "" {
			return fmt.Errorf("model %q: dimension without id", m.ID)
		}
		for _, c := range d.Criteria {
			for _, e := range c.Elements {
				if strings.TrimSpace(e.ID) == "" {
					return fmt.Errorf("model %q: criterion %q has an element without id", m.ID, c.ID)
				}
				if prev, dup := seen[e.ID]; dup {
					return fmt.Errorf("model %q: element %q appears in %s and %s", m.ID, e.ID, prev, c.ID)
				}
				seen[e.ID] = c.ID
			}
		}
	}
	return nil
}

// Clone returns a deep copy of the model.
func (m *Model) Clone() *Model {
	if m == nil {
		return nil
	}
	out := *m
	out.Dimensions = make([]Dimension, len(m.Dimensions))
	for i, d := range m.Dimensions {
		nd := d
		nd.Criteria = make([]Criterion, len(d.Criteria))
		for j, c := range d.Criteria {
			nc := c
			nc.Elements = append([]Element(nil), c.Elements...)
			nd.Criteria[j] = nc
		}
		out.Dimensions[i] = nd
	}
	return &out
}

// ElementCount returns the total number of elements in the model.
func (m *Model) ElementCount() int {
	n := 0
	for _, d := range m.Dimensions {
		for _, c := range d.Criteria {
			n += len(c.Elements)
		}
	}
	return n
}

// Locate finds an element by id.
func (m *Model) Locate(elementID string) (Location, bool) {
	for _, d := range m.Dimensions {
		for _, c := range d.Criteria {
			for _, e := range c.Elements {
				if e.ID == elementID {
					return Location{Dimension: d.ID, Criterion: c.ID, Element: e}, true
				}
			}
		}
	}
	return Location{}, false
}

// IsTOPP reports whether the model has the TOPP id and its four
// dimensions in canonical order.
func (m *Model) IsTOPP() bool {
	if m.ID != TOPPModelID || len(m.Dimensions) != len(TOPPOrder) {
		return false
	}
	for i, d := range m.Dimensions {
		if d.ID != TOPPOrder[i] {
			return false
		}
	}
	return true
}
