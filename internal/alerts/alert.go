// Package alerts implements the strategic-alert rule engine.
//
// The engine reads the four TOPP dimension percentages (and optionally
// the raw responses) and evaluates an ordered list of independent rules.
// Every rule that holds contributes one Alert with a severity and three
// 0-100 metrics. Rules never short-circuit each other.
package alerts

import (
	"fmt"
	"strings"
)

// --- Severity enum ---

// Severity is the coarse priority bucket of an alert.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// severityRank orders severities; unknown values rank below low.
var severityRank = map[Severity]int{
	SeverityLow:    1,
	SeverityMedium: 2,
	SeverityHigh:   3,
}

// ParseSeverity validates a severity string.
func ParseSeverity(s string) (Severity, error) {
	sev := Severity(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := severityRank[sev]; !ok {
		return "", fmt.Errorf("invalid severity %q: must be one of: high, medium, low", s)
	}
	return sev, nil
}

// AtLeast reports whether s is as severe as min or more.
func (s Severity) AtLeast(min Severity) bool {
	return severityRank[s] >= severityRank[min]
}

// SeverityColor returns the display classes for a severity badge.
func SeverityColor(s Severity) string {
	switch s {
	case SeverityHigh:
		return "bg-red-100 text-red-800 border-red-200"
	case SeverityMedium:
		return "bg-yellow-100 text-yellow-800 border-yellow-200"
	case SeverityLow:
		return "bg-blue-100 text-blue-800 border-blue-200"
	default:
		return "bg-gray-100 text-gray-800 border-gray-200"
	}
}

// SeverityIcon returns the icon shown next to an alert.
func SeverityIcon(s Severity) string {
	switch s {
	case SeverityHigh:
		return "🚨"
	case SeverityMedium:
		return "⚠️"
	case SeverityLow:
		return "ℹ️"
	default:
		return "📋"
	}
}

// --- Alert ---

// Metrics are the three derived levels attached to every alert, 0-100.
type Metrics struct {
	RiskLevel    int `json:"riskLevel"`
	ImpactLevel  int `json:"impactLevel"`
	UrgencyLevel int `json:"urgencyLevel"`
}

// Alert is a qualitative finding. ID is the id of the rule that produced
// it (or a caller-chosen id for custom alerts).
type Alert struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Recommendation string   `json:"recommendation"`
	Severity       Severity `json:"severity"`
	Criteria       []string `json:"criteria"`
	Metrics        Metrics  `json:"metrics"`
}

// Merge appends custom alerts after the generated ones. Nothing is
// validated or de-duplicated.
func Merge(generated, custom []Alert) []Alert {
	out := make([]Alert, 0, len(generated)+len(custom))
	out = append(out, generated...)
	return append(out, custom...)
}

// Highest returns the most severe level present, or "" for no alerts.
func Highest(list []Alert) Severity {
	var top Severity
	for _, a := range list {
		if severityRank[a.Severity] > severityRank[top] {
			top = a.Severity
		}
	}
	return top
}

// IDs returns the alert ids in order.
func IDs(list []Alert) []string {
	ids := make([]string, len(list))
	for i, a := range list {
		ids[i] = a.ID
	}
	return ids
}
