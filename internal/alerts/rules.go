package alerts

import (
	"github.com/HendryAvila/planbarometro/internal/capability"
	"github.com/HendryAvila/planbarometro/internal/scoring"
)

// Rule ids, in evaluation order.
const (
	RuleDesignWithoutPoliticalTraction          = "design_without_political_traction"
	RuleImplementationWithoutStrategicDirection = "implementation_without_strategic_direction"
	RuleGovernmentWithoutGovernance             = "government_without_governance"
	RuleGeneralImbalance                        = "general_imbalance"
	RuleInsufficientCapabilities                = "insufficient_capabilities"
	RuleHighUnansweredElements                  = "high_unanswered_elements"
	RuleMediumUnansweredElements                = "medium_unanswered_elements"
	RuleWeakProspectiveCapabilities             = "weak_prospective_capabilities"
	RuleWeakTechnicalCapabilities               = "weak_technical_capabilities"
	RulePoliticalInstabilityRisk                = "political_instability_risk"
	RuleOperationalBottlenecks                  = "operational_bottlenecks"
	RuleIsolatedExcellence                      = "isolated_excellence"
	RuleModerateBalancedCapabilities            = "moderate_balanced_capabilities"
)

// Input is what a rule sees. Responses is nil when the caller did not
// supply them; rules that need responses must not fire in that case.
type Input struct {
	Profile   Profile
	Responses scoring.Responses
}

// Rule is one diagnostic: a predicate over Input and the metrics it
// reports when the predicate holds.
type Rule struct {
	ID       string
	Severity Severity
	// Criteria lists the dimensions the alert is about.
	Criteria []capability.DimensionID
	Applies  func(Input) bool
	Measure  func(Input) Metrics
}

var allDimensions = []capability.DimensionID{
	capability.Technical, capability.Operational, capability.Political, capability.Prospective,
}

// DefaultRules returns the thirteen TOPP rules in evaluation order.
// The returned slice is a fresh copy.
func DefaultRules() []Rule {
	return []Rule{
		{
			ID:       RuleDesignWithoutPoliticalTraction,
			Severity: SeverityHigh,
			Criteria: []capability.DimensionID{capability.Technical, capability.Political},
			Applies: func(in Input) bool {
				return in.Profile.Technical >= 60 && in.Profile.Political < 40
			},
			Measure: func(in Input) Metrics {
				gap := float64(in.Profile.Technical - in.Profile.Political)
				return Metrics{RiskLevel: level(gap * 1.5), ImpactLevel: 85, UrgencyLevel: 75}
			},
		},
		{
			ID:       RuleImplementationWithoutStrategicDirection,
			Severity: SeverityMedium,
			Criteria: []capability.DimensionID{capability.Operational, capability.Prospective},
			Applies: func(in Input) bool {
				return in.Profile.Operational >= 50 && in.Profile.Prospective < 50
			},
			Measure: func(in Input) Metrics {
				gap := float64(in.Profile.Operational - in.Profile.Prospective)
				return Metrics{RiskLevel: level(gap * 1.2), ImpactLevel: 70, UrgencyLevel: 60}
			},
		},
		{
			ID:       RuleGovernmentWithoutGovernance,
			Severity: SeverityHigh,
			Criteria: []capability.DimensionID{capability.Political, capability.Technical, capability.Operational},
			Applies: func(in Input) bool {
				p := in.Profile
				return p.Political >= 60 && p.Technical < 40 && p.Operational < 40
			},
			Measure: func(in Input) Metrics {
				p := in.Profile
				gap := float64(p.Political - max(p.Technical, p.Operational))
				return Metrics{RiskLevel: level(gap), ImpactLevel: 90, UrgencyLevel: 80}
			},
		},
		{
			ID:       RuleGeneralImbalance,
			Severity: SeverityMedium,
			Criteria: allDimensions,
			Applies: func(in Input) bool {
				return in.Profile.Spread() > 30
			},
			Measure: func(in Input) Metrics {
				return Metrics{RiskLevel: level(float64(in.Profile.Spread()) * 1.5), ImpactLevel: 65, UrgencyLevel: 50}
			},
		},
		{
			ID:       RuleInsufficientCapabilities,
			Severity: SeverityHigh,
			Criteria: allDimensions,
			Applies: func(in Input) bool {
				return in.Profile.Average() < 30
			},
			Measure: func(in Input) Metrics {
				return Metrics{RiskLevel: level(max(50, 100-in.Profile.Average()*2)), ImpactLevel: 95, UrgencyLevel: 90}
			},
		},
		{
			ID:       RuleHighUnansweredElements,
			Severity: SeverityHigh,
			Criteria: allDimensions,
			Applies: func(in Input) bool {
				return in.Responses != nil && scoring.MarkedAbsent(in.Responses).Percent() > 50
			},
			Measure: func(in Input) Metrics {
				pct := scoring.MarkedAbsent(in.Responses).Percent()
				return Metrics{RiskLevel: level(pct * 1.5), ImpactLevel: 85, UrgencyLevel: 70}
			},
		},
		{
			ID:       RuleMediumUnansweredElements,
			Severity: SeverityMedium,
			Criteria: allDimensions,
			Applies: func(in Input) bool {
				if in.Responses == nil {
					return false
				}
				pct := scoring.MarkedAbsent(in.Responses).Percent()
				return pct > 25 && pct <= 50
			},
			Measure: func(in Input) Metrics {
				pct := scoring.MarkedAbsent(in.Responses).Percent()
				return Metrics{RiskLevel: level(pct * 1.2), ImpactLevel: 60, UrgencyLevel: 50}
			},
		},
		{
			ID:       RuleWeakProspectiveCapabilities,
			Severity: SeverityHigh,
			Criteria: []capability.DimensionID{capability.Prospective},
			Applies: func(in Input) bool {
				return in.Profile.Prospective < 45
			},
			Measure: func(in Input) Metrics {
				return Metrics{RiskLevel: level(float64(100 - in.Profile.Prospective)), ImpactLevel: 90, UrgencyLevel: 85}
			},
		},
		{
			ID:       RuleWeakTechnicalCapabilities,
			Severity: SeverityHigh,
			Criteria: []capability.DimensionID{capability.Technical},
			Applies: func(in Input) bool {
				return in.Profile.Technical < 25
			},
			Measure: func(in Input) Metrics {
				return Metrics{RiskLevel: level(float64(100 - in.Profile.Technical)), ImpactLevel: 80, UrgencyLevel: 75}
			},
		},
		{
			ID:       RulePoliticalInstabilityRisk,
			Severity: SeverityMedium,
			Criteria: []capability.DimensionID{capability.Political, capability.Technical},
			Applies: func(in Input) bool {
				return in.Profile.Political < 30 && in.Profile.Technical > 50
			},
			Measure: func(in Input) Metrics {
				return Metrics{RiskLevel: level(float64(in.Profile.Technical - in.Profile.Political)), ImpactLevel: 70, UrgencyLevel: 60}
			},
		},
		{
			ID:       RuleOperationalBottlenecks,
			Severity: SeverityHigh,
			Criteria: []capability.DimensionID{capability.Operational},
			Applies: func(in Input) bool {
				return in.Profile.Operational < 30
			},
			Measure: func(in Input) Metrics {
				return Metrics{RiskLevel: level(float64(100 - in.Profile.Operational)), ImpactLevel: 85, UrgencyLevel: 80}
			},
		},
		{
			ID:       RuleIsolatedExcellence,
			Severity: SeverityMedium,
			Criteria: allDimensions,
			Applies: func(in Input) bool {
				return in.Profile.Max() > 75 && in.Profile.AverageOthers() < 50
			},
			Measure: func(in Input) Metrics {
				gap := float64(in.Profile.Max()) - in.Profile.AverageOthers()
				return Metrics{RiskLevel: level(gap), ImpactLevel: 65, UrgencyLevel: 45}
			},
		},
		{
			ID:       RuleModerateBalancedCapabilities,
			Severity: SeverityLow,
			Criteria: allDimensions,
			Applies: func(in Input) bool {
				avg := in.Profile.Average()
				return avg >= 40 && avg < 60 && in.Profile.Spread() < 25
			},
			Measure: func(Input) Metrics {
				return Metrics{RiskLevel: 25, ImpactLevel: 40, UrgencyLevel: 30}
			},
		},
	}
}
