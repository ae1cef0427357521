package alerts

import (
	"log/slog"

	"github.com/HendryAvila/planbarometro/internal/capability"
	"github.com/HendryAvila/planbarometro/internal/scoring"
)

// Translator looks up display text by key. Keys used by the engine:
//
//	alert.<rule id>.title
//	alert.<rule id>.description
//	alert.<rule id>.recommendation
//	dimension.<dimension id>
type Translator interface {
	Text(key string) string
}

// KeyTranslator returns every key unchanged.
type KeyTranslator struct{}

// Text implements Translator.
func (KeyTranslator) Text(key string) string { return key }

// Engine evaluates rules against TOPP scores.
type Engine struct {
	rules      []Rule
	translator Translator
	logger     *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithTranslator sets the text source for alert fields.
func WithTranslator(tr Translator) Option {
	return func(e *Engine) {
		if tr != nil {
			e.translator = tr
		}
	}
}

// WithLogger sets the logger used for diagnostic output.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithRules replaces the rule list.
func WithRules(rules []Rule) Option {
	return func(e *Engine) {
		e.rules = append([]Rule(nil), rules...)
	}
}

// NewEngine creates an Engine with DefaultRules, a KeyTranslator and the
// default logger unless overridden.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		rules:      DefaultRules(),
		translator: KeyTranslator{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Rules returns a copy of the engine's rule list in evaluation order.
func (e *Engine) Rules() []Rule {
	return append([]Rule(nil), e.rules...)
}

// Generate evaluates every rule and returns the alerts that fire, in
// rule order. It returns an empty list unless modelID is the TOPP id and
// scores has exactly four dimensions. Pass nil responses to skip the
// rules that need them.
func (e *Engine) Generate(scores scoring.Scores, modelID string, responses scoring.Responses) []Alert {
	out := []Alert{}
	if modelID != capability.TOPPModelID {
		return out
	}
	profile, ok := profileFromScores(scores)
	if !ok {
		return out
	}

	in := Input{Profile: profile, Responses: responses}
	e.logger.Debug("evaluating alert rules",
		slog.Int("technical", profile.Technical),
		slog.Int("operational", profile.Operational),
		slog.Int("political", profile.Political),
		slog.Int("prospective", profile.Prospective),
		slog.Float64("average", profile.Average()),
		slog.Int("spread", profile.Spread()),
		slog.Bool("responses", responses != nil),
	)

	for _, r := range e.rules {
		if !r.Applies(in) {
			continue
		}
		a := e.build(r, in)
		e.logger.Debug("alert fired",
			slog.String("rule", r.ID),
			slog.Int("risk", a.Metrics.RiskLevel),
		)
		out = append(out, a)
	}
	return out
}

// Evaluate runs a single rule, returning the alert and whether it fired.
// The TOPP guard is not applied.
func (e *Engine) Evaluate(r Rule, in Input) (Alert, bool) {
	if !r.Applies(in) {
		return Alert{}, false
	}
	return e.build(r, in), true
}

func (e *Engine) build(r Rule, in Input) Alert {
	criteria := make([]string, len(r.Criteria))
	for i, d := range r.Criteria {
		criteria[i] = e.translator.Text("dimension." + string(d))
	}
	prefix := "alert." + r.ID + "."
	return Alert{
		ID:             r.ID,
		Title:          e.translator.Text(prefix + "title"),
		Description:    e.translator.Text(prefix + "description"),
		Recommendation: e.translator.Text(prefix + "recommendation"),
		Severity:       r.Severity,
		Criteria:       criteria,
		Metrics:        r.Measure(in),
	}
}

// GenerateFromProfile runs the rules directly on four percentages, as if
// they came from a TOPP evaluation without responses.
func (e *Engine) GenerateFromProfile(p Profile) []Alert {
	scores := scoring.Scores{Dimensions: []scoring.DimensionScore{
		{ID: capability.Technical, Percentage: p.Technical},
		{ID: capability.Operational, Percentage: p.Operational},
		{ID: capability.Political, Percentage: p.Political},
		{ID: capability.Prospective, Percentage: p.Prospective},
	}}
	return e.Generate(scores, capability.TOPPModelID, nil)
}
