package evaluation

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/HendryAvila/planbarometro/internal/alerts"
	"github.com/HendryAvila/planbarometro/internal/capability"
	"github.com/HendryAvila/planbarometro/internal/i18n"
	"github.com/HendryAvila/planbarometro/internal/metrics"
	"github.com/HendryAvila/planbarometro/internal/notify"
	"github.com/HendryAvila/planbarometro/internal/scoring"
	"github.com/HendryAvila/planbarometro/internal/store"
)

type fakeNotifier struct {
	reports []notify.Report
	err     error
}

func (f *fakeNotifier) Notify(_ context.Context, r notify.Report) error {
	f.reports = append(f.reports, r)
	return f.err
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(store.Config{Driver: store.DriverSQLite, DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func newTestService(t *testing.T, opts ...Option) *Service {
	t.Helper()

	origNow, origID := timeNow, newID
	t.Cleanup(func() { timeNow, newID = origNow, origID })
	clock := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	timeNow = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	n := 0
	newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}

	catalog, err := i18n.New()
	if err != nil {
		t.Fatalf("i18n.New: %v", err)
	}
	return NewService(newTestStore(t), capability.NewRegistry(nil), catalog, opts...)
}

// dimensionAnswers marks every element of dim with value.
func dimensionAnswers(dim capability.DimensionID, value int) map[string]int {
	out := map[string]int{}
	for _, d := range capability.TOPP().Dimensions {
		if d.ID != dim {
			continue
		}
		for _, c := range d.Criteria {
			for _, e := range c.Elements {
				out[e.ID] = value
			}
		}
	}
	return out
}

func hasAlert(list []alerts.Alert, id string) bool {
	for _, a := range list {
		if a.ID == id {
			return true
		}
	}
	return false
}

// --- Start ---

func TestStart_EmptyEvaluation(t *testing.T) {
	s := newTestService(t)
	res, err := s.Start(context.Background(), "  Municipio  ", "", "")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	rec := res.Record
	if rec.ID != "id-1" || rec.Name != "Municipio" || rec.ModelID != capability.TOPPModelID || rec.Locale != "es" {
		t.Errorf("record = %+v", rec)
	}
	if rec.Scores.Overall != 0 || len(rec.Scores.Dimensions) != 4 {
		t.Errorf("scores = %+v", rec.Scores)
	}
	if res.Progress.Answered != 0 || res.Progress.Total != 34 {
		t.Errorf("progress = %+v", res.Progress)
	}
	if len(res.Missing) != 34 {
		t.Errorf("missing = %d, want 34", len(res.Missing))
	}

	want := []string{
		alerts.RuleInsufficientCapabilities,
		alerts.RuleWeakProspectiveCapabilities,
		alerts.RuleWeakTechnicalCapabilities,
		alerts.RuleOperationalBottlenecks,
	}
	got := alerts.IDs(res.Alerts)
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("alerts = %v, want %v", got, want)
	}
	if res.Highest != alerts.SeverityHigh {
		t.Errorf("Highest = %s", res.Highest)
	}
}

func TestStart_UnknownModel(t *testing.T) {
	s := newTestService(t)
	_, err := s.Start(context.Background(), "x", "nope", "")
	if !errors.Is(err, ErrUnknownModel) {
		t.Errorf("err = %v, want ErrUnknownModel", err)
	}
}

func TestStart_LocaleSelectsText(t *testing.T) {
	s := newTestService(t)
	res, err := s.Start(context.Background(), "x", "", "en-US")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if res.Record.Locale != "en" {
		t.Errorf("Locale = %s, want en", res.Record.Locale)
	}
	if res.Alerts[0].Title != "Insufficient capabilities" {
		t.Errorf("title = %q", res.Alerts[0].Title)
	}
}

func TestNewService_DefaultLocale(t *testing.T) {
	s := newTestService(t, WithDefaultLocale("en"))
	res, _ := s.Start(context.Background(), "x", "", "")
	if res.Record.Locale != "en" {
		t.Errorf("Locale = %s, want en", res.Record.Locale)
	}
}

// --- Answer ---

func TestAnswer_RescoresAndPersists(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	start, _ := s.Start(ctx, "x", "", "")
	id := start.Record.ID

	res, err := s.AnswerMany(ctx, id, dimensionAnswers(capability.Technical, scoring.Present))
	if err != nil {
		t.Fatalf("AnswerMany: %v", err)
	}
	if p, _ := res.Record.Scores.Percentage(capability.Technical); p != 100 {
		t.Errorf("technical = %d, want 100", p)
	}
	if res.Record.Scores.Overall != 25 {
		t.Errorf("overall = %d, want 25", res.Record.Scores.Overall)
	}
	if !res.Record.UpdatedAt.After(res.Record.CreatedAt) {
		t.Error("UpdatedAt should advance")
	}

	stored, err := s.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.Scores.Overall != 25 || len(stored.Responses) != 9 {
		t.Errorf("stored = %+v", stored)
	}
}

func TestAnswer_SingleResponse(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	start, _ := s.Start(ctx, "x", "", "")

	res, err := s.Answer(ctx, start.Record.ID, "T.1.1", scoring.Present)
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if res.Record.Scores.Dimensions[0].Criteria[0].Percentage != 33 {
		t.Errorf("T.1 = %d, want 33", res.Record.Scores.Dimensions[0].Criteria[0].Percentage)
	}
	if res.Progress.Answered != 1 {
		t.Errorf("answered = %d, want 1", res.Progress.Answered)
	}

	res, _ = s.Answer(ctx, start.Record.ID, "T.1.1", scoring.Absent)
	if res.Record.Scores.Dimensions[0].Criteria[0].Percentage != 0 {
		t.Error("changing an answer should rescore")
	}
	if res.Progress.Answered != 1 {
		t.Error("an absent answer still counts as answered")
	}
}

func TestAnswer_Validation(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	start, _ := s.Start(ctx, "x", "", "")
	id := start.Record.ID

	if _, err := s.Answer(ctx, id, "T.1.1", 2); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("value 2 err = %v, want ErrInvalidValue", err)
	}
	if _, err := s.Answer(ctx, id, "Z.9.9", 1); !errors.Is(err, ErrUnknownElement) {
		t.Errorf("unknown element err = %v, want ErrUnknownElement", err)
	}
	if _, err := s.Answer(ctx, "missing", "T.1.1", 1); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("missing evaluation err = %v, want store.ErrNotFound", err)
	}
}

func TestAnswerMany_AllOrNothing(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	start, _ := s.Start(ctx, "x", "", "")

	_, err := s.AnswerMany(ctx, start.Record.ID, map[string]int{"T.1.1": 1, "T.1.2": 5})
	if !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("err = %v", err)
	}
	rec, _ := s.Get(ctx, start.Record.ID)
	if len(rec.Responses) != 0 {
		t.Errorf("responses = %v, want none applied", rec.Responses)
	}
}

func TestAnswer_UnansweredAlerts(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	start, _ := s.Start(ctx, "x", "", "")

	answers := map[string]int{}
	for _, d := range capability.TOPPOrder {
		v := scoring.Absent
		if d == capability.Technical {
			v = scoring.Present
		}
		for k, val := range dimensionAnswers(d, v) {
			answers[k] = val
		}
	}
	res, err := s.AnswerMany(ctx, start.Record.ID, answers)
	if err != nil {
		t.Fatalf("AnswerMany: %v", err)
	}
	if !hasAlert(res.Alerts, alerts.RuleHighUnansweredElements) {
		t.Errorf("alerts = %v, want high_unanswered_elements", alerts.IDs(res.Alerts))
	}
	if hasAlert(res.Alerts, alerts.RuleMediumUnansweredElements) {
		t.Error("medium and high unanswered alerts must not co-fire")
	}
	if res.Absent.Absent != 25 || res.Absent.Recorded != 34 {
		t.Errorf("absent stats = %+v", res.Absent)
	}
	if !res.Progress.Complete() {
		t.Error("progress should be complete")
	}
}

// --- Reset ---

func TestReset(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	start, _ := s.Start(ctx, "x", "", "")
	s.AnswerMany(ctx, start.Record.ID, dimensionAnswers(capability.Political, scoring.Present))

	res, err := s.Reset(ctx, start.Record.ID)
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if len(res.Record.Responses) != 0 || res.Record.Scores.Overall != 0 {
		t.Errorf("after reset: responses=%v overall=%d", res.Record.Responses, res.Record.Scores.Overall)
	}
}

// --- Custom alerts ---

func TestCustomAlerts(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	start, _ := s.Start(ctx, "x", "", "")
	id := start.Record.ID

	res, err := s.AddCustomAlert(ctx, id, alerts.Alert{Title: "Manual", Severity: alerts.SeverityLow})
	if err != nil {
		t.Fatalf("AddCustomAlert: %v", err)
	}
	last := res.Alerts[len(res.Alerts)-1]
	if last.Title != "Manual" || last.ID != "custom-id-2" {
		t.Errorf("last alert = %+v", last)
	}
	if len(res.Alerts) != len(start.Alerts)+1 {
		t.Errorf("alerts = %d, want generated + 1", len(res.Alerts))
	}

	res, err = s.RemoveCustomAlert(ctx, id, last.ID)
	if err != nil {
		t.Fatalf("RemoveCustomAlert: %v", err)
	}
	if len(res.Record.CustomAlerts) != 0 {
		t.Errorf("custom alerts = %v", res.Record.CustomAlerts)
	}
	if _, err := s.RemoveCustomAlert(ctx, id, last.ID); !errors.Is(err, ErrUnknownAlert) {
		t.Errorf("err = %v, want ErrUnknownAlert", err)
	}
}

// --- List / Delete ---

func TestListAndDelete(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	a, _ := s.Start(ctx, "a", "", "")
	b, _ := s.Start(ctx, "b", "", "")

	list, err := s.List(ctx, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].ID != b.Record.ID {
		t.Errorf("list = %+v", list)
	}

	if err := s.Delete(ctx, a.Record.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Result(ctx, a.Record.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Result after delete err = %v", err)
	}
}

// --- Preview ---

func TestPreview(t *testing.T) {
	s := newTestService(t)
	got := s.Preview(alerts.Profile{Technical: 65, Operational: 55, Political: 35, Prospective: 55}, "")
	if len(got) != 1 || got[0].Title != "Diseño sin tracción política" {
		t.Errorf("preview = %+v", got)
	}
	if got[0].Metrics.RiskLevel != 45 {
		t.Errorf("risk = %d, want 45", got[0].Metrics.RiskLevel)
	}
}

// --- Notify ---

func TestNotify(t *testing.T) {
	n := &fakeNotifier{}
	m := metrics.New()
	s := newTestService(t, WithNotifier(n), WithMetrics(m))
	ctx := context.Background()
	start, _ := s.Start(ctx, "Región", "", "en")

	if _, err := s.Notify(ctx, start.Record.ID); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if len(n.reports) != 1 {
		t.Fatalf("reports = %d", len(n.reports))
	}
	r := n.reports[0]
	if r.Name != "Región" || len(r.Alerts) != 4 {
		t.Errorf("report = %+v", r)
	}
	if r.Translator.Text("dimension.technical") != "Technical" {
		t.Error("report should carry the evaluation locale")
	}

	families, err := m.Registry().Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	seen := map[string]bool{}
	for _, f := range families {
		seen[f.GetName()] = true
	}
	for _, name := range []string{
		"planbarometro_evaluations_scored_total",
		"planbarometro_alerts_generated_total",
		"planbarometro_notifications_total",
	} {
		if !seen[name] {
			t.Errorf("metric %s not recorded", name)
		}
	}
}

func TestNotify_Disabled(t *testing.T) {
	s := newTestService(t)
	if _, err := s.Notify(context.Background(), "x"); !errors.Is(err, notify.ErrDisabled) {
		t.Errorf("err = %v, want ErrDisabled", err)
	}
}

func TestNotify_Error(t *testing.T) {
	s := newTestService(t, WithNotifier(&fakeNotifier{err: errors.New("down")}))
	ctx := context.Background()
	start, _ := s.Start(ctx, "x", "", "")
	if _, err := s.Notify(ctx, start.Record.ID); err == nil {
		t.Error("expected notifier error")
	}
}

// --- Reads ---

func singleCriterionModel(elements ...string) *capability.Model {
	c := capability.Criterion{ID: "c1", Name: "Uno"}
	for _, id := range elements {
		c.Elements = append(c.Elements, capability.Element{ID: id, Name: id})
	}
	return &capability.Model{
		ID:         "m",
		Name:       "Mini",
		Dimensions: []capability.Dimension{{ID: capability.Technical, Criteria: []capability.Criterion{c}}},
	}
}

func TestResult_ScoresAgainstReloadedModel(t *testing.T) {
	reg := capability.NewRegistry(nil)
	if err := reg.Register(singleCriterionModel("a", "b")); err != nil {
		t.Fatalf("Register: %v", err)
	}
	catalog, err := i18n.New()
	if err != nil {
		t.Fatalf("i18n.New: %v", err)
	}
	st := newTestStore(t)
	s := NewService(st, reg, catalog)
	ctx := context.Background()

	res, err := s.Start(ctx, "Mini", "m", "")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	id := res.Record.ID
	if res, err = s.Answer(ctx, id, "a", scoring.Present); err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if res.Record.Scores.Overall != 50 {
		t.Fatalf("Overall = %d, want 50", res.Record.Scores.Overall)
	}

	if err := reg.Register(singleCriterionModel("a", "b", "c", "d")); err != nil {
		t.Fatalf("Register: %v", err)
	}

	res, err = s.Result(ctx, id)
	if err != nil {
		t.Fatalf("Result: %v", err)
	}
	if res.Record.Scores.Overall != 25 {
		t.Errorf("Overall = %d, want 25 after the model gained two elements", res.Record.Scores.Overall)
	}
	if res.Progress.Answered != 1 || res.Progress.Total != 4 {
		t.Errorf("Progress = %+v, want 1/4", res.Progress)
	}

	stored, err := st.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.Scores.Overall != 50 {
		t.Errorf("stored snapshot = %d, want 50 until the next mutation", stored.Scores.Overall)
	}
}
