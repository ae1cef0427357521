// Package evaluation manages evaluation sessions: recording responses,
// rescoring, merging custom alerts and persisting snapshots.
//
// Every mutation recomputes scores from scratch against the current
// model and saves the whole record. Stored scores are a snapshot of the
// last mutation; reads score the responses again against the model as
// registered now.
package evaluation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/HendryAvila/planbarometro/internal/alerts"
	"github.com/HendryAvila/planbarometro/internal/capability"
	"github.com/HendryAvila/planbarometro/internal/i18n"
	"github.com/HendryAvila/planbarometro/internal/metrics"
	"github.com/HendryAvila/planbarometro/internal/notify"
	"github.com/HendryAvila/planbarometro/internal/scoring"
	"github.com/HendryAvila/planbarometro/internal/store"
)

// timeNow is a package-level variable for testability.
var timeNow = time.Now

// newID is a package-level variable for testability.
var newID = uuid.NewString

var (
	ErrUnknownModel   = errors.New("evaluation: unknown model")
	ErrUnknownElement = errors.New("evaluation: element not in model")
	ErrInvalidValue   = errors.New("evaluation: response value must be 0 or 1")
	ErrUnknownAlert   = errors.New("evaluation: custom alert not found")
)

// Record is a persisted evaluation.
type Record = store.Record

// Repository persists records. *store.Store implements it.
type Repository interface {
	Save(ctx context.Context, rec *store.Record) error
	Get(ctx context.Context, id string) (*store.Record, error)
	List(ctx context.Context, limit int) ([]store.Summary, error)
	Delete(ctx context.Context, id string) error
}

// Models resolves capability models by id. *capability.Registry
// implements it.
type Models interface {
	Get(id string) (*capability.Model, bool)
}

// Result is a record plus everything derived from it for display.
type Result struct {
	Record   *Record               `json:"record"`
	Progress scoring.Progress      `json:"progress"`
	Absent   scoring.AbsentStats   `json:"absent"`
	Alerts   []alerts.Alert        `json:"alerts"`
	Highest  alerts.Severity       `json:"highest,omitempty"`
	Missing  []capability.Location `json:"-"`
}

// Service runs evaluations. Mutations are serialized.
type Service struct {
	mu sync.Mutex

	repo     Repository
	models   Models
	catalog  *i18n.Catalog
	metrics  *metrics.Recorder
	notifier notify.Notifier
	logger   *slog.Logger
	locale   string
}

// Option configures a Service.
type Option func(*Service)

// WithMetrics records scoring and alert counters.
func WithMetrics(m *metrics.Recorder) Option { return func(s *Service) { s.metrics = m } }

// WithNotifier sets where Notify sends reports.
func WithNotifier(n notify.Notifier) Option { return func(s *Service) { s.notifier = n } }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDefaultLocale sets the locale used when Start is given none.
func WithDefaultLocale(locale string) Option { return func(s *Service) { s.locale = locale } }

// NewService creates a Service.
func NewService(repo Repository, models Models, catalog *i18n.Catalog, opts ...Option) *Service {
	s := &Service{
		repo:    repo,
		models:  models,
		catalog: catalog,
		logger:  slog.Default(),
		locale:  i18n.DefaultLocale,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.locale = catalog.Match(s.locale)
	return s
}

// ─── Lifecycle ───────────────────────────────────────────────────────────────

// Start creates an evaluation with no responses. An empty modelID means
// the TOPP model; an empty locale means the service default.
func (s *Service) Start(ctx context.Context, name, modelID, locale string) (*Result, error) {
	if modelID == "" {
		modelID = capability.TOPPModelID
	}
	model, ok := s.models.Get(modelID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModel, modelID)
	}
	if strings.TrimSpace(locale) == "" {
		locale = s.locale
	}

	now := timeNow().UTC()
	rec := &Record{
		ID:           newID(),
		Name:         strings.TrimSpace(name),
		ModelID:      model.ID,
		Locale:       s.catalog.Match(locale),
		Responses:    scoring.Responses{},
		CustomAlerts: []alerts.Alert{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.rescoreAndSave(ctx, rec, model); err != nil {
		return nil, err
	}
	s.logger.Info("evaluation started",
		slog.String("id", rec.ID),
		slog.String("model", rec.ModelID),
		slog.String("locale", rec.Locale),
	)
	return s.result(rec, model), nil
}

// Answer records one response and rescores.
func (s *Service) Answer(ctx context.Context, id, elementID string, value int) (*Result, error) {
	return s.AnswerMany(ctx, id, map[string]int{elementID: value})
}

// AnswerMany records several responses at once. Nothing is applied if
// any entry is invalid.
func (s *Service) AnswerMany(ctx context.Context, id string, responses map[string]int) (*Result, error) {
	return s.mutate(ctx, id, func(rec *Record, model *capability.Model) error {
		keys := make([]string, 0, len(responses))
		for k := range responses {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, elementID := range keys {
			v := responses[elementID]
			if v != scoring.Absent && v != scoring.Present {
				return fmt.Errorf("%w: %s=%d", ErrInvalidValue, elementID, v)
			}
			if _, ok := model.Locate(elementID); !ok {
				return fmt.Errorf("%w: %s", ErrUnknownElement, elementID)
			}
		}
		for _, elementID := range keys {
			rec.Responses[elementID] = responses[elementID]
		}
		return nil
	})
}

// Reset clears every response.
func (s *Service) Reset(ctx context.Context, id string) (*Result, error) {
	return s.mutate(ctx, id, func(rec *Record, _ *capability.Model) error {
		rec.Responses = scoring.Responses{}
		return nil
	})
}

// AddCustomAlert appends a caller-authored alert. An empty ID gets a
// generated one.
func (s *Service) AddCustomAlert(ctx context.Context, id string, a alerts.Alert) (*Result, error) {
	return s.mutate(ctx, id, func(rec *Record, _ *capability.Model) error {
		if a.ID == "" {
			a.ID = "custom-" + newID()
		}
		if a.Criteria == nil {
			a.Criteria = []string{}
		}
		rec.CustomAlerts = append(rec.CustomAlerts, a)
		return nil
	})
}

// RemoveCustomAlert deletes every custom alert with alertID.
func (s *Service) RemoveCustomAlert(ctx context.Context, id, alertID string) (*Result, error) {
	return s.mutate(ctx, id, func(rec *Record, _ *capability.Model) error {
		kept := rec.CustomAlerts[:0]
		for _, a := range rec.CustomAlerts {
			if a.ID != alertID {
				kept = append(kept, a)
			}
		}
		if len(kept) == len(rec.CustomAlerts) {
			return fmt.Errorf("%w: %s", ErrUnknownAlert, alertID)
		}
		rec.CustomAlerts = kept
		return nil
	})
}

// mutate loads a record, applies fn, rescores and saves.
func (s *Service) mutate(ctx context.Context, id string, fn func(*Record, *capability.Model) error) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, model, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.Responses == nil {
		rec.Responses = scoring.Responses{}
	}
	if err := fn(rec, model); err != nil {
		return nil, err
	}
	rec.UpdatedAt = timeNow().UTC()
	if err := s.rescoreAndSave(ctx, rec, model); err != nil {
		return nil, err
	}
	return s.result(rec, model), nil
}

func (s *Service) load(ctx context.Context, id string) (*Record, *capability.Model, error) {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	model, ok := s.models.Get(rec.ModelID)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownModel, rec.ModelID)
	}
	return rec, model, nil
}

func (s *Service) rescoreAndSave(ctx context.Context, rec *Record, model *capability.Model) error {
	rec.Scores = scoring.Compute(rec.Responses, model)
	if err := s.repo.Save(ctx, rec); err != nil {
		return fmt.Errorf("evaluation: save %s: %w", rec.ID, err)
	}
	s.metrics.ObserveScores(rec.ModelID, rec.Scores)
	s.metrics.RecordAlerts(s.engine(rec.Locale).Generate(rec.Scores, rec.ModelID, rec.Responses))
	return nil
}

// ─── Reads ───────────────────────────────────────────────────────────────────

// Result returns the record with its alerts, progress and statistics.
func (s *Service) Result(ctx context.Context, id string) (*Result, error) {
	rec, model, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.result(rec, model), nil
}

func (s *Service) result(rec *Record, model *capability.Model) *Result {
	rec.Scores = scoring.Compute(rec.Responses, model)
	generated := s.engine(rec.Locale).Generate(rec.Scores, rec.ModelID, rec.Responses)
	merged := alerts.Merge(generated, rec.CustomAlerts)

	res := &Result{
		Record:   rec,
		Progress: scoring.ComputeProgress(rec.Responses, model),
		Absent:   scoring.MarkedAbsent(rec.Responses),
		Alerts:   merged,
		Highest:  alerts.Highest(merged),
	}
	for _, d := range model.Dimensions {
		for _, c := range d.Criteria {
			for _, e := range c.Elements {
				if _, ok := rec.Responses[e.ID]; !ok {
					res.Missing = append(res.Missing, capability.Location{Dimension: d.ID, Criterion: c.ID, Element: e})
				}
			}
		}
	}
	return res
}

// Get returns the stored record.
func (s *Service) Get(ctx context.Context, id string) (*Record, error) {
	return s.repo.Get(ctx, id)
}

// List returns stored evaluations, newest first.
func (s *Service) List(ctx context.Context, limit int) ([]store.Summary, error) {
	return s.repo.List(ctx, limit)
}

// Delete removes a stored evaluation.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("evaluation deleted", slog.String("id", id))
	return nil
}

// Preview runs the rule engine directly on four dimension percentages.
func (s *Service) Preview(p alerts.Profile, locale string) []alerts.Alert {
	if strings.TrimSpace(locale) == "" {
		locale = s.locale
	}
	return s.engine(s.catalog.Match(locale)).GenerateFromProfile(p)
}

// Translator returns the text source for locale, defaulting to the
// service locale.
func (s *Service) Translator(locale string) *i18n.Translator {
	if strings.TrimSpace(locale) == "" {
		locale = s.locale
	}
	return s.catalog.Translator(locale)
}

// Locales returns the supported locale codes, default first.
func (s *Service) Locales() []string {
	return s.catalog.Locales()
}

func (s *Service) engine(locale string) *alerts.Engine {
	return alerts.NewEngine(
		alerts.WithTranslator(s.catalog.Translator(locale)),
		alerts.WithLogger(s.logger),
	)
}

// ─── Notifications ───────────────────────────────────────────────────────────

// Notify sends the evaluation's current alerts to the configured
// notifier. It returns notify.ErrDisabled when none is configured.
func (s *Service) Notify(ctx context.Context, id string) (*Result, error) {
	if s.notifier == nil {
		return nil, notify.ErrDisabled
	}
	res, err := s.Result(ctx, id)
	if err != nil {
		return nil, err
	}

	err = s.notifier.Notify(ctx, notify.Report{
		EvaluationID: res.Record.ID,
		Name:         res.Record.Name,
		ModelID:      res.Record.ModelID,
		Scores:       res.Record.Scores,
		Alerts:       res.Alerts,
		Translator:   s.catalog.Translator(res.Record.Locale),
	})
	s.metrics.RecordNotification(err)
	if err != nil {
		s.logger.Warn("notification failed", slog.String("id", id), slog.String("error", err.Error()))
		return nil, err
	}
	s.logger.Info("notification sent", slog.String("id", id), slog.Int("alerts", len(res.Alerts)))
	return res, nil
}
