// Package server wires all MCP components and creates the server instance.
//
// This is the composition root: it creates concrete implementations and
// injects them into the tools, prompts and resources that depend on
// abstractions. No business logic lives here, only wiring.
package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/HendryAvila/planbarometro/internal/alerts"
	"github.com/HendryAvila/planbarometro/internal/capability"
	"github.com/HendryAvila/planbarometro/internal/config"
	"github.com/HendryAvila/planbarometro/internal/evaluation"
	"github.com/HendryAvila/planbarometro/internal/i18n"
	"github.com/HendryAvila/planbarometro/internal/metrics"
	"github.com/HendryAvila/planbarometro/internal/notify"
	"github.com/HendryAvila/planbarometro/internal/prompts"
	"github.com/HendryAvila/planbarometro/internal/resources"
	"github.com/HendryAvila/planbarometro/internal/store"
	"github.com/HendryAvila/planbarometro/internal/tools"
)

// Version is set at build time via ldflags.
var Version = "dev"

// newNotifier is a package-level variable for testability.
var newNotifier = func(d config.DiscordConfig) (notifier, error) {
	return notify.NewDiscord(d.Token, d.ChannelID, alerts.Severity(d.MinSeverity))
}

type notifier interface {
	notify.Notifier
	Close() error
}

// LoadModels builds the model registry: the built-in TOPP model plus
// every file in cfg.ModelsDir. With cfg.WatchModels the directory is
// watched until ctx is cancelled.
func LoadModels(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*capability.Registry, error) {
	models := capability.NewRegistry(logger)
	if cfg.ModelsDir == "" {
		return models, nil
	}

	n, err := models.LoadDir(cfg.ModelsDir)
	if err != nil {
		return nil, fmt.Errorf("loading models: %w", err)
	}
	logger.Debug("models loaded", slog.String("dir", cfg.ModelsDir), slog.Int("files", n))

	if cfg.WatchModels {
		go func() {
			if err := models.Watch(ctx, cfg.ModelsDir); err != nil {
				logger.Warn("model watcher stopped", slog.String("error", err.Error()))
			}
		}()
	}
	return models, nil
}

// New creates and configures the MCP server with all tools, prompts,
// and resources registered. This is the single place where all
// dependencies are resolved.
//
// The returned cleanup function closes the store and the notifier and
// must be called on shutdown (typically via defer). It is always non-nil.
// rec may be nil.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, rec *metrics.Recorder) (*server.MCPServer, func(), error) {
	if logger == nil {
		logger = slog.Default()
	}

	// --- Create shared dependencies ---

	models, err := LoadModels(ctx, cfg, logger)
	if err != nil {
		return nil, noop, err
	}

	catalog, err := i18n.New()
	if err != nil {
		return nil, noop, fmt.Errorf("loading translations: %w", err)
	}

	st, err := store.Open(cfg.Store)
	if err != nil {
		return nil, noop, fmt.Errorf("opening store: %w", err)
	}
	logger.Debug("store opened", slog.String("driver", st.Driver()))

	cleanup := func() {
		if err := st.Close(); err != nil {
			logger.Warn("store close failed", slog.String("error", err.Error()))
		}
	}

	opts := []evaluation.Option{
		evaluation.WithLogger(logger),
		evaluation.WithMetrics(rec),
		evaluation.WithDefaultLocale(cfg.Locale),
	}

	// Notifications are optional: if the Discord session cannot be
	// created the server still works, and pb_notify reports it as
	// disabled.
	if cfg.Discord.Enabled() {
		n, err := newNotifier(cfg.Discord)
		if err != nil {
			logger.Warn("notifications disabled", slog.String("error", err.Error()))
		} else {
			opts = append(opts, evaluation.WithNotifier(n))
			closeStore := cleanup
			cleanup = func() {
				if err := n.Close(); err != nil {
					logger.Warn("notifier close failed", slog.String("error", err.Error()))
				}
				closeStore()
			}
		}
	}

	evals := evaluation.NewService(st, models, catalog, opts...)

	// --- Create the MCP server ---

	s := server.NewMCPServer(
		"planbarometro",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Register tools ---

	modelTool := tools.NewModelTool(models)
	s.AddTool(modelTool.Definition(), modelTool.Handle)

	startTool := tools.NewStartTool(evals)
	s.AddTool(startTool.Definition(), startTool.Handle)

	answerTool := tools.NewAnswerTool(evals)
	s.AddTool(answerTool.Definition(), answerTool.Handle)

	resetTool := tools.NewResetTool(evals)
	s.AddTool(resetTool.Definition(), resetTool.Handle)

	resultTool := tools.NewResultTool(evals)
	s.AddTool(resultTool.Definition(), resultTool.Handle)

	listTool := tools.NewListTool(evals)
	s.AddTool(listTool.Definition(), listTool.Handle)

	deleteTool := tools.NewDeleteTool(evals)
	s.AddTool(deleteTool.Definition(), deleteTool.Handle)

	customAlertTool := tools.NewCustomAlertTool(evals)
	s.AddTool(customAlertTool.Definition(), customAlertTool.Handle)

	previewTool := tools.NewPreviewTool(evals)
	s.AddTool(previewTool.Definition(), previewTool.Handle)

	notifyTool := tools.NewNotifyTool(evals)
	s.AddTool(notifyTool.Definition(), notifyTool.Handle)

	// --- Register prompts ---

	diagnosePrompt := prompts.NewDiagnosePrompt()
	s.AddPrompt(diagnosePrompt.Definition(), diagnosePrompt.Handle)

	reviewPrompt := prompts.NewReviewPrompt()
	s.AddPrompt(reviewPrompt.Definition(), reviewPrompt.Handle)

	// --- Register resources ---

	resources.NewHandler(models, evals).Register(s)

	logger.Info("server ready",
		slog.String("version", Version),
		slog.String("locale", catalog.Match(cfg.Locale)),
		slog.Any("models", models.IDs()),
	)
	return s, cleanup, nil
}

// noop is a no-op cleanup function returned when setup fails.
func noop() {}

// serverInstructions returns the system instructions that tell the AI
// how to use Planbarómetro.
func serverInstructions() string {
	return `You have access to Planbarómetro, a strategic capability diagnosis server for public institutions.

## WHAT IT DOES

An evaluation scores an institution against a capability model. The default
model, TOPP, has four dimensions:
- Technical (T): planning instruments, plan formulation, monitoring
- Operational (O): organization, resources, coordination
- Political (P): leadership, participation, accountability
- Prospective (F): long-term vision, risk anticipation, learning

Each dimension has criteria and each criterion has binary elements. An element
is present (1) or absent (0). Unanswered elements count as absent.
Criterion, dimension and overall scores are integer percentages.

After every change the server evaluates a fixed set of strategic alert rules
over the four dimension percentages and returns the alerts that fire, each with
a severity (high, medium, low) and risk, impact and urgency levels (0-100).

## WORKFLOW

1. pb_start: create an evaluation and keep its id
2. pb_model: list the elements to ask about
3. pb_answer: record answers, preferably one batch per criterion
4. pb_result: show scores, progress, alerts and unanswered elements
5. pb_custom_alert: add alerts the rules did not catch
6. pb_notify: send the summary to the configured channel

pb_alerts_preview runs the rules on four percentages without storing anything.
pb_list and pb_delete manage stored evaluations.

## RULES

- Never invent answers. Ask the user about every element you record.
- Explain alerts in the user's language; pass locale to pb_start.
- Do not present scores of a partial evaluation as final. Say how many
  elements are still unanswered.`
}
