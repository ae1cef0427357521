package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/HendryAvila/planbarometro/internal/alerts"
	"github.com/HendryAvila/planbarometro/internal/capability"
	"github.com/HendryAvila/planbarometro/internal/i18n"
	"github.com/HendryAvila/planbarometro/internal/scoring"
	pbserver "github.com/HendryAvila/planbarometro/internal/server"
)

// report is the JSON printed by the score command.
type report struct {
	Model    string              `json:"model"`
	Locale   string              `json:"locale"`
	Scores   scoring.Scores      `json:"scores"`
	Progress scoring.Progress    `json:"progress"`
	Absent   scoring.AbsentStats `json:"absent"`
	Alerts   []alerts.Alert      `json:"alerts"`
}

func scoreCmd(configPath *string) *cobra.Command {
	var modelID, locale string

	cmd := &cobra.Command{
		Use:   "score <responses-file>",
		Short: "Score a responses file and print scores and alerts as JSON",
		Long: `Reads a YAML or JSON object of element id to 0/1 ("-" for stdin),
scores it against the model and prints scores, progress and strategic
alerts. Nothing is stored.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(*configPath)
			if err != nil {
				return err
			}
			if locale == "" {
				locale = cfg.Locale
			}
			models, err := pbserver.LoadModels(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			model, ok := models.Get(modelID)
			if !ok {
				return fmt.Errorf("unknown model %q", modelID)
			}

			in := cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			responses, err := readResponses(in)
			if err != nil {
				return err
			}
			catalog, err := i18n.New()
			if err != nil {
				return err
			}
			return writeReport(cmd.OutOrStdout(), score(model, responses, catalog, locale))
		},
	}
	cmd.Flags().StringVarP(&modelID, "model", "m", capability.TOPPModelID, "Capability model id")
	cmd.Flags().StringVarP(&locale, "locale", "l", "", "Language for alert text (defaults to the configured locale)")
	return cmd
}

// readResponses decodes element responses. YAML is a superset of JSON,
// so both formats go through the YAML decoder.
func readResponses(r io.Reader) (scoring.Responses, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading responses: %w", err)
	}
	responses := scoring.Responses{}
	if err := yaml.Unmarshal(data, &responses); err != nil {
		return nil, fmt.Errorf("parsing responses: %w", err)
	}
	for id, v := range responses {
		if v != scoring.Absent && v != scoring.Present {
			return nil, fmt.Errorf("response %s: value must be 0 or 1, got %d", id, v)
		}
	}
	return responses, nil
}

func score(model *capability.Model, responses scoring.Responses, catalog *i18n.Catalog, locale string) report {
	tr := catalog.Translator(locale)
	scores := scoring.Compute(responses, model)
	engine := alerts.NewEngine(alerts.WithTranslator(tr))
	return report{
		Model:    model.ID,
		Locale:   tr.Locale(),
		Scores:   scores,
		Progress: scoring.ComputeProgress(responses, model),
		Absent:   scoring.MarkedAbsent(responses),
		Alerts:   engine.Generate(scores, model.ID, responses),
	}
}

func writeReport(w io.Writer, r report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
