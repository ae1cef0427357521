// Package resources implements MCP resource handlers for Planbarómetro.
//
// Resources expose read-only JSON that the host can pull into context:
// the capability models and stored evaluations. They use
// planbarometro:// URIs.
package resources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/HendryAvila/planbarometro/internal/capability"
	"github.com/HendryAvila/planbarometro/internal/evaluation"
	"github.com/HendryAvila/planbarometro/internal/store"
)

const (
	scheme        = "planbarometro://"
	modelsURI     = scheme + "models"
	modelURI      = scheme + "models/{id}"
	evaluationURI = scheme + "evaluations/{id}"
	mimeJSON      = "application/json"
	mimePlainText = "text/plain"
)

// Models is the part of *capability.Registry the resources read.
type Models interface {
	Get(id string) (*capability.Model, bool)
	IDs() []string
}

// Evaluations is the part of *evaluation.Service the resources read.
type Evaluations interface {
	Result(ctx context.Context, id string) (*evaluation.Result, error)
}

// Registrar is the subset of *server.MCPServer used to register resources.
type Registrar interface {
	AddResource(resource mcp.Resource, handler server.ResourceHandlerFunc)
	AddResourceTemplate(template mcp.ResourceTemplate, handler server.ResourceTemplateHandlerFunc)
}

// Handler manages Planbarómetro resource endpoints.
type Handler struct {
	models Models
	evals  Evaluations
}

// NewHandler creates a resource Handler with its dependencies.
func NewHandler(models Models, evals Evaluations) *Handler {
	return &Handler{models: models, evals: evals}
}

// Register adds every resource and template to s.
func (h *Handler) Register(s Registrar) {
	s.AddResource(h.ModelsResource(), h.HandleModels)
	s.AddResourceTemplate(h.ModelTemplate(), server.ResourceTemplateHandlerFunc(h.HandleModel))
	s.AddResourceTemplate(h.EvaluationTemplate(), server.ResourceTemplateHandlerFunc(h.HandleEvaluation))
}

// ModelsResource lists the registered model ids.
func (h *Handler) ModelsResource() mcp.Resource {
	return mcp.NewResource(
		modelsURI,
		"Capability models",
		mcp.WithResourceDescription("Ids and names of the capability models available for evaluations"),
		mcp.WithMIMEType(mimeJSON),
	)
}

// ModelTemplate addresses one model by id.
func (h *Handler) ModelTemplate() mcp.ResourceTemplate {
	return mcp.NewResourceTemplate(
		modelURI,
		"Capability model",
		mcp.WithTemplateDescription("Dimensions, criteria and elements of a capability model"),
		mcp.WithTemplateMIMEType(mimeJSON),
	)
}

// EvaluationTemplate addresses one stored evaluation by id.
func (h *Handler) EvaluationTemplate() mcp.ResourceTemplate {
	return mcp.NewResourceTemplate(
		evaluationURI,
		"Evaluation result",
		mcp.WithTemplateDescription("Responses, scores, progress and strategic alerts of a stored evaluation"),
		mcp.WithTemplateMIMEType(mimeJSON),
	)
}

type modelSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Elements int    `json:"elements"`
}

// HandleModels returns every registered model as a summary list.
func (h *Handler) HandleModels(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	list := []modelSummary{}
	for _, id := range h.models.IDs() {
		if m, ok := h.models.Get(id); ok {
			list = append(list, modelSummary{ID: m.ID, Name: m.Name, Elements: m.ElementCount()})
		}
	}
	return jsonContents(req.Params.URI, list)
}

// HandleModel returns one model.
func (h *Handler) HandleModel(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	id, err := idFromURI(req.Params.URI, "models")
	if err != nil {
		return nil, err
	}
	m, ok := h.models.Get(id)
	if !ok {
		return errorResource(req.Params.URI, fmt.Sprintf("unknown model %q", id)), nil
	}
	return jsonContents(req.Params.URI, m)
}

// HandleEvaluation returns one evaluation with its alerts.
func (h *Handler) HandleEvaluation(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	id, err := idFromURI(req.Params.URI, "evaluations")
	if err != nil {
		return nil, err
	}
	res, err := h.evals.Result(ctx, id)
	if errors.Is(err, store.ErrNotFound) || errors.Is(err, evaluation.ErrUnknownModel) {
		return errorResource(req.Params.URI, err.Error()), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading evaluation %s: %w", id, err)
	}
	return jsonContents(req.Params.URI, res)
}

// idFromURI extracts {id} from planbarometro://<collection>/{id}.
func idFromURI(uri, collection string) (string, error) {
	rest, ok := strings.CutPrefix(uri, scheme+collection+"/")
	if !ok || rest == "" || strings.Contains(rest, "/") {
		return "", fmt.Errorf("invalid resource URI: %s", uri)
	}
	return rest, nil
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling %s: %w", uri, err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: mimeJSON,
			Text:     string(data),
		},
	}, nil
}

// errorResource returns a resource with an error message.
func errorResource(uri, message string) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: mimePlainText,
			Text:     fmt.Sprintf("Error: %s", message),
		},
	}
}
