package resources

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/HendryAvila/planbarometro/internal/capability"
	"github.com/HendryAvila/planbarometro/internal/evaluation"
	"github.com/HendryAvila/planbarometro/internal/i18n"
	"github.com/HendryAvila/planbarometro/internal/store"
)

func newHandler(t *testing.T) (*Handler, *evaluation.Service) {
	t.Helper()
	st, err := store.Open(store.Config{Driver: store.DriverSQLite, DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("setup: open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	catalog, err := i18n.New()
	if err != nil {
		t.Fatalf("setup: catalog: %v", err)
	}
	models := capability.NewRegistry(nil)
	svc := evaluation.NewService(st, models, catalog)
	return NewHandler(models, svc), svc
}

func readReq(uri string) mcp.ReadResourceRequest {
	req := mcp.ReadResourceRequest{}
	req.Params.URI = uri
	return req
}

func text(t *testing.T, contents []mcp.ResourceContents) (string, string) {
	t.Helper()
	if len(contents) != 1 {
		t.Fatalf("contents = %d, want 1", len(contents))
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("contents[0] is %T", contents[0])
	}
	return tc.MIMEType, tc.Text
}

func TestHandleModels(t *testing.T) {
	h, _ := newHandler(t)
	contents, err := h.HandleModels(context.Background(), readReq(modelsURI))
	if err != nil {
		t.Fatalf("HandleModels: %v", err)
	}
	mime, body := text(t, contents)
	if mime != mimeJSON {
		t.Errorf("MIME = %s", mime)
	}
	var list []modelSummary
	if err := json.Unmarshal([]byte(body), &list); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(list) != 1 || list[0].ID != capability.TOPPModelID || list[0].Elements != 34 {
		t.Errorf("list = %+v", list)
	}
}

func TestHandleModel(t *testing.T) {
	h, _ := newHandler(t)
	contents, err := h.HandleModel(context.Background(), readReq("planbarometro://models/topp"))
	if err != nil {
		t.Fatalf("HandleModel: %v", err)
	}
	_, body := text(t, contents)
	var m capability.Model
	if err := json.Unmarshal([]byte(body), &m); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if m.ElementCount() != 34 {
		t.Errorf("elements = %d", m.ElementCount())
	}
}

func TestHandleModel_Unknown(t *testing.T) {
	h, _ := newHandler(t)
	contents, err := h.HandleModel(context.Background(), readReq("planbarometro://models/nope"))
	if err != nil {
		t.Fatalf("HandleModel: %v", err)
	}
	mime, body := text(t, contents)
	if mime != mimePlainText || !strings.Contains(body, "nope") {
		t.Errorf("got %s %q", mime, body)
	}
}

func TestHandleEvaluation(t *testing.T) {
	h, svc := newHandler(t)
	res, err := svc.Start(context.Background(), "Municipio", "", "en")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	contents, err := h.HandleEvaluation(context.Background(), readReq("planbarometro://evaluations/"+res.Record.ID))
	if err != nil {
		t.Fatalf("HandleEvaluation: %v", err)
	}
	_, body := text(t, contents)
	var got evaluation.Result
	if err := json.Unmarshal([]byte(body), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got.Record.Name != "Municipio" || len(got.Alerts) != 4 {
		t.Errorf("got %s with %d alerts", got.Record.Name, len(got.Alerts))
	}

	contents, err = h.HandleEvaluation(context.Background(), readReq("planbarometro://evaluations/missing"))
	if err != nil {
		t.Fatalf("HandleEvaluation: %v", err)
	}
	if mime, _ := text(t, contents); mime != mimePlainText {
		t.Errorf("missing evaluation should be an error resource, got %s", mime)
	}
}

func TestIDFromURI(t *testing.T) {
	tests := []struct {
		uri     string
		want    string
		wantErr bool
	}{
		{"planbarometro://models/topp", "topp", false},
		{"planbarometro://models/", "", true},
		{"planbarometro://models/a/b", "", true},
		{"other://models/topp", "", true},
	}
	for _, tt := range tests {
		got, err := idFromURI(tt.uri, "models")
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("idFromURI(%q) = %q, %v", tt.uri, got, err)
		}
	}
}

func TestRegister(t *testing.T) {
	h, _ := newHandler(t)
	s := server.NewMCPServer("test", "0", server.WithResourceCapabilities(false, true))
	h.Register(s)
}
