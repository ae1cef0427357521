package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/HendryAvila/planbarometro/internal/alerts"
	"github.com/HendryAvila/planbarometro/internal/scoring"
)

type fakeSender struct {
	channel string
	embed   *discordgo.MessageEmbed
	err     error
}

func (f *fakeSender) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.channel = channelID
	f.embed = embed
	if f.err != nil {
		return nil, f.err
	}
	return &discordgo.Message{ID: "m1"}, nil
}

func sampleReport() Report {
	return Report{
		EvaluationID: "ev-1",
		Name:         "Gobierno Regional",
		ModelID:      "topp",
		Scores: scoring.Scores{Overall: 55, Dimensions: []scoring.DimensionScore{
			{ID: "technical", Name: "Técnica", Percentage: 65},
			{ID: "operational", Percentage: 55},
		}},
		Alerts: []alerts.Alert{
			{ID: "a", Title: "High one", Severity: alerts.SeverityHigh, Metrics: alerts.Metrics{RiskLevel: 45, ImpactLevel: 85, UrgencyLevel: 75}},
			{ID: "b", Title: "Low one", Severity: alerts.SeverityLow},
		},
	}
}

// --- BuildEmbed ---

func TestBuildEmbed_FieldsAndColor(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	e := BuildEmbed(sampleReport(), "", now)

	if e.Color != colorHigh {
		t.Errorf("Color = %x, want high", e.Color)
	}
	if len(e.Fields) != 4 {
		t.Fatalf("fields = %d, want 2 dimensions + 2 alerts", len(e.Fields))
	}
	if e.Fields[0].Name != "Técnica" || e.Fields[0].Value != "65%" || !e.Fields[0].Inline {
		t.Errorf("first field = %+v", e.Fields[0])
	}
	if e.Fields[1].Name != "dimension.operational" {
		t.Errorf("unnamed dimension should use translator key, got %q", e.Fields[1].Name)
	}
	if !strings.Contains(e.Fields[2].Name, "High one") || !strings.Contains(e.Fields[2].Value, "45") {
		t.Errorf("alert field = %+v", e.Fields[2])
	}
	if e.Timestamp != "2026-05-01T12:00:00Z" {
		t.Errorf("Timestamp = %s", e.Timestamp)
	}
	if !strings.Contains(e.Title, "Gobierno Regional") {
		t.Errorf("Title = %q", e.Title)
	}
}

func TestBuildEmbed_MinSeverityFilters(t *testing.T) {
	e := BuildEmbed(sampleReport(), alerts.SeverityMedium, time.Now())
	if len(e.Fields) != 3 {
		t.Errorf("fields = %d, want low alert filtered out", len(e.Fields))
	}
}

func TestBuildEmbed_NoAlerts(t *testing.T) {
	r := sampleReport()
	r.Alerts = nil
	e := BuildEmbed(r, "", time.Now())
	if e.Color != colorNone {
		t.Errorf("Color = %x, want none", e.Color)
	}
	if !strings.Contains(e.Description, "notify.no_alerts") {
		t.Errorf("Description = %q", e.Description)
	}
}

func TestBuildEmbed_FieldLimit(t *testing.T) {
	r := sampleReport()
	r.Alerts = nil
	for i := 0; i < 40; i++ {
		r.Alerts = append(r.Alerts, alerts.Alert{ID: "x", Severity: alerts.SeverityHigh})
	}
	if got := len(BuildEmbed(r, "", time.Now()).Fields); got != maxFields {
		t.Errorf("fields = %d, want %d", got, maxFields)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("ñandú", 10); got != "ñandú" {
		t.Errorf("short string changed: %q", got)
	}
	if got := truncate("ñandúes", 4); got != "ñan…" {
		t.Errorf("truncate = %q", got)
	}
}

func TestColor(t *testing.T) {
	if Color(alerts.SeverityMedium) != colorMedium || Color(alerts.SeverityLow) != colorLow || Color("") != colorNone {
		t.Error("unexpected colour mapping")
	}
}

// --- Discord ---

func TestDiscord_Notify(t *testing.T) {
	f := &fakeSender{}
	d := &Discord{session: f, channelID: "chan", minSeverity: alerts.SeverityLow}
	if err := d.Notify(context.Background(), sampleReport()); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if f.channel != "chan" || f.embed == nil {
		t.Errorf("sent to %q embed=%v", f.channel, f.embed)
	}
	if err := d.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestDiscord_NotifyError(t *testing.T) {
	d := &Discord{session: &fakeSender{err: errors.New("401")}, channelID: "chan"}
	err := d.Notify(context.Background(), sampleReport())
	if err == nil || !strings.Contains(err.Error(), "send discord embed") {
		t.Errorf("err = %v", err)
	}
}

func TestNop(t *testing.T) {
	var n Notifier = Nop{}
	if err := n.Notify(context.Background(), Report{}); err != nil {
		t.Errorf("Nop.Notify = %v", err)
	}
}
