// Package notify pushes evaluation alert summaries to external channels.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/HendryAvila/planbarometro/internal/alerts"
	"github.com/HendryAvila/planbarometro/internal/scoring"
)

// Report is what gets sent for one evaluation.
type Report struct {
	EvaluationID string
	Name         string
	ModelID      string
	Scores       scoring.Scores
	Alerts       []alerts.Alert
	Translator   alerts.Translator
}

// Notifier delivers a Report.
type Notifier interface {
	Notify(ctx context.Context, r Report) error
}

// Nop discards every report.
type Nop struct{}

// Notify implements Notifier.
func (Nop) Notify(context.Context, Report) error { return nil }

// ErrDisabled is returned by callers that have no notifier configured.
var ErrDisabled = errors.New("notify: no notifier configured")

// ─── Discord ─────────────────────────────────────────────────────────────────

// Discord embed limits.
const (
	maxFields     = 25
	maxFieldValue = 1024
	maxTitle      = 256
)

// Embed colours per highest severity.
const (
	colorHigh   = 0xE74C3C
	colorMedium = 0xF1C40F
	colorLow    = 0x3498DB
	colorNone   = 0x2ECC71
)

// embedSender is the part of *discordgo.Session the notifier uses.
type embedSender interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Discord posts one embed per report to a channel.
type Discord struct {
	session     embedSender
	closer      func() error
	channelID   string
	minSeverity alerts.Severity
}

// NewDiscord creates a bot session for token. Alerts below minSeverity
// are left out of the embed.
func NewDiscord(token, channelID string, minSeverity alerts.Severity) (*Discord, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("notify: create discord session: %w", err)
	}
	return &Discord{
		session:     session,
		closer:      session.Close,
		channelID:   channelID,
		minSeverity: minSeverity,
	}, nil
}

// Notify implements Notifier.
func (d *Discord) Notify(ctx context.Context, r Report) error {
	embed := BuildEmbed(r, d.minSeverity, time.Now())
	if _, err := d.session.ChannelMessageSendEmbed(d.channelID, embed, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("notify: send discord embed: %w", err)
	}
	return nil
}

// Close releases the session.
func (d *Discord) Close() error {
	if d.closer == nil {
		return nil
	}
	return d.closer()
}

// BuildEmbed renders a report: one inline field per dimension, then one
// field per alert at or above minSeverity. An empty minSeverity keeps
// every alert.
func BuildEmbed(r Report, minSeverity alerts.Severity, now time.Time) *discordgo.MessageEmbed {
	tr := r.Translator
	if tr == nil {
		tr = alerts.KeyTranslator{}
	}

	title := strings.ReplaceAll(tr.Text("notify.title"), "{name}", r.Name)
	embed := &discordgo.MessageEmbed{
		Title:       truncate(title, maxTitle),
		Description: fmt.Sprintf("**%s:** %d%%", tr.Text("notify.overall"), r.Scores.Overall),
		Color:       Color(alerts.Highest(r.Alerts)),
		Timestamp:   now.Format(time.RFC3339),
		Footer:      &discordgo.MessageEmbedFooter{Text: tr.Text("notify.footer") + " · " + r.EvaluationID},
	}

	for _, d := range r.Scores.Dimensions {
		name := d.Name
		if name == "" {
			name = tr.Text("dimension." + string(d.ID))
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   name,
			Value:  fmt.Sprintf("%d%%", d.Percentage),
			Inline: true,
		})
	}

	shown := 0
	for _, a := range r.Alerts {
		if minSeverity != "" && !a.Severity.AtLeast(minSeverity) {
			continue
		}
		if len(embed.Fields) >= maxFields {
			break
		}
		value := fmt.Sprintf("%s: %d · %s: %d · %s: %d\n%s",
			tr.Text("notify.risk"), a.Metrics.RiskLevel,
			tr.Text("notify.impact"), a.Metrics.ImpactLevel,
			tr.Text("notify.urgency"), a.Metrics.UrgencyLevel,
			a.Recommendation,
		)
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  truncate(fmt.Sprintf("%s %s (%s)", alerts.SeverityIcon(a.Severity), a.Title, tr.Text("severity."+string(a.Severity))), maxTitle),
			Value: truncate(value, maxFieldValue),
		})
		shown++
	}
	if shown == 0 {
		embed.Description += "\n" + tr.Text("notify.no_alerts")
	}
	return embed
}

// Color returns the embed colour for the highest severity of a report.
func Color(s alerts.Severity) int {
	switch s {
	case alerts.SeverityHigh:
		return colorHigh
	case alerts.SeverityMedium:
		return colorMedium
	case alerts.SeverityLow:
		return colorLow
	default:
		return colorNone
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
