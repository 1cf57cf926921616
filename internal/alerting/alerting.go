// Package alerting reports failed provider probes to a webhook and by email.
package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

// Webhook payload formats.
const (
	TypeSlack   = "slack"
	TypeDiscord = "discord"
	TypeGeneric = "generic"
)

// Config holds alerting configuration.
type Config struct {
	// WebhookURL is a Slack, Discord or custom endpoint.
	WebhookURL string
	// WebhookType selects the payload format. Empty means detect from URL.
	WebhookType string
	// MinFailures is the threshold before an alert is sent.
	MinFailures int
	Timeout     time.Duration

	SendgridKey string
	EmailFrom   string
	EmailTo     string
}

// Enabled reports whether any channel is configured.
func (c Config) Enabled() bool {
	return c.WebhookURL != "" || c.emailEnabled()
}

func (c Config) emailEnabled() bool {
	return c.SendgridKey != "" && c.EmailFrom != "" && c.EmailTo != ""
}

// DetectType guesses the payload format from a webhook URL.
func DetectType(url string) string {
	switch {
	case strings.Contains(url, "slack.com"):
		return TypeSlack
	case strings.Contains(url, "discord.com"):
		return TypeDiscord
	}
	return TypeGeneric
}

// ProbeAlert summarizes one probe run.
type ProbeAlert struct {
	JobName   string
	Total     int
	Failed    []ProviderFailure
	Duration  time.Duration
	Timestamp time.Time
}

// ProviderFailure is one unreachable provider.
type ProviderFailure struct {
	Provider string `json:"provider"`
	Error    string `json:"error"`
}

// Alerter sends alerts to the configured channels.
type Alerter struct {
	cfg    Config
	client *http.Client
	send   func(*mail.SGMailV3) error
}

// Option configures an Alerter.
type Option func(*Alerter)

// WithHTTPClient replaces the webhook client.
func WithHTTPClient(c *http.Client) Option {
	return func(a *Alerter) { a.client = c }
}

// WithMailSender replaces the sendgrid client.
func WithMailSender(send func(*mail.SGMailV3) error) Option {
	return func(a *Alerter) { a.send = send }
}

// New creates an alerter.
func New(cfg Config, opts ...Option) *Alerter {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MinFailures <= 0 {
		cfg.MinFailures = 1
	}
	if cfg.WebhookType == "" {
		cfg.WebhookType = DetectType(cfg.WebhookURL)
	}
	a := &Alerter{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
	if cfg.SendgridKey != "" {
		sg := sendgrid.NewSendClient(cfg.SendgridKey)
		a.send = func(m *mail.SGMailV3) error {
			resp, err := sg.Send(m)
			if err != nil {
				return err
			}
			if resp.StatusCode >= 400 {
				return eris.Errorf("sendgrid error: %d %s", resp.StatusCode, resp.Body)
			}
			return nil
		}
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Send delivers alert when enough providers failed. Every configured channel
// is tried; the first error is returned.
func (a *Alerter) Send(ctx context.Context, alert ProbeAlert) error {
	if !a.cfg.Enabled() {
		zap.L().Debug("alerting: alerts disabled, skipping")
		return nil
	}
	if len(alert.Failed) < a.cfg.MinFailures {
		zap.L().Debug("alerting: failures below threshold, skipping",
			zap.Int("failed", len(alert.Failed)),
			zap.Int("threshold", a.cfg.MinFailures))
		return nil
	}

	var first error
	if a.cfg.WebhookURL != "" {
		if err := a.sendWebhook(ctx, alert); err != nil {
			zap.L().Error("alerting: webhook failed", zap.Error(err))
			first = err
		}
	}
	if a.cfg.emailEnabled() && a.send != nil {
		if err := a.sendEmail(alert); err != nil {
			zap.L().Error("alerting: email failed", zap.Error(err))
			if first == nil {
				first = err
			}
		}
	}
	if first == nil {
		zap.L().Info("alerting: sent probe alert", zap.Int("failed", len(alert.Failed)))
	}
	return first
}

func (a *Alerter) sendWebhook(ctx context.Context, alert ProbeAlert) error {
	var payload []byte
	var err error
	switch a.cfg.WebhookType {
	case TypeSlack:
		payload, err = slackPayload(alert)
	case TypeDiscord:
		payload, err = discordPayload(alert)
	default:
		payload, err = genericPayload(alert)
	}
	if err != nil {
		return eris.Wrap(err, "build payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		return eris.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return eris.Wrap(err, "send request")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return eris.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

func (a *Alerter) sendEmail(alert ProbeAlert) error {
	from := mail.NewEmail("tagihanpln", a.cfg.EmailFrom)
	to := mail.NewEmail("", a.cfg.EmailTo)
	subject := fmt.Sprintf("[tagihanpln] %d/%d providers unreachable", len(alert.Failed), alert.Total)
	text := failureList(alert, "- %s: %s\n")
	html := "<ul>" + failureList(alert, "<li><b>%s</b>: %s</li>") + "</ul>"
	return a.send(mail.NewSingleEmail(from, subject, to, text, html))
}

func failureList(alert ProbeAlert, format string) string {
	var b strings.Builder
	for _, f := range alert.Failed {
		fmt.Fprintf(&b, format, f.Provider, f.Error)
	}
	return b.String()
}

func slackPayload(alert ProbeAlert) ([]byte, error) {
	emoji := ":warning:"
	if len(alert.Failed) == alert.Total {
		emoji = ":x:"
	}

	payload := map[string]any{
		"blocks": []map[string]any{
			{
				"type": "header",
				"text": map[string]string{
					"type": "plain_text",
					"text": fmt.Sprintf("%s Provider probe: %s", emoji, alert.JobName),
				},
			},
			{
				"type": "section",
				"fields": []map[string]string{
					{"type": "mrkdwn", "text": fmt.Sprintf("*Unreachable:*\n%d/%d", len(alert.Failed), alert.Total)},
					{"type": "mrkdwn", "text": fmt.Sprintf("*Duration:*\n%s", alert.Duration.Round(time.Millisecond))},
					{"type": "mrkdwn", "text": fmt.Sprintf("*Timestamp:*\n%s", alert.Timestamp.Format(time.RFC3339))},
				},
			},
			{
				"type": "section",
				"text": map[string]string{
					"type": "mrkdwn",
					"text": "*Failed providers:*\n" + failureList(alert, "• *%s*: %s\n"),
				},
			},
		},
	}
	return json.Marshal(payload)
}

func discordPayload(alert ProbeAlert) ([]byte, error) {
	color := 16776960 // yellow
	if len(alert.Failed) == alert.Total {
		color = 16711680 // red
	}

	payload := map[string]any{
		"embeds": []map[string]any{
			{
				"title":       fmt.Sprintf("Provider probe: %s", alert.JobName),
				"description": fmt.Sprintf("%d/%d providers unreachable", len(alert.Failed), alert.Total),
				"color":       color,
				"fields": []map[string]any{
					{"name": "Duration", "value": alert.Duration.Round(time.Millisecond).String(), "inline": true},
					{"name": "Failed providers", "value": failureList(alert, "• **%s**: %s\n"), "inline": false},
				},
				"timestamp": alert.Timestamp.Format(time.RFC3339),
			},
		},
	}
	return json.Marshal(payload)
}

func genericPayload(alert ProbeAlert) ([]byte, error) {
	return json.Marshal(map[string]any{
		"alert_type":     "provider_probe_failure",
		"job_name":       alert.JobName,
		"total_count":    alert.Total,
		"failed_count":   len(alert.Failed),
		"duration_ms":    alert.Duration.Milliseconds(),
		"timestamp":      alert.Timestamp.Format(time.RFC3339),
		"failed_details": alert.Failed,
	})
}
