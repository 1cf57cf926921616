package alerting

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleAlert() ProbeAlert {
	return ProbeAlert{
		JobName:   "provider_probe",
		Total:     3,
		Failed:    []ProviderFailure{{Provider: "sepulsa", Error: "timeout"}},
		Duration:  1500 * time.Millisecond,
		Timestamp: time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestDetectType(t *testing.T) {
	assert.Equal(t, TypeSlack, DetectType("https://hooks.slack.com/services/x"))
	assert.Equal(t, TypeDiscord, DetectType("https://discord.com/api/webhooks/x"))
	assert.Equal(t, TypeGeneric, DetectType("https://example.com/hook"))
}

func TestSend_GenericWebhook(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	a := New(Config{WebhookURL: srv.URL})
	require.NoError(t, a.Send(context.Background(), sampleAlert()))

	assert.Equal(t, "provider_probe_failure", got["alert_type"])
	assert.EqualValues(t, 1, got["failed_count"])
	assert.EqualValues(t, 1500, got["duration_ms"])
}

func TestSend_SlackWebhookStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), "blocks")
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	a := New(Config{WebhookURL: srv.URL, WebhookType: TypeSlack})
	err := a.Send(context.Background(), sampleAlert())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestSend_BelowThreshold(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	a := New(Config{WebhookURL: srv.URL, MinFailures: 2})
	require.NoError(t, a.Send(context.Background(), sampleAlert()))
	assert.False(t, called)
}

func TestSend_Disabled(t *testing.T) {
	a := New(Config{})
	assert.NoError(t, a.Send(context.Background(), sampleAlert()))
}

func TestSend_Email(t *testing.T) {
	var sent *mail.SGMailV3
	a := New(Config{SendgridKey: "k", EmailFrom: "ops@example.com", EmailTo: "me@example.com"},
		WithMailSender(func(m *mail.SGMailV3) error {
			sent = m
			return nil
		}))

	require.NoError(t, a.Send(context.Background(), sampleAlert()))
	require.NotNil(t, sent)
	assert.Equal(t, "[tagihanpln] 1/3 providers unreachable", sent.Subject)
	assert.Equal(t, "ops@example.com", sent.From.Address)
}

func TestDiscordPayloadColor(t *testing.T) {
	alert := sampleAlert()
	alert.Total = 1
	raw, err := discordPayload(alert)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "16711680")
}
