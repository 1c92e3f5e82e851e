// Sentinel - OSINT Conflict Event Intelligence Pipeline
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fieldreport/sentinel

package alert

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/fieldreport/sentinel/internal/logging"
)

// LogSink delivers alerts to the structured logger. It is always
// available and is the default sink when no webhook or queue is configured.
type LogSink struct{}

func NewLogSink() *LogSink { return &LogSink{} }

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Fire(_ context.Context, a Alert) error {
	logging.Warn().
		Str("event_id", a.Event.ID).
		Str("reason", a.Reason).
		Str("severity", string(a.Event.Severity)).
		Int("escalation_score", a.Event.EscalationScore).
		Str("headline", a.Event.EnhancedHeadline).
		Msg("alert: conflict event fired")
	return nil
}

// webhookPayload is the JSON body posted to WebhookSink's configured URL.
type webhookPayload struct {
	EventID         string `json:"event_id"`
	Reason          string `json:"reason"`
	Severity        string `json:"severity"`
	EscalationScore int    `json:"escalation_score"`
	Headline        string `json:"headline"`
	EventType       string `json:"event_type"`
	Timestamp       string `json:"timestamp"`
}

// WebhookSink POSTs a JSON payload to a configured URL, the simplest
// injected-capability sink the contract allows (§4.K "webhook").
type WebhookSink struct {
	url    string
	client *http.Client
}

func NewWebhookSink(url string, client *http.Client) *WebhookSink {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &WebhookSink{url: url, client: client}
}

func (s *WebhookSink) Name() string { return "webhook" }

func (s *WebhookSink) Fire(ctx context.Context, a Alert) error {
	payload := webhookPayload{
		EventID:         a.Event.ID,
		Reason:          a.Reason,
		Severity:        string(a.Event.Severity),
		EscalationScore: a.Event.EscalationScore,
		Headline:        a.Event.EnhancedHeadline,
		EventType:       string(a.Event.EventType),
		Timestamp:       a.Event.Timestamp.Format(time.RFC3339),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
