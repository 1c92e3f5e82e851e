// Sentinel - OSINT Conflict Event Intelligence Pipeline
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fieldreport/sentinel

package alert

import (
	"context"
	"strings"

	"github.com/fieldreport/sentinel/internal/config"
	"github.com/fieldreport/sentinel/internal/logging"
	"github.com/fieldreport/sentinel/internal/metrics"
	"github.com/fieldreport/sentinel/internal/models"
)

// cbrnWeaponTerms identify chemical/biological/radiological/nuclear-class
// weapons, matched case-insensitively against an event's WeaponTypes (§4.K
// "weapons intersects the CBRN set").
var cbrnWeaponTerms = []string{"nuclear", "cbrn", "chemical weapon", "chemical attack", "biological weapon", "nerve agent", "radiological"}

// killedAlertThreshold is the killed count above which an event fires
// regardless of its escalation score (§4.K).
const killedAlertThreshold = 10

// escalationAlertThreshold is the minimum escalation score that fires an
// alert on its own (§4.K).
const escalationAlertThreshold = 7

// Alert is the payload delivered to a Sink for one qualifying event.
type Alert struct {
	Event  *models.Event
	Reason string // which condition(s) fired, for observability
}

// Sink delivers one Alert to an external destination. Implementations must
// not block indefinitely; callers pass a context they expect to be honored.
type Sink interface {
	Name() string
	Fire(ctx context.Context, a Alert) error
}

// Emitter is the Alert Emitter (component K): it evaluates a batch of
// events against the firing conditions and forwards qualifying ones to
// every configured sink.
type Emitter struct {
	cfg   config.AlertingConfig
	sinks []Sink
}

// New builds an Emitter. sinks fire in the order given; a sink's failure is
// logged and does not prevent the remaining sinks from receiving the alert.
func New(cfg config.AlertingConfig, sinks ...Sink) *Emitter {
	return &Emitter{cfg: cfg, sinks: sinks}
}

// Evaluate fires alerts for every event in events meeting the thresholds in
// cfg, deduplicated by event id within this call (§4.K "per cycle"). It
// returns the number of events that fired at least one sink successfully.
func (e *Emitter) Evaluate(ctx context.Context, events []*models.Event) int {
	if !e.cfg.Enabled {
		return 0
	}

	seen := make(map[string]bool, len(events))
	fired := 0
	for _, ev := range events {
		if ev == nil || seen[ev.ID] {
			continue
		}
		reason, ok := shouldFire(ev, e.cfg)
		if !ok {
			continue
		}
		seen[ev.ID] = true
		if e.deliver(ctx, Alert{Event: ev, Reason: reason}) {
			fired++
		}
	}
	return fired
}

// shouldFire reports whether ev meets any of §4.K's firing conditions,
// returning the first matching reason for observability.
func shouldFire(ev *models.Event, cfg config.AlertingConfig) (string, bool) {
	if ev.Severity == models.SeverityHigh || ev.Severity == models.SeverityCritical {
		return "severity", true
	}
	if ev.EscalationScore >= escalationAlertThreshold {
		return "escalation_score", true
	}
	if cfg.MinEscalationScore > 0 && ev.EscalationScore >= cfg.MinEscalationScore {
		return "configured_escalation_threshold", true
	}
	if ev.Casualties.Killed != nil && *ev.Casualties.Killed > killedAlertThreshold {
		return "killed", true
	}
	if hasCBRNWeapon(ev.WeaponTypes) {
		return "cbrn_weapon", true
	}
	return "", false
}

func hasCBRNWeapon(weapons []string) bool {
	for _, w := range weapons {
		lower := strings.ToLower(w)
		for _, term := range cbrnWeaponTerms {
			if strings.Contains(lower, term) {
				return true
			}
		}
	}
	return false
}

// deliver fans an alert out to every sink, logging (not propagating)
// individual sink failures so one broken sink never blocks the others.
func (e *Emitter) deliver(ctx context.Context, a Alert) bool {
	delivered := false
	for _, sink := range e.sinks {
		if err := sink.Fire(ctx, a); err != nil {
			logging.Warn().Str("sink", sink.Name()).Str("event_id", a.Event.ID).Err(err).
				Msg("alert: sink delivery failed")
			metrics.AlertsFiredTotal.WithLabelValues(sink.Name() + "_error").Inc()
			continue
		}
		metrics.AlertsFiredTotal.WithLabelValues(sink.Name()).Inc()
		delivered = true
	}
	return delivered
}
