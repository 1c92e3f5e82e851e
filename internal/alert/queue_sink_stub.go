// Sentinel - OSINT Conflict Event Intelligence Pipeline
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fieldreport/sentinel

//go:build !nats

package alert

import (
	"context"
	"errors"

	"github.com/fieldreport/sentinel/internal/config"
)

// QueueSink is unavailable in builds without the nats tag.
type QueueSink struct{}

// NewQueueSink always fails outside a nats-tagged build; callers should
// fall back to LogSink/WebhookSink when cfg.NATS.Enabled is true but the
// binary was built without the nats tag.
func NewQueueSink(cfg config.NATSConfig) (*QueueSink, error) {
	return nil, errors.New("alert: queue sink requires building with -tags nats")
}

func (s *QueueSink) Name() string { return "queue" }

func (s *QueueSink) Fire(_ context.Context, _ Alert) error { return nil }
