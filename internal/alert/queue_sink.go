// Sentinel - OSINT Conflict Event Intelligence Pipeline
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fieldreport/sentinel

//go:build nats

package alert

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"
	"github.com/goccy/go-json"

	"github.com/fieldreport/sentinel/internal/config"
)

// QueueSink publishes alerts onto a Watermill/NATS JetStream topic,
// grounded on internal/eventprocessor's publisher wiring (NATS options,
// JetStream config) but narrowed to the single publish path an alert sink
// needs, independent of that package's media-event DLQ/router machinery.
type QueueSink struct {
	publisher message.Publisher
	topic     string
}

// NewQueueSink dials NATS and returns a QueueSink publishing to
// cfg.Stream. Returns an error if the connection cannot be established.
func NewQueueSink(cfg config.NATSConfig) (*QueueSink, error) {
	logger := watermill.NewStdLogger(false, false)

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL: cfg.URL,
		NatsOptions: []natsgo.Option{
			natsgo.RetryOnFailedConnect(true),
			natsgo.MaxReconnects(-1),
			natsgo.ReconnectWait(2 * time.Second),
		},
		Marshaler: &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			Disabled:      false,
			AutoProvision: false,
			TrackMsgId:    true,
		},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create nats publisher: %w", err)
	}

	return &QueueSink{publisher: pub, topic: cfg.Stream + ".alerts"}, nil
}

func (s *QueueSink) Name() string { return "queue" }

func (s *QueueSink) Fire(_ context.Context, a Alert) error {
	payload := webhookPayload{
		EventID:         a.Event.ID,
		Reason:          a.Reason,
		Severity:        string(a.Event.Severity),
		EscalationScore: a.Event.EscalationScore,
		Headline:        a.Event.EnhancedHeadline,
		EventType:       string(a.Event.EventType),
		Timestamp:       a.Event.Timestamp.Format(time.RFC3339),
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal alert payload: %w", err)
	}

	msg := message.NewMessage(a.Event.ID, data)
	msg.Metadata.Set(natsgo.MsgIdHdr, a.Event.ID)
	return s.publisher.Publish(s.topic, msg)
}

// Close releases the underlying NATS connection.
func (s *QueueSink) Close() error {
	return s.publisher.Close()
}
