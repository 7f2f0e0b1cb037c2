// The Licensed Work is (c) 2022 Sygma
// SPDX-License-Identifier: LGPL-3.0-only

package metrics

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// BridgeMetrics tracks the transfer and message lifecycle plus the
// rejection classes that matter for alerting: rate limiting, replays and
// authorization failures.
type BridgeMetrics struct {
	transfersInitiated  metric.Int64Counter
	transfersCompleted  metric.Int64Counter
	messagesSent        metric.Int64Counter
	messagesDelivered   metric.Int64Counter
	deliveryFailures    metric.Int64Counter
	rateLimitRejections metric.Int64Counter
	replayRejections    metric.Int64Counter
	authRejections      metric.Int64Counter

	opts metric.MeasurementOption
}

func NewBridgeMetrics(meter metric.Meter, env string, instanceID string) (*BridgeMetrics, error) {
	opts := metric.WithAttributes(
		attribute.String("env", env),
		attribute.String("instance", instanceID),
	)

	transfersInitiated, err := meter.Int64Counter(
		"bridge.TransfersInitiated",
		metric.WithDescription("Transfers locked or burned on the local chain"))
	if err != nil {
		return nil, err
	}
	transfersCompleted, err := meter.Int64Counter(
		"bridge.TransfersCompleted",
		metric.WithDescription("Transfers released or minted on the local chain"))
	if err != nil {
		return nil, err
	}
	messagesSent, err := meter.Int64Counter("bridge.MessagesSent")
	if err != nil {
		return nil, err
	}
	messagesDelivered, err := meter.Int64Counter("bridge.MessagesDelivered")
	if err != nil {
		return nil, err
	}
	deliveryFailures, err := meter.Int64Counter(
		"bridge.MessageDeliveryFailures",
		metric.WithDescription("Authenticated messages whose recipient handler failed"))
	if err != nil {
		return nil, err
	}
	rateLimitRejections, err := meter.Int64Counter("bridge.RateLimitRejections")
	if err != nil {
		return nil, err
	}
	replayRejections, err := meter.Int64Counter(
		"bridge.ReplayRejections",
		metric.WithDescription("Identifiers rejected as already processed"))
	if err != nil {
		return nil, err
	}
	authRejections, err := meter.Int64Counter(
		"bridge.AuthorizationRejections",
		metric.WithDescription("Proofs rejected as malformed or from untrusted signers"))
	if err != nil {
		return nil, err
	}

	return &BridgeMetrics{
		transfersInitiated:  transfersInitiated,
		transfersCompleted:  transfersCompleted,
		messagesSent:        messagesSent,
		messagesDelivered:   messagesDelivered,
		deliveryFailures:    deliveryFailures,
		rateLimitRejections: rateLimitRejections,
		replayRejections:    replayRejections,
		authRejections:      authRejections,
		opts:                opts,
	}, nil
}

func (m *BridgeMetrics) TrackTransferInitiated(ctx context.Context) {
	m.transfersInitiated.Add(ctx, 1, m.opts)
}

func (m *BridgeMetrics) TrackTransferCompleted(ctx context.Context) {
	m.transfersCompleted.Add(ctx, 1, m.opts)
}

func (m *BridgeMetrics) TrackMessageSent(ctx context.Context) {
	m.messagesSent.Add(ctx, 1, m.opts)
}

func (m *BridgeMetrics) TrackMessageDelivered(ctx context.Context) {
	m.messagesDelivered.Add(ctx, 1, m.opts)
}

func (m *BridgeMetrics) TrackDeliveryFailure(ctx context.Context) {
	m.deliveryFailures.Add(ctx, 1, m.opts)
}

func (m *BridgeMetrics) TrackRateLimitRejection(ctx context.Context, scope string) {
	m.rateLimitRejections.Add(ctx, 1, m.opts, metric.WithAttributes(attribute.String("scope", scope)))
}

func (m *BridgeMetrics) TrackReplayRejection(ctx context.Context) {
	m.replayRejections.Add(ctx, 1, m.opts)
}

func (m *BridgeMetrics) TrackAuthRejection(ctx context.Context) {
	m.authRejections.Add(ctx, 1, m.opts)
}
