// The Licensed Work is (c) 2022 Sygma
// SPDX-License-Identifier: LGPL-3.0-only

package events

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

type Type string

const (
	ChainAdded        Type = "ChainAdded"
	ChainRemoved      Type = "ChainRemoved"
	RelayerAuthorized Type = "RelayerAuthorized"
	RelayerRevoked    Type = "RelayerRevoked"

	FeeRateChanged Type = "FeeRateChanged"
	FeeSinkChanged Type = "FeeSinkChanged"

	GlobalLimitChanged Type = "GlobalLimitChanged"
	AssetLimitChanged  Type = "AssetLimitChanged"
	UserLimitsChanged  Type = "UserLimitsChanged"
	UserLimitsRemoved  Type = "UserLimitsRemoved"

	TransferInitiated Type = "TransferInitiated"
	TransferCompleted Type = "TransferCompleted"

	MessageSent           Type = "MessageSent"
	MessageDelivered      Type = "MessageDelivered"
	MessageDeliveryFailed Type = "MessageDeliveryFailed"

	WrappedAssetCreated Type = "WrappedAssetCreated"
)

// Event is an auditable record of a state change in the bridge core.
type Event struct {
	Type       Type
	At         time.Time
	Attributes map[string]string
}

// Publisher fans audit events out to subscribers and the log. A nil
// Publisher is valid and drops all events.
type Publisher struct {
	mu   sync.RWMutex
	subs []chan Event
}

func NewPublisher() *Publisher {
	return &Publisher{}
}

// Subscribe returns a channel receiving all future events. Events are
// dropped for subscribers that fall behind the buffer.
func (p *Publisher) Subscribe(buffer int) <-chan Event {
	p.mu.Lock()
	defer p.mu.Unlock()

	ch := make(chan Event, buffer)
	p.subs = append(p.subs, ch)
	return ch
}

func (p *Publisher) Publish(t Type, attrs map[string]string) {
	if p == nil {
		return
	}

	e := Event{
		Type:       t,
		At:         time.Now(),
		Attributes: attrs,
	}
	log.Info().Str("event", string(t)).Fields(toFields(attrs)).Msg("Bridge event")

	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, sub := range p.subs {
		select {
		case sub <- e:
		default:
			log.Warn().Str("event", string(t)).Msg("Dropped event for slow subscriber")
		}
	}
}

func toFields(attrs map[string]string) map[string]interface{} {
	fields := make(map[string]interface{}, len(attrs))
	for k, v := range attrs {
		fields[k] = v
	}
	return fields
}
