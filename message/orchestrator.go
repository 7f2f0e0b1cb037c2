// The Licensed Work is (c) 2022 Sygma
// SPDX-License-Identifier: LGPL-3.0-only

package message

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/rs/zerolog/log"

	"github.com/sprintertech/sprinter-bridge/auth"
	"github.com/sprintertech/sprinter-bridge/events"
	"github.com/sprintertech/sprinter-bridge/metrics"
	"github.com/sprintertech/sprinter-bridge/store"
	"github.com/sprintertech/sprinter-bridge/types"
)

// DefaultMaxPayloadSize bounds relayed payloads at 64 KiB.
const DefaultMaxPayloadSize = 64 * 1024

type ChainRegistry interface {
	LocalChainID() uint64
	IsSupported(id uint64) bool
	IsAuthorized(chainID uint64, relayer common.Address) bool
}

type ReplayGuard interface {
	Lock(id common.Hash) func()
	IsProcessed(id common.Hash) (bool, error)
	MarkProcessed(id common.Hash) error
}

// Handler receives payloads addressed to a local recipient. Handlers are
// untrusted: a failure is recorded, never propagated.
type Handler interface {
	OnMessageReceived(ctx context.Context, sourceChainID uint64, sourceAddress common.Address, payload []byte) error
}

// Orchestrator drives the send -> pending -> deliver/fail state machine
// for arbitrary payload relay.
type Orchestrator struct {
	chains ChainRegistry
	auth   auth.Authenticator
	replay ReplayGuard

	messages *store.MessageStore
	nonces   *store.NonceStore

	maxPayloadSize int

	handlersMu sync.RWMutex
	handlers   map[common.Address]Handler

	salt [32]byte
	now  func() time.Time

	metrics *metrics.BridgeMetrics
	events  *events.Publisher
}

func NewOrchestrator(
	chains ChainRegistry,
	authenticator auth.Authenticator,
	replayGuard ReplayGuard,
	messages *store.MessageStore,
	nonces *store.NonceStore,
	maxPayloadSize int,
	bridgeMetrics *metrics.BridgeMetrics,
	publisher *events.Publisher,
) (*Orchestrator, error) {
	if maxPayloadSize <= 0 {
		maxPayloadSize = DefaultMaxPayloadSize
	}

	o := &Orchestrator{
		chains:         chains,
		auth:           authenticator,
		replay:         replayGuard,
		messages:       messages,
		nonces:         nonces,
		maxPayloadSize: maxPayloadSize,
		handlers:       make(map[common.Address]Handler),
		now:            time.Now,
		metrics:        bridgeMetrics,
		events:         publisher,
	}
	if _, err := rand.Read(o.salt[:]); err != nil {
		return nil, err
	}
	return o, nil
}

// RegisterHandler routes inbound payloads addressed to recipient to h.
func (o *Orchestrator) RegisterHandler(recipient common.Address, h Handler) {
	o.handlersMu.Lock()
	defer o.handlersMu.Unlock()

	o.handlers[recipient] = h
}

// SendMessage records an outbound payload for relay to the destination
// chain and returns its message ID.
func (o *Orchestrator) SendMessage(
	ctx context.Context,
	sender common.Address,
	recipient common.Address,
	payload []byte,
	destination uint64,
) (common.Hash, error) {
	if sender == (common.Address{}) {
		return common.Hash{}, &types.ValidationError{Field: "sender", Reason: "zero address"}
	}
	if recipient == (common.Address{}) {
		return common.Hash{}, &types.ValidationError{Field: "recipient", Reason: "zero address"}
	}
	if err := o.validatePayload(payload); err != nil {
		return common.Hash{}, err
	}
	if !o.chains.IsSupported(destination) {
		return common.Hash{}, &types.ValidationError{Field: "destinationChainId", Reason: "chain not supported"}
	}

	nonce, err := o.nonces.Next()
	if err != nil {
		return common.Hash{}, err
	}
	id := o.messageID(sender, recipient, payload, destination, nonce)

	now := o.now()
	record := &types.MessageRecord{
		ID:          id,
		Sender:      sender,
		Recipient:   recipient,
		Payload:     payload,
		Source:      o.chains.LocalChainID(),
		Destination: destination,
		Status:      types.MessageStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := o.messages.StoreMessage(record); err != nil {
		return common.Hash{}, err
	}

	o.metrics.TrackMessageSent(ctx)
	o.events.Publish(events.MessageSent, map[string]string{
		"id":          id.Hex(),
		"sender":      sender.Hex(),
		"recipient":   recipient.Hex(),
		"destination": fmt.Sprintf("%d", destination),
	})
	return id, nil
}

// ReceiveMessage validates an inbound payload against a relayer proof and
// forwards it to the recipient handler. The ID is marked processed before
// delivery is attempted: the authenticated receipt must not be replayable
// regardless of what the untrusted handler does. The returned bool
// reports delivery success; a handler failure is not an error.
func (o *Orchestrator) ReceiveMessage(ctx context.Context, claim *auth.MessageClaim, payload []byte, proof []byte) (bool, error) {
	if claim == nil {
		return false, &types.ValidationError{Field: "claim", Reason: "missing"}
	}
	if err := o.validatePayload(payload); err != nil {
		return false, err
	}
	if common.BytesToHash(crypto.Keccak256(payload)) != claim.PayloadHash {
		return false, &types.ValidationError{Field: "payload", Reason: "hash does not match claim"}
	}
	if claim.Destination != o.chains.LocalChainID() {
		return false, &types.ValidationError{Field: "claim.destinationChainId", Reason: "not the local chain"}
	}
	if !o.chains.IsSupported(claim.Source) {
		return false, &types.ValidationError{Field: "claim.sourceChainId", Reason: "chain not supported"}
	}

	signer, err := o.auth.Verify(claim, proof)
	if err != nil {
		o.metrics.TrackAuthRejection(ctx)
		return false, err
	}
	if !o.chains.IsAuthorized(claim.Source, signer) {
		o.metrics.TrackAuthRejection(ctx)
		log.Warn().
			Str("signer", signer.Hex()).
			Uint64("source", claim.Source).
			Msg("Rejected message proof from untrusted signer")
		return false, &types.AuthorizationError{Reason: "signer not authorized for source chain", Signer: signer}
	}

	unlock := o.replay.Lock(claim.MessageID)
	defer unlock()

	processed, err := o.replay.IsProcessed(claim.MessageID)
	if err != nil {
		return false, err
	}
	if processed {
		o.metrics.TrackReplayRejection(ctx)
		log.Warn().Str("id", claim.MessageID.Hex()).Msg("Rejected already processed message")
		return false, &types.ReplayError{ID: claim.MessageID}
	}
	if err := o.replay.MarkProcessed(claim.MessageID); err != nil {
		return false, err
	}

	delivered := o.deliver(ctx, claim, payload)

	now := o.now()
	status := types.MessageStatusDelivered
	if !delivered {
		status = types.MessageStatusFailed
	}
	record := &types.MessageRecord{
		ID:          claim.MessageID,
		Sender:      claim.Sender,
		Recipient:   claim.Recipient,
		Payload:     payload,
		Source:      claim.Source,
		Destination: claim.Destination,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := o.messages.StoreMessage(record); err != nil {
		return delivered, err
	}

	if delivered {
		o.metrics.TrackMessageDelivered(ctx)
		o.events.Publish(events.MessageDelivered, map[string]string{
			"id":      claim.MessageID.Hex(),
			"relayer": signer.Hex(),
		})
	} else {
		o.metrics.TrackDeliveryFailure(ctx)
		o.events.Publish(events.MessageDeliveryFailed, map[string]string{
			"id":      claim.MessageID.Hex(),
			"relayer": signer.Hex(),
		})
	}
	return delivered, nil
}

// Message returns the stored record for the ID.
func (o *Orchestrator) Message(id common.Hash) (*types.MessageRecord, error) {
	return o.messages.Message(id)
}

// MessageStatus returns MessageStatusNone for unknown IDs.
func (o *Orchestrator) MessageStatus(id common.Hash) (types.MessageStatus, error) {
	return o.messages.MessageStatus(id)
}

func (o *Orchestrator) deliver(ctx context.Context, claim *auth.MessageClaim, payload []byte) bool {
	o.handlersMu.RLock()
	h, ok := o.handlers[claim.Recipient]
	o.handlersMu.RUnlock()
	if !ok {
		log.Warn().
			Str("id", claim.MessageID.Hex()).
			Str("recipient", claim.Recipient.Hex()).
			Msg("No handler registered for message recipient")
		return false
	}

	if err := h.OnMessageReceived(ctx, claim.Source, claim.Sender, payload); err != nil {
		log.Warn().
			Str("id", claim.MessageID.Hex()).
			Str("recipient", claim.Recipient.Hex()).
			Msgf("Message handler failed: %s", err)
		return false
	}
	return true
}

func (o *Orchestrator) validatePayload(payload []byte) error {
	if len(payload) == 0 {
		return &types.ValidationError{Field: "payload", Reason: "empty"}
	}
	if len(payload) > o.maxPayloadSize {
		return &types.ValidationError{
			Field:  "payload",
			Reason: fmt.Sprintf("exceeds maximum size of %d bytes", o.maxPayloadSize),
		}
	}
	return nil
}

func (o *Orchestrator) messageID(sender, recipient common.Address, payload []byte, destination uint64, nonce uint64) common.Hash {
	var dst [8]byte
	binary.BigEndian.PutUint64(dst[:], destination)
	content := crypto.Keccak256(
		sender.Bytes(),
		recipient.Bytes(),
		crypto.Keccak256(payload),
		dst[:],
	)

	var n [8]byte
	binary.BigEndian.PutUint64(n[:], nonce)
	return common.BytesToHash(crypto.Keccak256(content, n[:], o.salt[:]))
}
