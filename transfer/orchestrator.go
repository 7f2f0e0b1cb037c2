// The Licensed Work is (c) 2022 Sygma
// SPDX-License-Identifier: LGPL-3.0-only

package transfer

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/rs/zerolog/log"

	"github.com/sprintertech/sprinter-bridge/auth"
	"github.com/sprintertech/sprinter-bridge/custody"
	"github.com/sprintertech/sprinter-bridge/events"
	"github.com/sprintertech/sprinter-bridge/metrics"
	"github.com/sprintertech/sprinter-bridge/ratelimit"
	"github.com/sprintertech/sprinter-bridge/store"
	"github.com/sprintertech/sprinter-bridge/types"
)

type ChainRegistry interface {
	LocalChainID() uint64
	IsSupported(id uint64) bool
	IsAuthorized(chainID uint64, relayer common.Address) bool
}

type RateLimiter interface {
	Reserve(asset common.Address, user common.Address, amount *big.Int, now time.Time) error
	Refund(asset common.Address, user common.Address, amount *big.Int, now time.Time)
	MaxTransferAmount(asset common.Address) *big.Int
}

type FeePolicy interface {
	Fee(amount *big.Int) *big.Int
	Sink() common.Address
}

type ReplayGuard interface {
	Lock(id common.Hash) func()
	IsProcessed(id common.Hash) (bool, error)
	MarkProcessed(id common.Hash) error
}

// AssetConfig routes an asset to the right custody mutation: wrapped
// assets are burned locally and released on their native chain, native
// assets are locked locally and minted as wrapped remotely.
type AssetConfig struct {
	Symbol        string
	Wrapped       bool
	NativeChainID uint64
}

// Orchestrator drives the lock/burn -> pending -> release/mint state
// machine for cross-chain asset movement.
type Orchestrator struct {
	chains  ChainRegistry
	limiter RateLimiter
	fees    FeePolicy
	custody custody.TokenCustody
	auth    auth.Authenticator
	replay  ReplayGuard

	transfers *store.TransferStore
	nonces    *store.NonceStore

	assetsMu sync.RWMutex
	assets   map[common.Address]AssetConfig

	caps auth.CapabilityChecker
	salt [32]byte
	now  func() time.Time

	metrics *metrics.BridgeMetrics
	events  *events.Publisher
}

func NewOrchestrator(
	chains ChainRegistry,
	limiter RateLimiter,
	fees FeePolicy,
	tokenCustody custody.TokenCustody,
	authenticator auth.Authenticator,
	replayGuard ReplayGuard,
	transfers *store.TransferStore,
	nonces *store.NonceStore,
	assets map[common.Address]AssetConfig,
	caps auth.CapabilityChecker,
	bridgeMetrics *metrics.BridgeMetrics,
	publisher *events.Publisher,
) (*Orchestrator, error) {
	if assets == nil {
		assets = make(map[common.Address]AssetConfig)
	}

	o := &Orchestrator{
		chains:    chains,
		limiter:   limiter,
		fees:      fees,
		custody:   tokenCustody,
		auth:      authenticator,
		replay:    replayGuard,
		transfers: transfers,
		nonces:    nonces,
		assets:    assets,
		caps:      caps,
		now:       time.Now,
		metrics:   bridgeMetrics,
		events:    publisher,
	}
	if _, err := rand.Read(o.salt[:]); err != nil {
		return nil, err
	}
	return o, nil
}

// InitiateTransfer locks native funds or burns wrapped funds for transport
// to the destination chain and returns the transfer ID a relayer proof
// must reference. No custody mutation happens unless all three rate-limit
// scopes accept the amount.
func (o *Orchestrator) InitiateTransfer(
	ctx context.Context,
	sender common.Address,
	recipient common.Address,
	asset common.Address,
	amount *big.Int,
	destination uint64,
) (common.Hash, error) {
	if sender == (common.Address{}) {
		return common.Hash{}, &types.ValidationError{Field: "sender", Reason: "zero address"}
	}
	if recipient == (common.Address{}) {
		return common.Hash{}, &types.ValidationError{Field: "recipient", Reason: "zero address"}
	}
	if amount == nil || amount.Sign() <= 0 {
		return common.Hash{}, &types.ValidationError{Field: "amount", Reason: "must be positive"}
	}
	if !o.chains.IsSupported(destination) {
		return common.Hash{}, &types.ValidationError{Field: "destinationChainId", Reason: "chain not supported"}
	}
	assetConfig, ok := o.assetConfig(asset)
	if !ok {
		return common.Hash{}, &types.ValidationError{Field: "asset", Reason: "asset not configured"}
	}
	if max := o.limiter.MaxTransferAmount(asset); max != nil && amount.Cmp(max) > 0 {
		return common.Hash{}, &types.ValidationError{Field: "amount", Reason: "exceeds max transfer amount"}
	}

	now := o.now()
	if err := o.limiter.Reserve(asset, sender, amount, now); err != nil {
		o.trackRateLimit(ctx, err)
		return common.Hash{}, err
	}

	fee := o.fees.Fee(amount)
	net := new(big.Int).Sub(amount, fee)

	nonce, err := o.nonces.Next()
	if err != nil {
		o.limiter.Refund(asset, sender, amount, now)
		return common.Hash{}, err
	}
	id := o.transferID(sender, recipient, asset, amount, destination, nonce)

	if err := o.moveOut(ctx, assetConfig, asset, net, fee, sender); err != nil {
		o.limiter.Refund(asset, sender, amount, now)
		return common.Hash{}, err
	}

	record := &types.TransferRecord{
		ID:          id,
		Sender:      sender,
		Recipient:   recipient,
		Asset:       asset,
		Amount:      amount,
		Fee:         fee,
		Source:      o.chains.LocalChainID(),
		Destination: destination,
		Status:      types.TransferStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := o.transfers.StoreTransfer(record); err != nil {
		return common.Hash{}, err
	}

	o.metrics.TrackTransferInitiated(ctx)
	o.events.Publish(events.TransferInitiated, map[string]string{
		"id":          id.Hex(),
		"sender":      sender.Hex(),
		"asset":       asset.Hex(),
		"amount":      amount.String(),
		"destination": chainString(destination),
	})
	return id, nil
}

// CompleteTransfer settles an inbound transfer against a relayer proof.
// The replay mark and the custody mutation form one unit: a custody
// failure leaves the ID unmarked so the transfer stays retryable.
func (o *Orchestrator) CompleteTransfer(ctx context.Context, claim *auth.TransferClaim, proof []byte) error {
	if claim == nil {
		return &types.ValidationError{Field: "claim", Reason: "missing"}
	}
	if claim.Amount == nil || claim.Amount.Sign() <= 0 {
		return &types.ValidationError{Field: "claim.amount", Reason: "must be positive"}
	}

	unlock := o.replay.Lock(claim.TransferID)
	defer unlock()

	processed, err := o.replay.IsProcessed(claim.TransferID)
	if err != nil {
		return err
	}
	if processed {
		o.metrics.TrackReplayRejection(ctx)
		log.Warn().Str("id", claim.TransferID.Hex()).Msg("Rejected already processed transfer")
		return &types.ReplayError{ID: claim.TransferID}
	}

	signer, err := o.auth.Verify(claim, proof)
	if err != nil {
		o.metrics.TrackAuthRejection(ctx)
		return err
	}
	if !o.chains.IsAuthorized(claim.Source, signer) {
		o.metrics.TrackAuthRejection(ctx)
		log.Warn().
			Str("signer", signer.Hex()).
			Uint64("source", claim.Source).
			Msg("Rejected proof from untrusted signer")
		return &types.AuthorizationError{Reason: "signer not authorized for source chain", Signer: signer}
	}

	if claim.Destination != o.chains.LocalChainID() {
		return &types.ValidationError{Field: "claim.destinationChainId", Reason: "not the local chain"}
	}
	if !o.chains.IsSupported(claim.Source) {
		return &types.ValidationError{Field: "claim.sourceChainId", Reason: "chain not supported"}
	}
	assetConfig, ok := o.assetConfig(claim.Asset)
	if !ok {
		return &types.ValidationError{Field: "claim.asset", Reason: "asset not configured"}
	}
	if max := o.limiter.MaxTransferAmount(claim.Asset); max != nil && claim.Amount.Cmp(max) > 0 {
		return &types.ValidationError{Field: "claim.amount", Reason: "exceeds max transfer amount"}
	}

	if err := o.moveIn(ctx, assetConfig, claim.Asset, claim.Amount, claim.Recipient); err != nil {
		return err
	}
	if err := o.replay.MarkProcessed(claim.TransferID); err != nil {
		return err
	}

	now := o.now()
	record := &types.TransferRecord{
		ID:          claim.TransferID,
		Sender:      claim.Sender,
		Recipient:   claim.Recipient,
		Asset:       claim.Asset,
		Amount:      claim.Amount,
		Fee:         new(big.Int),
		Source:      claim.Source,
		Destination: claim.Destination,
		Status:      types.TransferStatusCompleted,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := o.transfers.StoreTransfer(record); err != nil {
		return err
	}

	o.metrics.TrackTransferCompleted(ctx)
	o.events.Publish(events.TransferCompleted, map[string]string{
		"id":        claim.TransferID.Hex(),
		"recipient": claim.Recipient.Hex(),
		"asset":     claim.Asset.Hex(),
		"amount":    claim.Amount.String(),
		"source":    chainString(claim.Source),
		"relayer":   signer.Hex(),
	})
	return nil
}

// Transfer returns the stored record for the ID.
func (o *Orchestrator) Transfer(id common.Hash) (*types.TransferRecord, error) {
	return o.transfers.Transfer(id)
}

// TransferStatus returns TransferStatusNone for unknown IDs.
func (o *Orchestrator) TransferStatus(id common.Hash) (types.TransferStatus, error) {
	return o.transfers.TransferStatus(id)
}

// EnsureWrappedAsset provisions the wrapped representation of a remote
// native asset and registers it for custody routing. Admin-gated.
func (o *Orchestrator) EnsureWrappedAsset(
	ctx context.Context,
	caller common.Address,
	nativeAsset common.Address,
	nativeChainID uint64,
	metadata custody.WrappedMetadata,
) (common.Address, error) {
	if !o.caps.HasCapability(caller, auth.ActionManageAssets) {
		return common.Address{}, &types.AuthorizationError{Reason: "missing capability " + string(auth.ActionManageAssets), Signer: caller}
	}
	if !o.chains.IsSupported(nativeChainID) {
		return common.Address{}, &types.ValidationError{Field: "nativeChainId", Reason: "chain not supported"}
	}

	if o.custody.WrappedExists(nativeAsset, nativeChainID) {
		return common.Address{}, &types.ValidationError{Field: "nativeAsset", Reason: "wrapped asset already exists"}
	}

	wrapped, err := o.custody.CreateWrapped(ctx, nativeAsset, nativeChainID, metadata)
	if err != nil {
		return common.Address{}, &types.CustodyError{Op: "create wrapped", Err: err}
	}

	o.assetsMu.Lock()
	o.assets[wrapped] = AssetConfig{
		Symbol:        metadata.Symbol,
		Wrapped:       true,
		NativeChainID: nativeChainID,
	}
	o.assetsMu.Unlock()

	o.events.Publish(events.WrappedAssetCreated, map[string]string{
		"nativeAsset":   nativeAsset.Hex(),
		"nativeChainId": chainString(nativeChainID),
		"wrapped":       wrapped.Hex(),
		"caller":        caller.Hex(),
	})
	return wrapped, nil
}

// moveOut performs the outbound custody mutation: burn for wrapped assets,
// lock for native ones, with the fee portion routed to the sink.
func (o *Orchestrator) moveOut(ctx context.Context, cfg AssetConfig, asset common.Address, net *big.Int, fee *big.Int, sender common.Address) error {
	if cfg.Wrapped {
		if err := o.custody.BurnWrapped(ctx, asset, net, sender); err != nil {
			return &types.CustodyError{Op: "burn", Err: err}
		}
	} else {
		if err := o.custody.Lock(ctx, asset, net, sender); err != nil {
			return &types.CustodyError{Op: "lock", Err: err}
		}
	}

	if fee.Sign() > 0 {
		if err := o.custody.Lock(ctx, asset, fee, sender); err != nil {
			return &types.CustodyError{Op: "fee lock", Err: err}
		}
		if err := o.custody.ReleaseLocked(ctx, asset, fee, o.fees.Sink()); err != nil {
			return &types.CustodyError{Op: "fee payout", Err: err}
		}
	}
	return nil
}

// moveIn performs the inbound custody mutation: mint for wrapped assets,
// release for native ones.
func (o *Orchestrator) moveIn(ctx context.Context, cfg AssetConfig, asset common.Address, amount *big.Int, recipient common.Address) error {
	if cfg.Wrapped {
		if err := o.custody.MintWrapped(ctx, asset, amount, recipient); err != nil {
			return &types.CustodyError{Op: "mint", Err: err}
		}
		return nil
	}
	if err := o.custody.ReleaseLocked(ctx, asset, amount, recipient); err != nil {
		return &types.CustodyError{Op: "release", Err: err}
	}
	return nil
}

func (o *Orchestrator) assetConfig(asset common.Address) (AssetConfig, bool) {
	o.assetsMu.RLock()
	defer o.assetsMu.RUnlock()

	cfg, ok := o.assets[asset]
	return cfg, ok
}

// transferID derives a fresh identifier from the transfer content, a
// persisted monotonic nonce and a process-local random salt, keeping IDs
// unique and unpredictable without any block-producing environment.
func (o *Orchestrator) transferID(sender, recipient, asset common.Address, amount *big.Int, destination uint64, nonce uint64) common.Hash {
	var dst [8]byte
	binary.BigEndian.PutUint64(dst[:], destination)
	content := crypto.Keccak256(
		sender.Bytes(),
		recipient.Bytes(),
		asset.Bytes(),
		common.BigToHash(amount).Bytes(),
		dst[:],
	)

	var n [8]byte
	binary.BigEndian.PutUint64(n[:], nonce)
	return common.BytesToHash(crypto.Keccak256(content, n[:], o.salt[:]))
}

func (o *Orchestrator) trackRateLimit(ctx context.Context, err error) {
	var rateErr *types.RateLimitError
	if errors.As(err, &rateErr) {
		o.metrics.TrackRateLimitRejection(ctx, rateErr.Scope)
		return
	}
	var cooldownErr *types.CooldownError
	if errors.As(err, &cooldownErr) {
		o.metrics.TrackRateLimitRejection(ctx, ratelimit.ScopeUser)
	}
}

func chainString(id uint64) string {
	return new(big.Int).SetUint64(id).String()
}
