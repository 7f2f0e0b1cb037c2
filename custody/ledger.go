// The Licensed Work is (c) 2022 Sygma
// SPDX-License-Identifier: LGPL-3.0-only

package custody

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

type wrappedKey struct {
	nativeAsset   common.Address
	nativeChainID uint64
}

// Ledger is an in-memory TokenCustody used by tests and devnet mode.
// Production deployments plug the real custody adapter in behind the
// TokenCustody interface instead.
type Ledger struct {
	mu       sync.Mutex
	balances map[common.Address]map[common.Address]*big.Int
	locked   map[common.Address]*big.Int
	wrapped  map[wrappedKey]common.Address
}

func NewLedger() *Ledger {
	return &Ledger{
		balances: make(map[common.Address]map[common.Address]*big.Int),
		locked:   make(map[common.Address]*big.Int),
		wrapped:  make(map[wrappedKey]common.Address),
	}
}

// Credit funds an account. Test and devnet setup helper.
func (l *Ledger) Credit(asset common.Address, to common.Address, amount *big.Int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.add(asset, to, amount)
}

func (l *Ledger) Balance(asset common.Address, holder common.Address) *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return new(big.Int).Set(l.balance(asset, holder))
}

// LockedBalance returns the total amount of the asset held in custody.
func (l *Ledger) LockedBalance(asset common.Address) *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()

	locked, ok := l.locked[asset]
	if !ok {
		return new(big.Int)
	}
	return new(big.Int).Set(locked)
}

func (l *Ledger) Lock(_ context.Context, asset common.Address, amount *big.Int, from common.Address) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.sub(asset, from, amount); err != nil {
		return err
	}

	locked, ok := l.locked[asset]
	if !ok {
		locked = new(big.Int)
		l.locked[asset] = locked
	}
	locked.Add(locked, amount)
	return nil
}

func (l *Ledger) ReleaseLocked(_ context.Context, asset common.Address, amount *big.Int, to common.Address) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	locked, ok := l.locked[asset]
	if !ok || locked.Cmp(amount) < 0 {
		return fmt.Errorf("insufficient locked balance for asset %s", asset.Hex())
	}

	locked.Sub(locked, amount)
	l.add(asset, to, amount)
	return nil
}

func (l *Ledger) BurnWrapped(_ context.Context, asset common.Address, amount *big.Int, from common.Address) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.sub(asset, from, amount)
}

func (l *Ledger) MintWrapped(_ context.Context, asset common.Address, amount *big.Int, to common.Address) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.add(asset, to, amount)
	return nil
}

func (l *Ledger) WrappedExists(nativeAsset common.Address, nativeChainID uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, ok := l.wrapped[wrappedKey{nativeAsset, nativeChainID}]
	return ok
}

func (l *Ledger) CreateWrapped(_ context.Context, nativeAsset common.Address, nativeChainID uint64, metadata WrappedMetadata) (common.Address, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := wrappedKey{nativeAsset, nativeChainID}
	if existing, ok := l.wrapped[key]; ok {
		return existing, fmt.Errorf("wrapped asset for %s on chain %d already exists", nativeAsset.Hex(), nativeChainID)
	}

	id := crypto.Keccak256(
		nativeAsset.Bytes(),
		new(big.Int).SetUint64(nativeChainID).Bytes(),
		[]byte(metadata.Symbol),
	)
	address := common.BytesToAddress(id[12:])
	l.wrapped[key] = address
	return address, nil
}

func (l *Ledger) balance(asset common.Address, holder common.Address) *big.Int {
	holders, ok := l.balances[asset]
	if !ok {
		return new(big.Int)
	}
	balance, ok := holders[holder]
	if !ok {
		return new(big.Int)
	}
	return balance
}

func (l *Ledger) add(asset common.Address, holder common.Address, amount *big.Int) {
	holders, ok := l.balances[asset]
	if !ok {
		holders = make(map[common.Address]*big.Int)
		l.balances[asset] = holders
	}
	balance, ok := holders[holder]
	if !ok {
		balance = new(big.Int)
		holders[holder] = balance
	}
	balance.Add(balance, amount)
}

func (l *Ledger) sub(asset common.Address, holder common.Address, amount *big.Int) error {
	balance := l.balance(asset, holder)
	if balance.Cmp(amount) < 0 {
		return fmt.Errorf("insufficient balance of %s for %s", asset.Hex(), holder.Hex())
	}
	balance.Sub(balance, amount)
	return nil
}
