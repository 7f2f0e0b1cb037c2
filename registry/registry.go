// The Licensed Work is (c) 2022 Sygma
// SPDX-License-Identifier: LGPL-3.0-only

package registry

import (
	"sort"
	"strconv"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/sprintertech/sprinter-bridge/auth"
	"github.com/sprintertech/sprinter-bridge/events"
	"github.com/sprintertech/sprinter-bridge/types"
)

// ChainRegistry tracks which remote chains are supported and which relayer
// identities are authorized per chain. Mutations are admin-gated and
// visible to readers as soon as they commit; authorization decisions are
// never served from a cache.
type ChainRegistry struct {
	localID uint64

	mu       sync.RWMutex
	chains   map[uint64]struct{}
	relayers map[uint64]map[common.Address]struct{}

	caps   auth.CapabilityChecker
	events *events.Publisher
}

func NewChainRegistry(localID uint64, caps auth.CapabilityChecker, publisher *events.Publisher) *ChainRegistry {
	return &ChainRegistry{
		localID:  localID,
		chains:   make(map[uint64]struct{}),
		relayers: make(map[uint64]map[common.Address]struct{}),
		caps:     caps,
		events:   publisher,
	}
}

func (r *ChainRegistry) LocalChainID() uint64 {
	return r.localID
}

func (r *ChainRegistry) AddChain(caller common.Address, id uint64) error {
	if !r.caps.HasCapability(caller, auth.ActionManageChains) {
		return &types.AuthorizationError{Reason: "missing capability " + string(auth.ActionManageChains), Signer: caller}
	}
	if id == r.localID {
		return &types.ValidationError{Field: "chainId", Reason: "local chain cannot be a remote target"}
	}

	r.mu.Lock()
	if _, ok := r.chains[id]; ok {
		r.mu.Unlock()
		return &types.ChainAlreadySupportedError{ChainID: id}
	}
	r.chains[id] = struct{}{}
	r.mu.Unlock()

	r.events.Publish(events.ChainAdded, map[string]string{
		"chainId": chainString(id),
		"caller":  caller.Hex(),
	})
	return nil
}

func (r *ChainRegistry) RemoveChain(caller common.Address, id uint64) error {
	if !r.caps.HasCapability(caller, auth.ActionManageChains) {
		return &types.AuthorizationError{Reason: "missing capability " + string(auth.ActionManageChains), Signer: caller}
	}

	r.mu.Lock()
	if _, ok := r.chains[id]; !ok {
		r.mu.Unlock()
		return &types.ChainNotFoundError{ChainID: id}
	}
	delete(r.chains, id)
	r.mu.Unlock()

	r.events.Publish(events.ChainRemoved, map[string]string{
		"chainId": chainString(id),
		"caller":  caller.Hex(),
	})
	return nil
}

func (r *ChainRegistry) IsSupported(id uint64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.chains[id]
	return ok
}

func (r *ChainRegistry) SupportedChains() []uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	chains := make([]uint64, 0, len(r.chains))
	for id := range r.chains {
		chains = append(chains, id)
	}
	sort.Slice(chains, func(i, j int) bool { return chains[i] < chains[j] })
	return chains
}

func (r *ChainRegistry) AuthorizeRelayer(caller common.Address, chainID uint64, relayer common.Address) error {
	if !r.caps.HasCapability(caller, auth.ActionManageRelayers) {
		return &types.AuthorizationError{Reason: "missing capability " + string(auth.ActionManageRelayers), Signer: caller}
	}
	if relayer == (common.Address{}) {
		return &types.ValidationError{Field: "relayer", Reason: "zero address"}
	}

	r.mu.Lock()
	if _, ok := r.chains[chainID]; !ok {
		r.mu.Unlock()
		return &types.ChainNotFoundError{ChainID: chainID}
	}
	set, ok := r.relayers[chainID]
	if !ok {
		set = make(map[common.Address]struct{})
		r.relayers[chainID] = set
	}
	if _, ok := set[relayer]; ok {
		r.mu.Unlock()
		return &types.ValidationError{Field: "relayer", Reason: "already authorized for chain"}
	}
	set[relayer] = struct{}{}
	r.mu.Unlock()

	r.events.Publish(events.RelayerAuthorized, map[string]string{
		"chainId": chainString(chainID),
		"relayer": relayer.Hex(),
		"caller":  caller.Hex(),
	})
	return nil
}

func (r *ChainRegistry) RevokeRelayer(caller common.Address, chainID uint64, relayer common.Address) error {
	if !r.caps.HasCapability(caller, auth.ActionManageRelayers) {
		return &types.AuthorizationError{Reason: "missing capability " + string(auth.ActionManageRelayers), Signer: caller}
	}

	r.mu.Lock()
	set, ok := r.relayers[chainID]
	if !ok {
		r.mu.Unlock()
		return &types.ValidationError{Field: "relayer", Reason: "not authorized for chain"}
	}
	if _, ok := set[relayer]; !ok {
		r.mu.Unlock()
		return &types.ValidationError{Field: "relayer", Reason: "not authorized for chain"}
	}
	delete(set, relayer)
	r.mu.Unlock()

	r.events.Publish(events.RelayerRevoked, map[string]string{
		"chainId": chainString(chainID),
		"relayer": relayer.Hex(),
		"caller":  caller.Hex(),
	})
	return nil
}

func (r *ChainRegistry) IsAuthorized(chainID uint64, relayer common.Address) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.relayers[chainID][relayer]
	return ok
}

func (r *ChainRegistry) Relayers(chainID uint64) []common.Address {
	r.mu.RLock()
	defer r.mu.RUnlock()

	relayers := make([]common.Address, 0, len(r.relayers[chainID]))
	for relayer := range r.relayers[chainID] {
		relayers = append(relayers, relayer)
	}
	sort.Slice(relayers, func(i, j int) bool {
		return relayers[i].Hex() < relayers[j].Hex()
	})
	return relayers
}

func chainString(id uint64) string {
	return strconv.FormatUint(id, 10)
}
