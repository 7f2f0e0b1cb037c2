// The Licensed Work is (c) 2022 Sygma
// SPDX-License-Identifier: LGPL-3.0-only

package auth

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

type Action string

const (
	ActionManageChains   Action = "manage-chains"
	ActionManageRelayers Action = "manage-relayers"
	ActionManageLimits   Action = "manage-limits"
	ActionManageFees     Action = "manage-fees"
	ActionManageAssets   Action = "manage-assets"
)

// CapabilityChecker gates admin mutations. It replaces inherited role
// mixins with an explicit lookup so authorization stays testable in
// isolation from the orchestrators.
type CapabilityChecker interface {
	HasCapability(caller common.Address, action Action) bool
}

type StaticCapabilities struct {
	mu     sync.RWMutex
	grants map[common.Address]map[Action]struct{}
}

func NewStaticCapabilities() *StaticCapabilities {
	return &StaticCapabilities{
		grants: make(map[common.Address]map[Action]struct{}),
	}
}

func (c *StaticCapabilities) Grant(caller common.Address, actions ...Action) {
	c.mu.Lock()
	defer c.mu.Unlock()

	grants, ok := c.grants[caller]
	if !ok {
		grants = make(map[Action]struct{})
		c.grants[caller] = grants
	}
	for _, action := range actions {
		grants[action] = struct{}{}
	}
}

func (c *StaticCapabilities) Revoke(caller common.Address, action Action) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.grants[caller], action)
}

func (c *StaticCapabilities) HasCapability(caller common.Address, action Action) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, ok := c.grants[caller][action]
	return ok
}
