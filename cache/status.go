// The Licensed Work is (c) 2022 Sygma
// SPDX-License-Identifier: LGPL-3.0-only

package cache

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jellydator/ttlcache/v3"

	"github.com/sprintertech/sprinter-bridge/types"
)

const STATUS_TTL = time.Minute * 10

// StatusCache keeps terminal transfer and message statuses in front of the
// record store for the query API. Only terminal statuses are cached; they
// are immutable, so a cached read can never be stale. Registry and
// authorization reads are deliberately not cached.
type StatusCache struct {
	transfers *ttlcache.Cache[common.Hash, types.TransferStatus]
	messages  *ttlcache.Cache[common.Hash, types.MessageStatus]
}

func NewStatusCache() *StatusCache {
	transfers := ttlcache.New(
		ttlcache.WithTTL[common.Hash, types.TransferStatus](STATUS_TTL),
	)
	messages := ttlcache.New(
		ttlcache.WithTTL[common.Hash, types.MessageStatus](STATUS_TTL),
	)

	go transfers.Start()
	go messages.Start()
	return &StatusCache{
		transfers: transfers,
		messages:  messages,
	}
}

func (c *StatusCache) TransferStatus(id common.Hash) (types.TransferStatus, bool) {
	item := c.transfers.Get(id)
	if item == nil {
		return types.TransferStatusNone, false
	}
	return item.Value(), true
}

func (c *StatusCache) SetTransferStatus(id common.Hash, status types.TransferStatus) {
	if !status.Terminal() {
		return
	}
	c.transfers.Set(id, status, ttlcache.DefaultTTL)
}

func (c *StatusCache) MessageStatus(id common.Hash) (types.MessageStatus, bool) {
	item := c.messages.Get(id)
	if item == nil {
		return types.MessageStatusNone, false
	}
	return item.Value(), true
}

func (c *StatusCache) SetMessageStatus(id common.Hash, status types.MessageStatus) {
	if !status.Terminal() {
		return
	}
	c.messages.Set(id, status, ttlcache.DefaultTTL)
}

func (c *StatusCache) Stop() {
	c.transfers.Stop()
	c.messages.Stop()
}
