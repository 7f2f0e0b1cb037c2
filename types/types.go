// The Licensed Work is (c) 2022 Sygma
// SPDX-License-Identifier: LGPL-3.0-only

package types

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

type TransferStatus uint8

const (
	TransferStatusNone TransferStatus = iota
	TransferStatusPending
	TransferStatusCompleted
	TransferStatusFailed
)

func (s TransferStatus) String() string {
	switch s {
	case TransferStatusPending:
		return "pending"
	case TransferStatusCompleted:
		return "completed"
	case TransferStatusFailed:
		return "failed"
	default:
		return "none"
	}
}

// Terminal reports whether the status can no longer change.
func (s TransferStatus) Terminal() bool {
	return s == TransferStatusCompleted || s == TransferStatusFailed
}

type MessageStatus uint8

const (
	MessageStatusNone MessageStatus = iota
	MessageStatusPending
	MessageStatusDelivered
	MessageStatusFailed
)

func (s MessageStatus) String() string {
	switch s {
	case MessageStatusPending:
		return "pending"
	case MessageStatusDelivered:
		return "delivered"
	case MessageStatusFailed:
		return "failed"
	default:
		return "none"
	}
}

func (s MessageStatus) Terminal() bool {
	return s == MessageStatusDelivered || s == MessageStatusFailed
}

// TransferRecord is the append-only audit entry for a cross-chain asset
// transfer. Amount is the gross amount requested by the sender, Fee the
// basis-point cut routed to the fee sink.
type TransferRecord struct {
	ID          common.Hash    `json:"id"`
	Sender      common.Address `json:"sender"`
	Recipient   common.Address `json:"recipient"`
	Asset       common.Address `json:"asset"`
	Amount      *big.Int       `json:"amount"`
	Fee         *big.Int       `json:"fee"`
	Source      uint64         `json:"source"`
	Destination uint64         `json:"destination"`
	Status      TransferStatus `json:"status"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// MessageRecord is the append-only audit entry for an arbitrary payload
// relayed between chains.
type MessageRecord struct {
	ID          common.Hash    `json:"id"`
	Sender      common.Address `json:"sender"`
	Recipient   common.Address `json:"recipient"`
	Payload     []byte         `json:"payload"`
	Source      uint64         `json:"source"`
	Destination uint64         `json:"destination"`
	Status      MessageStatus  `json:"status"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}
