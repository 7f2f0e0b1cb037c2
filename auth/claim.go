// The Licensed Work is (c) 2022 Sygma
// SPDX-License-Identifier: LGPL-3.0-only

package auth

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

const (
	DOMAIN_NAME = "SprinterBridge"
	VERSION     = "1.0.0"
)

// Claim is the canonical encoding of an operation a relayer proof is
// computed over. Digest returns the 32-byte hash that is signed.
type Claim interface {
	Digest() ([]byte, error)
}

var domainType = []apitypes.Type{
	{Name: "name", Type: "string"},
	{Name: "version", Type: "string"},
	{Name: "chainId", Type: "uint256"},
}

// TransferClaim authorizes the release or mint of funds on the destination
// chain for a transfer locked or burned on the source chain.
type TransferClaim struct {
	TransferID  common.Hash
	Sender      common.Address
	Recipient   common.Address
	Asset       common.Address
	Amount      *big.Int
	Source      uint64
	Destination uint64
}

func (c *TransferClaim) Digest() ([]byte, error) {
	msg := apitypes.TypedDataMessage{
		"transferId":         c.TransferID,
		"sender":             c.Sender.Hex(),
		"recipient":          c.Recipient.Hex(),
		"asset":              c.Asset.Hex(),
		"amount":             c.Amount,
		"sourceChainId":      new(big.Int).SetUint64(c.Source),
		"destinationChainId": new(big.Int).SetUint64(c.Destination),
	}

	types := apitypes.Types{
		"EIP712Domain": domainType,
		"Transfer": []apitypes.Type{
			{Name: "transferId", Type: "bytes32"},
			{Name: "sender", Type: "address"},
			{Name: "recipient", Type: "address"},
			{Name: "asset", Type: "address"},
			{Name: "amount", Type: "uint256"},
			{Name: "sourceChainId", Type: "uint256"},
			{Name: "destinationChainId", Type: "uint256"},
		},
	}
	return claimDigest("Transfer", types, msg, c.Destination)
}

// MessageClaim authorizes the delivery of a payload relayed from the source
// chain. The payload itself travels alongside the claim and is bound to it
// through the payload hash.
type MessageClaim struct {
	MessageID   common.Hash
	Sender      common.Address
	Recipient   common.Address
	PayloadHash common.Hash
	Source      uint64
	Destination uint64
}

func (c *MessageClaim) Digest() ([]byte, error) {
	msg := apitypes.TypedDataMessage{
		"messageId":          c.MessageID,
		"sender":             c.Sender.Hex(),
		"recipient":          c.Recipient.Hex(),
		"payloadHash":        c.PayloadHash,
		"sourceChainId":      new(big.Int).SetUint64(c.Source),
		"destinationChainId": new(big.Int).SetUint64(c.Destination),
	}

	types := apitypes.Types{
		"EIP712Domain": domainType,
		"Message": []apitypes.Type{
			{Name: "messageId", Type: "bytes32"},
			{Name: "sender", Type: "address"},
			{Name: "recipient", Type: "address"},
			{Name: "payloadHash", Type: "bytes32"},
			{Name: "sourceChainId", Type: "uint256"},
			{Name: "destinationChainId", Type: "uint256"},
		},
	}
	return claimDigest("Message", types, msg, c.Destination)
}

func claimDigest(primaryType string, types apitypes.Types, msg apitypes.TypedDataMessage, destination uint64) ([]byte, error) {
	chainId := math.HexOrDecimal256(*new(big.Int).SetUint64(destination))
	typedData := apitypes.TypedData{
		Types:       types,
		PrimaryType: primaryType,
		Domain: apitypes.TypedDataDomain{
			Name:    DOMAIN_NAME,
			Version: VERSION,
			ChainId: &chainId,
		},
		Message: msg,
	}

	domainSeparator, err := typedData.HashStruct("EIP712Domain", typedData.Domain.Map())
	if err != nil {
		return []byte{}, err
	}

	messageHash, err := typedData.HashStruct(typedData.PrimaryType, typedData.Message)
	if err != nil {
		return []byte{}, err
	}

	rawData := []byte(fmt.Sprintf("\x19\x01%s%s", string(domainSeparator), string(messageHash)))
	return crypto.Keccak256(rawData), nil
}
