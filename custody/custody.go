// The Licensed Work is (c) 2022 Sygma
// SPDX-License-Identifier: LGPL-3.0-only

package custody

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// WrappedMetadata describes a wrapped representation of a native asset
// provisioned on a non-native chain.
type WrappedMetadata struct {
	Name     string
	Symbol   string
	Decimals uint8
}

// TokenCustody performs all value mutation on behalf of the orchestrators.
// The bridge core never inlines balance arithmetic; lock/unlock/mint/burn
// and wrapped-asset provisioning are delegated here.
type TokenCustody interface {
	Lock(ctx context.Context, asset common.Address, amount *big.Int, from common.Address) error
	ReleaseLocked(ctx context.Context, asset common.Address, amount *big.Int, to common.Address) error
	BurnWrapped(ctx context.Context, asset common.Address, amount *big.Int, from common.Address) error
	MintWrapped(ctx context.Context, asset common.Address, amount *big.Int, to common.Address) error
	WrappedExists(nativeAsset common.Address, nativeChainID uint64) bool
	CreateWrapped(ctx context.Context, nativeAsset common.Address, nativeChainID uint64, metadata WrappedMetadata) (common.Address, error)
}
