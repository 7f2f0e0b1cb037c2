// The Licensed Work is (c) 2022 Sygma
// SPDX-License-Identifier: LGPL-3.0-only

package fees

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/sprintertech/sprinter-bridge/auth"
	"github.com/sprintertech/sprinter-bridge/events"
	"github.com/sprintertech/sprinter-bridge/types"
)

const (
	BpsDenominator = 10_000
	// MaxFeeBps caps the fee rate at 10%.
	MaxFeeBps = 1_000
)

// Calculator cuts a deterministic basis-point fraction of the gross
// transfer amount, routed to the configured sink. Rate and sink updates
// are admin-gated and emit audit events.
type Calculator struct {
	mu      sync.RWMutex
	rateBps uint64
	sink    common.Address

	caps   auth.CapabilityChecker
	events *events.Publisher
}

func NewCalculator(rateBps uint64, sink common.Address, caps auth.CapabilityChecker, publisher *events.Publisher) (*Calculator, error) {
	if rateBps > MaxFeeBps {
		return nil, &types.ValidationError{
			Field:  "feeRate",
			Reason: fmt.Sprintf("%d bps exceeds maximum of %d", rateBps, MaxFeeBps),
		}
	}

	return &Calculator{
		rateBps: rateBps,
		sink:    sink,
		caps:    caps,
		events:  publisher,
	}, nil
}

// Fee returns the fee portion of the gross amount.
func (c *Calculator) Fee(amount *big.Int) *big.Int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	fee := new(big.Int).Mul(amount, new(big.Int).SetUint64(c.rateBps))
	return fee.Div(fee, big.NewInt(BpsDenominator))
}

func (c *Calculator) Sink() common.Address {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.sink
}

func (c *Calculator) RateBps() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.rateBps
}

func (c *Calculator) SetRate(caller common.Address, rateBps uint64) error {
	if !c.caps.HasCapability(caller, auth.ActionManageFees) {
		return &types.AuthorizationError{Reason: "missing capability " + string(auth.ActionManageFees), Signer: caller}
	}
	if rateBps > MaxFeeBps {
		return &types.ValidationError{
			Field:  "feeRate",
			Reason: fmt.Sprintf("%d bps exceeds maximum of %d", rateBps, MaxFeeBps),
		}
	}

	c.mu.Lock()
	old := c.rateBps
	c.rateBps = rateBps
	c.mu.Unlock()

	c.events.Publish(events.FeeRateChanged, map[string]string{
		"oldRate": fmt.Sprintf("%d", old),
		"newRate": fmt.Sprintf("%d", rateBps),
		"caller":  caller.Hex(),
	})
	return nil
}

func (c *Calculator) SetSink(caller common.Address, sink common.Address) error {
	if !c.caps.HasCapability(caller, auth.ActionManageFees) {
		return &types.AuthorizationError{Reason: "missing capability " + string(auth.ActionManageFees), Signer: caller}
	}
	if sink == (common.Address{}) {
		return &types.ValidationError{Field: "feeSink", Reason: "zero address"}
	}

	c.mu.Lock()
	old := c.sink
	c.sink = sink
	c.mu.Unlock()

	c.events.Publish(events.FeeSinkChanged, map[string]string{
		"oldSink": old.Hex(),
		"newSink": sink.Hex(),
		"caller":  caller.Hex(),
	})
	return nil
}
