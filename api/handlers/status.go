package handlers

import (
	"fmt"
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/mux"

	"github.com/sprintertech/sprinter-bridge/cache"
	"github.com/sprintertech/sprinter-bridge/ratelimit"
	"github.com/sprintertech/sprinter-bridge/types"
)

type TransferReader interface {
	TransferStatus(id common.Hash) (types.TransferStatus, error)
}

type MessageReader interface {
	MessageStatus(id common.Hash) (types.MessageStatus, error)
}

type ChainReader interface {
	IsSupported(id uint64) bool
	SupportedChains() []uint64
}

type LimitReader interface {
	UserLimitsFor(user common.Address) (ratelimit.UserLimits, bool)
	UserUsageFor(user common.Address) (daily *big.Int, weekly *big.Int)
}

// StatusHandler serves the side-effect-free query surface. Terminal
// statuses are answered from the TTL cache when possible.
type StatusHandler struct {
	transfers TransferReader
	messages  MessageReader
	chains    ChainReader
	limits    LimitReader
	cache     *cache.StatusCache
}

func NewStatusHandler(
	transfers TransferReader,
	messages MessageReader,
	chains ChainReader,
	limits LimitReader,
	statusCache *cache.StatusCache,
) *StatusHandler {
	return &StatusHandler{
		transfers: transfers,
		messages:  messages,
		chains:    chains,
		limits:    limits,
		cache:     statusCache,
	}
}

func (h *StatusHandler) HandleTransferStatus(w http.ResponseWriter, r *http.Request) {
	id := common.HexToHash(mux.Vars(r)["id"])

	status, ok := h.cache.TransferStatus(id)
	if !ok {
		var err error
		status, err = h.transfers.TransferStatus(id)
		if err != nil {
			BridgeError(w, err)
			return
		}
		h.cache.SetTransferStatus(id, status)
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"id":     id.Hex(),
		"status": status.String(),
	})
}

func (h *StatusHandler) HandleMessageStatus(w http.ResponseWriter, r *http.Request) {
	id := common.HexToHash(mux.Vars(r)["id"])

	status, ok := h.cache.MessageStatus(id)
	if !ok {
		var err error
		status, err = h.messages.MessageStatus(id)
		if err != nil {
			BridgeError(w, err)
			return
		}
		h.cache.SetMessageStatus(id, status)
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"id":     id.Hex(),
		"status": status.String(),
	})
}

func (h *StatusHandler) HandleChains(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]uint64{
		"chains": h.chains.SupportedChains(),
	})
}

func (h *StatusHandler) HandleChainSupported(w http.ResponseWriter, r *http.Request) {
	chainId, ok := new(big.Int).SetString(mux.Vars(r)["chainId"], 10)
	if !ok {
		JSONError(w, fmt.Errorf("invalid chainId"), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{
		"supported": h.chains.IsSupported(chainId.Uint64()),
	})
}

func (h *StatusHandler) HandleUserLimits(w http.ResponseWriter, r *http.Request) {
	user := common.HexToAddress(mux.Vars(r)["address"])

	limits, configured := h.limits.UserLimitsFor(user)
	if !configured {
		writeJSON(w, http.StatusOK, map[string]bool{"configured": false})
		return
	}

	daily, weekly := h.limits.UserUsageFor(user)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"configured":     true,
		"enabled":        limits.Enabled,
		"maxPerTransfer": bigOrNil(limits.MaxPerTransfer),
		"dailyLimit":     bigOrNil(limits.DailyLimit),
		"weeklyLimit":    bigOrNil(limits.WeeklyLimit),
		"dailyUsed":      daily.String(),
		"weeklyUsed":     weekly.String(),
		"cooldownPeriod": limits.CooldownPeriod.String(),
	})
}

func bigOrNil(v *big.Int) interface{} {
	if v == nil {
		return nil
	}
	return v.String()
}
