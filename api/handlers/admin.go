package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/mux"

	"github.com/sprintertech/sprinter-bridge/custody"
	"github.com/sprintertech/sprinter-bridge/ratelimit"
)

// CallerHeader carries the admin identity checked against the capability
// table. Transport-level authentication of this header is deployment
// concern handled in front of the service.
const CallerHeader = "X-Caller-Address"

type RegistryAdmin interface {
	AddChain(caller common.Address, id uint64) error
	RemoveChain(caller common.Address, id uint64) error
	AuthorizeRelayer(caller common.Address, chainID uint64, relayer common.Address) error
	RevokeRelayer(caller common.Address, chainID uint64, relayer common.Address) error
}

type LimitAdmin interface {
	SetGlobalLimit(caller common.Address, limit *big.Int) error
	SetAssetLimit(caller common.Address, asset common.Address, limit ratelimit.AssetLimit) error
	SetUserLimits(caller common.Address, user common.Address, limits ratelimit.UserLimits) error
	RemoveUserLimits(caller common.Address, user common.Address) error
}

type FeeAdmin interface {
	SetRate(caller common.Address, rateBps uint64) error
	SetSink(caller common.Address, sink common.Address) error
}

type AssetAdmin interface {
	EnsureWrappedAsset(ctx context.Context, caller, nativeAsset common.Address, nativeChainID uint64, metadata custody.WrappedMetadata) (common.Address, error)
}

type AdminHandler struct {
	registry RegistryAdmin
	limits   LimitAdmin
	fees     FeeAdmin
	assets   AssetAdmin
}

func NewAdminHandler(registry RegistryAdmin, limits LimitAdmin, fees FeeAdmin, assets AssetAdmin) *AdminHandler {
	return &AdminHandler{
		registry: registry,
		limits:   limits,
		fees:     fees,
		assets:   assets,
	}
}

func (h *AdminHandler) HandleAddChain(w http.ResponseWriter, r *http.Request) {
	chainId, err := chainIDVar(r)
	if err != nil {
		JSONError(w, err, http.StatusBadRequest)
		return
	}

	if err := h.registry.AddChain(caller(r), chainId); err != nil {
		BridgeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *AdminHandler) HandleRemoveChain(w http.ResponseWriter, r *http.Request) {
	chainId, err := chainIDVar(r)
	if err != nil {
		JSONError(w, err, http.StatusBadRequest)
		return
	}

	if err := h.registry.RemoveChain(caller(r), chainId); err != nil {
		BridgeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *AdminHandler) HandleAuthorizeRelayer(w http.ResponseWriter, r *http.Request) {
	chainId, err := chainIDVar(r)
	if err != nil {
		JSONError(w, err, http.StatusBadRequest)
		return
	}
	relayer := common.HexToAddress(mux.Vars(r)["address"])

	if err := h.registry.AuthorizeRelayer(caller(r), chainId, relayer); err != nil {
		BridgeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *AdminHandler) HandleRevokeRelayer(w http.ResponseWriter, r *http.Request) {
	chainId, err := chainIDVar(r)
	if err != nil {
		JSONError(w, err, http.StatusBadRequest)
		return
	}
	relayer := common.HexToAddress(mux.Vars(r)["address"])

	if err := h.registry.RevokeRelayer(caller(r), chainId, relayer); err != nil {
		BridgeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

type FeeBody struct {
	RateBps *uint64 `json:"rateBps"`
	Sink    string  `json:"sink"`
}

func (h *AdminHandler) HandleSetFees(w http.ResponseWriter, r *http.Request) {
	b := &FeeBody{}
	if err := json.NewDecoder(r.Body).Decode(b); err != nil {
		JSONError(w, fmt.Errorf("invalid request body: %s", err), http.StatusBadRequest)
		return
	}

	if b.RateBps != nil {
		if err := h.fees.SetRate(caller(r), *b.RateBps); err != nil {
			BridgeError(w, err)
			return
		}
	}
	if b.Sink != "" {
		if err := h.fees.SetSink(caller(r), common.HexToAddress(b.Sink)); err != nil {
			BridgeError(w, err)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
}

type GlobalLimitBody struct {
	DailyLimit *BigInt `json:"dailyLimit"`
}

func (h *AdminHandler) HandleSetGlobalLimit(w http.ResponseWriter, r *http.Request) {
	b := &GlobalLimitBody{}
	if err := json.NewDecoder(r.Body).Decode(b); err != nil {
		JSONError(w, fmt.Errorf("invalid request body: %s", err), http.StatusBadRequest)
		return
	}

	var limit *big.Int
	if b.DailyLimit != nil {
		limit = b.DailyLimit.Int
	}
	if err := h.limits.SetGlobalLimit(caller(r), limit); err != nil {
		BridgeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

type AssetLimitBody struct {
	MaxTransferAmount *BigInt `json:"maxTransferAmount"`
	DailyLimit        *BigInt `json:"dailyLimit"`
}

func (h *AdminHandler) HandleSetAssetLimit(w http.ResponseWriter, r *http.Request) {
	b := &AssetLimitBody{}
	if err := json.NewDecoder(r.Body).Decode(b); err != nil {
		JSONError(w, fmt.Errorf("invalid request body: %s", err), http.StatusBadRequest)
		return
	}

	limit := ratelimit.AssetLimit{}
	if b.MaxTransferAmount != nil {
		limit.MaxTransferAmount = b.MaxTransferAmount.Int
	}
	if b.DailyLimit != nil {
		limit.DailyLimit = b.DailyLimit.Int
	}

	asset := common.HexToAddress(mux.Vars(r)["address"])
	if err := h.limits.SetAssetLimit(caller(r), asset, limit); err != nil {
		BridgeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

type UserLimitsBody struct {
	Enabled                bool    `json:"enabled"`
	MaxPerTransfer         *BigInt `json:"maxPerTransfer"`
	DailyLimit             *BigInt `json:"dailyLimit"`
	WeeklyLimit            *BigInt `json:"weeklyLimit"`
	LargeTransferThreshold *BigInt `json:"largeTransferThreshold"`
	CooldownSeconds        uint64  `json:"cooldownSeconds"`
}

func (h *AdminHandler) HandleSetUserLimits(w http.ResponseWriter, r *http.Request) {
	b := &UserLimitsBody{}
	if err := json.NewDecoder(r.Body).Decode(b); err != nil {
		JSONError(w, fmt.Errorf("invalid request body: %s", err), http.StatusBadRequest)
		return
	}

	limits := ratelimit.UserLimits{
		Enabled:        b.Enabled,
		CooldownPeriod: time.Duration(b.CooldownSeconds) * time.Second,
	}
	if b.MaxPerTransfer != nil {
		limits.MaxPerTransfer = b.MaxPerTransfer.Int
	}
	if b.DailyLimit != nil {
		limits.DailyLimit = b.DailyLimit.Int
	}
	if b.WeeklyLimit != nil {
		limits.WeeklyLimit = b.WeeklyLimit.Int
	}
	if b.LargeTransferThreshold != nil {
		limits.LargeTransferThreshold = b.LargeTransferThreshold.Int
	}

	user := common.HexToAddress(mux.Vars(r)["address"])
	if err := h.limits.SetUserLimits(caller(r), user, limits); err != nil {
		BridgeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *AdminHandler) HandleRemoveUserLimits(w http.ResponseWriter, r *http.Request) {
	user := common.HexToAddress(mux.Vars(r)["address"])
	if err := h.limits.RemoveUserLimits(caller(r), user); err != nil {
		BridgeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

type WrappedAssetBody struct {
	NativeAsset   string `json:"nativeAsset"`
	NativeChainId uint64 `json:"nativeChainId"`
	Name          string `json:"name"`
	Symbol        string `json:"symbol"`
	Decimals      uint8  `json:"decimals"`
}

func (h *AdminHandler) HandleCreateWrappedAsset(w http.ResponseWriter, r *http.Request) {
	b := &WrappedAssetBody{}
	if err := json.NewDecoder(r.Body).Decode(b); err != nil {
		JSONError(w, fmt.Errorf("invalid request body: %s", err), http.StatusBadRequest)
		return
	}

	wrapped, err := h.assets.EnsureWrappedAsset(
		r.Context(),
		caller(r),
		common.HexToAddress(b.NativeAsset),
		b.NativeChainId,
		custody.WrappedMetadata{
			Name:     b.Name,
			Symbol:   b.Symbol,
			Decimals: b.Decimals,
		},
	)
	if err != nil {
		BridgeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"address": wrapped.Hex()})
}

func caller(r *http.Request) common.Address {
	return common.HexToAddress(r.Header.Get(CallerHeader))
}

func chainIDVar(r *http.Request) (uint64, error) {
	chainId, ok := new(big.Int).SetString(mux.Vars(r)["chainId"], 10)
	if !ok {
		return 0, fmt.Errorf("invalid chainId")
	}
	return chainId.Uint64(), nil
}
