// The Licensed Work is (c) 2022 Sygma
// SPDX-License-Identifier: LGPL-3.0-only

package ratelimit

import (
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/sprintertech/sprinter-bridge/auth"
	"github.com/sprintertech/sprinter-bridge/events"
	"github.com/sprintertech/sprinter-bridge/types"
)

const (
	ScopeGlobal = "global"
	ScopeAsset  = "asset"
	ScopeUser   = "user"

	DayWindow  = 24 * time.Hour
	WeekWindow = 7 * 24 * time.Hour
)

// AssetLimit caps a single high-value asset independently of the global
// ceiling. MaxTransferAmount bounds one transfer, DailyLimit the rolling
// daily volume. Nil fields disable the respective check.
type AssetLimit struct {
	MaxTransferAmount *big.Int
	DailyLimit        *big.Int
}

// UserLimits throttles one account independently of asset and global
// ceilings. Per-user limiting only applies when a profile exists and is
// enabled.
type UserLimits struct {
	Enabled                bool
	MaxPerTransfer         *big.Int
	DailyLimit             *big.Int
	WeeklyLimit            *big.Int
	LargeTransferThreshold *big.Int
	CooldownPeriod         time.Duration
}

type window struct {
	used  *big.Int
	reset time.Time
}

// rollover zeroes the window and advances the reset boundary when now has
// reached it. Reset happens before the limit is evaluated.
func (w *window) rollover(now time.Time, length time.Duration) {
	if w.used == nil {
		w.used = new(big.Int)
	}
	if w.reset.IsZero() {
		w.reset = now.Add(length)
		return
	}
	if !now.Before(w.reset) {
		w.used.SetInt64(0)
		w.reset = now.Add(length)
	}
}

func (w *window) fits(amount, limit *big.Int) bool {
	if limit == nil {
		return true
	}
	return new(big.Int).Add(w.used, amount).Cmp(limit) <= 0
}

type userUsage struct {
	daily             window
	weekly            window
	lastLargeTransfer time.Time
}

// Limiter enforces the three AND-composed transfer ceilings: global,
// per-asset and per-user. A reservation either lands in all applicable
// scopes or in none.
type Limiter struct {
	mu sync.Mutex

	globalLimit *big.Int
	global      window

	assetLimits map[common.Address]AssetLimit
	assetUsage  map[common.Address]*window

	userLimits map[common.Address]UserLimits
	userUsage  map[common.Address]*userUsage

	caps   auth.CapabilityChecker
	events *events.Publisher
}

func NewLimiter(globalDailyLimit *big.Int, caps auth.CapabilityChecker, publisher *events.Publisher) *Limiter {
	return &Limiter{
		globalLimit: globalDailyLimit,
		assetLimits: make(map[common.Address]AssetLimit),
		assetUsage:  make(map[common.Address]*window),
		userLimits:  make(map[common.Address]UserLimits),
		userUsage:   make(map[common.Address]*userUsage),
		caps:        caps,
		events:      publisher,
	}
}

// Reserve accounts amount against all three scopes, failing closed: if any
// scope would be exceeded no counter is incremented.
func (l *Limiter) Reserve(asset common.Address, user common.Address, amount *big.Int, now time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.global.rollover(now, DayWindow)
	if !l.global.fits(amount, l.globalLimit) {
		return &types.RateLimitError{Scope: ScopeGlobal, Reason: "daily limit exceeded"}
	}

	assetLimit, assetLimited := l.assetLimits[asset]
	var assetWindow *window
	if assetLimited {
		assetWindow = l.assetWindow(asset)
		assetWindow.rollover(now, DayWindow)
		if assetLimit.MaxTransferAmount != nil && amount.Cmp(assetLimit.MaxTransferAmount) > 0 {
			return &types.RateLimitError{Scope: ScopeAsset, Reason: "amount exceeds max transfer amount"}
		}
		if !assetWindow.fits(amount, assetLimit.DailyLimit) {
			return &types.RateLimitError{Scope: ScopeAsset, Reason: "daily limit exceeded"}
		}
	}

	userLimits, userLimited := l.userLimits[user]
	userLimited = userLimited && userLimits.Enabled
	var usage *userUsage
	if userLimited {
		usage = l.usage(user)
		usage.daily.rollover(now, DayWindow)
		usage.weekly.rollover(now, WeekWindow)

		if userLimits.MaxPerTransfer != nil && amount.Cmp(userLimits.MaxPerTransfer) > 0 {
			return &types.RateLimitError{Scope: ScopeUser, Reason: "amount exceeds max per transfer"}
		}
		if !usage.daily.fits(amount, userLimits.DailyLimit) {
			return &types.RateLimitError{Scope: ScopeUser, Reason: "daily limit exceeded"}
		}
		if !usage.weekly.fits(amount, userLimits.WeeklyLimit) {
			return &types.RateLimitError{Scope: ScopeUser, Reason: "weekly limit exceeded"}
		}
		if isLarge(amount, userLimits) && !usage.lastLargeTransfer.IsZero() {
			elapsed := now.Sub(usage.lastLargeTransfer)
			if elapsed < userLimits.CooldownPeriod {
				return &types.CooldownError{Remaining: userLimits.CooldownPeriod - elapsed}
			}
		}
	}

	// every scope passed, commit
	l.global.used.Add(l.global.used, amount)
	if assetLimited {
		assetWindow.used.Add(assetWindow.used, amount)
	}
	if userLimited {
		usage.daily.used.Add(usage.daily.used, amount)
		usage.weekly.used.Add(usage.weekly.used, amount)
		if isLarge(amount, userLimits) {
			usage.lastLargeTransfer = now
		}
	}

	return nil
}

// Refund backs a reservation out of all scopes after a failed custody
// mutation so that usage counters only account settled transfers.
func (l *Limiter) Refund(asset common.Address, user common.Address, amount *big.Int, now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	refund(&l.global, amount)
	if w, ok := l.assetUsage[asset]; ok {
		refund(w, amount)
	}
	if usage, ok := l.userUsage[user]; ok {
		refund(&usage.daily, amount)
		refund(&usage.weekly, amount)
	}
}

// MaxTransferAmount returns the per-transfer cap for the asset, nil when
// the asset carries none.
func (l *Limiter) MaxTransferAmount(asset common.Address) *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()

	limit, ok := l.assetLimits[asset]
	if !ok || limit.MaxTransferAmount == nil {
		return nil
	}
	return new(big.Int).Set(limit.MaxTransferAmount)
}

// UserLimitsFor returns the configured profile for the user.
func (l *Limiter) UserLimitsFor(user common.Address) (UserLimits, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	limits, ok := l.userLimits[user]
	return limits, ok
}

// UserUsageFor returns the current daily and weekly usage of the user.
func (l *Limiter) UserUsageFor(user common.Address) (daily *big.Int, weekly *big.Int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	usage, ok := l.userUsage[user]
	if !ok {
		return new(big.Int), new(big.Int)
	}
	return new(big.Int).Set(usage.daily.used), new(big.Int).Set(usage.weekly.used)
}

func (l *Limiter) SetGlobalLimit(caller common.Address, limit *big.Int) error {
	if !l.caps.HasCapability(caller, auth.ActionManageLimits) {
		return &types.AuthorizationError{Reason: "missing capability " + string(auth.ActionManageLimits), Signer: caller}
	}

	l.mu.Lock()
	l.globalLimit = limit
	l.mu.Unlock()

	l.events.Publish(events.GlobalLimitChanged, map[string]string{
		"limit":  bigString(limit),
		"caller": caller.Hex(),
	})
	return nil
}

func (l *Limiter) SetAssetLimit(caller common.Address, asset common.Address, limit AssetLimit) error {
	if !l.caps.HasCapability(caller, auth.ActionManageLimits) {
		return &types.AuthorizationError{Reason: "missing capability " + string(auth.ActionManageLimits), Signer: caller}
	}

	l.mu.Lock()
	l.assetLimits[asset] = limit
	l.mu.Unlock()

	l.events.Publish(events.AssetLimitChanged, map[string]string{
		"asset":      asset.Hex(),
		"max":        bigString(limit.MaxTransferAmount),
		"dailyLimit": bigString(limit.DailyLimit),
		"caller":     caller.Hex(),
	})
	return nil
}

func (l *Limiter) SetUserLimits(caller common.Address, user common.Address, limits UserLimits) error {
	if !l.caps.HasCapability(caller, auth.ActionManageLimits) {
		return &types.AuthorizationError{Reason: "missing capability " + string(auth.ActionManageLimits), Signer: caller}
	}

	l.mu.Lock()
	l.userLimits[user] = limits
	l.mu.Unlock()

	l.events.Publish(events.UserLimitsChanged, map[string]string{
		"user":   user.Hex(),
		"caller": caller.Hex(),
	})
	return nil
}

func (l *Limiter) RemoveUserLimits(caller common.Address, user common.Address) error {
	if !l.caps.HasCapability(caller, auth.ActionManageLimits) {
		return &types.AuthorizationError{Reason: "missing capability " + string(auth.ActionManageLimits), Signer: caller}
	}

	l.mu.Lock()
	delete(l.userLimits, user)
	delete(l.userUsage, user)
	l.mu.Unlock()

	l.events.Publish(events.UserLimitsRemoved, map[string]string{
		"user":   user.Hex(),
		"caller": caller.Hex(),
	})
	return nil
}

func (l *Limiter) assetWindow(asset common.Address) *window {
	w, ok := l.assetUsage[asset]
	if !ok {
		w = &window{used: new(big.Int)}
		l.assetUsage[asset] = w
	}
	return w
}

func (l *Limiter) usage(user common.Address) *userUsage {
	u, ok := l.userUsage[user]
	if !ok {
		u = &userUsage{
			daily:  window{used: new(big.Int)},
			weekly: window{used: new(big.Int)},
		}
		l.userUsage[user] = u
	}
	return u
}

func isLarge(amount *big.Int, limits UserLimits) bool {
	return limits.LargeTransferThreshold != nil && amount.Cmp(limits.LargeTransferThreshold) >= 0
}

func refund(w *window, amount *big.Int) {
	if w.used == nil {
		return
	}
	w.used.Sub(w.used, amount)
	if w.used.Sign() < 0 {
		w.used.SetInt64(0)
	}
}

func bigString(v *big.Int) string {
	if v == nil {
		return "unlimited"
	}
	return v.String()
}
