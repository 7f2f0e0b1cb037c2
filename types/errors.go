// The Licensed Work is (c) 2022 Sygma
// SPDX-License-Identifier: LGPL-3.0-only

package types

import (
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// ErrorKind classifies every aborting error into a stable class so that
// operational tooling can distinguish "fix input", "retry later" and
// "do not retry, escalate" without string matching.
type ErrorKind string

const (
	KindValidation    ErrorKind = "validation"
	KindAuthorization ErrorKind = "authorization"
	KindRateLimit     ErrorKind = "rate-limit"
	KindReplay        ErrorKind = "replay"
	KindCustody       ErrorKind = "custody"
	KindNotFound      ErrorKind = "not-found"
	KindInternal      ErrorKind = "internal"
)

type kinder interface {
	Kind() ErrorKind
}

// Kind returns the error class of err, KindInternal if err carries none.
func Kind(err error) ErrorKind {
	var k kinder
	if errors.As(err, &k) {
		return k.Kind()
	}
	return KindInternal
}

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Kind() ErrorKind { return KindValidation }

type AuthorizationError struct {
	Reason string
	Signer common.Address
}

func (e *AuthorizationError) Error() string {
	if e.Signer != (common.Address{}) {
		return fmt.Sprintf("authorization failed for %s: %s", e.Signer.Hex(), e.Reason)
	}
	return fmt.Sprintf("authorization failed: %s", e.Reason)
}

func (e *AuthorizationError) Kind() ErrorKind { return KindAuthorization }

type RateLimitError struct {
	Scope  string
	Reason string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s rate limit exceeded: %s", e.Scope, e.Reason)
}

func (e *RateLimitError) Kind() ErrorKind { return KindRateLimit }

// CooldownError is returned when a large transfer is attempted before the
// per-user cooldown period has elapsed. It is a rate-limit class error but
// kept distinct so callers can report the remaining wait.
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("cooldown period not met, %s remaining", e.Remaining)
}

func (e *CooldownError) Kind() ErrorKind { return KindRateLimit }

// ReplayError marks an identifier that has already been processed. A retry
// of a settled operation and a replay attempt are indistinguishable here,
// so callers log it for security monitoring.
type ReplayError struct {
	ID common.Hash
}

func (e *ReplayError) Error() string {
	return fmt.Sprintf("id %s already processed", e.ID.Hex())
}

func (e *ReplayError) Kind() ErrorKind { return KindReplay }

type CustodyError struct {
	Op  string
	Err error
}

func (e *CustodyError) Error() string {
	return fmt.Sprintf("custody %s failed: %s", e.Op, e.Err)
}

func (e *CustodyError) Unwrap() error { return e.Err }

func (e *CustodyError) Kind() ErrorKind { return KindCustody }

type ChainNotFoundError struct {
	ChainID uint64
}

func (e *ChainNotFoundError) Error() string {
	return fmt.Sprintf("chain %d not found", e.ChainID)
}

func (e *ChainNotFoundError) Kind() ErrorKind { return KindNotFound }

type ChainAlreadySupportedError struct {
	ChainID uint64
}

func (e *ChainAlreadySupportedError) Error() string {
	return fmt.Sprintf("chain %d already supported", e.ChainID)
}

func (e *ChainAlreadySupportedError) Kind() ErrorKind { return KindValidation }

type notFoundError struct {
	what string
}

func (e *notFoundError) Error() string   { return e.what + " not found" }
func (e *notFoundError) Kind() ErrorKind { return KindNotFound }

var (
	ErrTransferNotFound error = &notFoundError{what: "transfer"}
	ErrMessageNotFound  error = &notFoundError{what: "message"}
)
