package handlers

import (
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strings"

	"github.com/sprintertech/sprinter-bridge/types"
)

type BigInt struct {
	*big.Int
}

func (b *BigInt) UnmarshalJSON(data []byte) error {
	if b.Int == nil {
		b.Int = new(big.Int)
	}

	s := strings.Trim(string(data), "\"")
	_, ok := b.SetString(s, 10)
	if !ok {
		return fmt.Errorf("failed to parse big.Int from %s", s)
	}

	return nil
}

func (b *BigInt) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", b.String())), nil
}

func JSONError(w http.ResponseWriter, err error, code int) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(code)
	type errorResponse struct {
		Code   int    `json:"code"`
		Kind   string `json:"kind"`
		Reason string `json:"reason"`
	}
	resp := errorResponse{
		Code:   code,
		Kind:   string(types.Kind(err)),
		Reason: err.Error(),
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// BridgeError maps the stable error kinds onto HTTP statuses so clients
// can tell "fix input" from "retry later" from "escalate".
func BridgeError(w http.ResponseWriter, err error) {
	JSONError(w, err, statusCode(err))
}

func statusCode(err error) int {
	switch types.Kind(err) {
	case types.KindValidation:
		return http.StatusBadRequest
	case types.KindAuthorization:
		return http.StatusForbidden
	case types.KindRateLimit:
		return http.StatusTooManyRequests
	case types.KindReplay:
		return http.StatusConflict
	case types.KindNotFound:
		return http.StatusNotFound
	case types.KindCustody:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
