package handlers

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/sprintertech/sprinter-bridge/auth"
)

type TransferOrchestrator interface {
	InitiateTransfer(ctx context.Context, sender, recipient, asset common.Address, amount *big.Int, destination uint64) (common.Hash, error)
	CompleteTransfer(ctx context.Context, claim *auth.TransferClaim, proof []byte) error
}

type InitiateTransferBody struct {
	Sender             string  `json:"sender"`
	Recipient          string  `json:"recipient"`
	Asset              string  `json:"asset"`
	Amount             *BigInt `json:"amount"`
	DestinationChainId uint64  `json:"destinationChainId"`
}

type TransferClaimBody struct {
	TransferId         string  `json:"transferId"`
	Sender             string  `json:"sender"`
	Recipient          string  `json:"recipient"`
	Asset              string  `json:"asset"`
	Amount             *BigInt `json:"amount"`
	SourceChainId      uint64  `json:"sourceChainId"`
	DestinationChainId uint64  `json:"destinationChainId"`
}

type CompleteTransferBody struct {
	Claim *TransferClaimBody `json:"claim"`
	Proof string             `json:"proof"`
}

type TransfersHandler struct {
	orchestrator TransferOrchestrator
}

func NewTransfersHandler(orchestrator TransferOrchestrator) *TransfersHandler {
	return &TransfersHandler{orchestrator: orchestrator}
}

// HandleInitiate locks or burns funds for an outbound transfer and returns
// the transfer ID.
func (h *TransfersHandler) HandleInitiate(w http.ResponseWriter, r *http.Request) {
	b := &InitiateTransferBody{}
	if err := json.NewDecoder(r.Body).Decode(b); err != nil {
		JSONError(w, fmt.Errorf("invalid request body: %s", err), http.StatusBadRequest)
		return
	}
	if b.Amount == nil {
		JSONError(w, fmt.Errorf("missing field 'amount'"), http.StatusBadRequest)
		return
	}

	id, err := h.orchestrator.InitiateTransfer(
		r.Context(),
		common.HexToAddress(b.Sender),
		common.HexToAddress(b.Recipient),
		common.HexToAddress(b.Asset),
		b.Amount.Int,
		b.DestinationChainId,
	)
	if err != nil {
		BridgeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": id.Hex()})
}

// HandleComplete settles an inbound transfer against a relayer proof.
func (h *TransfersHandler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	b := &CompleteTransferBody{}
	if err := json.NewDecoder(r.Body).Decode(b); err != nil {
		JSONError(w, fmt.Errorf("invalid request body: %s", err), http.StatusBadRequest)
		return
	}
	if b.Claim == nil || b.Claim.Amount == nil {
		JSONError(w, fmt.Errorf("missing field 'claim'"), http.StatusBadRequest)
		return
	}

	proof, err := decodeProof(b.Proof)
	if err != nil {
		JSONError(w, err, http.StatusBadRequest)
		return
	}

	claim := &auth.TransferClaim{
		TransferID:  common.HexToHash(b.Claim.TransferId),
		Sender:      common.HexToAddress(b.Claim.Sender),
		Recipient:   common.HexToAddress(b.Claim.Recipient),
		Asset:       common.HexToAddress(b.Claim.Asset),
		Amount:      b.Claim.Amount.Int,
		Source:      b.Claim.SourceChainId,
		Destination: b.Claim.DestinationChainId,
	}
	if err := h.orchestrator.CompleteTransfer(r.Context(), claim, proof); err != nil {
		BridgeError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func decodeProof(proof string) ([]byte, error) {
	if proof == "" {
		return nil, fmt.Errorf("missing field 'proof'")
	}

	decoded, err := hex.DecodeString(strings.TrimPrefix(proof, "0x"))
	if err != nil {
		return nil, fmt.Errorf("field 'proof' not valid hex: %s", err)
	}
	return decoded, nil
}
