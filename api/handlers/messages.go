package handlers

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/sprintertech/sprinter-bridge/auth"
)

type MessageOrchestrator interface {
	SendMessage(ctx context.Context, sender, recipient common.Address, payload []byte, destination uint64) (common.Hash, error)
	ReceiveMessage(ctx context.Context, claim *auth.MessageClaim, payload []byte, proof []byte) (bool, error)
}

type SendMessageBody struct {
	Sender             string `json:"sender"`
	Recipient          string `json:"recipient"`
	Payload            string `json:"payload"`
	DestinationChainId uint64 `json:"destinationChainId"`
}

type MessageClaimBody struct {
	MessageId          string `json:"messageId"`
	Sender             string `json:"sender"`
	Recipient          string `json:"recipient"`
	PayloadHash        string `json:"payloadHash"`
	SourceChainId      uint64 `json:"sourceChainId"`
	DestinationChainId uint64 `json:"destinationChainId"`
}

type ReceiveMessageBody struct {
	Claim   *MessageClaimBody `json:"claim"`
	Payload string            `json:"payload"`
	Proof   string            `json:"proof"`
}

type MessagesHandler struct {
	orchestrator MessageOrchestrator
}

func NewMessagesHandler(orchestrator MessageOrchestrator) *MessagesHandler {
	return &MessagesHandler{orchestrator: orchestrator}
}

// HandleSend records an outbound payload for relay and returns its ID.
func (h *MessagesHandler) HandleSend(w http.ResponseWriter, r *http.Request) {
	b := &SendMessageBody{}
	if err := json.NewDecoder(r.Body).Decode(b); err != nil {
		JSONError(w, fmt.Errorf("invalid request body: %s", err), http.StatusBadRequest)
		return
	}

	payload, err := decodePayload(b.Payload)
	if err != nil {
		JSONError(w, err, http.StatusBadRequest)
		return
	}

	id, err := h.orchestrator.SendMessage(
		r.Context(),
		common.HexToAddress(b.Sender),
		common.HexToAddress(b.Recipient),
		payload,
		b.DestinationChainId,
	)
	if err != nil {
		BridgeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": id.Hex()})
}

// HandleReceive validates an inbound payload against a relayer proof and
// forwards it to the recipient handler. Delivery failure is a recorded
// outcome, reported with status 200 and delivered=false.
func (h *MessagesHandler) HandleReceive(w http.ResponseWriter, r *http.Request) {
	b := &ReceiveMessageBody{}
	if err := json.NewDecoder(r.Body).Decode(b); err != nil {
		JSONError(w, fmt.Errorf("invalid request body: %s", err), http.StatusBadRequest)
		return
	}
	if b.Claim == nil {
		JSONError(w, fmt.Errorf("missing field 'claim'"), http.StatusBadRequest)
		return
	}

	payload, err := decodePayload(b.Payload)
	if err != nil {
		JSONError(w, err, http.StatusBadRequest)
		return
	}
	proof, err := decodeProof(b.Proof)
	if err != nil {
		JSONError(w, err, http.StatusBadRequest)
		return
	}

	claim := &auth.MessageClaim{
		MessageID:   common.HexToHash(b.Claim.MessageId),
		Sender:      common.HexToAddress(b.Claim.Sender),
		Recipient:   common.HexToAddress(b.Claim.Recipient),
		PayloadHash: common.HexToHash(b.Claim.PayloadHash),
		Source:      b.Claim.SourceChainId,
		Destination: b.Claim.DestinationChainId,
	}
	delivered, err := h.orchestrator.ReceiveMessage(r.Context(), claim, payload, proof)
	if err != nil {
		BridgeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"delivered": delivered})
}

func decodePayload(payload string) ([]byte, error) {
	if payload == "" {
		return nil, fmt.Errorf("missing field 'payload'")
	}

	decoded, err := hex.DecodeString(strings.TrimPrefix(payload, "0x"))
	if err != nil {
		return nil, fmt.Errorf("field 'payload' not valid hex: %s", err)
	}
	return decoded, nil
}
