// The Licensed Work is (c) 2022 Sygma
// SPDX-License-Identifier: LGPL-3.0-only

package auth

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/sprintertech/sprinter-bridge/types"
)

// ProofLength is the length of a secp256k1 proof: r || s || v.
const ProofLength = 65

// Authenticator recovers the signer identity from a proof over a claim
// digest. Implementations perform pure verification and mutate no state.
//
// The default implementation trusts any single authorized signer. A
// threshold or k-of-n scheme can be substituted here without touching the
// orchestrators, but the single-signer default mirrors the on-chain
// protocol and tolerates no compromised relayer.
type Authenticator interface {
	Verify(claim Claim, proof []byte) (common.Address, error)
}

type ECDSAAuthenticator struct{}

func NewECDSAAuthenticator() *ECDSAAuthenticator {
	return &ECDSAAuthenticator{}
}

// Verify recovers the address that produced proof over the claim digest.
// The caller is responsible for checking the recovered address against the
// authorized relayer set of the claimed source chain.
func (a *ECDSAAuthenticator) Verify(claim Claim, proof []byte) (common.Address, error) {
	if len(proof) != ProofLength {
		return common.Address{}, &types.AuthorizationError{
			Reason: fmt.Sprintf("invalid proof format: expected %d bytes, got %d", ProofLength, len(proof)),
		}
	}

	digest, err := claim.Digest()
	if err != nil {
		return common.Address{}, &types.ValidationError{Field: "claim", Reason: err.Error()}
	}

	sig := make([]byte, ProofLength)
	copy(sig, proof)
	// accept both legacy 27/28 and canonical 0/1 recovery ids
	if sig[64] >= 27 {
		sig[64] -= 27
	}

	pub, err := crypto.SigToPub(digest, sig)
	if err != nil {
		return common.Address{}, &types.AuthorizationError{
			Reason: fmt.Sprintf("invalid proof: %s", err),
		}
	}

	return crypto.PubkeyToAddress(*pub), nil
}

// SignClaim produces a proof over the claim digest. Used by relayer tooling
// and tests.
func SignClaim(claim Claim, key *ecdsa.PrivateKey) ([]byte, error) {
	digest, err := claim.Digest()
	if err != nil {
		return nil, err
	}

	return crypto.Sign(digest, key)
}
