// Package auth produces and checks the proofs that authorize spending an output.
//
// Claimants are 33-byte compressed secp256k1 public keys. A proof is a DER
// ECDSA signature over SHA-256 of the input's signing payload.
package auth

import (
	"github.com/bsv-blockchain/go-sdk/chainhash"
	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
)

// Verifier checks secp256k1 ECDSA proofs.
type Verifier struct{}

// NewVerifier returns a secp256k1 ECDSA verifier.
func NewVerifier() Verifier {
	return Verifier{}
}

// Verify reports whether proof is a valid signature by claimant over message.
// Malformed keys or signatures, and any panic raised while checking them,
// yield false.
func (Verifier) Verify(claimant, message, proof []byte) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	if len(claimant) == 0 || len(proof) == 0 {
		return false
	}
	pub, err := ec.PublicKeyFromBytes(claimant)
	if err != nil {
		return false
	}
	sig, err := ec.ParseDERSignature(proof)
	if err != nil {
		return false
	}
	return sig.Verify(chainhash.HashB(message), pub)
}

// VerifierFunc adapts an ordinary function to the verifier contract.
type VerifierFunc func(claimant, message, proof []byte) bool

// Verify calls f.
func (f VerifierFunc) Verify(claimant, message, proof []byte) bool {
	return f(claimant, message, proof)
}
