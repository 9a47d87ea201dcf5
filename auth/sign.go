package auth

import (
	"fmt"

	"github.com/bsv-blockchain/go-sdk/chainhash"
	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"

	"github.com/bitfsorg/libutxo-go/tx"
)

// Claimant returns the public identity an output should name so that key can spend it.
func Claimant(key *ec.PrivateKey) []byte {
	if key == nil {
		return nil
	}
	return key.PubKey().Compressed()
}

// Sign returns a DER signature by key over SHA-256 of message.
func Sign(key *ec.PrivateKey, message []byte) ([]byte, error) {
	if key == nil {
		return nil, ErrNilPrivateKey
	}
	sig, err := key.Sign(chainhash.HashB(message))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSigningFailed, err)
	}
	return sig.Serialize(), nil
}

// SignInput signs the payload of input i of t with key and attaches the proof.
// t must not be finalized yet.
func SignInput(t *tx.Transaction, i int, key *ec.PrivateKey) ([]byte, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: transaction", tx.ErrNilParam)
	}
	msg, err := t.RawMessageForInput(i)
	if err != nil {
		return nil, err
	}
	proof, err := Sign(key, msg)
	if err != nil {
		return nil, err
	}
	if err := t.SetProof(i, proof); err != nil {
		return nil, err
	}
	return proof, nil
}
