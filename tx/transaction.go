package tx

import (
	"bytes"
	"fmt"

	"github.com/bsv-blockchain/go-sdk/chainhash"
)

// HashLen is the length of a transaction content hash.
const HashLen = chainhash.HashSize

// Transaction is an ordered list of claimed inputs and newly created outputs.
//
// A Transaction is assembled with AddInput, AddOutput and SetProof and then
// sealed with Finalize, which computes the content hash over every input
// (proofs included) and output. A finalized transaction rejects all further
// mutation.
type Transaction struct {
	inputs  []Input
	outputs []Output
	hash    []byte
}

// New returns an empty, unfinalized transaction.
func New() *Transaction {
	return &Transaction{}
}

// AddInput appends an input claiming output index of the transaction with
// content hash prevHash. The proof is attached later with SetProof.
func (t *Transaction) AddInput(prevHash []byte, index uint32) error {
	if t.IsFinalized() {
		return ErrFinalized
	}
	if len(prevHash) == 0 {
		return fmt.Errorf("%w: previous transaction hash", ErrNilParam)
	}
	t.inputs = append(t.inputs, Input{Outpoint: NewOutpoint(prevHash, index)})
	return nil
}

// AddOutput appends an output paying value to claimant.
func (t *Transaction) AddOutput(value uint64, claimant []byte) error {
	if t.IsFinalized() {
		return ErrFinalized
	}
	if len(claimant) == 0 {
		return fmt.Errorf("%w: claimant", ErrNilParam)
	}
	t.outputs = append(t.outputs, Output{Value: value, Claimant: bytes.Clone(claimant)})
	return nil
}

// SetProof attaches the authorization proof for input i.
func (t *Transaction) SetProof(i int, proof []byte) error {
	if t.IsFinalized() {
		return ErrFinalized
	}
	if i < 0 || i >= len(t.inputs) {
		return fmt.Errorf("%w: input %d of %d", ErrIndexOutOfRange, i, len(t.inputs))
	}
	t.inputs[i].Proof = bytes.Clone(proof)
	return nil
}

// RawMessageForInput returns the canonical payload that the proof of input i
// must authorize. The payload commits to every input outpoint and every
// output but to no proof, so proofs may be attached in any order.
func (t *Transaction) RawMessageForInput(i int) ([]byte, error) {
	if i < 0 || i >= len(t.inputs) {
		return nil, fmt.Errorf("%w: input %d of %d", ErrIndexOutOfRange, i, len(t.inputs))
	}
	return encodeSigningPayload(t.inputs, t.outputs, uint32(i))
}

// Finalize computes and freezes the content hash. It must be called exactly
// once, after every proof is attached.
func (t *Transaction) Finalize() error {
	if t.IsFinalized() {
		return ErrFinalized
	}
	data, err := encodeWire(t.inputs, t.outputs)
	if err != nil {
		return err
	}
	h := chainhash.DoubleHashH(data)
	t.hash = h.CloneBytes()
	return nil
}

// IsFinalized reports whether the content hash has been computed.
func (t *Transaction) IsFinalized() bool {
	return t != nil && len(t.hash) == HashLen
}

// Hash returns a copy of the content hash, or nil before Finalize.
func (t *Transaction) Hash() []byte {
	return bytes.Clone(t.hash)
}

// HashHex returns the content hash in display (byte-reversed) hex form,
// or the empty string before Finalize.
func (t *Transaction) HashHex() string {
	if !t.IsFinalized() {
		return ""
	}
	h, err := chainhash.NewHash(t.hash)
	if err != nil {
		return ""
	}
	return h.String()
}

// Bytes returns the wire encoding of the transaction, proofs included.
func (t *Transaction) Bytes() ([]byte, error) {
	return encodeWire(t.inputs, t.outputs)
}

// NumInputs returns the number of inputs.
func (t *Transaction) NumInputs() int { return len(t.inputs) }

// NumOutputs returns the number of outputs.
func (t *Transaction) NumOutputs() int { return len(t.outputs) }

// Input returns a copy of input i.
func (t *Transaction) Input(i int) (Input, error) {
	if i < 0 || i >= len(t.inputs) {
		return Input{}, fmt.Errorf("%w: input %d of %d", ErrIndexOutOfRange, i, len(t.inputs))
	}
	return t.inputs[i].clone(), nil
}

// Output returns a copy of output i.
func (t *Transaction) Output(i int) (Output, error) {
	if i < 0 || i >= len(t.outputs) {
		return Output{}, fmt.Errorf("%w: output %d of %d", ErrIndexOutOfRange, i, len(t.outputs))
	}
	return t.outputs[i].Clone(), nil
}

// Inputs returns copies of all inputs in order.
func (t *Transaction) Inputs() []Input {
	out := make([]Input, len(t.inputs))
	for i, in := range t.inputs {
		out[i] = in.clone()
	}
	return out
}

// Outputs returns copies of all outputs in order.
func (t *Transaction) Outputs() []Output {
	out := make([]Output, len(t.outputs))
	for i, o := range t.outputs {
		out[i] = o.Clone()
	}
	return out
}

// OutpointFor returns the outpoint that names output i of this transaction
// once it is accepted. The transaction must be finalized.
func (t *Transaction) OutpointFor(i int) (Outpoint, error) {
	if !t.IsFinalized() {
		return Outpoint{}, ErrNotFinalized
	}
	if i < 0 || i >= len(t.outputs) {
		return Outpoint{}, fmt.Errorf("%w: output %d of %d", ErrIndexOutOfRange, i, len(t.outputs))
	}
	return NewOutpoint(t.hash, uint32(i)), nil
}
