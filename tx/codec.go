package tx

import (
	"encoding/binary"
	"fmt"
	"math"
)

// sigDomainTag prefixes every signing payload so that it can never be
// confused with a wire encoding.
var sigDomainTag = []byte("utxo-sig-v1")

// Signing payload layout (all integers big-endian, var = u32 length || bytes):
//
//	tag(11) | u32 input index | u32 numInputs | {var hash, u32 index}*
//	| u32 numOutputs | {u64 value, var claimant}*
//
// Wire layout:
//
//	u32 numInputs | {var hash, u32 index, var proof}* | u32 numOutputs | {u64 value, var claimant}*

func encodeSigningPayload(inputs []Input, outputs []Output, index uint32) ([]byte, error) {
	var w writer
	w.bytes(sigDomainTag)
	w.u32(index)
	if err := w.count(len(inputs)); err != nil {
		return nil, err
	}
	for _, in := range inputs {
		if err := w.varBytes(in.Outpoint.Hash); err != nil {
			return nil, err
		}
		w.u32(in.Outpoint.Index)
	}
	if err := writeOutputs(&w, outputs); err != nil {
		return nil, err
	}
	return w.buf, nil
}

func encodeWire(inputs []Input, outputs []Output) ([]byte, error) {
	var w writer
	if err := w.count(len(inputs)); err != nil {
		return nil, err
	}
	for _, in := range inputs {
		if err := w.varBytes(in.Outpoint.Hash); err != nil {
			return nil, err
		}
		w.u32(in.Outpoint.Index)
		if err := w.varBytes(in.Proof); err != nil {
			return nil, err
		}
	}
	if err := writeOutputs(&w, outputs); err != nil {
		return nil, err
	}
	return w.buf, nil
}

func writeOutputs(w *writer, outputs []Output) error {
	if err := w.count(len(outputs)); err != nil {
		return err
	}
	for _, o := range outputs {
		w.u64(o.Value)
		if err := w.varBytes(o.Claimant); err != nil {
			return err
		}
	}
	return nil
}

// Parse decodes a wire-encoded transaction and finalizes it.
func Parse(data []byte) (*Transaction, error) {
	r := reader{buf: data}

	numInputs, err := r.u32()
	if err != nil {
		return nil, err
	}
	// Each input needs at least 12 bytes; reject impossible counts before allocating.
	if uint64(numInputs)*12 > uint64(r.remaining()) {
		return nil, fmt.Errorf("%w: %d inputs exceed %d remaining bytes", ErrMalformed, numInputs, r.remaining())
	}
	t := &Transaction{inputs: make([]Input, 0, numInputs)}
	for i := uint32(0); i < numInputs; i++ {
		hash, err := r.varBytes()
		if err != nil {
			return nil, err
		}
		if len(hash) == 0 {
			return nil, fmt.Errorf("%w: input %d has empty outpoint hash", ErrMalformed, i)
		}
		index, err := r.u32()
		if err != nil {
			return nil, err
		}
		proof, err := r.varBytes()
		if err != nil {
			return nil, err
		}
		t.inputs = append(t.inputs, Input{Outpoint: Outpoint{Hash: hash, Index: index}, Proof: proof})
	}

	numOutputs, err := r.u32()
	if err != nil {
		return nil, err
	}
	if uint64(numOutputs)*12 > uint64(r.remaining()) {
		return nil, fmt.Errorf("%w: %d outputs exceed %d remaining bytes", ErrMalformed, numOutputs, r.remaining())
	}
	t.outputs = make([]Output, 0, numOutputs)
	for i := uint32(0); i < numOutputs; i++ {
		value, err := r.u64()
		if err != nil {
			return nil, err
		}
		claimant, err := r.varBytes()
		if err != nil {
			return nil, err
		}
		if len(claimant) == 0 {
			return nil, fmt.Errorf("%w: output %d has empty claimant", ErrMalformed, i)
		}
		t.outputs = append(t.outputs, Output{Value: value, Claimant: claimant})
	}

	if r.remaining() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrMalformed, r.remaining())
	}
	if err := t.Finalize(); err != nil {
		return nil, err
	}
	return t, nil
}

type writer struct {
	buf []byte
}

func (w *writer) bytes(b []byte) { w.buf = append(w.buf, b...) }

func (w *writer) u32(v uint32) { w.buf = binary.BigEndian.AppendUint32(w.buf, v) }

func (w *writer) u64(v uint64) { w.buf = binary.BigEndian.AppendUint64(w.buf, v) }

func (w *writer) count(n int) error {
	if uint64(n) > math.MaxUint32 {
		return fmt.Errorf("%w: %d entries", ErrFieldTooLarge, n)
	}
	w.u32(uint32(n))
	return nil
}

func (w *writer) varBytes(b []byte) error {
	if err := w.count(len(b)); err != nil {
		return err
	}
	w.bytes(b)
	return nil
}

type reader struct {
	buf []byte
	off int
}

func (r *reader) remaining() int { return len(r.buf) - r.off }

func (r *reader) take(n int) ([]byte, error) {
	if n < 0 || n > r.remaining() {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrMalformed, n, r.off, r.remaining())
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *reader) u32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (r *reader) u64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

func (r *reader) varBytes() ([]byte, error) {
	n, err := r.u32()
	if err != nil {
		return nil, err
	}
	if uint64(n) > uint64(r.remaining()) {
		return nil, fmt.Errorf("%w: field length %d exceeds %d remaining bytes", ErrMalformed, n, r.remaining())
	}
	b, err := r.take(int(n))
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}
