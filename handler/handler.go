// Package handler validates transactions against a private UTXO pool and
// applies batches of them.
package handler

import (
	"math/bits"

	"github.com/bitfsorg/libutxo-go/logging"
	"github.com/bitfsorg/libutxo-go/tx"
	"github.com/bitfsorg/libutxo-go/utxo"
)

// Verifier decides whether proof authorizes message on behalf of claimant.
// Implementations must be deterministic and must report false, never panic,
// on malformed input.
type Verifier interface {
	Verify(claimant, message, proof []byte) bool
}

// Option configures a TxHandler.
type Option func(*TxHandler)

// WithLogger sets the logger used to report rejections and acceptances.
func WithLogger(l logging.Logger) Option {
	return func(h *TxHandler) {
		if l != nil {
			h.logger = l
		}
	}
}

// TxHandler owns a private UTXO pool and validates transactions against it.
//
// A TxHandler is not safe for concurrent use: HandleTxs mutates the pool in place.
type TxHandler struct {
	pool     *utxo.Pool
	verifier Verifier
	logger   logging.Logger
}

// New returns a TxHandler over a deep copy of pool. Later changes to pool are
// not seen by the handler and the handler never writes to pool.
func New(pool *utxo.Pool, verifier Verifier, opts ...Option) *TxHandler {
	var own *utxo.Pool
	if pool == nil {
		own = utxo.NewPool()
	} else {
		own = pool.Clone()
	}
	h := &TxHandler{
		pool:     own,
		verifier: verifier,
		logger:   logging.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Pool returns a copy of the handler's current pool.
func (h *TxHandler) Pool() *utxo.Pool {
	return h.pool.Clone()
}

// IsValidTx reports whether t is valid against the current pool:
//
//  1. every claimed output is in the pool,
//  2. every input proof authorizes its signing payload,
//  3. no output is claimed twice,
//  4. every output value is positive, and
//  5. input values sum to at least the output values.
//
// IsValidTx never mutates the pool.
func (h *TxHandler) IsValidTx(t *tx.Transaction) bool {
	return len(h.Violations(t)) == 0
}

// Violations evaluates every validity rule against t and returns the ones
// that fail, in rule order. A nil result means t is valid. A nil or
// unfinalized transaction yields only ReasonNotFinalized.
func (h *TxHandler) Violations(t *tx.Transaction) []Reason {
	if !t.IsFinalized() {
		return []Reason{ReasonNotFinalized}
	}

	inputs := t.Inputs()
	outputs := t.Outputs()

	var reasons []Reason
	if !h.inputsInPool(inputs) {
		reasons = append(reasons, ReasonMissingInput)
	}
	if !h.proofsValid(t, inputs) {
		reasons = append(reasons, ReasonBadProof)
	}
	if claimedTwice(inputs) {
		reasons = append(reasons, ReasonDoubleClaim)
	}
	if !outputsPositive(outputs) {
		reasons = append(reasons, ReasonNonPositiveOutput)
	}
	if !h.valueConserved(inputs, outputs) {
		reasons = append(reasons, ReasonInsufficientInput)
	}
	return reasons
}

func (h *TxHandler) inputsInPool(inputs []tx.Input) bool {
	for _, in := range inputs {
		if !h.pool.Contains(in.Outpoint) {
			return false
		}
	}
	return true
}

func (h *TxHandler) proofsValid(t *tx.Transaction, inputs []tx.Input) bool {
	for i, in := range inputs {
		prev, err := h.pool.Get(in.Outpoint)
		if err != nil {
			return false
		}
		msg, err := t.RawMessageForInput(i)
		if err != nil {
			return false
		}
		if !h.verify(prev.Claimant, msg, in.Proof) {
			return false
		}
	}
	return true
}

// verify shields the handler from a misbehaving verifier.
func (h *TxHandler) verify(claimant, msg, proof []byte) (ok bool) {
	if h.verifier == nil {
		return false
	}
	defer func() {
		if r := recover(); r != nil {
			h.logger.Warnf("verifier panicked: %v", r)
			ok = false
		}
	}()
	return h.verifier.Verify(claimant, msg, proof)
}

func claimedTwice(inputs []tx.Input) bool {
	seen := make(map[string]struct{}, len(inputs))
	for _, in := range inputs {
		k := in.Outpoint.Key()
		if _, ok := seen[k]; ok {
			return true
		}
		seen[k] = struct{}{}
	}
	return false
}

// outputsPositive requires every output value to be strictly positive.
func outputsPositive(outputs []tx.Output) bool {
	for _, o := range outputs {
		if o.Value == 0 {
			return false
		}
	}
	return true
}

// valueConserved compares input and output sums. Inputs absent from the pool
// contribute nothing; an overflowing sum fails.
func (h *TxHandler) valueConserved(inputs []tx.Input, outputs []tx.Output) bool {
	var in, out, carry uint64
	for _, i := range inputs {
		prev, err := h.pool.Get(i.Outpoint)
		if err != nil {
			continue
		}
		in, carry = bits.Add64(in, prev.Value, 0)
		if carry != 0 {
			return false
		}
	}
	for _, o := range outputs {
		out, carry = bits.Add64(out, o.Value, 0)
		if carry != 0 {
			return false
		}
	}
	return in >= out
}
