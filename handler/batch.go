package handler

import (
	"github.com/bitfsorg/libutxo-go/tx"
)

// HandleTxs runs one epoch: each candidate is checked in order against the
// pool as left by the candidates before it, and applied at once if valid.
// It returns the accepted transactions in processing order.
//
// Acceptance is greedy and order dependent. A candidate may spend outputs
// created earlier in the same batch, but one whose dependency appears later
// is rejected; candidates are never reordered or retried.
func (h *TxHandler) HandleTxs(candidates []*tx.Transaction) []*tx.Transaction {
	accepted := make([]*tx.Transaction, 0, len(candidates))
	for i, t := range candidates {
		if reasons := h.Violations(t); len(reasons) > 0 {
			h.logger.Debugf("rejected candidate %d %s: %v", i, t.HashHex(), reasons)
			continue
		}
		h.apply(t)
		accepted = append(accepted, t)
		h.logger.Debugf("accepted candidate %d %s", i, t.HashHex())
	}
	h.logger.Infof("epoch accepted %d of %d transactions, pool size %d", len(accepted), len(candidates), h.pool.Len())
	return accepted
}

// apply spends t's inputs and adds its outputs. t must already be valid.
func (h *TxHandler) apply(t *tx.Transaction) {
	for _, in := range t.Inputs() {
		h.pool.Remove(in.Outpoint)
	}
	hash := t.Hash()
	for i, out := range t.Outputs() {
		h.pool.Add(tx.NewOutpoint(hash, uint32(i)), out)
	}
}
