// Package utxo holds the set of currently unspent transaction outputs.
package utxo

import (
	"math/bits"
	"sort"

	"github.com/bitfsorg/libutxo-go/tx"
)

type entry struct {
	outpoint tx.Outpoint
	output   tx.Output
	seq      uint64
}

// Pool maps outpoints to the unspent outputs they name. Membership is the
// only record of whether an output is spendable.
//
// A Pool is not safe for concurrent use.
type Pool struct {
	entries map[string]*entry
	nextSeq uint64
}

// NewPool returns an empty pool.
func NewPool() *Pool {
	return &Pool{entries: make(map[string]*entry)}
}

// Clone returns a deep copy of p. Changes to either pool never affect the other.
func (p *Pool) Clone() *Pool {
	c := &Pool{
		entries: make(map[string]*entry, len(p.entries)),
		nextSeq: p.nextSeq,
	}
	for k, e := range p.entries {
		c.entries[k] = &entry{
			outpoint: tx.NewOutpoint(e.outpoint.Hash, e.outpoint.Index),
			output:   e.output.Clone(),
			seq:      e.seq,
		}
	}
	return c
}

// Add inserts or overwrites the output at op.
func (p *Pool) Add(op tx.Outpoint, out tx.Output) {
	k := op.Key()
	if e, ok := p.entries[k]; ok {
		e.output = out.Clone()
		return
	}
	p.entries[k] = &entry{
		outpoint: tx.NewOutpoint(op.Hash, op.Index),
		output:   out.Clone(),
		seq:      p.nextSeq,
	}
	p.nextSeq++
}

// Remove deletes the output at op. Removing an absent outpoint is a no-op.
func (p *Pool) Remove(op tx.Outpoint) {
	delete(p.entries, op.Key())
}

// Contains reports whether op names an unspent output.
func (p *Pool) Contains(op tx.Outpoint) bool {
	_, ok := p.entries[op.Key()]
	return ok
}

// Get returns a copy of the output at op, or ErrNotFound.
func (p *Pool) Get(op tx.Outpoint) (tx.Output, error) {
	e, ok := p.entries[op.Key()]
	if !ok {
		return tx.Output{}, ErrNotFound
	}
	return e.output.Clone(), nil
}

// All returns every outpoint in insertion order. The order carries no meaning
// beyond being stable for a given sequence of mutations.
func (p *Pool) All() []tx.Outpoint {
	ordered := make([]*entry, 0, len(p.entries))
	for _, e := range p.entries {
		ordered = append(ordered, e)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].seq < ordered[j].seq })

	ops := make([]tx.Outpoint, len(ordered))
	for i, e := range ordered {
		ops[i] = tx.NewOutpoint(e.outpoint.Hash, e.outpoint.Index)
	}
	return ops
}

// Len returns the number of unspent outputs.
func (p *Pool) Len() int {
	return len(p.entries)
}

// Total returns the sum of all unspent output values.
func (p *Pool) Total() (uint64, error) {
	var total, carry uint64
	for _, e := range p.entries {
		total, carry = bits.Add64(total, e.output.Value, 0)
		if carry != 0 {
			return 0, ErrValueOverflow
		}
	}
	return total, nil
}
