package utxo

import "errors"

var (
	// ErrNotFound indicates the outpoint is not in the pool.
	ErrNotFound = errors.New("utxo: outpoint not found")

	// ErrValueOverflow indicates a sum of output values does not fit in uint64.
	ErrValueOverflow = errors.New("utxo: value sum overflows")
)
