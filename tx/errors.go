package tx

import "errors"

var (
	// ErrNilParam indicates a required parameter is nil.
	ErrNilParam = errors.New("tx: required parameter is nil")

	// ErrFinalized indicates a mutation was attempted on a finalized transaction.
	ErrFinalized = errors.New("tx: transaction is finalized")

	// ErrNotFinalized indicates the content hash has not been computed yet.
	ErrNotFinalized = errors.New("tx: transaction is not finalized")

	// ErrIndexOutOfRange indicates an input or output index does not exist.
	ErrIndexOutOfRange = errors.New("tx: index out of range")

	// ErrFieldTooLarge indicates a variable-length field exceeds the u32 length prefix.
	ErrFieldTooLarge = errors.New("tx: field too large")

	// ErrMalformed indicates wire bytes could not be decoded into a transaction.
	ErrMalformed = errors.New("tx: malformed transaction encoding")
)
