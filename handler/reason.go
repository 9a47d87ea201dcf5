package handler

// Reason names one way a transaction can fail validation.
type Reason int

const (
	// ReasonNotFinalized means the transaction is nil or has no content hash.
	ReasonNotFinalized Reason = iota + 1
	// ReasonMissingInput means an input names an outpoint absent from the pool.
	ReasonMissingInput
	// ReasonBadProof means an input proof does not authorize its payload.
	ReasonBadProof
	// ReasonDoubleClaim means two inputs name the same outpoint.
	ReasonDoubleClaim
	// ReasonNonPositiveOutput means an output carries a zero value.
	ReasonNonPositiveOutput
	// ReasonInsufficientInput means outputs are worth more than the claimed inputs.
	ReasonInsufficientInput
)

var reasonNames = map[Reason]string{
	ReasonNotFinalized:      "not finalized",
	ReasonMissingInput:      "missing input",
	ReasonBadProof:          "bad proof",
	ReasonDoubleClaim:       "double claim",
	ReasonNonPositiveOutput: "non-positive output",
	ReasonInsufficientInput: "insufficient input",
}

func (r Reason) String() string {
	if s, ok := reasonNames[r]; ok {
		return s
	}
	return "unknown"
}
