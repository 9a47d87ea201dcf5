package tx

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

// Outpoint names one output of one earlier transaction.
type Outpoint struct {
	Hash  []byte // content hash of the source transaction
	Index uint32 // position of the output in the source transaction
}

// NewOutpoint returns an Outpoint holding its own copy of hash.
func NewOutpoint(hash []byte, index uint32) Outpoint {
	return Outpoint{Hash: bytes.Clone(hash), Index: index}
}

// Equal reports whether o and other name the same output.
func (o Outpoint) Equal(other Outpoint) bool {
	return o.Index == other.Index && bytes.Equal(o.Hash, other.Hash)
}

// Key returns a comparable form of the outpoint suitable as a map key.
// Two outpoints have the same key exactly when Equal reports true.
func (o Outpoint) Key() string {
	buf := make([]byte, 4+len(o.Hash))
	binary.BigEndian.PutUint32(buf[:4], o.Index)
	copy(buf[4:], o.Hash)
	return string(buf)
}

// String renders the outpoint as hash:index.
func (o Outpoint) String() string {
	return fmt.Sprintf("%s:%d", hex.EncodeToString(o.Hash), o.Index)
}

// Output is a value claimable by the holder of Claimant.
type Output struct {
	Value    uint64 // minor units
	Claimant []byte // serialized public identity allowed to spend the output
}

// Clone returns a deep copy of the output.
func (o Output) Clone() Output {
	return Output{Value: o.Value, Claimant: bytes.Clone(o.Claimant)}
}

// Input claims a previous output and carries the proof authorizing the claim.
type Input struct {
	Outpoint Outpoint
	Proof    []byte
}

func (in Input) clone() Input {
	return Input{
		Outpoint: NewOutpoint(in.Outpoint.Hash, in.Outpoint.Index),
		Proof:    bytes.Clone(in.Proof),
	}
}
