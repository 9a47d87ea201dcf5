package handler

import (
	"bytes"
	"math"
	"strings"
	"testing"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/libutxo-go/auth"
	"github.com/bitfsorg/libutxo-go/logging"
	"github.com/bitfsorg/libutxo-go/tx"
	"github.com/bitfsorg/libutxo-go/utxo"
)

var genesisHash = bytes.Repeat([]byte{0x01}, tx.HashLen)

func generateTestKey(t *testing.T) *ec.PrivateKey {
	t.Helper()
	key, err := ec.NewPrivateKey()
	require.NoError(t, err)
	return key
}

// okVerifier accepts exactly the proof "ok".
var okVerifier = auth.VerifierFunc(func(_, _, proof []byte) bool {
	return string(proof) == "ok"
})

type spend struct {
	hash  []byte
	index uint32
	key   *ec.PrivateKey // nil: attach the stub proof "ok"
}

type pay struct {
	value    uint64
	claimant []byte
}

func buildTx(t *testing.T, ins []spend, outs []pay) *tx.Transaction {
	t.Helper()
	tr := tx.New()
	for _, in := range ins {
		require.NoError(t, tr.AddInput(in.hash, in.index))
	}
	for _, out := range outs {
		require.NoError(t, tr.AddOutput(out.value, out.claimant))
	}
	for i, in := range ins {
		if in.key == nil {
			require.NoError(t, tr.SetProof(i, []byte("ok")))
			continue
		}
		_, err := auth.SignInput(tr, i, in.key)
		require.NoError(t, err)
	}
	require.NoError(t, tr.Finalize())
	return tr
}

func seededPool(values ...uint64) *utxo.Pool {
	p := utxo.NewPool()
	for i, v := range values {
		p.Add(tx.NewOutpoint(genesisHash, uint32(i)), tx.Output{Value: v, Claimant: []byte("stub")})
	}
	return p
}

// --- Concrete scenario ---

func TestHandleTxs_SplitScenario(t *testing.T) {
	a, b, c := generateTestKey(t), generateTestKey(t), generateTestKey(t)

	pool := utxo.NewPool()
	origin := tx.NewOutpoint([]byte("transaction1"), 0)
	pool.Add(origin, tx.Output{Value: 10, Claimant: auth.Claimant(a)})

	spendTx := buildTx(t,
		[]spend{{hash: origin.Hash, index: 0, key: a}},
		[]pay{{7, auth.Claimant(b)}, {3, auth.Claimant(c)}},
	)

	h := New(pool, auth.NewVerifier())
	assert.True(t, h.IsValidTx(spendTx))

	accepted := h.HandleTxs([]*tx.Transaction{spendTx})
	require.Len(t, accepted, 1)
	assert.Same(t, spendTx, accepted[0])

	after := h.Pool()
	assert.Equal(t, 2, after.Len())
	assert.False(t, after.Contains(origin))

	out0, err := after.Get(tx.NewOutpoint(spendTx.Hash(), 0))
	require.NoError(t, err)
	assert.Equal(t, uint64(7), out0.Value)
	assert.Equal(t, auth.Claimant(b), out0.Claimant)

	out1, err := after.Get(tx.NewOutpoint(spendTx.Hash(), 1))
	require.NoError(t, err)
	assert.Equal(t, uint64(3), out1.Value)
	assert.Equal(t, auth.Claimant(c), out1.Claimant)
}

// --- Pool ownership ---

func TestNew_CopiesPool(t *testing.T) {
	pool := seededPool(10)
	h := New(pool, okVerifier)

	pool.Remove(tx.NewOutpoint(genesisHash, 0))
	spendTx := buildTx(t, []spend{{hash: genesisHash}}, []pay{{10, []byte("b")}})
	assert.True(t, h.IsValidTx(spendTx), "caller mutation must not leak into the handler")

	pool.Add(tx.NewOutpoint(genesisHash, 0), tx.Output{Value: 10, Claimant: []byte("stub")})
	require.Len(t, h.HandleTxs([]*tx.Transaction{spendTx}), 1)
	assert.True(t, pool.Contains(tx.NewOutpoint(genesisHash, 0)), "handler mutation must not leak out")
	assert.Equal(t, 1, pool.Len())
}

func TestPool_ReturnsCopy(t *testing.T) {
	h := New(seededPool(10), okVerifier)
	h.Pool().Remove(tx.NewOutpoint(genesisHash, 0))
	assert.Equal(t, 1, h.Pool().Len())
}

func TestNew_NilPool(t *testing.T) {
	h := New(nil, okVerifier)
	assert.Equal(t, 0, h.Pool().Len())
}

// --- Single transaction rules ---

func TestViolations(t *testing.T) {
	tests := []struct {
		name string
		pool *utxo.Pool
		ins  []spend
		outs []pay
		want []Reason
	}{
		{
			name: "valid zero fee",
			pool: seededPool(10),
			ins:  []spend{{hash: genesisHash}},
			outs: []pay{{10, []byte("b")}},
		},
		{
			name: "valid with implicit fee",
			pool: seededPool(10, 5),
			ins:  []spend{{hash: genesisHash, index: 0}, {hash: genesisHash, index: 1}},
			outs: []pay{{9, []byte("b")}, {1, []byte("c")}},
		},
		{
			name: "no outputs",
			pool: seededPool(10),
			ins:  []spend{{hash: genesisHash}},
		},
		{
			name: "missing input",
			pool: seededPool(10),
			ins:  []spend{{hash: genesisHash, index: 7}},
			outs: []pay{{1, []byte("b")}},
			want: []Reason{ReasonMissingInput, ReasonBadProof, ReasonInsufficientInput},
		},
		{
			name: "double claim",
			pool: seededPool(10),
			ins:  []spend{{hash: genesisHash}, {hash: genesisHash}},
			outs: []pay{{5, []byte("b")}},
			want: []Reason{ReasonDoubleClaim},
		},
		{
			name: "zero value output",
			pool: seededPool(10),
			ins:  []spend{{hash: genesisHash}},
			outs: []pay{{10, []byte("b")}, {0, []byte("c")}},
			want: []Reason{ReasonNonPositiveOutput},
		},
		{
			name: "outputs exceed inputs by one",
			pool: seededPool(10),
			ins:  []spend{{hash: genesisHash}},
			outs: []pay{{6, []byte("b")}, {5, []byte("c")}},
			want: []Reason{ReasonInsufficientInput},
		},
		{
			name: "output sum overflows",
			pool: seededPool(10),
			ins:  []spend{{hash: genesisHash}},
			outs: []pay{{math.MaxUint64, []byte("b")}, {2, []byte("c")}},
			want: []Reason{ReasonInsufficientInput},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := New(tt.pool, okVerifier)
			candidate := buildTx(t, tt.ins, tt.outs)
			assert.Equal(t, tt.want, h.Violations(candidate))
			assert.Equal(t, len(tt.want) == 0, h.IsValidTx(candidate))
		})
	}
}

func TestViolations_BadProof(t *testing.T) {
	h := New(seededPool(10), okVerifier)

	candidate := tx.New()
	require.NoError(t, candidate.AddInput(genesisHash, 0))
	require.NoError(t, candidate.AddOutput(5, []byte("b")))
	require.NoError(t, candidate.SetProof(0, []byte("forged")))
	require.NoError(t, candidate.Finalize())

	assert.Equal(t, []Reason{ReasonBadProof}, h.Violations(candidate))
}

func TestViolations_NotFinalized(t *testing.T) {
	h := New(seededPool(10), okVerifier)

	candidate := tx.New()
	require.NoError(t, candidate.AddInput(genesisHash, 0))
	require.NoError(t, candidate.AddOutput(5, []byte("b")))
	require.NoError(t, candidate.SetProof(0, []byte("ok")))

	assert.Equal(t, []Reason{ReasonNotFinalized}, h.Violations(candidate))
	assert.False(t, h.IsValidTx(candidate))
	assert.False(t, h.IsValidTx(nil))
	assert.Empty(t, h.HandleTxs([]*tx.Transaction{nil, candidate}))
	assert.Equal(t, 1, h.Pool().Len())
}

func TestIsValidTx_Pure(t *testing.T) {
	h := New(seededPool(10), okVerifier)
	valid := buildTx(t, []spend{{hash: genesisHash}}, []pay{{4, []byte("b")}})
	invalid := buildTx(t, []spend{{hash: genesisHash}}, []pay{{11, []byte("b")}})

	for i := 0; i < 3; i++ {
		assert.True(t, h.IsValidTx(valid))
		assert.False(t, h.IsValidTx(invalid))
	}
	assert.Equal(t, 1, h.Pool().Len())
}

func TestIsValidTx_VerifierFaultsAreRejections(t *testing.T) {
	panicky := auth.VerifierFunc(func(_, _, _ []byte) bool { panic("bad key material") })
	candidate := buildTx(t, []spend{{hash: genesisHash}}, []pay{{4, []byte("b")}})

	for name, h := range map[string]*TxHandler{
		"panicking verifier": New(seededPool(10), panicky),
		"nil verifier":       New(seededPool(10), nil),
	} {
		t.Run(name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.Equal(t, []Reason{ReasonBadProof}, h.Violations(candidate))
			})
		})
	}
}

// --- Authorization with real signatures ---

func TestIsValidTx_ProofTampering(t *testing.T) {
	owner, thief, payee := generateTestKey(t), generateTestKey(t), generateTestKey(t)

	pool := utxo.NewPool()
	pool.Add(tx.NewOutpoint(genesisHash, 0), tx.Output{Value: 10, Claimant: auth.Claimant(owner)})
	h := New(pool, auth.NewVerifier())

	honest := buildTx(t, []spend{{hash: genesisHash, key: owner}}, []pay{{10, auth.Claimant(payee)}})
	require.True(t, h.IsValidTx(honest))

	stolen := buildTx(t, []spend{{hash: genesisHash, key: thief}}, []pay{{10, auth.Claimant(payee)}})
	assert.Equal(t, []Reason{ReasonBadProof}, h.Violations(stolen))

	in, err := honest.Input(0)
	require.NoError(t, err)
	for _, i := range []int{0, len(in.Proof) / 2, len(in.Proof) - 1} {
		flipped := bytes.Clone(in.Proof)
		flipped[i] ^= 0x01

		tampered := tx.New()
		require.NoError(t, tampered.AddInput(genesisHash, 0))
		require.NoError(t, tampered.AddOutput(10, auth.Claimant(payee)))
		require.NoError(t, tampered.SetProof(0, flipped))
		require.NoError(t, tampered.Finalize())
		assert.False(t, h.IsValidTx(tampered), "flipped byte %d", i)
	}

	// A proof for one output layout does not authorize another.
	redirected := tx.New()
	require.NoError(t, redirected.AddInput(genesisHash, 0))
	require.NoError(t, redirected.AddOutput(10, auth.Claimant(thief)))
	require.NoError(t, redirected.SetProof(0, in.Proof))
	require.NoError(t, redirected.Finalize())
	assert.False(t, h.IsValidTx(redirected))
}

// --- Batch resolution ---

func TestHandleTxs_Chaining(t *testing.T) {
	a, b, c := generateTestKey(t), generateTestKey(t), generateTestKey(t)
	pool := utxo.NewPool()
	pool.Add(tx.NewOutpoint(genesisHash, 0), tx.Output{Value: 10, Claimant: auth.Claimant(a)})

	t1 := buildTx(t, []spend{{hash: genesisHash, key: a}}, []pay{{10, auth.Claimant(b)}})
	t2 := buildTx(t, []spend{{hash: t1.Hash(), key: b}}, []pay{{9, auth.Claimant(c)}})

	t.Run("dependency first", func(t *testing.T) {
		h := New(pool, auth.NewVerifier())
		accepted := h.HandleTxs([]*tx.Transaction{t1, t2})
		require.Len(t, accepted, 2)
		assert.Same(t, t1, accepted[0])
		assert.Same(t, t2, accepted[1])

		after := h.Pool()
		assert.Equal(t, 1, after.Len())
		assert.False(t, after.Contains(tx.NewOutpoint(genesisHash, 0)))
		assert.False(t, after.Contains(tx.NewOutpoint(t1.Hash(), 0)))
		assert.True(t, after.Contains(tx.NewOutpoint(t2.Hash(), 0)))
	})

	t.Run("dependency last", func(t *testing.T) {
		h := New(pool, auth.NewVerifier())
		accepted := h.HandleTxs([]*tx.Transaction{t2, t1})
		require.Len(t, accepted, 1)
		assert.Same(t, t1, accepted[0])

		after := h.Pool()
		assert.Equal(t, 1, after.Len())
		assert.True(t, after.Contains(tx.NewOutpoint(t1.Hash(), 0)))
	})
}

func TestHandleTxs_ResubmitAcceptsNothing(t *testing.T) {
	h := New(seededPool(10, 5), okVerifier)
	batch := []*tx.Transaction{
		buildTx(t, []spend{{hash: genesisHash, index: 0}}, []pay{{10, []byte("b")}}),
		buildTx(t, []spend{{hash: genesisHash, index: 1}}, []pay{{2, []byte("c")}, {3, []byte("d")}}),
	}

	require.Len(t, h.HandleTxs(batch), 2)
	before := h.Pool().All()

	assert.Empty(t, h.HandleTxs(batch))
	assert.Equal(t, before, h.Pool().All())
}

func TestHandleTxs_ConflictingSpendsFirstWins(t *testing.T) {
	h := New(seededPool(10), okVerifier)
	first := buildTx(t, []spend{{hash: genesisHash}}, []pay{{10, []byte("b")}})
	second := buildTx(t, []spend{{hash: genesisHash}}, []pay{{9, []byte("c")}})

	accepted := h.HandleTxs([]*tx.Transaction{first, second})
	require.Len(t, accepted, 1)
	assert.Same(t, first, accepted[0])
	assert.False(t, h.IsValidTx(second))
}

func TestHandleTxs_EmptyBatch(t *testing.T) {
	h := New(seededPool(10), okVerifier)
	assert.Empty(t, h.HandleTxs(nil))
	assert.Equal(t, 1, h.Pool().Len())
}

func TestHandleTxs_ConservesValue(t *testing.T) {
	h := New(seededPool(10, 5), okVerifier)
	before, err := h.Pool().Total()
	require.NoError(t, err)

	h.HandleTxs([]*tx.Transaction{
		buildTx(t, []spend{{hash: genesisHash, index: 0}}, []pay{{8, []byte("b")}}),
		buildTx(t, []spend{{hash: genesisHash, index: 1}}, []pay{{6, []byte("c")}}),
	})

	after, err := h.Pool().Total()
	require.NoError(t, err)
	assert.Equal(t, uint64(13), after, "second spend overdraws and is rejected")
	assert.LessOrEqual(t, after, before)
}

func TestHandleTxs_Logging(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New("handler", logging.WithWriter(&buf), logging.WithLevel("debug"))
	h := New(seededPool(10), okVerifier, WithLogger(logger))

	h.HandleTxs([]*tx.Transaction{
		buildTx(t, []spend{{hash: genesisHash}}, []pay{{11, []byte("b")}}),
		buildTx(t, []spend{{hash: genesisHash}}, []pay{{10, []byte("b")}}),
	})

	out := buf.String()
	assert.True(t, strings.Contains(out, "insufficient input"), out)
	assert.True(t, strings.Contains(out, "accepted candidate 1"), out)
	assert.True(t, strings.Contains(out, "epoch accepted 1 of 2"), out)
}

func TestReason_String(t *testing.T) {
	assert.Equal(t, "double claim", ReasonDoubleClaim.String())
	assert.Equal(t, "unknown", Reason(0).String())
}
