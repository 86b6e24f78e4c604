package zkagg

import (
	"io"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestProverScenario(t *testing.T) {
	assert := assert.New(t)

	p, err := NewProver(0.0, WithLogger(zerolog.New(io.Discard)))
	assert.Nil(err)
	assert.Equal(uint64(1), p.NumSteps())
	assert.Equal("Aggregation session initialized. Steps accumulated: 1", p.Summary())

	for _, g := range []float64{0.5, -0.3, 0.7, 0.2, -0.1} {
		res, err := p.ProveGradientStep(g)
		assert.Nil(err)
		assert.NotNil(res.Commitment)
	}
	assert.Equal(uint64(6), p.NumSteps())

	state := p.GetState()
	assert.Len(state, 1)
	assert.InDelta(1.0, state[0], 1e-9)

	proof, err := p.GenerateFinalProof()
	assert.Nil(err)
	assert.Len(proof, PROOF_LEN)
	assert.True(VerifyProof(NewPedersenGens(), proof))
}

func TestProverRunningCommitmentMatchesStepLog(t *testing.T) {
	assert := assert.New(t)

	p, err := NewProver(0.25)
	assert.Nil(err)
	_, err = p.ProveGradientStep(1.5)
	assert.Nil(err)
	_, err = p.ProveGradientStepTagged(-0.75, "client-7")
	assert.Nil(err)

	log := p.StepLog()
	assert.Len(log, 3)
	assert.Equal("init", log[0].Tag)
	assert.Equal("client-7", log[2].Tag)

	product := log[0].Commitment
	for _, entry := range log[1:] {
		product = product.Combine(entry.Commitment)
	}

	proof, err := p.GenerateFinalProof()
	assert.Nil(err)
	decoded, err := DecodeProof(proof)
	assert.Nil(err)
	assert.True(product.Equals(decoded.AggregateCommitment))
	assert.InDelta(1.0, decoded.ClaimedAggregate(), 1e-9)
}

func TestProverStepEncodingError(t *testing.T) {
	assert := assert.New(t)

	p, err := NewProver(0.0)
	assert.Nil(err)

	_, err = p.ProveGradientStep(1000000001)
	assert.ErrorIs(err, ErrOutOfRange)
	_, err = p.ProveGradientStep(0.1234567)
	assert.ErrorIs(err, ErrPrecisionLoss)

	assert.Equal(uint64(1), p.NumSteps())
	assert.Equal([]float64{0.0}, p.GetState())
}

func TestProverBatchAtomic(t *testing.T) {
	assert := assert.New(t)

	p, err := NewProver(0.0)
	assert.Nil(err)
	_, err = p.ProveGradientStep(0.5)
	assert.Nil(err)

	_, err = p.ProveGradientBatch([]float64{0.1, 0.1234567, 0.2})
	assert.ErrorIs(err, ErrPrecisionLoss)
	assert.Equal(uint64(2), p.NumSteps())
	assert.InDelta(0.5, p.GetState()[0], 1e-9)

	res, err := p.ProveGradientBatch([]float64{0.1, 0.2, 0.3})
	assert.Nil(err)
	assert.Equal(3, res.Count)
	assert.Equal(uint64(5), p.NumSteps())
	assert.InDelta(1.1, p.GetState()[0], 1e-9)
}

// A batch must consume the same blinding draws as the equivalent
// sequence of single steps.
func TestBatchEquivalence(t *testing.T) {
	assert := assert.New(t)

	gradients := []float64{0.125, -0.5, 2.25}

	batch, err := NewProver(1.0, WithRandomSource(newDrbg("equivalence")))
	assert.Nil(err)
	_, err = batch.ProveGradientBatch(gradients)
	assert.Nil(err)

	sequential, err := NewProver(1.0, WithRandomSource(newDrbg("equivalence")))
	assert.Nil(err)
	for _, g := range gradients {
		_, err = sequential.ProveGradientStep(g)
		assert.Nil(err)
	}

	assert.Equal(batch.NumSteps(), sequential.NumSteps())
	assert.Equal(batch.GetState(), sequential.GetState())

	logA, logB := batch.StepLog(), sequential.StepLog()
	assert.Equal(len(logA), len(logB))
	for i := range logA {
		assert.True(logA[i].Commitment.Equals(logB[i].Commitment), "step %d", i)
	}
}

func TestEmptySession(t *testing.T) {
	assert := assert.New(t)

	var p Prover
	_, err := p.GenerateFinalProof()
	assert.ErrorIs(err, ErrEmptySession)

	_, err = p.ProveGradientStep(0.5)
	assert.NotNil(err)
	assert.Equal(uint64(0), p.NumSteps())
}

func TestProofStalenessAcrossFurtherSteps(t *testing.T) {
	assert := assert.New(t)

	pg := NewPedersenGens()
	p, err := NewProver(0.0, WithPedersenGens(pg))
	assert.Nil(err)
	_, err = p.ProveGradientStep(0.5)
	assert.Nil(err)

	first, err := p.GenerateFinalProof()
	assert.Nil(err)
	assert.True(VerifyProof(pg, first))

	_, err = p.ProveGradientStep(0.25)
	assert.Nil(err)
	second, err := p.GenerateFinalProof()
	assert.Nil(err)

	// the old snapshot stays valid for its own aggregate
	assert.True(VerifyProof(pg, first))
	assert.True(VerifyProof(pg, second))

	firstProof, err := DecodeProof(first)
	assert.Nil(err)
	secondProof, err := DecodeProof(second)
	assert.Nil(err)
	assert.InDelta(0.5, firstProof.ClaimedAggregate(), 1e-9)
	assert.InDelta(0.75, secondProof.ClaimedAggregate(), 1e-9)
	assert.False(firstProof.AggregateCommitment.Equals(secondProof.AggregateCommitment))
}

func TestProverConcurrentSteps(t *testing.T) {
	assert := assert.New(t)

	p, err := NewProver(0.0)
	assert.Nil(err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				if _, err := p.ProveGradientStep(0.01); err != nil {
					t.Error(err)
					return
				}
				p.GetState()
				p.NumSteps()
			}
		}()
	}
	wg.Wait()

	assert.Equal(uint64(201), p.NumSteps())
	assert.InDelta(2.0, p.GetState()[0], 1e-9)

	proof, err := p.GenerateFinalProof()
	assert.Nil(err)
	assert.True(VerifyProof(NewPedersenGens(), proof))
}
