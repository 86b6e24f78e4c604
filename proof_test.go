package zkagg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProofEncodeDecode(t *testing.T) {
	assert := assert.New(t)

	p, err := NewProver(0.0, WithRandomSource(newDrbg("proof-wire")))
	assert.Nil(err)
	_, err = p.ProveGradientBatch([]float64{0.5, -0.25})
	assert.Nil(err)

	raw, err := p.GenerateFinalProof()
	assert.Nil(err)
	assert.Len(raw, PROOF_LEN)
	assert.Equal(byte(PROOF_VERSION), raw[0])

	proof, err := DecodeProof(raw)
	assert.Nil(err)
	assert.Equal(byte(PROOF_VERSION), proof.Version)
	assert.InDelta(0.25, proof.ClaimedAggregate(), 1e-9)
	assert.Equal(raw, proof.Encode())
}

func TestDecodeProofRejectsMalformed(t *testing.T) {
	assert := assert.New(t)

	p, err := NewProver(1.5)
	assert.Nil(err)
	raw, err := p.GenerateFinalProof()
	assert.Nil(err)

	_, err = DecodeProof(nil)
	assert.NotNil(err)
	_, err = DecodeProof(raw[:PROOF_LEN-1])
	assert.NotNil(err)
	_, err = DecodeProof(append(raw, 0))
	assert.NotNil(err)

	bad := make([]byte, PROOF_LEN)
	copy(bad, raw)
	bad[0] = PROOF_VERSION + 1
	_, err = DecodeProof(bad)
	assert.NotNil(err)

	// non-canonical scalar in the claimed-sum slot
	copy(bad, raw)
	for i := 129; i < 161; i++ {
		bad[i] = 0xff
	}
	_, err = DecodeProof(bad)
	assert.NotNil(err)
}

func TestGenerateFinalProofFreshNonces(t *testing.T) {
	assert := assert.New(t)

	p, err := NewProver(0.5)
	assert.Nil(err)

	first, err := p.GenerateFinalProof()
	assert.Nil(err)
	second, err := p.GenerateFinalProof()
	assert.Nil(err)
	assert.NotEqual(first, second)

	a, err := DecodeProof(first)
	assert.Nil(err)
	b, err := DecodeProof(second)
	assert.Nil(err)
	assert.True(a.AggregateCommitment.Equals(b.AggregateCommitment))
	assert.False(a.NonceCommitment.Equals(b.NonceCommitment))
}
