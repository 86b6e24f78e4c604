package zkagg

import (
	"github.com/bwesterb/go-ristretto"
	"github.com/gtank/merlin"
)

// Proof is a non-interactive Schnorr-style argument that the prover
// knows an opening (v, r) of the aggregate commitment, with the
// decoded v published as the claimed sum. Immutable and self-contained:
// verification needs only the session generators and these fields.
type Proof struct {
	Version             byte
	AggregateCommitment *Commitment
	NonceCommitment     *Commitment
	ZValue              *ristretto.Scalar
	ZBlinding           *ristretto.Scalar
	ClaimedSum          *ristretto.Scalar
}

// GenerateFinalProof proves the aggregate accumulated so far: sample
// (k_v, k_r), A = Commit(k_v, k_r), e = challenge over the public
// parameters, the running commitment, the claimed sum and A, then
// z_v = k_v + e*v and z_r = k_r + e*r. The proof is bound to the
// current snapshot; the session keeps accumulating afterwards and an
// older proof stays valid for its own snapshot only.
//
// Soundness of the claimed sum rests on the binding property of the
// commitment and the homomorphic construction of the running
// commitment, not on re-deriving the sum from the step log.
func (p *Prover) GenerateFinalProof() ([]byte, error) {
	p.mtx.RLock()
	defer p.mtx.RUnlock()

	if p.steps == 0 {
		return nil, ErrEmptySession
	}

	kV, err := randomScalar(p.rand)
	if err != nil {
		return nil, err
	}
	kR, err := randomScalar(p.rand)
	if err != nil {
		return nil, err
	}

	A := p.gens.Commit(kV, kR)
	e := proofChallenge(p.gens, p.running, &p.value, A)

	var zV, zR, t ristretto.Scalar
	t.Mul(e, &p.value)
	zV.Add(kV, &t)
	t.Mul(e, &p.blinding)
	zR.Add(kR, &t)

	var sum ristretto.Scalar
	sum.Set(&p.value)

	proof := &Proof{
		Version:             PROOF_VERSION,
		AggregateCommitment: p.running,
		NonceCommitment:     A,
		ZValue:              &zV,
		ZBlinding:           &zR,
		ClaimedSum:          &sum,
	}
	p.logger.Info().Uint64("steps", p.steps).Msg("aggregate proof generated")
	return proof.Encode(), nil
}

func proofChallenge(gens *PedersenGens, c *Commitment, sum *ristretto.Scalar, a *Commitment) *ristretto.Scalar {
	t := newProofTranscript()
	appendUint64("version", PROOF_VERSION, t)
	appendPoint("B", gens.B, t)
	appendPoint("B_blinding", gens.BBlinding, t)
	appendCommitment("C", c, t)
	appendScalar("claimed_sum", sum, t)
	appendCommitment("A", a, t)
	return challengeScalar("e", t)
}

func appendCommitment(label string, c *Commitment, t *merlin.Transcript) {
	appendBytes([]byte(label), c.Bytes(), t)
}

// Encode lays the proof out as
// version(1) || C(32) || A(32) || z_v(32) || z_r(32) || claimed_sum(32)
// with scalars big-endian and points in compressed ristretto form.
func (p *Proof) Encode() []byte {
	buf := make([]byte, 0, PROOF_LEN)
	buf = append(buf, p.Version)
	buf = append(buf, p.AggregateCommitment.Bytes()...)
	buf = append(buf, p.NonceCommitment.Bytes()...)
	buf = append(buf, scalarBytesBE(p.ZValue)...)
	buf = append(buf, scalarBytesBE(p.ZBlinding)...)
	buf = append(buf, scalarBytesBE(p.ClaimedSum)...)
	return buf
}

// ClaimedAggregate decodes the published sum back to gradient units.
func (p *Proof) ClaimedAggregate() float64 {
	return decodeScalar(p.ClaimedSum)
}
