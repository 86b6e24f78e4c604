package zkagg

import (
	"errors"
	"fmt"
)

// DecodeProof parses the fixed proof layout. It rejects wrong lengths,
// unknown versions, non-canonical point encodings and out-of-order
// scalars.
func DecodeProof(data []byte) (*Proof, error) {
	if len(data) != PROOF_LEN {
		return nil, fmt.Errorf("proof must be %d bytes, got %d", PROOF_LEN, len(data))
	}
	if data[0] != PROOF_VERSION {
		return nil, fmt.Errorf("unsupported proof version %d", data[0])
	}
	c, ok := commitmentFromBytes(data[1:33])
	if !ok {
		return nil, errors.New("malformed aggregate commitment")
	}
	a, ok := commitmentFromBytes(data[33:65])
	if !ok {
		return nil, errors.New("malformed nonce commitment")
	}
	zV, ok := scalarFromBytesBE(data[65:97])
	if !ok {
		return nil, errors.New("malformed value response")
	}
	zR, ok := scalarFromBytesBE(data[97:129])
	if !ok {
		return nil, errors.New("malformed blinding response")
	}
	sum, ok := scalarFromBytesBE(data[129:161])
	if !ok {
		return nil, errors.New("malformed claimed sum")
	}
	return &Proof{
		Version:             data[0],
		AggregateCommitment: c,
		NonceCommitment:     a,
		ZValue:              zV,
		ZBlinding:           zR,
		ClaimedSum:          sum,
	}, nil
}

// VerifyProof checks an aggregate proof against the session
// generators. It is stateless, side-effect free and total: malformed
// or adversarial input yields false, never a panic or an error.
//
// Checks, in order: the fixed layout parses; the claimed sum lies in
// the representable fixed-point window; the Fiat-Shamir challenge
// recomputed from the proof's own fields satisfies
// Commit(z_v, z_r) == Combine(A, C^e).
func VerifyProof(gens *PedersenGens, data []byte) bool {
	if gens == nil || gens.B == nil || gens.BBlinding == nil {
		return false
	}
	proof, err := DecodeProof(data)
	if err != nil {
		return false
	}
	if centeredBigInt(proof.ClaimedSum).CmpAbs(aggregateWindow) > 0 {
		return false
	}

	e := proofChallenge(gens, proof.AggregateCommitment, proof.ClaimedSum, proof.NonceCommitment)
	lhs := gens.Commit(proof.ZValue, proof.ZBlinding)
	rhs := proof.NonceCommitment.Combine(proof.AggregateCommitment.mul(e))
	return lhs.Equals(rhs)
}
