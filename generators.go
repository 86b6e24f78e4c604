package zkagg

import (
	"github.com/bwesterb/go-ristretto"
	"github.com/dchest/blake2b"
)

// PedersenGens are the public parameters of a proving session: the
// value generator B and an independently derived blinding generator
// BBlinding. Prover and verifier must hold the same pair. Immutable
// once created.
type PedersenGens struct {
	B         *ristretto.Point
	BBlinding *ristretto.Point
}

// NewPedersenGens derives the blinding generator from the base point
// through a domain-tagged hash, so nobody knows its discrete log
// relative to B.
func NewPedersenGens() *PedersenGens {
	var base ristretto.Point
	base.SetBase()

	return &PedersenGens{
		B:         &base,
		BBlinding: hashToPoint(BLINDING_GENERATOR_DOMAIN_TAG, base.Bytes()),
	}
}

// Commit computes B^value * BBlinding^blinding. Deterministic given
// its inputs; sampling the blinding factor is the caller's job.
func (pg *PedersenGens) Commit(value, blinding *ristretto.Scalar) *Commitment {
	p := multiscalarMul([]*ristretto.Scalar{value, blinding}, []*ristretto.Point{pg.B, pg.BBlinding})
	var c Commitment
	c.point.Set(p)
	return &c
}

func hashToPoint(tag string, data []byte) *ristretto.Point {
	hash := blake2b.New512()
	hash.Write([]byte(tag))
	hash.Write(data)
	var key [64]byte
	copy(key[:], hash.Sum(nil))

	var r1Bytes, r2Bytes [32]byte
	copy(r1Bytes[:], key[:32])
	copy(r2Bytes[:], key[32:])
	var r, r1, r2 ristretto.Point
	return r.Add(r1.SetElligator(&r1Bytes), r2.SetElligator(&r2Bytes))
}
