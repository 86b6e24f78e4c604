package zkagg

import (
	"github.com/bwesterb/go-ristretto"
)

// Commitment is a Pedersen commitment B^v * BBlinding^r. It hides v,
// binds the committer to it, and combines additively:
// Combine(Commit(v1,r1), Commit(v2,r2)) == Commit(v1+v2, r1+r2).
type Commitment struct {
	point ristretto.Point
}

func (c *Commitment) Combine(o *Commitment) *Commitment {
	var r Commitment
	r.point.Add(&c.point, &o.point)
	return &r
}

// Bytes is the canonical 32-byte compressed encoding.
func (c *Commitment) Bytes() []byte {
	return c.point.Bytes()
}

func (c *Commitment) Equals(o *Commitment) bool {
	return c.point.Equals(&o.point)
}

// commitmentFromBytes rejects anything that is not a canonical
// ristretto encoding.
func commitmentFromBytes(buf []byte) (*Commitment, bool) {
	if len(buf) != 32 {
		return nil, false
	}
	var b32 [32]byte
	copy(b32[:], buf)
	var c Commitment
	if !c.point.SetBytes(&b32) {
		return nil, false
	}
	return &c, true
}

// mul computes C^e, the e-fold homomorphic combination of C.
func (c *Commitment) mul(e *ristretto.Scalar) *Commitment {
	var r Commitment
	r.point.ScalarMult(&c.point, e)
	return &r
}
