package zkagg

import (
	"errors"
	"fmt"
	"io"
	"math"
	"math/big"

	"github.com/bwesterb/go-ristretto"
	"github.com/shopspring/decimal"
)

var (
	ErrOutOfRange    = errors.New("gradient magnitude exceeds the supported range")
	ErrPrecisionLoss = errors.New("gradient carries more precision than the fixed-point encoding keeps")
)

// scalarOrder is the order of the ristretto255 scalar field,
// l = 2^252 + 27742317777372353535851937790883648493.
var scalarOrder, _ = new(big.Int).SetString("7237005577332262213973186563042994240857116359379907606001950938285454250989", 10)

// halfOrder splits the field into the positive and negative halves of
// the centered fixed-point window.
var halfOrder = new(big.Int).Rsh(scalarOrder, 1)

// aggregateWindow bounds the scaled magnitude a claimed aggregate may
// take; anything outside it cannot have been produced by accumulating
// in-range gradients and is rejected by the verifier.
var aggregateWindow = new(big.Int).Lsh(big.NewInt(1), 62)

// encodeGradient quantizes a real-valued gradient into the scalar
// field: s = round(x * SCALE_FACTOR), negatives by scalar negation.
func encodeGradient(x float64) (*ristretto.Scalar, error) {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return nil, fmt.Errorf("%w: %v", ErrOutOfRange, x)
	}
	if math.Abs(x) > MAX_GRADIENT_MAGNITUDE {
		return nil, fmt.Errorf("%w: %g", ErrOutOfRange, x)
	}
	scaled := decimal.NewFromFloat(x).Mul(decimal.NewFromInt(SCALE_FACTOR))
	quantized := scaled.Round(0)
	lost, _ := scaled.Sub(quantized).Abs().Float64()
	if lost/SCALE_FACTOR > QUANTIZATION_TOLERANCE {
		return nil, fmt.Errorf("%w: %g", ErrPrecisionLoss, x)
	}
	return scalarFromBigInt(quantized.BigInt()), nil
}

// decodeScalar is the inverse of encodeGradient, exact for every value
// encodeGradient produces. Field elements above halfOrder decode as
// negatives (centered lift).
func decodeScalar(s *ristretto.Scalar) float64 {
	f, _ := new(big.Float).SetInt(centeredBigInt(s)).Float64()
	return f / SCALE_FACTOR
}

func centeredBigInt(s *ristretto.Scalar) *big.Int {
	t := s.BigInt()
	if t.Cmp(halfOrder) > 0 {
		t.Sub(t, scalarOrder)
	}
	return t
}

func scalarFromBigInt(t *big.Int) *ristretto.Scalar {
	var s ristretto.Scalar
	if t.Sign() < 0 {
		s.SetBigInt(new(big.Int).Abs(t))
		return s.Neg(&s)
	}
	return s.SetBigInt(t)
}

func scalarFromInt64(v int64) *ristretto.Scalar {
	return scalarFromBigInt(big.NewInt(v))
}

// randomScalar samples a scalar uniform over [0, l) from the supplied
// source. All blinding factors flow through here; the source must be
// cryptographically secure outside of tests.
func randomScalar(r io.Reader) (*ristretto.Scalar, error) {
	var buf [64]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, fmt.Errorf("sample scalar: %w", err)
	}
	var s ristretto.Scalar
	return s.SetReduced(&buf), nil
}

// scalarBytesBE is the canonical fixed-width big-endian wire form.
func scalarBytesBE(s *ristretto.Scalar) []byte {
	buf := make([]byte, 32)
	s.BigInt().FillBytes(buf)
	return buf
}

func scalarFromBytesBE(buf []byte) (*ristretto.Scalar, bool) {
	if len(buf) != 32 {
		return nil, false
	}
	t := new(big.Int).SetBytes(buf)
	if t.Cmp(scalarOrder) >= 0 {
		return nil, false
	}
	var s ristretto.Scalar
	return s.SetBigInt(t), true
}

func multiscalarMul(scalars []*ristretto.Scalar, points []*ristretto.Point) *ristretto.Point {
	var p ristretto.Point
	p.SetZero()
	for i := range scalars {
		var t ristretto.Point
		t.ScalarMult(points[i], scalars[i])
		p.Add(&p, &t)
	}
	return &p
}
