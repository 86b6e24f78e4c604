package zkagg

import (
	"encoding/binary"

	"github.com/bwesterb/go-ristretto"
	"github.com/gtank/merlin"
)

func newProofTranscript() *merlin.Transcript {
	t := merlin.NewTranscript(AGGREGATE_PROOF_DOMAIN_TAG)
	appendBytes([]byte("dom-sep"), []byte("aggregate opening v1"), t)
	return t
}

func appendBytes(field, data []byte, t *merlin.Transcript) {
	t.AppendMessage(field, data)
}

func appendUint64(label string, i uint64, t *merlin.Transcript) {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, i)
	appendBytes([]byte(label), buf, t)
}

func appendScalar(label string, s *ristretto.Scalar, t *merlin.Transcript) {
	appendBytes([]byte(label), s.Bytes(), t)
}

func appendPoint(label string, p *ristretto.Point, t *merlin.Transcript) {
	appendBytes([]byte(label), p.Bytes(), t)
}

func challengeScalar(label string, t *merlin.Transcript) *ristretto.Scalar {
	data := t.ExtractBytes([]byte(label), 64)
	var dataBytes [64]byte
	copy(dataBytes[:], data)

	var s ristretto.Scalar
	return s.SetReduced(&dataBytes)
}
