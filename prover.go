package zkagg

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/bwesterb/go-ristretto"
	"github.com/rs/zerolog"
)

var ErrEmptySession = errors.New("no accumulated steps to prove")

// StepEntry is one record of the committed step log: the step's
// Pedersen commitment and an operator-chosen tag (client id, round
// label). It never carries the plaintext gradient.
type StepEntry struct {
	Commitment *Commitment
	Tag        string
}

type StepResult struct {
	Step       uint64
	Commitment *Commitment
	Message    string
}

type BatchResult struct {
	Count   int
	Message string
}

// Prover is the mutable state of one proving session. It owns the
// running commitment, the private running value and blinding, and the
// step log. One Prover per session; never share a Prover between
// sessions. All methods are safe for concurrent use, with a single
// writer at a time.
type Prover struct {
	mtx sync.RWMutex

	gens     *PedersenGens
	running  *Commitment
	value    ristretto.Scalar // true aggregate, never exposed to verifiers
	blinding ristretto.Scalar
	steps    uint64
	stepLog  []StepEntry

	rand   io.Reader
	logger zerolog.Logger
}

type ProverOption func(*Prover)

// WithRandomSource replaces crypto/rand as the blinding-factor source.
// The source must be cryptographically secure outside of tests, and
// safe for concurrent use if proofs are generated concurrently.
// Deterministic regeneration of a blinding factor breaks hiding.
func WithRandomSource(r io.Reader) ProverOption {
	return func(p *Prover) { p.rand = r }
}

func WithLogger(l zerolog.Logger) ProverOption {
	return func(p *Prover) { p.logger = l }
}

// WithPedersenGens pins the session to an existing generator set, e.g.
// one shared with a remote verifier.
func WithPedersenGens(pg *PedersenGens) ProverOption {
	return func(p *Prover) { p.gens = pg }
}

// NewProver opens a proving session seeded with initialValue. The
// initial commitment counts as step one of the log.
func NewProver(initialValue float64, opts ...ProverOption) (*Prover, error) {
	p := &Prover{
		rand:   rand.Reader,
		logger: zerolog.Nop(),
	}
	for _, o := range opts {
		o(p)
	}
	if p.gens == nil {
		p.gens = NewPedersenGens()
	}

	v, err := encodeGradient(initialValue)
	if err != nil {
		return nil, err
	}
	r, err := randomScalar(p.rand)
	if err != nil {
		return nil, err
	}

	p.value.Set(v)
	p.blinding.Set(r)
	p.running = p.gens.Commit(v, r)
	p.steps = 1
	p.stepLog = []StepEntry{{Commitment: p.running, Tag: "init"}}

	p.logger.Info().Float64("initial_value", initialValue).Msg("aggregation session initialized")
	return p, nil
}

// Summary is a human-readable status line for operator visibility. It
// is not part of the trust boundary.
func (p *Prover) Summary() string {
	return fmt.Sprintf("Aggregation session initialized. Steps accumulated: %d", p.NumSteps())
}

// ProveGradientStep commits one gradient into the running aggregate.
// The value is committed, not revealed; the publishable argument is
// produced by GenerateFinalProof.
func (p *Prover) ProveGradientStep(gradient float64) (*StepResult, error) {
	return p.proveStep(gradient, "")
}

// ProveGradientStepTagged is ProveGradientStep with a caller-chosen
// step-log tag.
func (p *Prover) ProveGradientStepTagged(gradient float64, tag string) (*StepResult, error) {
	return p.proveStep(gradient, tag)
}

func (p *Prover) proveStep(gradient float64, tag string) (*StepResult, error) {
	if p.gens == nil {
		return nil, errors.New("prover not initialized")
	}
	v, err := encodeGradient(gradient)
	if err != nil {
		return nil, err
	}

	p.mtx.Lock()
	defer p.mtx.Unlock()

	r, err := randomScalar(p.rand)
	if err != nil {
		return nil, err
	}

	c := p.gens.Commit(v, r)
	p.running = p.running.Combine(c)
	p.value.Add(&p.value, v)
	p.blinding.Add(&p.blinding, r)
	p.steps++
	if tag == "" {
		tag = fmt.Sprintf("step-%d", p.steps)
	}
	p.stepLog = append(p.stepLog, StepEntry{Commitment: c, Tag: tag})

	state := decodeScalar(&p.value)
	p.logger.Info().Uint64("step", p.steps).Str("tag", tag).Msg("gradient step committed")
	return &StepResult{
		Step:       p.steps,
		Commitment: c,
		Message:    fmt.Sprintf("Step proven. Current state: %v", state),
	}, nil
}

// ProveGradientBatch commits a sequence of gradients, equivalent to
// calling ProveGradientStep on each in order with the same blinding
// draws. Atomic: if any element fails to encode, or the randomness
// source fails, the Prover is left unchanged.
func (p *Prover) ProveGradientBatch(gradients []float64) (*BatchResult, error) {
	if p.gens == nil {
		return nil, errors.New("prover not initialized")
	}
	values := make([]*ristretto.Scalar, len(gradients))
	for i, g := range gradients {
		v, err := encodeGradient(g)
		if err != nil {
			return nil, fmt.Errorf("gradient %d: %w", i, err)
		}
		values[i] = v
	}

	p.mtx.Lock()
	defer p.mtx.Unlock()

	blindings := make([]*ristretto.Scalar, len(values))
	for i := range values {
		r, err := randomScalar(p.rand)
		if err != nil {
			return nil, err
		}
		blindings[i] = r
	}

	for i := range values {
		c := p.gens.Commit(values[i], blindings[i])
		p.running = p.running.Combine(c)
		p.value.Add(&p.value, values[i])
		p.blinding.Add(&p.blinding, blindings[i])
		p.steps++
		p.stepLog = append(p.stepLog, StepEntry{Commitment: c, Tag: fmt.Sprintf("step-%d", p.steps)})
	}

	state := decodeScalar(&p.value)
	p.logger.Info().Int("count", len(gradients)).Uint64("steps", p.steps).Msg("gradient batch committed")
	return &BatchResult{
		Count:   len(gradients),
		Message: fmt.Sprintf("Batch of %d gradients proven. Final state: %v", len(gradients), state),
	}, nil
}

// GetState returns the decoded private running aggregate. This is the
// prover's own view: handing it to an untrusted party discloses
// exactly the value the commitments hide and voids the zero-knowledge
// property. Operator visibility only.
func (p *Prover) GetState() []float64 {
	p.mtx.RLock()
	defer p.mtx.RUnlock()
	return []float64{decodeScalar(&p.value)}
}

func (p *Prover) NumSteps() uint64 {
	p.mtx.RLock()
	defer p.mtx.RUnlock()
	return p.steps
}

// StepLog returns a copy of the committed step sequence for audit.
// Entries hold commitments and tags only.
func (p *Prover) StepLog() []StepEntry {
	p.mtx.RLock()
	defer p.mtx.RUnlock()
	log := make([]StepEntry, len(p.stepLog))
	copy(log, p.stepLog)
	return log
}
