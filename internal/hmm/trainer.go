package hmm

import (
	"fmt"
	"math"
	"math/rand/v2"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/ayusman/mudra/internal/sequence"
)

// Default training parameters.
const (
	DefaultMaxIter  = 1000
	DefaultTol      = 0.01
	DefaultMinCovar = 1e-3
)

// Trainer fits Gaussian HMMs. A Trainer holds no mutable state, so one value
// can be used from many goroutines.
type Trainer struct {
	// MaxIter caps the number of Baum-Welch iterations.
	MaxIter int
	// Tol stops training once the log-likelihood gain drops below it.
	Tol float64
	// MinCovar is added to every variance to keep emissions well defined.
	MinCovar float64

	Logger *zap.Logger
}

// NewTrainer creates a Trainer with the default parameters.
func NewTrainer() *Trainer {
	return &Trainer{
		MaxIter:  DefaultMaxIter,
		Tol:      DefaultTol,
		MinCovar: DefaultMinCovar,
	}
}

// stats accumulates expected counts over all sequences in one E-step.
type stats struct {
	start    []float64
	trans    *mat.Dense
	gamma    []float64
	obs      *mat.Dense
	obsSq    *mat.Dense
	logProb  float64
	nonEmpty int
}

func newStats(n, f int) *stats {
	return &stats{
		start: make([]float64, n),
		trans: mat.NewDense(n, n, nil),
		gamma: make([]float64, n),
		obs:   mat.NewDense(n, f, nil),
		obsSq: mat.NewDense(n, f, nil),
	}
}

// Fit trains an HMM with nstates hidden states on the sequences of v.
// Results are deterministic for a given seed and view.
func (t *Trainer) Fit(nstates int, v sequence.View, seed int64) (*Model, error) {
	N, f := v.Rows(), v.Features()
	if nstates < 1 || f == 0 || N < nstates {
		return nil, fmt.Errorf("%w: %d observations for %d states", ErrInsufficientData, N, nstates)
	}

	logger := t.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)>>1|1))
	m := t.initialize(nstates, v, rng)

	maxIter := t.MaxIter
	if maxIter <= 0 {
		maxIter = DefaultMaxIter
	}

	prev := math.Inf(-1)
	for iter := 0; iter < maxIter; iter++ {
		s := m.expect(v)
		if math.IsNaN(s.logProb) || math.IsInf(s.logProb, 0) {
			return nil, fmt.Errorf("%w: log-likelihood %v at iteration %d", ErrDegenerate, s.logProb, iter)
		}
		t.maximize(m, s)
		if !m.finite() {
			return nil, fmt.Errorf("%w: non-finite parameters at iteration %d", ErrDegenerate, iter)
		}

		logger.Debug("baum-welch iteration",
			zap.Int("states", nstates),
			zap.Int("iter", iter),
			zap.Float64("log_prob", s.logProb))

		if math.Abs(s.logProb-prev) < t.Tol {
			break
		}
		prev = s.logProb
	}

	return m, nil
}

// initialize builds the starting model: means drawn from distinct random
// observations, variances from the pooled data, uniform start and
// transition probabilities.
func (t *Trainer) initialize(n int, v sequence.View, rng *rand.Rand) *Model {
	N, f := v.Rows(), v.Features()

	m := &Model{
		nstates:   n,
		nfeatures: f,
		logStart:  make([]float64, n),
		logTrans:  mat.NewDense(n, n, nil),
		means:     mat.NewDense(n, f, nil),
		vars:      mat.NewDense(n, f, nil),
	}

	uniform := math.Log(1 / float64(n))
	for i := 0; i < n; i++ {
		m.logStart[i] = uniform
		for j := 0; j < n; j++ {
			m.logTrans.Set(i, j, uniform)
		}
	}

	perm := rng.Perm(N)
	for i := 0; i < n; i++ {
		m.means.SetRow(i, v.X[perm[i]])
	}

	col := make([]float64, N)
	for k := 0; k < f; k++ {
		for r := 0; r < N; r++ {
			col[r] = v.X[r][k]
		}
		_, variance := stat.PopMeanVariance(col, nil)
		for i := 0; i < n; i++ {
			m.vars.Set(i, k, variance+t.MinCovar)
		}
	}

	return m
}

// expect runs the E-step over every non-empty sequence of v.
func (m *Model) expect(v sequence.View) *stats {
	n, f := m.nstates, m.nfeatures
	s := newStats(n, f)

	v.Split(func(_ int, obs [][]float64) {
		if len(obs) == 0 {
			return
		}
		e := m.emissions(obs)
		α, ll := m.alpha(e)
		β := m.beta(e)
		s.logProb += ll
		s.nonEmpty++

		for tt, x := range obs {
			for i := 0; i < n; i++ {
				γ := math.Exp(α[tt][i] + β[tt][i] - ll)
				if tt == 0 {
					s.start[i] += γ
				}
				s.gamma[i] += γ
				for k, xv := range x {
					s.obs.Set(i, k, s.obs.At(i, k)+γ*xv)
					s.obsSq.Set(i, k, s.obsSq.At(i, k)+γ*xv*xv)
				}
			}
			if tt == len(obs)-1 {
				continue
			}
			for i := 0; i < n; i++ {
				for j := 0; j < n; j++ {
					ζ := math.Exp(α[tt][i] + m.logTrans.At(i, j) + e[tt+1][j] + β[tt+1][j] - ll)
					s.trans.Set(i, j, s.trans.At(i, j)+ζ)
				}
			}
		}
	})

	return s
}

// maximize re-estimates m from the accumulated counts. States that received
// no responsibility keep their previous parameters.
func (t *Trainer) maximize(m *Model, s *stats) {
	n, f := m.nstates, m.nfeatures

	if s.nonEmpty > 0 {
		for i := 0; i < n; i++ {
			m.logStart[i] = math.Log(s.start[i] / float64(s.nonEmpty))
		}
	}

	for i := 0; i < n; i++ {
		row := s.trans.RawRowView(i)
		total := 0.0
		for _, c := range row {
			total += c
		}
		if total > 0 {
			for j := 0; j < n; j++ {
				m.logTrans.Set(i, j, math.Log(row[j]/total))
			}
		}

		if s.gamma[i] <= 0 {
			continue
		}
		for k := 0; k < f; k++ {
			mean := s.obs.At(i, k) / s.gamma[i]
			variance := s.obsSq.At(i, k)/s.gamma[i] - mean*mean
			if variance < 0 {
				variance = 0
			}
			m.means.Set(i, k, mean)
			m.vars.Set(i, k, variance+t.MinCovar)
		}
	}
}
