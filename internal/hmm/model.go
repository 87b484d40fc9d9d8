// Package hmm implements a hidden Markov model with diagonal-covariance
// Gaussian emissions, fitted with Baum-Welch over a combined sequence view.
package hmm

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/ayusman/mudra/internal/sequence"
)

var (
	// ErrInsufficientData is returned when there are fewer observations than states.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrDegenerate is returned when training produces non-finite likelihoods or parameters.
	ErrDegenerate = errors.New("degenerate model")
	// ErrFeatureMismatch is returned when observations do not match the model width.
	ErrFeatureMismatch = errors.New("feature count mismatch")
)

var log2Pi = math.Log(2 * math.Pi)

// Model is a trained Gaussian HMM.
// All probabilities are kept in the log domain.
type Model struct {
	nstates   int
	nfeatures int

	// π(i) = log P[q(0) = i]
	logStart []float64

	// a(i,j) = log P[q(t+1) = j | q(t) = i]
	logTrans *mat.Dense

	// [nstates x nfeatures]
	means *mat.Dense
	vars  *mat.Dense
}

// States returns the number of hidden states.
func (m *Model) States() int { return m.nstates }

// Features returns the observation width.
func (m *Model) Features() int { return m.nfeatures }

// Means returns a copy of the per-state emission means.
func (m *Model) Means() *mat.Dense { return mat.DenseCopyOf(m.means) }

// Variances returns a copy of the per-state diagonal emission variances.
func (m *Model) Variances() *mat.Dense { return mat.DenseCopyOf(m.vars) }

// TransProbs returns the transition matrix in the probability domain.
func (m *Model) TransProbs() *mat.Dense {
	out := mat.NewDense(m.nstates, m.nstates, nil)
	out.Apply(func(_, _ int, v float64) float64 { return math.Exp(v) }, m.logTrans)
	return out
}

// Score returns the log-likelihood of every sequence in v under the model.
// Zero-length sequences contribute nothing.
func (m *Model) Score(v sequence.View) (float64, error) {
	if v.Rows() > 0 && v.Features() != m.nfeatures {
		return 0, fmt.Errorf("%w: model has %d, view has %d", ErrFeatureMismatch, m.nfeatures, v.Features())
	}

	total := 0.0
	var err error
	v.Split(func(i int, obs [][]float64) {
		if err != nil || len(obs) == 0 {
			return
		}
		_, ll := m.alpha(m.emissions(obs))
		if math.IsNaN(ll) {
			err = fmt.Errorf("%w: sequence %d log-likelihood is NaN", ErrDegenerate, i)
			return
		}
		total += ll
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

// logDensity returns log b(j, x) for a diagonal Gaussian.
func (m *Model) logDensity(j int, x []float64) float64 {
	mu := m.means.RawRowView(j)
	vr := m.vars.RawRowView(j)
	sum := 0.0
	for k, xv := range x {
		d := xv - mu[k]
		sum += log2Pi + math.Log(vr[k]) + d*d/vr[k]
	}
	return -0.5 * sum
}

// emissions computes b(j, o(t)) for every frame and state. [T x N]
func (m *Model) emissions(obs [][]float64) [][]float64 {
	e := make([][]float64, len(obs))
	for t, x := range obs {
		row := make([]float64, m.nstates)
		for j := range row {
			row[j] = m.logDensity(j, x)
		}
		e[t] = row
	}
	return e
}

// alpha runs the forward pass. Indices are α(time, state).
//
//	α(0,i)   = π(i) + b(i,o(0))
//	α(t+1,j) = logsum_i[α(t,i) + a(i,j)] + b(j,o(t+1))
func (m *Model) alpha(e [][]float64) ([][]float64, float64) {
	n := m.nstates
	T := len(e)
	α := make([][]float64, T)
	scratch := make([]float64, n)

	α[0] = make([]float64, n)
	for i := 0; i < n; i++ {
		α[0][i] = m.logStart[i] + e[0][i]
	}
	for t := 1; t < T; t++ {
		α[t] = make([]float64, n)
		for j := 0; j < n; j++ {
			for i := 0; i < n; i++ {
				scratch[i] = α[t-1][i] + m.logTrans.At(i, j)
			}
			α[t][j] = logSumExp(scratch) + e[t][j]
		}
	}
	return α, logSumExp(α[T-1])
}

// beta runs the backward pass. Indices are β(time, state).
//
//	β(T-1,i) = 0
//	β(t,i)   = logsum_j[a(i,j) + b(j,o(t+1)) + β(t+1,j)]
func (m *Model) beta(e [][]float64) [][]float64 {
	n := m.nstates
	T := len(e)
	β := make([][]float64, T)
	scratch := make([]float64, n)

	β[T-1] = make([]float64, n)
	for t := T - 2; t >= 0; t-- {
		β[t] = make([]float64, n)
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				scratch[j] = m.logTrans.At(i, j) + e[t+1][j] + β[t+1][j]
			}
			β[t][i] = logSumExp(scratch)
		}
	}
	return β
}

// logSumExp is floats.LogSumExp that tolerates all -Inf input.
func logSumExp(s []float64) float64 {
	if math.IsInf(floats.Max(s), -1) {
		return math.Inf(-1)
	}
	return floats.LogSumExp(s)
}

// finite reports whether every element of the model parameters is finite.
func (m *Model) finite() bool {
	for _, v := range m.means.RawMatrix().Data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	for _, v := range m.vars.RawMatrix().Data {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return false
		}
	}
	for _, v := range m.logStart {
		if math.IsNaN(v) {
			return false
		}
	}
	for _, v := range m.logTrans.RawMatrix().Data {
		if math.IsNaN(v) {
			return false
		}
	}
	return true
}
