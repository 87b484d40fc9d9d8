package selector

import (
	"fmt"
	"math"
)

// ParamCount returns the number of free parameters of an HMM with n states
// and f-dimensional diagonal Gaussian emissions:
// n(n-1) transitions, n-1 start probabilities, n·f means and n·f variances.
func ParamCount(n, f int) int {
	return n*n + 2*f*n - 1
}

// BICScore returns -2·logL + p·ln(N). Lower is better.
func BICScore(logL float64, n, f, N int) float64 {
	return -2*logL + float64(ParamCount(n, f))*math.Log(float64(N))
}

// BIC selects the state count with the lowest Bayesian Information
// Criterion over [MinStates, MaxStates). Candidates that fail to fit or
// score are skipped.
type BIC struct {
	*base
}

// Strategy returns StrategyBIC.
func (s *BIC) Strategy() Strategy { return StrategyBIC }

// Select sweeps the candidates and returns the minimum-BIC model.
func (s *BIC) Select() Result {
	N, f := s.view.Rows(), s.view.Features()

	var (
		best  Candidate
		model Model
		trail []Candidate
	)

	for n := s.cfg.MinStates; n < s.cfg.MaxStates; n++ {
		m, err := s.fit(n, s.view)
		if err != nil {
			trail = append(trail, Candidate{States: n, Status: CandidateFitFailed, Err: err})
			continue
		}

		logL, err := score(m, s.view)
		if err != nil {
			trail = append(trail, Candidate{States: n, Status: CandidateScoreFailed, Err: err})
			continue
		}

		c := Candidate{States: n, Score: BICScore(logL, n, f, N), Status: CandidateScored}
		if !finite(c.Score) {
			c.Status = CandidateUnusable
		}
		trail = append(trail, c)

		if c.Status == CandidateScored && (model == nil || c.Score < best.Score) {
			best, model = c, m
		}
	}

	if model == nil {
		return s.fallback(StrategyBIC, fmt.Errorf("bic: %w", ErrSelectionExhausted), trail)
	}
	return s.selected(StrategyBIC, best, model, trail)
}
