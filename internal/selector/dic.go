package selector

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// DICScore returns own - mean(others). Higher is better. It is NaN when
// there are no other words to compare against.
func DICScore(own float64, others []float64) float64 {
	if len(others) == 0 {
		return math.NaN()
	}
	return own - stat.Mean(others, nil)
}

// DIC selects the state count with the highest Discriminative Information
// Criterion over [MinStates, MaxStates): the log-likelihood of the word's
// own sequences minus the average log-likelihood of every other word.
//
// A failure to fit or score a candidate ends the sweep; later, larger
// state counts are not tried.
type DIC struct {
	*base
}

// Strategy returns StrategyDIC.
func (s *DIC) Strategy() Strategy { return StrategyDIC }

// Select sweeps the candidates and returns the maximum-DIC model.
func (s *DIC) Select() Result {
	var others []string
	for _, w := range s.cfg.Collection.Words() {
		if w != s.cfg.Word {
			others = append(others, w)
		}
	}

	var (
		best  Candidate
		model Model
		trail []Candidate
	)

sweep:
	for n := s.cfg.MinStates; n < s.cfg.MaxStates; n++ {
		m, err := s.fit(n, s.view)
		if err != nil {
			trail = append(trail, Candidate{States: n, Status: CandidateFitFailed, Err: err})
			break
		}

		own, err := score(m, s.view)
		if err != nil {
			trail = append(trail, Candidate{States: n, Status: CandidateScoreFailed, Err: err})
			break
		}

		anti := make([]float64, 0, len(others))
		for _, w := range others {
			logL, err := score(m, s.cfg.Collection.View(w))
			if err != nil {
				trail = append(trail, Candidate{States: n, Status: CandidateScoreFailed, Err: fmt.Errorf("score %s: %w", w, err)})
				break sweep
			}
			anti = append(anti, logL)
		}

		c := Candidate{States: n, Score: DICScore(own, anti), Status: CandidateScored}
		if !finite(c.Score) {
			c.Status = CandidateUnusable
		}
		trail = append(trail, c)

		if c.Status == CandidateScored && (model == nil || c.Score > best.Score) {
			best, model = c, m
		}
	}

	if model == nil {
		return s.fallback(StrategyDIC, fmt.Errorf("dic: %w", ErrSelectionExhausted), trail)
	}
	return s.selected(StrategyDIC, best, model, trail)
}
