package selector

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/ayusman/mudra/internal/sequence"
)

// CV selects the state count with the highest mean held-out log-likelihood
// over [MinStates, MaxStates], inclusive. Each fold trains on its train
// sequences and scores its test sequences; a fit failure ends the fold loop
// for that state count and the folds scored so far are averaged.
//
// The returned model is the one fitted on the last successful fold of the
// winning state count.
type CV struct {
	*base

	// Folds is the number of cross-validation folds.
	Folds int
}

// Strategy returns StrategyCV.
func (s *CV) Strategy() Strategy { return StrategyCV }

// Select sweeps the candidates and returns the best cross-validated model.
func (s *CV) Select() Result {
	k := s.Folds
	if k == 0 {
		k = DefaultFolds
	}

	// The split depends only on the sequence count and the seed, so every
	// candidate sees the same folds.
	folds, err := KFold(len(s.sequences), k, s.cfg.Seed)
	if err != nil {
		return s.fallback(StrategyCV, fmt.Errorf("cv: %w", err), nil)
	}

	var (
		best  Candidate
		model Model
		trail []Candidate
	)

	for n := s.cfg.MinStates; n <= s.cfg.MaxStates; n++ {
		c, m := s.evaluate(n, folds)
		trail = append(trail, c)

		if c.Status == CandidateScored && (model == nil || c.Score > best.Score) {
			best, model = c, m
		}
	}

	if model == nil {
		return s.fallback(StrategyCV, fmt.Errorf("cv: %w", ErrSelectionExhausted), trail)
	}
	return s.selected(StrategyCV, best, model, trail)
}

// evaluate runs every fold for n states. It returns the candidate with the
// mean test log-likelihood and the last model that fitted.
func (s *CV) evaluate(n int, folds []Fold) (Candidate, Model) {
	var (
		scores []float64
		last   Model
		errs   []error
	)

	for _, fold := range folds {
		train := sequence.CombineIndices(s.sequences, fold.Train)
		test := sequence.CombineIndices(s.sequences, fold.Test)

		m, err := s.fit(n, train)
		if err != nil {
			errs = append(errs, err)
			break
		}
		logL, err := score(m, test)
		if err != nil {
			errs = append(errs, err)
			break
		}
		scores = append(scores, logL)
		last = m
	}

	c := Candidate{States: n, Err: errors.Join(errs...)}
	if len(scores) == 0 {
		c.Status = CandidateFitFailed
		if len(errs) > 0 && !errors.Is(errs[0], ErrTrainingFailure) {
			c.Status = CandidateScoreFailed
		}
		return c, nil
	}

	c.Score = stat.Mean(scores, nil)
	c.Status = CandidateScored
	if !finite(c.Score) {
		c.Status = CandidateUnusable
		return c, nil
	}
	return c, last
}
