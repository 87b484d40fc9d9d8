package selector

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrTrainingFailure marks a candidate whose model could not be fitted.
	ErrTrainingFailure = errors.New("training failure")
	// ErrInsufficientData means the word has too few sequences to fold.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrSelectionExhausted means no candidate in the sweep produced a score.
	ErrSelectionExhausted = errors.New("selection exhausted")
)

// FitError reports a failed Trainer.Fit call.
type FitError struct {
	States int
	Err    error
}

func (e *FitError) Error() string {
	return fmt.Sprintf("fit %d states: %v", e.States, e.Err)
}

// Unwrap exposes the trainer error.
func (e *FitError) Unwrap() error { return e.Err }

// Is matches ErrTrainingFailure.
func (e *FitError) Is(target error) bool { return target == ErrTrainingFailure }

// Outcome tags how a Result was produced.
type Outcome string

const (
	// OutcomeSelected means a candidate from the sweep won.
	OutcomeSelected Outcome = "selected"
	// OutcomeConstant means the Constant strategy produced the model.
	OutcomeConstant Outcome = "constant"
	// OutcomeFallback means the sweep produced nothing and the Constant
	// state count was used instead.
	OutcomeFallback Outcome = "fallback"
	// OutcomeAbsent means no model could be trained at all.
	OutcomeAbsent Outcome = "absent"
)

// CandidateStatus tags what happened to one state count in a sweep.
type CandidateStatus string

const (
	CandidateScored      CandidateStatus = "scored"
	CandidateFitFailed   CandidateStatus = "fit_failed"
	CandidateScoreFailed CandidateStatus = "score_failed"
	// CandidateUnusable is a candidate whose score was not a number.
	CandidateUnusable CandidateStatus = "unusable"
)

// Candidate records the evaluation of one state count.
type Candidate struct {
	States int
	Score  float64
	Status CandidateStatus
	Err    error
}

// Result is the outcome of Selector.Select.
type Result struct {
	Word     string
	Strategy Strategy

	// Model is nil when Outcome is OutcomeAbsent.
	Model  Model
	States int

	// Score is the strategy's criterion for the chosen candidate. It is
	// only meaningful when HasScore is set.
	Score    float64
	HasScore bool

	Outcome Outcome
	// Cause is nil for OutcomeSelected and OutcomeConstant. For
	// OutcomeFallback it wraps ErrSelectionExhausted or ErrInsufficientData;
	// for OutcomeAbsent it also carries the constant fit error.
	Cause error

	Candidates []Candidate
}

// OK reports whether the result carries a model.
func (r Result) OK() bool {
	return r.Model != nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
