// Package selector chooses the number of hidden states for a word's HMM.
//
// Every strategy sweeps candidate state counts, fits a model for each one
// through a Trainer, scores it, and keeps the best. When no candidate is
// usable the selector falls back to the fixed Constant state count.
package selector

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ayusman/mudra/internal/sequence"
)

// Default selection parameters.
const (
	DefaultConstant  = 3
	DefaultMinStates = 2
	DefaultMaxStates = 10
	DefaultSeed      = 14
)

// Strategy names a selection policy.
type Strategy string

const (
	// StrategyConstant always uses the fallback state count.
	StrategyConstant Strategy = "constant"
	// StrategyBIC minimizes the Bayesian Information Criterion.
	StrategyBIC Strategy = "bic"
	// StrategyDIC maximizes the Discriminative Information Criterion.
	StrategyDIC Strategy = "dic"
	// StrategyCV maximizes the mean held-out log-likelihood over folds.
	StrategyCV Strategy = "cv"
)

// Strategies lists every supported strategy.
var Strategies = []Strategy{StrategyConstant, StrategyBIC, StrategyDIC, StrategyCV}

// ParseStrategy converts a name into a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	for _, s := range Strategies {
		if string(s) == name {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown strategy %q", name)
}

// Model is a trained sequence model.
type Model interface {
	// Score returns the log-likelihood of the view under the model.
	Score(v sequence.View) (float64, error)
}

// Trainer fits a model with the given number of states on a view.
// It must be deterministic for a fixed seed and safe for concurrent use.
type Trainer interface {
	Fit(states int, v sequence.View, seed int64) (Model, error)
}

// TrainerFunc adapts a function to the Trainer interface.
type TrainerFunc func(states int, v sequence.View, seed int64) (Model, error)

// Fit calls f.
func (f TrainerFunc) Fit(states int, v sequence.View, seed int64) (Model, error) {
	return f(states, v, seed)
}

// Selector picks a trained model for one word.
type Selector interface {
	// Select never fails. A Result without a Model means no usable model
	// could be trained for the word.
	Select() Result

	// Strategy returns the policy this selector implements.
	Strategy() Strategy
}

// Config holds the inputs shared by every strategy.
type Config struct {
	// Word is the vocabulary item to select a model for.
	Word string
	// Collection holds all words; DIC scores candidates against the others.
	Collection *sequence.Collection
	Trainer    Trainer

	// Constant is the fallback state count.
	Constant int
	// MinStates and MaxStates bound the sweep. BIC and DIC exclude
	// MaxStates, CV includes it.
	MinStates int
	MaxStates int
	// Seed is handed to every Trainer.Fit call.
	Seed int64

	Logger *zap.Logger
}

// DefaultConfig returns a Config for word with the default bounds.
func DefaultConfig(word string, c *sequence.Collection, t Trainer) Config {
	return Config{
		Word:       word,
		Collection: c,
		Trainer:    t,
		Constant:   DefaultConstant,
		MinStates:  DefaultMinStates,
		MaxStates:  DefaultMaxStates,
		Seed:       DefaultSeed,
	}
}

// New builds the selector for strategy.
func New(strategy Strategy, cfg Config) (Selector, error) {
	b, err := newBase(cfg)
	if err != nil {
		return nil, err
	}

	switch strategy {
	case StrategyConstant:
		return &Constant{base: b}, nil
	case StrategyBIC:
		return &BIC{base: b}, nil
	case StrategyDIC:
		return &DIC{base: b}, nil
	case StrategyCV:
		return &CV{base: b, Folds: DefaultFolds}, nil
	default:
		return nil, fmt.Errorf("unknown strategy %q", strategy)
	}
}

// base carries the per-word state and the shared fit helper.
type base struct {
	cfg       Config
	sequences []sequence.Sequence
	view      sequence.View
	logger    *zap.Logger
}

func newBase(cfg Config) (*base, error) {
	if cfg.Collection == nil {
		return nil, errors.New("collection is required")
	}
	if cfg.Trainer == nil {
		return nil, errors.New("trainer is required")
	}
	if !cfg.Collection.Has(cfg.Word) {
		return nil, fmt.Errorf("word %q not in collection", cfg.Word)
	}
	if cfg.Constant < 1 {
		return nil, fmt.Errorf("constant must be positive, got %d", cfg.Constant)
	}
	if cfg.MinStates < 1 || cfg.MaxStates < cfg.MinStates {
		return nil, fmt.Errorf("invalid state range [%d, %d]", cfg.MinStates, cfg.MaxStates)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &base{
		cfg:       cfg,
		sequences: cfg.Collection.Sequences(cfg.Word),
		view:      cfg.Collection.View(cfg.Word),
		logger:    logger.With(zap.String("word", cfg.Word)),
	}, nil
}

// fit trains a model with n states on v. Trainer errors and panics come
// back as a *FitError.
func (b *base) fit(n int, v sequence.View) (m Model, err error) {
	defer func() {
		if r := recover(); r != nil {
			m = nil
			err = &FitError{States: n, Err: fmt.Errorf("trainer panic: %v", r)}
		}
		if err != nil {
			b.logger.Debug("fit failed", zap.Int("states", n), zap.Error(err))
		}
	}()

	m, err = b.cfg.Trainer.Fit(n, v, b.cfg.Seed)
	if err != nil {
		return nil, &FitError{States: n, Err: err}
	}
	if m == nil {
		return nil, &FitError{States: n, Err: errors.New("trainer returned no model")}
	}

	b.logger.Debug("model created", zap.Int("states", n))
	return m, nil
}

// score calls m.Score, turning a panic into an error.
func score(m Model, v sequence.View) (s float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("score panic: %v", r)
		}
	}()
	return m.Score(v)
}

// constant fits the fallback state count on the word's own view.
func (b *base) constant() (Model, error) {
	return b.fit(b.cfg.Constant, b.view)
}

// fallback returns the Constant strategy's result, tagged with cause.
func (b *base) fallback(strategy Strategy, cause error, trail []Candidate) Result {
	b.logger.Debug("falling back to constant",
		zap.String("strategy", string(strategy)),
		zap.Int("constant", b.cfg.Constant),
		zap.Error(cause))

	r := Result{
		Word:       b.cfg.Word,
		Strategy:   strategy,
		States:     b.cfg.Constant,
		Cause:      cause,
		Candidates: trail,
	}

	m, err := b.constant()
	if err != nil {
		r.Outcome = OutcomeAbsent
		r.Cause = fmt.Errorf("%w; %w", cause, err)
		return r
	}
	r.Model = m
	r.Outcome = OutcomeFallback
	return r
}

func (b *base) selected(strategy Strategy, c Candidate, m Model, trail []Candidate) Result {
	b.logger.Debug("model selected",
		zap.String("strategy", string(strategy)),
		zap.Int("states", c.States),
		zap.Float64("score", c.Score))

	return Result{
		Word:       b.cfg.Word,
		Strategy:   strategy,
		Model:      m,
		States:     c.States,
		Score:      c.Score,
		HasScore:   true,
		Outcome:    OutcomeSelected,
		Candidates: trail,
	}
}
