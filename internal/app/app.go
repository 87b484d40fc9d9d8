// Package app runs model selection across a stored vocabulary.
package app

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/hmm"
	"github.com/ayusman/mudra/internal/selector"
	"github.com/ayusman/mudra/internal/sequence"
	"github.com/ayusman/mudra/internal/store"
)

// ErrEmptyVocabulary is returned when a run finds no words with sequences.
var ErrEmptyVocabulary = errors.New("no words with sequences")

// eventBuffer is the per-subscriber channel capacity.
const eventBuffer = 64

// Config holds configuration options for the runner.
type Config struct {
	Store *store.Store
	// Trainer defaults to the HMM trainer with default limits.
	Trainer   selector.Trainer
	Selection config.SelectionConfig
	Logger    *zap.Logger
}

// Event reports one finished word of a run.
type Event struct {
	RunID    string   `json:"run_id"`
	Word     string   `json:"word"`
	Strategy string   `json:"strategy"`
	States   int      `json:"states"`
	Score    *float64 `json:"score,omitempty"`
	Outcome  string   `json:"outcome"`
	Reason   string   `json:"reason,omitempty"`
	Done     int      `json:"done"`
	Total    int      `json:"total"`
}

// Run is a completed selection pass over the vocabulary.
type Run struct {
	ID         string
	Strategy   selector.Strategy
	StartedAt  time.Time
	FinishedAt time.Time
	// Results are in collection order.
	Results []selector.Result
}

// Summary counts the outcomes of a run.
type Summary struct {
	Words    int `json:"words"`
	Selected int `json:"selected"`
	Constant int `json:"constant"`
	Fallback int `json:"fallback"`
	Absent   int `json:"absent"`
}

// Summary tallies the run's results by outcome.
func (r *Run) Summary() Summary {
	s := Summary{Words: len(r.Results)}
	for _, res := range r.Results {
		switch res.Outcome {
		case selector.OutcomeSelected:
			s.Selected++
		case selector.OutcomeConstant:
			s.Constant++
		case selector.OutcomeFallback:
			s.Fallback++
		case selector.OutcomeAbsent:
			s.Absent++
		}
	}
	return s
}

// Runner selects a model for every word in the store.
type Runner struct {
	config  Config
	trainer selector.Trainer
	logger  *zap.Logger

	mu          sync.RWMutex
	subscribers map[int]chan Event
	nextSub     int
}

// New creates a Runner. Unset selection values take the selector defaults.
func New(cfg Config) *Runner {
	if cfg.Selection.Constant == 0 {
		cfg.Selection.Constant = selector.DefaultConstant
	}
	if cfg.Selection.MinStates == 0 {
		cfg.Selection.MinStates = selector.DefaultMinStates
	}
	if cfg.Selection.MaxStates == 0 {
		cfg.Selection.MaxStates = selector.DefaultMaxStates
	}
	if cfg.Selection.Workers < 1 {
		cfg.Selection.Workers = 1
	}

	trainer := cfg.Trainer
	if trainer == nil {
		trainer = HMMTrainer(hmm.NewTrainer())
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Runner{
		config:      cfg,
		trainer:     trainer,
		logger:      logger,
		subscribers: make(map[int]chan Event),
	}
}

// HMMTrainer adapts an hmm.Trainer to the selector.Trainer interface.
func HMMTrainer(t *hmm.Trainer) selector.Trainer {
	return selector.TrainerFunc(func(states int, v sequence.View, seed int64) (selector.Model, error) {
		m, err := t.Fit(states, v, seed)
		if err != nil {
			return nil, err
		}
		return m, nil
	})
}

// Subscribe registers for run events. The returned function unsubscribes
// and closes the channel. Events are dropped for subscribers that fall
// behind.
func (r *Runner) Subscribe() (<-chan Event, func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextSub
	r.nextSub++
	ch := make(chan Event, eventBuffer)
	r.subscribers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			delete(r.subscribers, id)
			close(ch)
		})
	}
}

func (r *Runner) publish(e Event) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, ch := range r.subscribers {
		select {
		case ch <- e:
		default:
		}
	}
}

// Run selects a model for every word using strategy and persists the results.
func (r *Runner) Run(strategy selector.Strategy) (*Run, error) {
	c, err := r.collection()
	if err != nil {
		return nil, err
	}
	return r.run(strategy, c, c.Words())
}

// SelectWord selects a model for a single word and persists the result as
// its own run. The other stored words still take part in DIC scoring.
func (r *Runner) SelectWord(strategy selector.Strategy, word string) (*Run, error) {
	c, err := r.collection()
	if err != nil {
		return nil, err
	}
	if !c.Has(word) {
		return nil, fmt.Errorf("word %q: %w", word, store.ErrNotFound)
	}
	return r.run(strategy, c, []string{word})
}

func (r *Runner) collection() (*sequence.Collection, error) {
	if r.config.Store == nil {
		return nil, errors.New("store is required")
	}
	c, err := r.config.Store.LoadCollection()
	if err != nil {
		return nil, err
	}
	if c.Len() == 0 {
		return nil, ErrEmptyVocabulary
	}
	return c, nil
}

func (r *Runner) run(strategy selector.Strategy, c *sequence.Collection, words []string) (*Run, error) {
	selectors := make([]selector.Selector, len(words))
	for i, w := range words {
		s, err := selector.New(strategy, r.selectorConfig(w, c))
		if err != nil {
			return nil, fmt.Errorf("word %q: %w", w, err)
		}
		selectors[i] = s
	}

	run := &Run{
		ID:        uuid.New().String(),
		Strategy:  strategy,
		StartedAt: time.Now(),
		Results:   make([]selector.Result, len(words)),
	}
	logger := r.logger.With(zap.String("run", run.ID), zap.String("strategy", string(strategy)))
	logger.Info("run started", zap.Int("words", len(words)), zap.Int("workers", r.config.Selection.Workers))

	var (
		wg   sync.WaitGroup
		done atomic.Int64
		sem  = make(chan struct{}, r.config.Selection.Workers)
	)
	for i, s := range selectors {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, s selector.Selector) {
			defer wg.Done()
			defer func() { <-sem }()

			res := s.Select()
			run.Results[i] = res

			e := newEvent(run.ID, res)
			e.Done = int(done.Add(1))
			e.Total = len(selectors)
			r.publish(e)
		}(i, s)
	}
	wg.Wait()
	run.FinishedAt = time.Now()

	if err := r.persist(run); err != nil {
		return run, err
	}

	sum := run.Summary()
	logger.Info("run finished",
		zap.Int("selected", sum.Selected),
		zap.Int("constant", sum.Constant),
		zap.Int("fallback", sum.Fallback),
		zap.Int("absent", sum.Absent),
		zap.Duration("elapsed", run.FinishedAt.Sub(run.StartedAt)))

	return run, nil
}

func (r *Runner) selectorConfig(word string, c *sequence.Collection) selector.Config {
	sel := r.config.Selection
	return selector.Config{
		Word:       word,
		Collection: c,
		Trainer:    r.trainer,
		Constant:   sel.Constant,
		MinStates:  sel.MinStates,
		MaxStates:  sel.MaxStates,
		Seed:       sel.Seed,
		Logger:     r.logger,
	}
}

func (r *Runner) persist(run *Run) error {
	sels := make([]*store.Selection, len(run.Results))
	for i, res := range run.Results {
		sels[i] = NewSelection(run.ID, res)
	}
	if err := r.config.Store.Selections().CreateRun(sels); err != nil {
		return fmt.Errorf("failed to store run %s: %w", run.ID, err)
	}
	return nil
}

// NewSelection converts a selector result into its stored form.
func NewSelection(runID string, res selector.Result) *store.Selection {
	sel := &store.Selection{
		ID:       uuid.New().String(),
		RunID:    runID,
		Word:     res.Word,
		Strategy: string(res.Strategy),
		States:   res.States,
		Outcome:  string(res.Outcome),
	}
	if res.HasScore {
		score := res.Score
		sel.Score = &score
	}
	if res.Cause != nil {
		sel.Reason = res.Cause.Error()
	}
	return sel
}

func newEvent(runID string, res selector.Result) Event {
	sel := NewSelection(runID, res)
	return Event{
		RunID:    runID,
		Word:     sel.Word,
		Strategy: sel.Strategy,
		States:   sel.States,
		Score:    sel.Score,
		Outcome:  sel.Outcome,
		Reason:   sel.Reason,
	}
}
