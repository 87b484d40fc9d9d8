// Package testdata generates deterministic synthetic sign sequences for tests.
package testdata

import (
	"math/rand/v2"

	"github.com/ayusman/mudra/internal/sequence"
)

// Regime is one segment of a synthetic sign: frames scatter around Center.
type Regime struct {
	Center []float64
	Spread float64
}

// Synthesize returns count sequences that each walk through regimes in order,
// spending perRegime frames (plus up to two frames of jitter) in each one.
func Synthesize(regimes []Regime, count, perRegime int, seed uint64) []sequence.Sequence {
	rng := rand.New(rand.NewPCG(seed, seed^0x5bd1e995))

	seqs := make([]sequence.Sequence, count)
	for s := range seqs {
		var seq sequence.Sequence
		for _, r := range regimes {
			frames := perRegime + rng.IntN(3)
			for i := 0; i < frames; i++ {
				f := make(sequence.Frame, len(r.Center))
				for k, c := range r.Center {
					f[k] = c + rng.NormFloat64()*r.Spread
				}
				seq = append(seq, f)
			}
		}
		seqs[s] = seq
	}
	return seqs
}

// VocabularyWords lists the words produced by Vocabulary, in order.
var VocabularyWords = []string{"CAT", "DOG", "FISH", "JOHN"}

// Vocabulary builds a small two-feature collection in which every word has
// a distinct trajectory through hand-position space.
func Vocabulary(seed uint64) *sequence.Collection {
	trajectories := map[string][]Regime{
		"CAT": {
			{Center: []float64{0, 0}, Spread: 0.3},
			{Center: []float64{5, 5}, Spread: 0.3},
		},
		"DOG": {
			{Center: []float64{-4, 2}, Spread: 0.4},
			{Center: []float64{0, -3}, Spread: 0.4},
			{Center: []float64{4, 2}, Spread: 0.4},
		},
		"FISH": {
			{Center: []float64{8, -8}, Spread: 0.5},
			{Center: []float64{10, -2}, Spread: 0.5},
		},
		"JOHN": {
			{Center: []float64{-6, -6}, Spread: 0.3},
			{Center: []float64{-2, -8}, Spread: 0.3},
			{Center: []float64{-6, -10}, Spread: 0.3},
		},
	}

	c := sequence.NewCollection()
	for i, w := range VocabularyWords {
		for _, s := range Synthesize(trajectories[w], 4, 6, seed+uint64(i)) {
			c.Add(w, s)
		}
	}
	return c
}
