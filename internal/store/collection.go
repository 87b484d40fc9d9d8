package store

import (
	"fmt"

	"github.com/ayusman/mudra/internal/sequence"
)

// LoadCollection reads every word and its sequences into a Collection,
// preserving word insertion order and sequence recording order.
func (s *Store) LoadCollection() (*sequence.Collection, error) {
	words, err := s.Words().List()
	if err != nil {
		return nil, fmt.Errorf("failed to list words: %w", err)
	}

	c := sequence.NewCollection()
	seqRepo := s.Sequences()
	for _, w := range words {
		stored, err := seqRepo.GetByWordID(w.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load sequences for %q: %w", w.Name, err)
		}
		for _, st := range stored {
			c.Add(w.Name, st.Frames)
		}
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// ImportWord creates the word if it does not exist and appends seqs to it.
// It returns the stored word.
func (s *Store) ImportWord(id, name string, seqs []sequence.Sequence) (*Word, error) {
	words := s.Words()
	w, err := words.GetByName(name)
	if err == ErrNotFound {
		w = &Word{ID: id, Name: name}
		if err := words.Create(w); err != nil {
			return nil, fmt.Errorf("failed to create word %q: %w", name, err)
		}
	} else if err != nil {
		return nil, err
	}

	if err := s.Sequences().Append(w.ID, seqs); err != nil {
		return nil, fmt.Errorf("failed to store sequences for %q: %w", name, err)
	}

	return words.GetByID(w.ID)
}
