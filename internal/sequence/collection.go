package sequence

import "fmt"

// Collection maps each word to its example sequences. Words and their
// sequences keep insertion order. Once built a Collection is only read, so
// it can be shared between goroutines.
type Collection struct {
	words []string
	seqs  map[string][]Sequence
	views map[string]View
}

// NewCollection creates an empty Collection.
func NewCollection() *Collection {
	return &Collection{
		seqs:  make(map[string][]Sequence),
		views: make(map[string]View),
	}
}

// Add appends seq to word's examples, registering the word on first use.
func (c *Collection) Add(word string, seq Sequence) {
	if _, ok := c.seqs[word]; !ok {
		c.words = append(c.words, word)
	}
	c.seqs[word] = append(c.seqs[word], seq)

	v := c.views[word]
	for _, f := range seq {
		v.X = append(v.X, f)
	}
	v.Lengths = append(v.Lengths, len(seq))
	c.views[word] = v
}

// Words returns the words in insertion order.
func (c *Collection) Words() []string {
	out := make([]string, len(c.words))
	copy(out, c.words)
	return out
}

// Len returns the number of words.
func (c *Collection) Len() int {
	return len(c.words)
}

// Has reports whether word has at least one sequence.
func (c *Collection) Has(word string) bool {
	_, ok := c.seqs[word]
	return ok
}

// Sequences returns word's sequences in insertion order.
func (c *Collection) Sequences(word string) []Sequence {
	return c.seqs[word]
}

// View returns word's precomputed combined view.
func (c *Collection) View(word string) View {
	return c.views[word]
}

// Validate checks that every frame in the collection has the same width.
func (c *Collection) Validate() error {
	width := -1
	for _, w := range c.words {
		for i, s := range c.seqs[w] {
			for j, f := range s {
				if width < 0 {
					width = len(f)
				}
				if len(f) != width {
					return fmt.Errorf("word %s sequence %d frame %d has %d features, expected %d", w, i, j, len(f), width)
				}
			}
		}
	}
	return nil
}
