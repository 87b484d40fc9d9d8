// Package sequence provides observation sequences and the combined
// array/lengths views that sequence models are fitted and scored on.
package sequence

// Frame is one feature vector, one per video frame.
type Frame []float64

// Sequence is an ordered run of frames for one recorded example of a word.
type Sequence []Frame

// View is the row-wise concatenation of a set of sequences together with
// the row count each contributor added, in concatenation order.
// The sum of Lengths always equals len(X).
type View struct {
	X       [][]float64
	Lengths []int
}

// Rows returns the number of observations in the view.
func (v View) Rows() int {
	return len(v.X)
}

// Features returns the width of the observation vectors, or 0 for an empty view.
func (v View) Features() int {
	if len(v.X) == 0 {
		return 0
	}
	return len(v.X[0])
}

// Sequences returns the number of contributing sequences, including empty ones.
func (v View) Sequences() int {
	return len(v.Lengths)
}

// Split walks the view one contributing sequence at a time.
// Zero-length sequences yield an empty slice.
func (v View) Split(fn func(i int, rows [][]float64)) {
	start := 0
	for i, n := range v.Lengths {
		fn(i, v.X[start:start+n])
		start += n
	}
}

// Combine concatenates sequences in order and records each one's length.
// Empty sequences are kept as zero-length entries.
func Combine(seqs []Sequence) View {
	total := 0
	for _, s := range seqs {
		total += len(s)
	}

	v := View{
		X:       make([][]float64, 0, total),
		Lengths: make([]int, 0, len(seqs)),
	}
	for _, s := range seqs {
		for _, f := range s {
			v.X = append(v.X, f)
		}
		v.Lengths = append(v.Lengths, len(s))
	}
	return v
}

// CombineIndices combines the sequences picked by idx, in the order given.
func CombineIndices(seqs []Sequence, idx []int) View {
	picked := make([]Sequence, len(idx))
	for i, j := range idx {
		picked[i] = seqs[j]
	}
	return Combine(picked)
}
