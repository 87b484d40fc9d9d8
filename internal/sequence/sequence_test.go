package sequence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seqOf(start float64, n, width int) Sequence {
	s := make(Sequence, n)
	for i := range s {
		f := make(Frame, width)
		for j := range f {
			f[j] = start + float64(i)
		}
		s[i] = f
	}
	return s
}

func TestCombine_PreservesOrderAndLengths(t *testing.T) {
	seqs := []Sequence{seqOf(0, 3, 2), seqOf(100, 2, 2), seqOf(200, 4, 2)}

	v := Combine(seqs)

	assert.Equal(t, []int{3, 2, 4}, v.Lengths)
	assert.Equal(t, 9, v.Rows())
	assert.Equal(t, 2, v.Features())

	// Rows appear in concatenation order.
	assert.Equal(t, 0.0, v.X[0][0])
	assert.Equal(t, 2.0, v.X[2][0])
	assert.Equal(t, 100.0, v.X[3][0])
	assert.Equal(t, 101.0, v.X[4][0])
	assert.Equal(t, 203.0, v.X[8][0])
}

func TestCombine_SumOfLengthsMatchesRows(t *testing.T) {
	cases := [][]Sequence{
		nil,
		{seqOf(0, 1, 3)},
		{seqOf(0, 5, 1), seqOf(0, 7, 1)},
		{seqOf(0, 0, 2), seqOf(0, 3, 2), seqOf(0, 0, 2)},
	}

	for _, seqs := range cases {
		v := Combine(seqs)
		sum := 0
		for _, n := range v.Lengths {
			sum += n
		}
		assert.Equal(t, v.Rows(), sum)
		assert.Len(t, v.Lengths, len(seqs))
	}
}

func TestCombine_KeepsEmptySequences(t *testing.T) {
	v := Combine([]Sequence{seqOf(0, 2, 2), {}, seqOf(5, 1, 2)})

	assert.Equal(t, []int{2, 0, 1}, v.Lengths)
	assert.Equal(t, 3, v.Rows())
	assert.Equal(t, 3, v.Sequences())
}

func TestCombine_Empty(t *testing.T) {
	v := Combine(nil)

	assert.Equal(t, 0, v.Rows())
	assert.Equal(t, 0, v.Features())
	assert.Empty(t, v.Lengths)
}

func TestCombineIndices(t *testing.T) {
	seqs := []Sequence{seqOf(0, 1, 1), seqOf(10, 2, 1), seqOf(20, 3, 1)}

	v := CombineIndices(seqs, []int{2, 0})

	assert.Equal(t, []int{3, 1}, v.Lengths)
	assert.Equal(t, 20.0, v.X[0][0])
	assert.Equal(t, 0.0, v.X[3][0])
}

func TestView_Split(t *testing.T) {
	v := Combine([]Sequence{seqOf(0, 2, 1), {}, seqOf(7, 3, 1)})

	var got []int
	v.Split(func(i int, rows [][]float64) {
		got = append(got, len(rows))
	})

	assert.Equal(t, []int{2, 0, 3}, got)
}

func TestCollection_OrderAndViews(t *testing.T) {
	c := NewCollection()
	c.Add("FRANK", seqOf(0, 4, 2))
	c.Add("CAT", seqOf(10, 2, 2))
	c.Add("FRANK", seqOf(20, 3, 2))

	assert.Equal(t, []string{"FRANK", "CAT"}, c.Words())
	assert.Equal(t, 2, c.Len())
	assert.True(t, c.Has("CAT"))
	assert.False(t, c.Has("DOG"))
	require.Len(t, c.Sequences("FRANK"), 2)

	v := c.View("FRANK")
	assert.Equal(t, []int{4, 3}, v.Lengths)
	assert.Equal(t, Combine(c.Sequences("FRANK")), v)
}

func TestCollection_Validate(t *testing.T) {
	c := NewCollection()
	c.Add("A", seqOf(0, 2, 2))
	require.NoError(t, c.Validate())

	c.Add("B", seqOf(0, 2, 3))
	assert.Error(t, c.Validate())
}
