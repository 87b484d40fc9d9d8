package selector

import (
	"fmt"
	"math/rand/v2"
	"sort"
)

// DefaultFolds is the number of cross-validation folds.
const DefaultFolds = 2

// Fold is one train/test partition of sequence indices. Both lists are
// in ascending order.
type Fold struct {
	Train []int
	Test  []int
}

// KFold shuffles the indices [0, count) with seed and cuts them into k
// consecutive test blocks. The first count%k blocks hold one extra index.
func KFold(count, k int, seed int64) ([]Fold, error) {
	if k < 2 {
		return nil, fmt.Errorf("need at least 2 folds, got %d", k)
	}
	if count < k {
		return nil, fmt.Errorf("%w: %d sequences for %d folds", ErrInsufficientData, count, k)
	}

	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)>>1|1))
	perm := rng.Perm(count)

	folds := make([]Fold, k)
	start := 0
	for i := range folds {
		size := count / k
		if i < count%k {
			size++
		}

		test := append([]int(nil), perm[start:start+size]...)
		sort.Ints(test)

		inTest := make(map[int]bool, len(test))
		for _, j := range test {
			inTest[j] = true
		}
		train := make([]int, 0, count-size)
		for j := 0; j < count; j++ {
			if !inTest[j] {
				train = append(train, j)
			}
		}

		folds[i] = Fold{Train: train, Test: test}
		start += size
	}
	return folds, nil
}
