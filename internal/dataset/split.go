package dataset

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/ppiankov/polarity/internal/model"
)

// Split is a train/test partition of review texts and labels
type Split struct {
	TrainX []string
	TrainY []float64
	TestX  []string
	TestY  []float64
}

// TrainTestSplit shuffles with seed and holds out ceil(testSize*n) reviews for testing
func TrainTestSplit(reviews []model.Review, testSize float64, seed int64) (Split, error) {
	n := len(reviews)
	if n < 2 {
		return Split{}, fmt.Errorf("need at least 2 reviews to split, got %d", n)
	}
	if testSize <= 0 || testSize >= 1 {
		return Split{}, fmt.Errorf("test size must be in (0, 1), got %v", testSize)
	}

	nTest := int(math.Ceil(testSize * float64(n)))
	nTrain := n - nTest
	if nTrain == 0 {
		return Split{}, fmt.Errorf("test size %v leaves no training reviews out of %d", testSize, n)
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)

	split := Split{
		TrainX: make([]string, 0, nTrain),
		TrainY: make([]float64, 0, nTrain),
		TestX:  make([]string, 0, nTest),
		TestY:  make([]float64, 0, nTest),
	}
	for i, idx := range perm {
		r := reviews[idx]
		if i < nTest {
			split.TestX = append(split.TestX, r.Text)
			split.TestY = append(split.TestY, float64(r.Label))
		} else {
			split.TrainX = append(split.TrainX, r.Text)
			split.TrainY = append(split.TrainY, float64(r.Label))
		}
	}

	return split, nil
}
