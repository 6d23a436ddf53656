package dataset

import (
	"fmt"
	"testing"

	"github.com/ppiankov/polarity/internal/model"
)

func makeReviews(n int) []model.Review {
	reviews := make([]model.Review, n)
	for i := range reviews {
		reviews[i] = model.Review{Text: fmt.Sprintf("review %d", i), Rating: 5, Label: i % 2}
	}
	return reviews
}

func TestTrainTestSplit_Sizes(t *testing.T) {
	tests := []struct {
		n         int
		testSize  float64
		wantTrain int
		wantTest  int
	}{
		{100, 0.25, 75, 25},
		{10, 0.25, 7, 3},
		{3, 0.25, 2, 1},
	}

	for _, tt := range tests {
		split, err := TrainTestSplit(makeReviews(tt.n), tt.testSize, 0)
		if err != nil {
			t.Fatalf("n=%d: expected no error, got %v", tt.n, err)
		}
		if len(split.TrainX) != tt.wantTrain || len(split.TrainY) != tt.wantTrain {
			t.Errorf("n=%d: expected %d train, got %d", tt.n, tt.wantTrain, len(split.TrainX))
		}
		if len(split.TestX) != tt.wantTest || len(split.TestY) != tt.wantTest {
			t.Errorf("n=%d: expected %d test, got %d", tt.n, tt.wantTest, len(split.TestX))
		}
	}
}

func TestTrainTestSplit_PartitionAndDeterminism(t *testing.T) {
	reviews := makeReviews(40)
	a, err := TrainTestSplit(reviews, 0.25, 0)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := TrainTestSplit(reviews, 0.25, 0)

	seen := make(map[string]int)
	for _, x := range append(append([]string{}, a.TrainX...), a.TestX...) {
		seen[x]++
	}
	if len(seen) != 40 {
		t.Errorf("Expected every review exactly once, got %d distinct", len(seen))
	}
	for x, c := range seen {
		if c != 1 {
			t.Errorf("Review %q appears %d times", x, c)
		}
	}

	for i := range a.TestX {
		if a.TestX[i] != b.TestX[i] {
			t.Fatalf("Expected deterministic split, differ at %d", i)
		}
	}

	// Labels travel with their texts
	for i, x := range a.TrainX {
		var idx int
		fmt.Sscanf(x, "review %d", &idx)
		if a.TrainY[i] != float64(idx%2) {
			t.Errorf("Label mismatch for %q", x)
		}
	}
}

func TestTrainTestSplit_Errors(t *testing.T) {
	if _, err := TrainTestSplit(makeReviews(1), 0.25, 0); err == nil {
		t.Error("Expected error for a single review")
	}
	if _, err := TrainTestSplit(makeReviews(10), 0, 0); err == nil {
		t.Error("Expected error for zero test size")
	}
	if _, err := TrainTestSplit(makeReviews(10), 1.5, 0); err == nil {
		t.Error("Expected error for test size above 1")
	}
}
