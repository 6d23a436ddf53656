package classify

import (
	"errors"
	"fmt"

	"github.com/ppiankov/polarity/internal/model"
	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"
)

// ErrSingleClass is returned when only one class is present, where training and AUC are undefined
var ErrSingleClass = errors.New("only one class present")

// AUC returns the area under the ROC curve of scores against 0/1 truth.
// Hard 0/1 predictions are valid scores.
func AUC(yTrue, scores []float64) (float64, error) {
	if len(yTrue) != len(scores) {
		return 0, fmt.Errorf("%w: %d labels, %d scores", ErrShapeMismatch, len(yTrue), len(scores))
	}

	classes := make([]bool, len(yTrue))
	var pos int
	for i, v := range yTrue {
		classes[i] = v == 1
		if classes[i] {
			pos++
		}
	}
	if pos == 0 || pos == len(yTrue) {
		return 0, fmt.Errorf("%w: AUC is undefined", ErrSingleClass)
	}

	y := append([]float64(nil), scores...)
	stat.SortWeightedLabeled(y, classes, nil)

	tpr, fpr, _ := stat.ROC(nil, y, classes, nil)
	return integrate.Trapezoidal(fpr, tpr), nil
}

// Accuracy returns the share of predictions equal to the truth
func Accuracy(yTrue, yPred []float64) float64 {
	if len(yTrue) == 0 || len(yTrue) != len(yPred) {
		return 0
	}
	var hits int
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			hits++
		}
	}
	return float64(hits) / float64(len(yTrue))
}

// ConfusionCounts tallies hard predictions against the truth
func ConfusionCounts(yTrue, yPred []float64) model.Confusion {
	var c model.Confusion
	for i := range yTrue {
		if i >= len(yPred) {
			break
		}
		switch {
		case yTrue[i] == 1 && yPred[i] == 1:
			c.TruePositive++
		case yTrue[i] == 0 && yPred[i] == 1:
			c.FalsePositive++
		case yTrue[i] == 0 && yPred[i] == 0:
			c.TrueNegative++
		default:
			c.FalseNegative++
		}
	}
	return c
}
