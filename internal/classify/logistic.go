package classify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/ppiankov/polarity/internal/model"
	"github.com/ppiankov/polarity/internal/text"
	"gonum.org/v1/gonum/optimize"
)

var (
	// ErrShapeMismatch is returned when rows, labels or coefficients disagree in size
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrNotFitted is returned when predicting before Fit
	ErrNotFitted = errors.New("model is not fitted")
)

// LogisticRegression is an L2-penalized binary logistic regression fitted with L-BFGS.
// It minimizes 0.5*||w||^2 + C*sum(logloss); the intercept is not penalized.
type LogisticRegression struct {
	C            float64
	MaxIter      int
	Tol          float64
	FitIntercept bool

	coef       []float64
	intercept  float64
	converged  bool
	status     optimize.Status
	iterations int
	fitted     bool
}

// NewLogisticRegression creates an unfitted model from config, filling zero values with defaults
func NewLogisticRegression(cfg model.ModelConfig) *LogisticRegression {
	m := &LogisticRegression{
		C:            cfg.C,
		MaxIter:      cfg.MaxIter,
		Tol:          cfg.Tol,
		FitIntercept: cfg.FitIntercept,
	}
	if m.C <= 0 {
		m.C = 1
	}
	if m.MaxIter <= 0 {
		m.MaxIter = 100
	}
	if m.Tol <= 0 {
		m.Tol = 1e-4
	}
	return m
}

// Fit learns coefficients for X against 0/1 labels y
func (m *LogisticRegression) Fit(ctx context.Context, X *text.Sparse, y []float64) error {
	if X.Rows != len(y) {
		return fmt.Errorf("%w: %d rows, %d labels", ErrShapeMismatch, X.Rows, len(y))
	}
	if err := checkBinary(y); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	nCoef := X.Cols
	dim := nCoef
	if m.FitIntercept {
		dim++
	}

	// sign[i] is +1 for positive labels, -1 for negative
	sign := make([]float64, len(y))
	for i, v := range y {
		sign[i] = 2*v - 1
	}
	margins := make([]float64, X.Rows)

	computeMargins := func(x []float64) {
		b := 0.0
		if m.FitIntercept {
			b = x[nCoef]
		}
		for i := 0; i < X.Rows; i++ {
			margins[i] = sign[i] * (X.Dot(i, x[:nCoef]) + b)
		}
	}

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			computeMargins(x)
			var loss float64
			for _, z := range margins {
				loss += log1pExp(-z)
			}
			var penalty float64
			for _, w := range x[:nCoef] {
				penalty += w * w
			}
			return 0.5*penalty + m.C*loss
		},
		Grad: func(grad, x []float64) {
			computeMargins(x)
			copy(grad[:nCoef], x[:nCoef])
			if m.FitIntercept {
				grad[nCoef] = 0
			}
			for i := 0; i < X.Rows; i++ {
				// d/dz log(1+exp(-z)) = -sigmoid(-z)
				g := -m.C * sign[i] * sigmoid(-margins[i])
				cols, vals := X.Row(i)
				for k, c := range cols {
					grad[c] += g * vals[k]
				}
				if m.FitIntercept {
					grad[nCoef] += g
				}
			}
		},
	}

	settings := &optimize.Settings{
		GradientThreshold: m.Tol,
		MajorIterations:   m.MaxIter,
		Converger: &ctxConverger{
			ctx:  ctx,
			next: &optimize.FunctionConverge{Absolute: 1e-10, Iterations: 100},
		},
	}

	result, err := optimize.Minimize(problem, make([]float64, dim), settings, &optimize.LBFGS{})
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if result == nil {
		return fmt.Errorf("minimize: %w", err)
	}
	if err != nil {
		slog.Warn("logistic regression did not converge cleanly", "status", result.Status, "error", err)
	}

	m.coef = append([]float64(nil), result.X[:nCoef]...)
	m.intercept = 0
	if m.FitIntercept {
		m.intercept = result.X[nCoef]
	}
	m.iterations = result.Stats.MajorIterations
	m.status = result.Status
	m.converged = err == nil && result.Status != optimize.IterationLimit
	m.fitted = true

	if !m.converged {
		slog.Debug("optimizer stopped before convergence", "status", result.Status, "iterations", m.iterations)
	}
	return nil
}

// DecisionFunction returns w·x + b for every row
func (m *LogisticRegression) DecisionFunction(X *text.Sparse) ([]float64, error) {
	if !m.fitted {
		return nil, ErrNotFitted
	}
	if X.Cols != len(m.coef) {
		return nil, fmt.Errorf("%w: %d features, model has %d", ErrShapeMismatch, X.Cols, len(m.coef))
	}

	out := make([]float64, X.Rows)
	for i := range out {
		out[i] = X.Dot(i, m.coef) + m.intercept
	}
	return out, nil
}

// PredictProba returns P(label = 1) for every row
func (m *LogisticRegression) PredictProba(X *text.Sparse) ([]float64, error) {
	scores, err := m.DecisionFunction(X)
	if err != nil {
		return nil, err
	}
	for i, z := range scores {
		scores[i] = sigmoid(z)
	}
	return scores, nil
}

// Predict returns hard 0/1 labels (positive when the decision value is above zero)
func (m *LogisticRegression) Predict(X *text.Sparse) ([]float64, error) {
	scores, err := m.DecisionFunction(X)
	if err != nil {
		return nil, err
	}
	return Threshold(scores, 0), nil
}

// Coef returns the fitted coefficient vector aligned with the vocabulary
func (m *LogisticRegression) Coef() []float64 {
	return m.coef
}

// Intercept returns the fitted bias
func (m *LogisticRegression) Intercept() float64 {
	return m.intercept
}

// Converged reports whether the optimizer met its tolerance
func (m *LogisticRegression) Converged() bool {
	return m.converged
}

// Status returns the optimizer's termination status, e.g. "GradientThreshold" or "IterationLimit"
func (m *LogisticRegression) Status() string {
	if !m.fitted {
		return ""
	}
	return m.status.String()
}

// Iterations returns the number of L-BFGS major iterations used
func (m *LogisticRegression) Iterations() int {
	return m.iterations
}

// Threshold maps scores above cut to 1, others to 0
func Threshold(scores []float64, cut float64) []float64 {
	labels := make([]float64, len(scores))
	for i, s := range scores {
		if s > cut {
			labels[i] = 1
		}
	}
	return labels
}

func checkBinary(y []float64) error {
	var pos, neg int
	for i, v := range y {
		switch v {
		case 1:
			pos++
		case 0:
			neg++
		default:
			return fmt.Errorf("label %d is %v, expected 0 or 1", i, v)
		}
	}
	if pos == 0 || neg == 0 {
		return fmt.Errorf("%w: %d positive, %d negative", ErrSingleClass, pos, neg)
	}
	return nil
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

// log1pExp computes log(1 + exp(t)) without overflow
func log1pExp(t float64) float64 {
	if t > 0 {
		return t + math.Log1p(math.Exp(-t))
	}
	return math.Log1p(math.Exp(t))
}

// ctxConverger stops the optimizer once ctx is done
type ctxConverger struct {
	ctx  context.Context
	next optimize.Converger
}

func (c *ctxConverger) Init(dim int) {
	c.next.Init(dim)
}

func (c *ctxConverger) Converged(loc *optimize.Location) optimize.Status {
	if c.ctx.Err() != nil {
		return optimize.RuntimeLimit
	}
	return c.next.Converged(loc)
}
