package classify

import (
	"fmt"

	"github.com/jonreiter/govader"
	"github.com/ppiankov/polarity/internal/model"
)

// LexiconBaseline scores reviews with the VADER lexicon, without any training
type LexiconBaseline struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

// NewLexiconBaseline creates the VADER reference classifier
func NewLexiconBaseline() *LexiconBaseline {
	return &LexiconBaseline{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

// Scores returns the VADER compound score (-1..1) for each document
func (b *LexiconBaseline) Scores(docs []string) []float64 {
	scores := make([]float64, len(docs))
	for i, doc := range docs {
		scores[i] = b.analyzer.PolarityScores(doc).Compound
	}
	return scores
}

// Evaluate scores the test documents and measures them like a fitted model
func (b *LexiconBaseline) Evaluate(docs []string, yTrue []float64) (*model.BaselineResult, error) {
	scores := b.Scores(docs)
	preds := Threshold(scores, 0)

	auc, err := AUC(yTrue, preds)
	if err != nil {
		return nil, fmt.Errorf("baseline AUC: %w", err)
	}
	scoreAUC, err := AUC(yTrue, scores)
	if err != nil {
		return nil, fmt.Errorf("baseline score AUC: %w", err)
	}

	return &model.BaselineResult{
		Name:     "vader",
		AUC:      auc,
		ScoreAUC: scoreAUC,
		Accuracy: Accuracy(yTrue, preds),
	}, nil
}
