package model

// VectorizerKind selects how review text is turned into features
type VectorizerKind string

const (
	VectorizerCount VectorizerKind = "count" // Raw term counts
	VectorizerTfidf VectorizerKind = "tfidf" // Smoothed TF-IDF, L2-normalized rows
)

// ExperimentConfig describes one vectorizer + classifier run
type ExperimentConfig struct {
	Name       string         `json:"name" yaml:"name" mapstructure:"name"`
	Vectorizer VectorizerKind `json:"vectorizer" yaml:"vectorizer" mapstructure:"vectorizer"`
	MinDF      int            `json:"min_df" yaml:"min_df" mapstructure:"min_df"`
	NGramMin   int            `json:"ngram_min" yaml:"ngram_min" mapstructure:"ngram_min"`
	NGramMax   int            `json:"ngram_max" yaml:"ngram_max" mapstructure:"ngram_max"`
}

// DefaultExperiments returns the count, TF-IDF and n-gram runs in study order
func DefaultExperiments() []ExperimentConfig {
	return []ExperimentConfig{
		{Name: "count", Vectorizer: VectorizerCount, MinDF: 1, NGramMin: 1, NGramMax: 1},
		{Name: "tfidf", Vectorizer: VectorizerTfidf, MinDF: 5, NGramMin: 1, NGramMax: 1},
		{Name: "count-ngram", Vectorizer: VectorizerCount, MinDF: 5, NGramMin: 1, NGramMax: 2},
	}
}

// FeatureWeight pairs a vocabulary term with a model or corpus weight
type FeatureWeight struct {
	Feature string  `json:"feature"`
	Weight  float64 `json:"weight"`
}

// ProbeResult is the prediction for a hand-written probe review
type ProbeResult struct {
	Text        string  `json:"text"`
	Label       int     `json:"label"`
	Probability float64 `json:"probability"`
}

// ExperimentResult holds everything measured for one experiment
type ExperimentResult struct {
	Config         ExperimentConfig `json:"config"`
	VocabularySize int              `json:"vocabulary_size"`
	SampleFeatures []string         `json:"sample_features,omitempty"` // Every Nth feature name

	AUC        float64   `json:"auc"`       // AUC of hard 0/1 predictions
	ScoreAUC   float64   `json:"score_auc"` // AUC of predicted probabilities
	Accuracy   float64   `json:"accuracy"`
	Confusion  Confusion `json:"confusion"`
	Converged  bool      `json:"converged"`
	Iterations int       `json:"iterations"`
	// Optimizer termination status, e.g. "GradientThreshold", "IterationLimit"
	OptimizerStatus string `json:"optimizer_status,omitempty"`

	SmallestCoefs []FeatureWeight `json:"smallest_coefs"`
	LargestCoefs  []FeatureWeight `json:"largest_coefs"`

	// Only set for TF-IDF runs: features ranked by their max weight across training rows
	SmallestTfidf []FeatureWeight `json:"smallest_tfidf,omitempty"`
	LargestTfidf  []FeatureWeight `json:"largest_tfidf,omitempty"`

	Probes []ProbeResult `json:"probes,omitempty"`
}

// Confusion counts test predictions against truth, positive = label 1
type Confusion struct {
	TruePositive  int `json:"tp"`
	FalsePositive int `json:"fp"`
	TrueNegative  int `json:"tn"`
	FalseNegative int `json:"fn"`
}

// BaselineResult is the zero-training lexicon reference
type BaselineResult struct {
	Name     string  `json:"name"`
	AUC      float64 `json:"auc"`
	ScoreAUC float64 `json:"score_auc"`
	Accuracy float64 `json:"accuracy"`
}
