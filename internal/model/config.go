package model

import (
	"fmt"
	"runtime"
	"time"
)

// Config holds the full polarity configuration
type Config struct {
	Dataset     DatasetConfig      `yaml:"dataset" mapstructure:"dataset"`
	Split       SplitConfig        `yaml:"split" mapstructure:"split"`
	Experiments []ExperimentConfig `yaml:"experiments" mapstructure:"experiments"`
	Model       ModelConfig        `yaml:"model" mapstructure:"model"`
	Report      ReportConfig       `yaml:"report" mapstructure:"report"`
	HTTP        HTTPConfig         `yaml:"http" mapstructure:"http"`
	Cache       CacheConfig        `yaml:"cache" mapstructure:"cache"`
	Concurrency ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	LLM         LLMConfig          `yaml:"llm" mapstructure:"llm"`
	Output      OutputConfig       `yaml:"output" mapstructure:"output"`
}

// DatasetConfig controls CSV parsing, sampling and labelling
type DatasetConfig struct {
	TextColumn     string  `yaml:"text_column" mapstructure:"text_column"`
	RatingColumn   string  `yaml:"rating_column" mapstructure:"rating_column"`
	Delimiter      string  `yaml:"delimiter" mapstructure:"delimiter"`
	SampleFraction float64 `yaml:"sample_fraction" mapstructure:"sample_fraction"`
	SampleSeed     int64   `yaml:"sample_seed" mapstructure:"sample_seed"`
	DropIncomplete bool    `yaml:"drop_incomplete" mapstructure:"drop_incomplete"` // Drop rows with any empty field, not only text/rating
	NeutralRating  int     `yaml:"neutral_rating" mapstructure:"neutral_rating"`
	PositiveAbove  int     `yaml:"positive_above" mapstructure:"positive_above"`
	StripHTML      bool    `yaml:"strip_html" mapstructure:"strip_html"`
}

// SplitConfig controls the train/test partition
type SplitConfig struct {
	TestSize float64 `yaml:"test_size" mapstructure:"test_size"`
	Seed     int64   `yaml:"seed" mapstructure:"seed"`
}

// ModelConfig holds logistic regression hyperparameters
type ModelConfig struct {
	C            float64 `yaml:"c" mapstructure:"c"`
	MaxIter      int     `yaml:"max_iter" mapstructure:"max_iter"`
	Tol          float64 `yaml:"tol" mapstructure:"tol"`
	FitIntercept bool    `yaml:"fit_intercept" mapstructure:"fit_intercept"`
}

// ReportConfig controls what the report lists
type ReportConfig struct {
	TopN          int      `yaml:"top_n" mapstructure:"top_n"`
	FeatureStride int      `yaml:"feature_stride" mapstructure:"feature_stride"`
	Probes        []string `yaml:"probes" mapstructure:"probes"`
	Lexicon       bool     `yaml:"lexicon_baseline" mapstructure:"lexicon_baseline"`
}

// HTTPConfig applies to datasets fetched from http(s) URLs
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	HTTPProxy     string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy       string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// CacheConfig controls the downloaded-dataset cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// ConcurrencyConfig bounds parallel work
type ConcurrencyConfig struct {
	Workers           int     `yaml:"workers" mapstructure:"workers"`                         // Experiments fitted in parallel
	BatchWorkers      int     `yaml:"batch_workers" mapstructure:"batch_workers"`             // Datasets analyzed in parallel
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"` // Per host
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// LLMConfig holds the optional narrative summary settings
type LLMConfig struct {
	Provider  string `yaml:"provider" mapstructure:"provider"` // "" disables, "openai"
	Model     string `yaml:"model" mapstructure:"model"`
	APIKey    string `yaml:"-" mapstructure:"api_key"`
	BaseURL   string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout   int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
	Strict    bool   `yaml:"strict_features" mapstructure:"strict_features"`
}

// OutputConfig controls rendering
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" mapstructure:"verbose"`
	IncludeFooter bool `yaml:"include_footer" mapstructure:"include_footer"`
}

// DefaultProbes are the two reviews a bag-of-words model cannot tell apart
func DefaultProbes() []string {
	return []string{
		"not an issue, phone is working",
		"an issue, phone is not working",
	}
}

// DefaultConfig returns the configuration that reproduces the reference study
func DefaultConfig() *Config {
	return &Config{
		Dataset: DatasetConfig{
			TextColumn:     "Reviews",
			RatingColumn:   "Rating",
			Delimiter:      ",",
			SampleFraction: 0.1,
			SampleSeed:     10,
			DropIncomplete: true,
			NeutralRating:  3,
			PositiveAbove:  3,
			StripHTML:      false,
		},
		Split: SplitConfig{
			TestSize: 0.25,
			Seed:     0,
		},
		Experiments: DefaultExperiments(),
		Model: ModelConfig{
			C:            1.0,
			MaxIter:      100,
			Tol:          1e-4,
			FitIntercept: true,
		},
		Report: ReportConfig{
			TopN:          10,
			FeatureStride: 2000,
			Probes:        DefaultProbes(),
			Lexicon:       true,
		},
		HTTP: HTTPConfig{
			Timeout:       2 * time.Minute,
			UserAgent:     "Polarity/0.1 (+https://github.com/ppiankov/polarity)",
			MaxBodyBytes:  512 << 20,
			RespectRobots: true,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       "~/.polarity/cache",
			MemoryTTL: 30 * time.Minute,
			DiskTTL:   7 * 24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers:           runtime.NumCPU(),
			BatchWorkers:      2,
			RequestsPerSecond: 1,
			BurstSize:         2,
		},
		LLM: LLMConfig{
			Timeout:   30,
			MaxTokens: 800,
			Strict:    true,
		},
		Output: OutputConfig{
			IncludeFooter: true,
		},
	}
}

// Validate checks the settings that would otherwise fail deep inside a run
func (c *Config) Validate() error {
	if c.Dataset.TextColumn == "" || c.Dataset.RatingColumn == "" {
		return fmt.Errorf("dataset text and rating columns must be set")
	}
	if c.Dataset.SampleFraction <= 0 {
		return fmt.Errorf("sample fraction must be > 0, got %v", c.Dataset.SampleFraction)
	}
	if len([]rune(c.Dataset.Delimiter)) != 1 {
		return fmt.Errorf("delimiter must be a single character, got %q", c.Dataset.Delimiter)
	}
	if c.Split.TestSize <= 0 || c.Split.TestSize >= 1 {
		return fmt.Errorf("test size must be in (0, 1), got %v", c.Split.TestSize)
	}
	if len(c.Experiments) == 0 {
		return fmt.Errorf("no experiments configured")
	}
	seen := make(map[string]bool)
	for _, exp := range c.Experiments {
		if exp.Name == "" {
			return fmt.Errorf("experiment without a name")
		}
		if seen[exp.Name] {
			return fmt.Errorf("duplicate experiment name: %s", exp.Name)
		}
		seen[exp.Name] = true
		switch exp.Vectorizer {
		case VectorizerCount, VectorizerTfidf:
		default:
			return fmt.Errorf("experiment %s: unknown vectorizer %q (supported: count, tfidf)", exp.Name, exp.Vectorizer)
		}
		if exp.NGramMin < 1 || exp.NGramMax < exp.NGramMin {
			return fmt.Errorf("experiment %s: invalid n-gram range (%d, %d)", exp.Name, exp.NGramMin, exp.NGramMax)
		}
	}
	if c.Model.C <= 0 {
		return fmt.Errorf("model C must be > 0, got %v", c.Model.C)
	}
	return nil
}
