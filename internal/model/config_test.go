package model

import (
	"strings"
	"testing"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Expected default config to be valid, got %v", err)
	}

	if len(cfg.Experiments) != 3 {
		t.Fatalf("Expected 3 default experiments, got %d", len(cfg.Experiments))
	}
	if cfg.Experiments[1].Vectorizer != VectorizerTfidf || cfg.Experiments[1].MinDF != 5 {
		t.Errorf("Expected second experiment to be tfidf with min_df 5, got %+v", cfg.Experiments[1])
	}
	if cfg.Experiments[2].NGramMax != 2 {
		t.Errorf("Expected third experiment to use bigrams, got %+v", cfg.Experiments[2])
	}
	if len(cfg.Report.Probes) != 2 {
		t.Errorf("Expected 2 default probes, got %d", len(cfg.Report.Probes))
	}
}

func TestConfig_Validate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"zero sample", func(c *Config) { c.Dataset.SampleFraction = 0 }, "sample fraction"},
		{"test size one", func(c *Config) { c.Split.TestSize = 1 }, "test size"},
		{"multi-char delimiter", func(c *Config) { c.Dataset.Delimiter = ";;" }, "delimiter"},
		{"no experiments", func(c *Config) { c.Experiments = nil }, "no experiments"},
		{"duplicate names", func(c *Config) { c.Experiments[1].Name = "count" }, "duplicate"},
		{"bad vectorizer", func(c *Config) { c.Experiments[0].Vectorizer = "hashing" }, "unknown vectorizer"},
		{"bad ngram", func(c *Config) { c.Experiments[0].NGramMax = 0 }, "n-gram"},
		{"bad C", func(c *Config) { c.Model.C = 0 }, "model C"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestReport_Experiment(t *testing.T) {
	report := &Report{
		Experiments: []ExperimentResult{
			{Config: ExperimentConfig{Name: "count"}},
			{Config: ExperimentConfig{Name: "tfidf"}},
		},
	}

	if got := report.Experiment("tfidf"); got == nil || got.Config.Name != "tfidf" {
		t.Errorf("Expected tfidf experiment, got %+v", got)
	}
	if got := report.Experiment("missing"); got != nil {
		t.Errorf("Expected nil for unknown experiment, got %+v", got)
	}
}
