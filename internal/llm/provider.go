package llm

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ppiankov/polarity/internal/model"
)

// Provider generates a narrative summary of a finished report
type Provider interface {
	// Name returns the provider name
	Name() string

	// Summarize asks the model for a summary
	Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error)

	// IsAvailable checks the provider is configured and reachable
	IsAvailable(ctx context.Context) bool
}

// SummarizeRequest is the input for one summary
type SummarizeRequest struct {
	Report model.Report

	// AllowedTerms are the feature names and probe texts the summary may quote
	AllowedTerms []string

	// Prompt overrides the default prompt
	Prompt string

	Model     string
	MaxTokens int
}

// SummarizeResponse is the model's output
type SummarizeResponse struct {
	Summary string

	// QuotedTerms are the terms the summary put in quotes or backticks
	QuotedTerms []string

	Model      string
	TokensUsed int
}

// Config holds provider settings
type Config struct {
	// Provider name: "openai" or "" (disabled)
	Provider string

	Model   string
	APIKey  string
	BaseURL string

	// Timeout in seconds
	Timeout int

	// StrictFeatures reports quoted terms missing from the report
	StrictFeatures bool

	MaxTokens int

	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// ConfigFromModel converts the application config into provider settings
func ConfigFromModel(llmCfg model.LLMConfig, httpCfg model.HTTPConfig) Config {
	return Config{
		Provider:       llmCfg.Provider,
		Model:          llmCfg.Model,
		APIKey:         llmCfg.APIKey,
		BaseURL:        llmCfg.BaseURL,
		Timeout:        llmCfg.Timeout,
		StrictFeatures: llmCfg.Strict,
		MaxTokens:      llmCfg.MaxTokens,
		HTTPProxy:      httpCfg.HTTPProxy,
		HTTPSProxy:     httpCfg.HTTPSProxy,
		NoProxy:        httpCfg.NoProxy,
	}
}

// NewProvider returns the configured provider, or nil when none is set
func NewProvider(config Config) (Provider, error) {
	switch strings.ToLower(config.Provider) {
	case "openai":
		return NewOpenAIProvider(config)
	case "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai)", config.Provider)
	}
}

// AllowedTerms collects every feature name listed in the report plus the probe texts
func AllowedTerms(report model.Report) []string {
	seen := make(map[string]bool)
	add := func(term string) {
		term = strings.ToLower(strings.TrimSpace(term))
		if term != "" {
			seen[term] = true
		}
	}

	for _, exp := range report.Experiments {
		for _, list := range [][]model.FeatureWeight{exp.SmallestCoefs, exp.LargestCoefs, exp.SmallestTfidf, exp.LargestTfidf} {
			for _, fw := range list {
				add(fw.Feature)
			}
		}
		for _, p := range exp.Probes {
			add(p.Text)
		}
	}

	terms := make([]string, 0, len(seen))
	for term := range seen {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms
}

// BuildPrompt constructs the default summarization prompt
func BuildPrompt(report model.Report, allowed []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, `You are summarizing a Polarity report. Polarity trains bag-of-words sentiment classifiers on product reviews and measures them. It reports measurements; it does not judge products.

RULES:
1. Only quote words or phrases from this list, and put every quoted term in double quotes:
%s
2. Do not change, round differently or invent any number. Use the numbers below as written.
3. Point out when a model cannot tell the probe sentences apart.

Dataset: %s
- Reviews: %d (%d positive, %d negative, positive rate %.3f)
- Train/test: %d/%d

Experiments:
`, joinTerms(allowed), report.Subject, report.Dataset.Reviews, report.Dataset.Positive, report.Dataset.Negative,
		report.Dataset.PositiveRate, report.Dataset.TrainSize, report.Dataset.TestSize)

	for _, exp := range report.Experiments {
		fmt.Fprintf(&b, "- %s: vocabulary %d, AUC %.4f, probability AUC %.4f, accuracy %.4f\n",
			exp.Config.Name, exp.VocabularySize, exp.AUC, exp.ScoreAUC, exp.Accuracy)
		for _, p := range exp.Probes {
			fmt.Fprintf(&b, "  probe %q -> %d\n", p.Text, p.Label)
		}
	}

	if report.Baseline != nil {
		fmt.Fprintf(&b, "\nLexicon baseline (%s): AUC %.4f, probability AUC %.4f\n", report.Baseline.Name, report.Baseline.AUC, report.Baseline.ScoreAUC)
	}

	b.WriteString("\nKey signals:\n")
	for i, signal := range report.Signals {
		if i >= 6 {
			break
		}
		fmt.Fprintf(&b, "- [%s] %s: %s\n", signal.Severity, signal.Type, signal.Description)
	}

	b.WriteString("\nProvide a 4-6 sentence summary of what the models learned and where they fall short.")
	return b.String()
}

func joinTerms(terms []string) string {
	if len(terms) == 0 {
		return "(no terms available)"
	}
	var b strings.Builder
	for i, term := range terms {
		if i >= 60 {
			fmt.Fprintf(&b, "\n... and %d more", len(terms)-60)
			break
		}
		fmt.Fprintf(&b, "\n- %s", term)
	}
	return b.String()
}
