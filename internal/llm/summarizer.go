package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/polarity/internal/model"
)

// Summarizer attaches an optional narrative summary to a report
type Summarizer struct {
	provider Provider
	config   Config
}

// NewSummarizer creates a summarizer; an empty provider yields a disabled one
func NewSummarizer(config Config) (*Summarizer, error) {
	provider, err := NewProvider(config)
	if err != nil {
		return nil, err
	}
	return &Summarizer{provider: provider, config: config}, nil
}

// IsEnabled reports whether a provider is configured
func (s *Summarizer) IsEnabled() bool {
	return s != nil && s.provider != nil
}

// ProviderName returns the provider name or ""
func (s *Summarizer) ProviderName() string {
	if !s.IsEnabled() {
		return ""
	}
	return s.provider.Name()
}

// GenerateSummary summarizes a finished report.
// Provider failures are reported as warnings, never as errors.
func (s *Summarizer) GenerateSummary(ctx context.Context, report model.Report) (*model.LLMSummary, error) {
	if !s.IsEnabled() {
		return nil, nil
	}

	summary := &model.LLMSummary{
		Provider: s.provider.Name(),
		Model:    s.config.Model,
		Strict:   s.config.StrictFeatures,
	}

	if !s.provider.IsAvailable(ctx) {
		summary.Warnings = append(summary.Warnings, fmt.Sprintf("LLM provider %s is not available", s.provider.Name()))
		return summary, nil
	}
	summary.Enabled = true

	allowed := AllowedTerms(report)
	resp, err := s.provider.Summarize(ctx, SummarizeRequest{
		Report:       report,
		AllowedTerms: allowed,
		Model:        s.config.Model,
		MaxTokens:    s.config.MaxTokens,
	})
	if err != nil {
		summary.Warnings = append(summary.Warnings, fmt.Sprintf("LLM summary generation failed: %v", err))
		return summary, nil
	}

	summary.SummaryMD = resp.Summary
	if resp.Model != "" {
		summary.Model = resp.Model
	}
	if resp.TokensUsed > 0 {
		summary.Warnings = append(summary.Warnings, fmt.Sprintf("Tokens used: %d", resp.TokensUsed))
	}

	if s.config.StrictFeatures {
		unknown := unlistedTerms(resp.QuotedTerms, allowed)
		for _, term := range unknown {
			summary.Warnings = append(summary.Warnings, fmt.Sprintf("Quoted term %q is not among the report's listed features", term))
		}
		if len(unknown) == 0 && len(resp.QuotedTerms) > 0 {
			summary.Warnings = append(summary.Warnings, fmt.Sprintf("Verified %d quoted terms against the report", len(resp.QuotedTerms)))
		}
	}

	return summary, nil
}

func unlistedTerms(quoted, allowed []string) []string {
	set := make(map[string]bool, len(allowed))
	for _, a := range allowed {
		set[strings.ToLower(a)] = true
	}
	var out []string
	for _, q := range quoted {
		if !set[strings.ToLower(q)] {
			out = append(out, q)
		}
	}
	return out
}

// RenderSeparateMarkdown renders the summary as a standalone Markdown document
func RenderSeparateMarkdown(summary *model.LLMSummary) string {
	if summary == nil || !summary.Enabled || summary.SummaryMD == "" {
		return ""
	}

	var b strings.Builder
	b.WriteString("# Narrative Summary\n\n")
	fmt.Fprintf(&b, "_Generated by %s/%s. Numbers come from the measured report; the text does not change them._\n\n", summary.Provider, summary.Model)
	b.WriteString(summary.SummaryMD)
	b.WriteString("\n")

	if len(summary.Warnings) > 0 {
		b.WriteString("\n## Notes\n\n")
		for _, w := range summary.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}
	return b.String()
}
