package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/ppiankov/polarity/internal/cache"
	"github.com/ppiankov/polarity/internal/classify"
	"github.com/ppiankov/polarity/internal/dataset"
	"github.com/ppiankov/polarity/internal/llm"
	"github.com/ppiankov/polarity/internal/model"
	"github.com/ppiankov/polarity/internal/score"
	"github.com/ppiankov/polarity/internal/worker"
)

// Pipeline runs the complete study on one dataset
type Pipeline struct {
	fetcher    *Fetcher
	lexicon    *classify.LexiconBaseline // nil when the baseline is disabled
	scorer     *score.Scorer
	renderer   *Renderer
	summarizer *llm.Summarizer // nil when no LLM is configured
	config     *model.Config
	now        func() time.Time
}

// NewPipeline wires a pipeline from configuration
func NewPipeline(cfg *model.Config) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	var c cache.Cache
	if cfg.Cache.Enabled {
		dir, err := ExpandPath(cfg.Cache.Dir)
		if err != nil {
			return nil, fmt.Errorf("cache dir: %w", err)
		}
		c = cache.NewLayeredCache(cfg.Cache.MemoryTTL, dir, cfg.Cache.DiskTTL)
	}

	limiter := worker.NewLimiter(cfg.Concurrency.RequestsPerSecond, cfg.Concurrency.BurstSize)

	var summarizer *llm.Summarizer
	if cfg.LLM.Provider != "" {
		s, err := llm.NewSummarizer(llm.ConfigFromModel(cfg.LLM, cfg.HTTP))
		if err != nil {
			slog.Warn("LLM provider unavailable, continuing without summary", "provider", cfg.LLM.Provider, "error", err)
		} else {
			summarizer = s
		}
	}

	var lexicon *classify.LexiconBaseline
	if cfg.Report.Lexicon {
		lexicon = classify.NewLexiconBaseline()
	}

	return &Pipeline{
		fetcher:    NewFetcher(cfg.HTTP, limiter, c, cfg.Cache.DiskTTL),
		lexicon:    lexicon,
		scorer:     score.NewScorer(),
		renderer:   NewRenderer(cfg.Output.IncludeFooter),
		summarizer: summarizer,
		config:     cfg,
		now:        time.Now,
	}, nil
}

// Renderer returns the report renderer
func (p *Pipeline) Renderer() *Renderer {
	return p.renderer
}

// Analyze loads, labels and splits the dataset, then fits and measures every experiment
func (p *Pipeline) Analyze(ctx context.Context, source string) (*model.Report, error) {
	// 1. Resolve the source
	fetched, err := p.fetcher.Resolve(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", source, err)
	}
	slog.Debug("dataset resolved", "location", fetched.Location, "bytes", len(fetched.Data), "cached", fetched.FromCache)

	// 2. Parse and label
	loadOpts, prepOpts := dataset.OptionsFromConfig(p.config.Dataset)
	table, err := dataset.Load(bytes.NewReader(fetched.Data), loadOpts)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}

	reviews, stats, err := dataset.Prepare(table, prepOpts)
	if err != nil {
		return nil, fmt.Errorf("prepare dataset: %w", err)
	}
	stats.Source = fetched.Location

	// 3. Split
	split, err := dataset.TrainTestSplit(reviews, p.config.Split.TestSize, p.config.Split.Seed)
	if err != nil {
		return nil, fmt.Errorf("split: %w", err)
	}
	stats.TrainSize = len(split.TrainX)
	stats.TestSize = len(split.TestX)
	stats.FirstTrainText = split.TrainX[0]

	slog.Info("dataset prepared",
		"subject", fetched.Subject,
		"rows", stats.RowsRead,
		"reviews", stats.Reviews,
		"positive_rate", fmt.Sprintf("%.3f", stats.PositiveRate),
		"train", stats.TrainSize,
		"test", stats.TestSize)

	// 4. Experiments
	experiments, err := p.runExperiments(ctx, &split)
	if err != nil {
		return nil, err
	}

	// 5. Lexicon baseline
	var baseline *model.BaselineResult
	if p.lexicon != nil {
		baseline, err = p.lexicon.Evaluate(split.TestX, split.TestY)
		if err != nil {
			return nil, fmt.Errorf("lexicon baseline: %w", err)
		}
	}

	// 6. Signals
	assessment := p.scorer.Assess(stats, experiments, baseline)

	report := &model.Report{
		Subject:     fetched.Subject,
		Source:      fetched.Location,
		GeneratedAt: p.now().UTC(),
		Dataset:     stats,
		Experiments: experiments,
		Baseline:    baseline,
		Best:        assessment.Best,
		Signals:     assessment.Signals,
	}

	// 7. Optional narrative, after every number is final
	if p.summarizer.IsEnabled() {
		summary, err := p.summarizer.GenerateSummary(ctx, *report)
		if err != nil {
			slog.Warn("LLM summary failed", "error", err)
		} else {
			report.LLM = summary
		}
	}

	return report, nil
}

// OutputPaths names the files a report is written to; empty paths are skipped
type OutputPaths struct {
	JSON     string
	Markdown string
	HTML     string
}

// ForDirectory derives report paths for the index-th source of a batch run
func ForDirectory(dir string, index int, report *model.Report) OutputPaths {
	base := slugify(report.Subject)
	if base == "" {
		base = "report"
	}
	base = fmt.Sprintf("%03d-%s", index+1, base)
	return OutputPaths{
		JSON:     filepath.Join(dir, base+".json"),
		Markdown: filepath.Join(dir, base+".md"),
	}
}

// RenderReport writes the requested files; the console summary is written separately
func (p *Pipeline) RenderReport(report *model.Report, paths OutputPaths) error {
	if paths.JSON != "" {
		if err := p.renderer.RenderJSON(report, paths.JSON); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		slog.Debug("wrote JSON", "path", paths.JSON)
	}

	if paths.Markdown != "" {
		if err := p.renderer.RenderMarkdown(report, paths.Markdown); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		slog.Debug("wrote Markdown", "path", paths.Markdown)

		if md := llm.RenderSeparateMarkdown(report.LLM); md != "" {
			llmPath := strings.TrimSuffix(paths.Markdown, ".md") + ".llm.md"
			if err := writeFile(llmPath, []byte(md)); err != nil {
				slog.Warn("could not write LLM summary", "path", llmPath, "error", err)
			}
		}
	}

	if paths.HTML != "" {
		if err := p.renderer.RenderHTML(report, paths.HTML); err != nil {
			return fmt.Errorf("render HTML: %w", err)
		}
		slog.Debug("wrote HTML", "path", paths.HTML)
	}

	return nil
}

func slugify(s string) string {
	var b strings.Builder
	lastDash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case !lastDash && b.Len() > 0:
			b.WriteByte('-')
			lastDash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
