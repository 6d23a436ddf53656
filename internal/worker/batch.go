package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/polarity/internal/model"
)

// Analyzer runs the full study on one dataset source
type Analyzer interface {
	Analyze(ctx context.Context, source string) (*model.Report, error)
}

// AnalyzeJob analyzes a single source
type AnalyzeJob struct {
	Index    int
	Source   string
	Analyzer Analyzer
}

// Execute runs the analysis
func (j *AnalyzeJob) Execute(ctx context.Context) Result {
	report, err := j.Analyzer.Analyze(ctx, j.Source)
	return &AnalyzeResult{
		Index:  j.Index,
		Source: j.Source,
		Report: report,
		Error:  err,
	}
}

// AnalyzeResult is the outcome for one source
type AnalyzeResult struct {
	Index  int
	Source string
	Report *model.Report
	Error  error
}

// GetError returns the analysis error, if any
func (r *AnalyzeResult) GetError() error {
	return r.Error
}

// BatchProcessor analyzes many datasets concurrently
type BatchProcessor struct {
	analyzer    Analyzer
	concurrency int
}

// NewBatchProcessor creates a batch processor
func NewBatchProcessor(analyzer Analyzer, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		analyzer:    analyzer,
		concurrency: concurrency,
	}
}

// ProcessSources analyzes every source and returns results in input order.
// Sources that never ran because ctx was cancelled carry ctx's error.
func (b *BatchProcessor) ProcessSources(ctx context.Context, sources []string) []*AnalyzeResult {
	if len(sources) == 0 {
		return []*AnalyzeResult{}
	}

	jobs := make([]Job, len(sources))
	for i, source := range sources {
		jobs[i] = &AnalyzeJob{Index: i, Source: source, Analyzer: b.analyzer}
	}

	ordered := make([]*AnalyzeResult, len(sources))
	for _, r := range Run(ctx, b.concurrency, jobs) {
		res := r.(*AnalyzeResult)
		ordered[res.Index] = res
	}

	for i, res := range ordered {
		if res == nil {
			err := ctx.Err()
			if err == nil {
				err = fmt.Errorf("not analyzed")
			}
			ordered[i] = &AnalyzeResult{Index: i, Source: sources[i], Error: err}
		}
	}

	return ordered
}

// ProcessFile reads sources from a file and analyzes them
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*AnalyzeResult, error) {
	sources, err := ReadSourcesFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read sources: %w", err)
	}

	return b.ProcessSources(ctx, sources), nil
}

// ReadSourcesFromFile reads one dataset path or URL per line.
// Blank lines and # comments are skipped, duplicates dropped.
func ReadSourcesFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var sources []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !seen[line] {
			seen[line] = true
			sources = append(sources, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return sources, nil
}
