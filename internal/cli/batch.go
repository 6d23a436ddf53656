package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/ppiankov/polarity/internal/pipeline"
	"github.com/ppiankov/polarity/internal/worker"
	"github.com/spf13/cobra"
)

var (
	batchConcurrency int
	outputDir        string
)

var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Run the study on many datasets from a file",
	Long: `Batch reads dataset sources (paths or URLs, one per line, # for comments),
analyzes them concurrently and writes a JSON and Markdown report per source.

Example:
  polarity batch datasets.txt
  polarity batch datasets.txt --concurrency 4 --output-dir ./reports --sample 1`,
	Args:    cobra.ExactArgs(1),
	PreRunE: bindStudyFlags,
	RunE:    runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "datasets analyzed in parallel (default: concurrency.batch_workers)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./polarity-reports", "output directory for reports")

	addStudyFlags(batchCmd.Flags())
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if batchConcurrency > 0 {
		cfg.Concurrency.BatchWorkers = batchConcurrency
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Polarity Batch\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Datasets:     %d at a time\n", cfg.Concurrency.BatchWorkers)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", timeout)
	if cfg.LLM.Provider != "" {
		fmt.Fprintf(os.Stderr, "  LLM:          %s/%s\n", cfg.LLM.Provider, cfg.LLM.Model)
	}
	fmt.Fprintf(os.Stderr, "\n")

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "⚙️  Analyzing datasets...\n\n")
	processor := worker.NewBatchProcessor(p, cfg.Concurrency.BatchWorkers)
	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	failures := reportBatch(p, results, outputDir)

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d datasets\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", len(results)-failures)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failures)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	if failures > 0 && failures == len(results) {
		return fmt.Errorf("all %d datasets failed", failures)
	}
	return nil
}

// reportBatch writes a report per successful result and returns the failure count
func reportBatch(p *pipeline.Pipeline, results []*worker.AnalyzeResult, dir string) int {
	failures := 0
	for _, result := range results {
		if result.Error != nil {
			failures++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Source, result.Error)
			continue
		}

		paths := pipeline.ForDirectory(dir, result.Index, result.Report)
		if err := p.RenderReport(result.Report, paths); err != nil {
			failures++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Source, err)
			continue
		}

		best := result.Report.Experiment(result.Report.Best)
		if best != nil {
			fmt.Fprintf(os.Stderr, "✓ %s (best: %s, AUC %.4f)\n", result.Report.Subject, best.Config.Name, best.AUC)
		} else {
			fmt.Fprintf(os.Stderr, "✓ %s\n", result.Report.Subject)
		}
	}
	return failures
}
