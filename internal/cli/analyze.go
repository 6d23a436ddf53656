package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ppiankov/polarity/internal/model"
	"github.com/ppiankov/polarity/internal/pipeline"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	outJSON     string
	outMD       string
	outHTML     string
	timeout     time.Duration
	noCache     bool
	noLexicon   bool
	noFooter    bool
	probes      []string
	llmEnabled  bool
	llmModel    string
	quietOutput bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <dataset>",
	Short: "Run the sentiment study on one review dataset",
	Long: `Analyze loads a CSV of star-rated reviews (local path or http(s) URL) and:
- Samples it and labels reviews by rating, dropping neutral ones
- Splits it into train and test sets
- Fits count, TF-IDF and n-gram logistic regression models
- Reports AUC, the smallest and largest coefficients, and probe predictions
- Compares the best model against the VADER lexicon

Example:
  polarity analyze Amazon_Unlocked_Mobile.csv
  polarity analyze reviews.csv --sample 1 --json report.json --md report.md
  polarity analyze https://example.com/reviews.csv --probe "not bad at all" --llm`,
	Args:    cobra.ExactArgs(1),
	PreRunE: bindStudyFlags,
	RunE:    runAnalyze,
}

// studyBindings maps study flags onto config keys
var studyBindings = map[string]string{
	"sample":      "dataset.sample_fraction",
	"sample-seed": "dataset.sample_seed",
	"text-col":    "dataset.text_column",
	"rating-col":  "dataset.rating_column",
	"test-size":   "split.test_size",
	"split-seed":  "split.seed",
	"top":         "report.top_n",
	"workers":     "concurrency.workers",
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	flags := analyzeCmd.Flags()

	// Output
	flags.StringVar(&outJSON, "json", "", "write the JSON report to this path")
	flags.StringVar(&outMD, "md", "", "write the Markdown report to this path")
	flags.StringVar(&outHTML, "html", "", "write the HTML report to this path")
	flags.BoolVarP(&quietOutput, "quiet", "q", false, "do not print the console summary")

	addStudyFlags(flags)
}

// addStudyFlags registers the flags shared by analyze and batch
func addStudyFlags(flags *pflag.FlagSet) {
	defaults := model.DefaultConfig()

	flags.Float64("sample", defaults.Dataset.SampleFraction, "fraction of rows to sample (1 keeps every row)")
	flags.Int64("sample-seed", defaults.Dataset.SampleSeed, "seed for row sampling")
	flags.String("text-col", defaults.Dataset.TextColumn, "review text column")
	flags.String("rating-col", defaults.Dataset.RatingColumn, "star rating column")
	flags.Float64("test-size", defaults.Split.TestSize, "fraction of reviews held out for testing")
	flags.Int64("split-seed", defaults.Split.Seed, "seed for the train/test split")
	flags.Int("top", defaults.Report.TopN, "number of smallest/largest coefficients to report")
	flags.Int("workers", defaults.Concurrency.Workers, "experiments fitted in parallel")
	flags.StringArrayVar(&probes, "probe", nil, "probe sentence to classify (repeatable, replaces the defaults)")

	flags.DurationVar(&timeout, "timeout", 10*time.Minute, "overall timeout")
	flags.BoolVar(&noCache, "no-cache", false, "disable the download cache")
	flags.BoolVar(&noLexicon, "no-lexicon", false, "skip the VADER lexicon baseline")
	flags.BoolVar(&noFooter, "no-footer", false, "omit the footer in Markdown reports")

	flags.BoolVar(&llmEnabled, "llm", false, "add an OpenAI narrative summary (needs OPENAI_API_KEY)")
	flags.StringVar(&llmModel, "llm-model", "gpt-4o-mini", "LLM model name")
}

// bindStudyFlags binds the running command's flags, so a flag set only overrides config when changed
func bindStudyFlags(cmd *cobra.Command, args []string) error {
	return bindFlags(viper.GetViper(), cmd.Flags(), studyBindings)
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet, bindings map[string]string) error {
	for flag, key := range bindings {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return fmt.Errorf("bind --%s: %w", flag, err)
		}
	}
	return nil
}

// buildConfig resolves config then applies the flags that have no config key of their own
func buildConfig(cmd *cobra.Command) (*model.Config, error) {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("probe") {
		cfg.Report.Probes = probes
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	if noLexicon {
		cfg.Report.Lexicon = false
	}
	if noFooter {
		cfg.Output.IncludeFooter = false
	}
	if llmEnabled {
		cfg.LLM.Provider = "openai"
		if cmd.Flags().Changed("llm-model") || cfg.LLM.Model == "" {
			cfg.LLM.Model = llmModel
		}
		if cfg.LLM.APIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	source := args[0]

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	if verbose {
		fmt.Fprintf(os.Stderr, "Analyzing: %s\n", source)
		fmt.Fprintf(os.Stderr, "Sample: %v (seed %d), test size: %v (seed %d)\n",
			cfg.Dataset.SampleFraction, cfg.Dataset.SampleSeed, cfg.Split.TestSize, cfg.Split.Seed)
		fmt.Fprintf(os.Stderr, "Experiments: %d, cache: %v\n\n", len(cfg.Experiments), cfg.Cache.Enabled)
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return err
	}

	report, err := p.Analyze(ctx, source)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Prepared %d reviews (%d train / %d test)\n", report.Dataset.Reviews, report.Dataset.TrainSize, report.Dataset.TestSize)
		fmt.Fprintf(os.Stderr, "✓ Fitted %d experiments, best: %s\n", len(report.Experiments), report.Best)
		if report.LLM != nil && report.LLM.Enabled {
			fmt.Fprintf(os.Stderr, "✓ Generated LLM summary using %s/%s\n", report.LLM.Provider, report.LLM.Model)
		}
		fmt.Fprintln(os.Stderr)
	}

	if err := p.RenderReport(report, pipeline.OutputPaths{JSON: outJSON, Markdown: outMD, HTML: outHTML}); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	if !quietOutput {
		p.Renderer().RenderSummary(cmd.OutOrStdout(), report)
	}
	return nil
}
