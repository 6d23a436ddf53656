package pipeline

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/polarity/internal/model"
	"github.com/russross/blackfriday/v2"
)

// Renderer writes reports as JSON, Markdown, HTML and console text
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes the report as indented JSON
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	return writeFile(path, append(data, '\n'))
}

// RenderMarkdown writes the Markdown report
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	return writeFile(path, []byte(r.Markdown(report)))
}

// RenderHTML writes the Markdown report converted to a standalone HTML page
func (r *Renderer) RenderHTML(report *model.Report, path string) error {
	body := blackfriday.Run([]byte(r.Markdown(report)), blackfriday.WithExtensions(blackfriday.CommonExtensions))

	var b strings.Builder
	err := htmlPage.Execute(&b, struct {
		Title string
		Body  template.HTML
	}{
		Title: "Polarity: " + report.Subject,
		Body:  template.HTML(body),
	})
	if err != nil {
		return fmt.Errorf("html template: %w", err)
	}
	return writeFile(path, []byte(b.String()))
}

var htmlPage = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: -apple-system, "Segoe UI", sans-serif; max-width: 960px; margin: 2em auto; padding: 0 1em; color: #222; }
table { border-collapse: collapse; margin: 1em 0; }
th, td { border: 1px solid #ccc; padding: 4px 8px; text-align: left; }
code { background: #f4f4f4; padding: 1px 4px; }
</style>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// Markdown renders the report as Markdown
func (r *Renderer) Markdown(report *model.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Polarity Report: %s\n\n", report.Subject)
	fmt.Fprintf(&b, "**Source:** `%s`  \n", report.Source)
	fmt.Fprintf(&b, "**Generated:** %s\n\n", report.GeneratedAt.Format("2006-01-02 15:04:05 MST"))

	// Dataset
	d := report.Dataset
	b.WriteString("## Dataset\n\n")
	b.WriteString("| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Rows read | %d |\n", d.RowsRead)
	fmt.Fprintf(&b, "| Rows sampled | %d |\n", d.RowsSampled)
	fmt.Fprintf(&b, "| Dropped (missing) | %d |\n", d.DroppedMissing)
	fmt.Fprintf(&b, "| Dropped (invalid rating) | %d |\n", d.DroppedInvalid)
	fmt.Fprintf(&b, "| Dropped (neutral) | %d |\n", d.DroppedNeutral)
	fmt.Fprintf(&b, "| Reviews | %d |\n", d.Reviews)
	fmt.Fprintf(&b, "| Positive / negative | %d / %d |\n", d.Positive, d.Negative)
	fmt.Fprintf(&b, "| Positive rate | %.4f |\n", d.PositiveRate)
	fmt.Fprintf(&b, "| Train / test | %d / %d |\n\n", d.TrainSize, d.TestSize)

	// Experiments
	b.WriteString("## Experiments\n\n")
	b.WriteString("| Experiment | Vectorizer | min_df | n-grams | Vocabulary | AUC | Probability AUC | Accuracy | Converged |\n")
	b.WriteString("|---|---|---|---|---|---|---|---|---|\n")
	for _, exp := range report.Experiments {
		name := exp.Config.Name
		if name == report.Best {
			name = "**" + name + "**"
		}
		fmt.Fprintf(&b, "| %s | %s | %d | (%d, %d) | %d | %.4f | %.4f | %.4f | %v |\n",
			name, exp.Config.Vectorizer, exp.Config.MinDF, exp.Config.NGramMin, exp.Config.NGramMax,
			exp.VocabularySize, exp.AUC, exp.ScoreAUC, exp.Accuracy, exp.Converged)
	}
	if report.Baseline != nil {
		fmt.Fprintf(&b, "| %s (lexicon) | - | - | - | - | %.4f | %.4f | %.4f | - |\n",
			report.Baseline.Name, report.Baseline.AUC, report.Baseline.ScoreAUC, report.Baseline.Accuracy)
	}
	b.WriteString("\n")

	for _, exp := range report.Experiments {
		fmt.Fprintf(&b, "### %s\n\n", exp.Config.Name)

		c := exp.Confusion
		fmt.Fprintf(&b, "Confusion: TP %d, FP %d, TN %d, FN %d. L-BFGS iterations: %d.\n\n", c.TruePositive, c.FalsePositive, c.TrueNegative, c.FalseNegative, exp.Iterations)

		if len(exp.SampleFeatures) > 0 {
			fmt.Fprintf(&b, "Sample features: %s\n\n", codeList(exp.SampleFeatures))
		}

		writeWeights(&b, "Smallest coefficients", exp.SmallestCoefs)
		writeWeights(&b, "Largest coefficients", exp.LargestCoefs)
		writeWeights(&b, "Smallest max TF-IDF", exp.SmallestTfidf)
		writeWeights(&b, "Largest max TF-IDF", exp.LargestTfidf)

		if len(exp.Probes) > 0 {
			b.WriteString("| Probe | Label | P(positive) |\n|---|---|---|\n")
			for _, p := range exp.Probes {
				fmt.Fprintf(&b, "| %s | %d | %.4f |\n", escapeCell(p.Text), p.Label, p.Probability)
			}
			b.WriteString("\n")
		}
	}

	// Signals
	if len(report.Signals) > 0 {
		b.WriteString("## Signals\n\n")
		for _, s := range report.Signals {
			scope := ""
			if s.Experiment != "" {
				scope = " (" + s.Experiment + ")"
			}
			fmt.Fprintf(&b, "- **%s** `%s`%s: %s\n", strings.ToUpper(string(s.Severity)), s.Type, scope, s.Description)
		}
		b.WriteString("\n")
	}

	if report.LLM != nil && report.LLM.Enabled && report.LLM.SummaryMD != "" {
		b.WriteString("## Narrative Summary\n\n")
		b.WriteString(report.LLM.SummaryMD)
		b.WriteString("\n\n")
	}

	if r.includeFooter {
		b.WriteString("---\n\n")
		b.WriteString("_Generated by Polarity. AUC is computed on hard 0/1 predictions; probability AUC uses predicted probabilities. Signals describe the models, not the products._\n")
	}

	return b.String()
}

// RenderSummary prints the console summary in the study's print layout
func (r *Renderer) RenderSummary(w io.Writer, report *model.Report) {
	d := report.Dataset
	fmt.Fprintf(w, "X_train first entry:\n\n %s\n", d.FirstTrainText)
	fmt.Fprintf(w, "\n\nX_train shape:  (%d,)\n", d.TrainSize)

	for _, exp := range report.Experiments {
		fmt.Fprintf(w, "\n═══ %s (%s, min_df=%d, ngram_range=(%d, %d)) ═══\n",
			exp.Config.Name, exp.Config.Vectorizer, exp.Config.MinDF, exp.Config.NGramMin, exp.Config.NGramMax)
		if len(exp.SampleFeatures) > 0 {
			fmt.Fprintln(w, bracketList(exp.SampleFeatures))
		}
		fmt.Fprintf(w, "%d\n", exp.VocabularySize)
		fmt.Fprintf(w, "AUC:  %v\n", exp.AUC)

		if len(exp.SmallestTfidf) > 0 {
			fmt.Fprintf(w, "Smallest tfidf:\n%s\n\n", bracketList(featureNames(exp.SmallestTfidf)))
			fmt.Fprintf(w, "Largest tfidf:\n%s\n", bracketList(featureNames(exp.LargestTfidf)))
		}
		fmt.Fprintf(w, "Smallest Coefs:\n%s\n\n", bracketList(featureNames(exp.SmallestCoefs)))
		fmt.Fprintf(w, "Largest Coefs:\n%s\n", bracketList(featureNames(exp.LargestCoefs)))

		if len(exp.Probes) > 0 {
			labels := make([]string, len(exp.Probes))
			for i, p := range exp.Probes {
				labels[i] = fmt.Sprintf("%d", p.Label)
			}
			fmt.Fprintf(w, "[%s]\n", strings.Join(labels, " "))
		}
	}

	if report.Baseline != nil {
		fmt.Fprintf(w, "\n%s lexicon AUC:  %v\n", report.Baseline.Name, report.Baseline.AUC)
	}

	if report.Best != "" {
		fmt.Fprintf(w, "\nBest experiment: %s\n", report.Best)
	}

	for _, s := range report.Signals {
		if s.Severity == model.SeverityInfo {
			continue
		}
		mark := "⚠"
		if s.Severity == model.SeverityCritical {
			mark = "✗"
		}
		scope := ""
		if s.Experiment != "" {
			scope = " [" + s.Experiment + "]"
		}
		fmt.Fprintf(w, "%s %s%s: %s\n", mark, s.Type, scope, s.Description)
	}
}

func writeWeights(b *strings.Builder, title string, weights []model.FeatureWeight) {
	if len(weights) == 0 {
		return
	}
	fmt.Fprintf(b, "**%s**\n\n| Feature | Weight |\n|---|---|\n", title)
	for _, fw := range weights {
		fmt.Fprintf(b, "| `%s` | %.4f |\n", escapeCell(fw.Feature), fw.Weight)
	}
	b.WriteString("\n")
}

func featureNames(weights []model.FeatureWeight) []string {
	names := make([]string, len(weights))
	for i, fw := range weights {
		names[i] = fw.Feature
	}
	return names
}

// bracketList formats names as a bracketed, space-separated quoted list
func bracketList(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = "'" + n + "'"
	}
	return "[" + strings.Join(quoted, " ") + "]"
}

func codeList(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = "`" + n + "`"
	}
	return strings.Join(quoted, ", ")
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
