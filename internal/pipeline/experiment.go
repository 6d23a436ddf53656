package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ppiankov/polarity/internal/classify"
	"github.com/ppiankov/polarity/internal/dataset"
	"github.com/ppiankov/polarity/internal/model"
	"github.com/ppiankov/polarity/internal/text"
	"github.com/ppiankov/polarity/internal/worker"
)

// experimentJob fits and measures one experiment on the worker pool
type experimentJob struct {
	index  int
	config model.ExperimentConfig
	split  *dataset.Split
	model  model.ModelConfig
	report model.ReportConfig
}

type experimentOutcome struct {
	index  int
	result model.ExperimentResult
	err    error
}

func (o *experimentOutcome) GetError() error {
	return o.err
}

func (j *experimentJob) Execute(ctx context.Context) worker.Result {
	result, err := RunExperiment(ctx, j.config, j.split, j.model, j.report)
	if err != nil {
		err = fmt.Errorf("experiment %s: %w", j.config.Name, err)
	}
	return &experimentOutcome{index: j.index, result: result, err: err}
}

// runExperiments fits every experiment concurrently and returns results in configuration order.
// The first failure (in configuration order) fails the run.
func (p *Pipeline) runExperiments(ctx context.Context, split *dataset.Split) ([]model.ExperimentResult, error) {
	jobs := make([]worker.Job, len(p.config.Experiments))
	for i, exp := range p.config.Experiments {
		jobs[i] = &experimentJob{
			index:  i,
			config: exp,
			split:  split,
			model:  p.config.Model,
			report: p.config.Report,
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	outcomes := make([]*experimentOutcome, len(jobs))
	for _, r := range worker.Run(ctx, p.config.Concurrency.Workers, jobs) {
		o := r.(*experimentOutcome)
		outcomes[o.index] = o
	}

	results := make([]model.ExperimentResult, len(jobs))
	for i, o := range outcomes {
		if o == nil {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			return nil, fmt.Errorf("experiment %s: not run", p.config.Experiments[i].Name)
		}
		if o.err != nil {
			return nil, o.err
		}
		results[i] = o.result
	}
	return results, nil
}

// RunExperiment fits the vectorizer and classifier on the training split and measures them on the test split
func RunExperiment(ctx context.Context, exp model.ExperimentConfig, split *dataset.Split, modelCfg model.ModelConfig, reportCfg model.ReportConfig) (model.ExperimentResult, error) {
	start := time.Now()
	result := model.ExperimentResult{Config: exp}

	vec, err := text.New(exp.Vectorizer, text.Options{
		MinDF:    exp.MinDF,
		NGramMin: exp.NGramMin,
		NGramMax: exp.NGramMax,
	})
	if err != nil {
		return result, err
	}

	xTrain, err := vec.FitTransform(split.TrainX)
	if err != nil {
		return result, fmt.Errorf("vectorize: %w", err)
	}
	names := vec.FeatureNames()
	result.VocabularySize = vec.VocabularySize()
	result.SampleFeatures = classify.Stride(names, reportCfg.FeatureStride)

	clf := classify.NewLogisticRegression(modelCfg)
	if err := clf.Fit(ctx, xTrain, split.TrainY); err != nil {
		return result, fmt.Errorf("fit: %w", err)
	}
	result.Converged = clf.Converged()
	result.Iterations = clf.Iterations()
	result.OptimizerStatus = clf.Status()

	xTest := vec.Transform(split.TestX)
	preds, err := clf.Predict(xTest)
	if err != nil {
		return result, fmt.Errorf("predict: %w", err)
	}
	proba, err := clf.PredictProba(xTest)
	if err != nil {
		return result, fmt.Errorf("predict proba: %w", err)
	}

	if result.AUC, err = classify.AUC(split.TestY, preds); err != nil {
		return result, fmt.Errorf("auc: %w", err)
	}
	if result.ScoreAUC, err = classify.AUC(split.TestY, proba); err != nil {
		return result, fmt.Errorf("score auc: %w", err)
	}
	result.Accuracy = classify.Accuracy(split.TestY, preds)
	result.Confusion = classify.ConfusionCounts(split.TestY, preds)

	result.SmallestCoefs, result.LargestCoefs = classify.Extremes(clf.Coef(), names, reportCfg.TopN)

	if exp.Vectorizer == model.VectorizerTfidf {
		result.SmallestTfidf, result.LargestTfidf = classify.Extremes(xTrain.ColumnMax(), names, reportCfg.TopN)
	}

	if len(reportCfg.Probes) > 0 {
		xProbe := vec.Transform(reportCfg.Probes)
		labels, err := clf.Predict(xProbe)
		if err != nil {
			return result, fmt.Errorf("probe: %w", err)
		}
		probs, err := clf.PredictProba(xProbe)
		if err != nil {
			return result, fmt.Errorf("probe proba: %w", err)
		}
		for i, probe := range reportCfg.Probes {
			result.Probes = append(result.Probes, model.ProbeResult{
				Text:        probe,
				Label:       int(labels[i]),
				Probability: probs[i],
			})
		}
	}

	slog.Debug("experiment finished",
		"experiment", exp.Name,
		"vocabulary", result.VocabularySize,
		"auc", result.AUC,
		"converged", result.Converged,
		"elapsed", time.Since(start).Round(time.Millisecond))

	return result, nil
}
