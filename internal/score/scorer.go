package score

import (
	"fmt"

	"github.com/ppiankov/polarity/internal/model"
)

// Scorer turns measured results into diagnostic signals
type Scorer struct {
	imbalanceLow  float64
	imbalanceHigh float64
	aucCritical   float64
	aucWarning    float64
	minVocabulary int
}

// NewScorer creates a scorer with the standard thresholds
func NewScorer() *Scorer {
	return &Scorer{
		imbalanceLow:  0.25,
		imbalanceHigh: 0.75,
		aucCritical:   0.7,
		aucWarning:    0.85,
		minVocabulary: 10,
	}
}

// Assessment is the scorer's verdict on a run
type Assessment struct {
	Best    string
	Signals []model.Signal
}

// Assess generates signals for the dataset, every experiment and the baseline
func (s *Scorer) Assess(stats model.DatasetStats, experiments []model.ExperimentResult, baseline *model.BaselineResult) Assessment {
	var signals []model.Signal

	// 1. Class balance
	signals = append(signals, s.classBalance(stats))

	// 2. Per-experiment checks
	for _, exp := range experiments {
		signals = append(signals, s.modelQuality(exp))

		if sig, ok := s.vocabulary(exp); ok {
			signals = append(signals, sig)
		}
		if sig, ok := s.convergence(exp); ok {
			signals = append(signals, sig)
		}
		if sig, ok := s.probeAgreement(exp); ok {
			signals = append(signals, sig)
		}
	}

	// 3. Best model against the lexicon baseline
	best := bestExperiment(experiments)
	if best != nil && baseline != nil {
		signals = append(signals, s.baselineGap(*best, *baseline))
	}

	a := Assessment{Signals: signals}
	if best != nil {
		a.Best = best.Config.Name
	}
	return a
}

// classBalance flags a skewed positive rate
func (s *Scorer) classBalance(stats model.DatasetStats) model.Signal {
	rate := stats.PositiveRate

	severity := model.SeverityInfo
	description := fmt.Sprintf("Positive rate: %.1f%% of %d reviews", rate*100, stats.Reviews)
	if rate < s.imbalanceLow || rate > s.imbalanceHigh {
		severity = model.SeverityWarning
		description = fmt.Sprintf("Imbalanced labels: %.1f%% of %d reviews are positive", rate*100, stats.Reviews)
	}

	return model.Signal{
		Type:        model.SignalClassBalance,
		Severity:    severity,
		Description: description,
		Data: map[string]interface{}{
			"positive":      stats.Positive,
			"negative":      stats.Negative,
			"positive_rate": rate,
			"balanced_band": []float64{s.imbalanceLow, s.imbalanceHigh},
		},
	}
}

// modelQuality bands the experiment's AUC
func (s *Scorer) modelQuality(exp model.ExperimentResult) model.Signal {
	severity := model.SeverityInfo
	if exp.AUC < s.aucCritical {
		severity = model.SeverityCritical
	} else if exp.AUC < s.aucWarning {
		severity = model.SeverityWarning
	}

	return model.Signal{
		Type:        model.SignalModelQuality,
		Severity:    severity,
		Experiment:  exp.Config.Name,
		Description: fmt.Sprintf("AUC %.4f (probability AUC %.4f, accuracy %.4f)", exp.AUC, exp.ScoreAUC, exp.Accuracy),
		Data: map[string]interface{}{
			"auc":       exp.AUC,
			"score_auc": exp.ScoreAUC,
			"accuracy":  exp.Accuracy,
			"bands":     fmt.Sprintf("critical < %.2f <= warning < %.2f <= info", s.aucCritical, s.aucWarning),
		},
	}
}

// vocabulary flags an experiment whose min_df cut left almost nothing
func (s *Scorer) vocabulary(exp model.ExperimentResult) (model.Signal, bool) {
	if exp.VocabularySize >= s.minVocabulary {
		return model.Signal{}, false
	}

	return model.Signal{
		Type:        model.SignalVocabulary,
		Severity:    model.SeverityCritical,
		Experiment:  exp.Config.Name,
		Description: fmt.Sprintf("Only %d features survived min_df=%d", exp.VocabularySize, exp.Config.MinDF),
		Data: map[string]interface{}{
			"vocabulary_size": exp.VocabularySize,
			"min_df":          exp.Config.MinDF,
			"minimum":         s.minVocabulary,
		},
	}, true
}

// convergence flags an optimizer that stopped before meeting its tolerance
func (s *Scorer) convergence(exp model.ExperimentResult) (model.Signal, bool) {
	if exp.Converged {
		return model.Signal{}, false
	}

	status := exp.OptimizerStatus
	if status == "" {
		status = "unknown"
	}

	var desc string
	if status == "IterationLimit" {
		desc = fmt.Sprintf("Optimizer hit its iteration limit after %d iterations; increase model.max_iter", exp.Iterations)
	} else {
		desc = fmt.Sprintf("Optimizer stopped after %d iterations with status %s; coefficients may be inaccurate", exp.Iterations, status)
	}

	return model.Signal{
		Type:        model.SignalConvergence,
		Severity:    model.SeverityWarning,
		Experiment:  exp.Config.Name,
		Description: desc,
		Data: map[string]interface{}{
			"iterations": exp.Iterations,
			"status":     status,
		},
	}, true
}

// probeAgreement flags a model that gives every probe the same label
func (s *Scorer) probeAgreement(exp model.ExperimentResult) (model.Signal, bool) {
	if len(exp.Probes) < 2 {
		return model.Signal{}, false
	}

	first := exp.Probes[0].Label
	for _, p := range exp.Probes[1:] {
		if p.Label != first {
			return model.Signal{}, false
		}
	}

	texts := make([]string, len(exp.Probes))
	for i, p := range exp.Probes {
		texts[i] = p.Text
	}

	return model.Signal{
		Type:        model.SignalProbeAgreement,
		Severity:    model.SeverityWarning,
		Experiment:  exp.Config.Name,
		Description: fmt.Sprintf("All %d probes predicted %s: word order and negation are not captured", len(exp.Probes), labelName(first)),
		Data: map[string]interface{}{
			"probes": texts,
			"label":  first,
		},
	}, true
}

// baselineGap compares the best model with the lexicon baseline
func (s *Scorer) baselineGap(best model.ExperimentResult, baseline model.BaselineResult) model.Signal {
	gap := best.ScoreAUC - baseline.ScoreAUC

	severity := model.SeverityInfo
	if gap < 0 {
		severity = model.SeverityWarning
	}

	var desc string
	switch {
	case gap > 0:
		desc = fmt.Sprintf("Best model beats the %s lexicon by %.4f probability AUC", baseline.Name, gap)
	case gap < 0:
		desc = fmt.Sprintf("Best model trails the %s lexicon by %.4f probability AUC", baseline.Name, -gap)
	default:
		desc = fmt.Sprintf("Best model ties the %s lexicon on probability AUC", baseline.Name)
	}

	return model.Signal{
		Type:        model.SignalBaselineGap,
		Severity:    severity,
		Experiment:  best.Config.Name,
		Description: desc,
		Data: map[string]interface{}{
			"model_score_auc":    best.ScoreAUC,
			"baseline_score_auc": baseline.ScoreAUC,
			"gap":                gap,
			"formula":            "model_score_auc - baseline_score_auc",
		},
	}
}

// bestExperiment picks the highest probability AUC; ties keep the earlier experiment
func bestExperiment(experiments []model.ExperimentResult) *model.ExperimentResult {
	var best *model.ExperimentResult
	for i := range experiments {
		if best == nil || experiments[i].ScoreAUC > best.ScoreAUC {
			best = &experiments[i]
		}
	}
	return best
}

func labelName(label int) string {
	if label == 1 {
		return "positive"
	}
	return "negative"
}
