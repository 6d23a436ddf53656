package model

import "time"

// Report is the complete output of one analysis run
type Report struct {
	Subject     string    `json:"subject"`      // Dataset name derived from the source
	Source      string    `json:"source"`       // Path or URL that was analyzed
	GeneratedAt time.Time `json:"generated_at"` // When the run finished

	Dataset     DatasetStats       `json:"dataset"`
	Experiments []ExperimentResult `json:"experiments"`
	Baseline    *BaselineResult    `json:"baseline,omitempty"`

	Best    string   `json:"best_experiment,omitempty"`
	Signals []Signal `json:"signals"`

	LLM *LLMSummary `json:"llm,omitempty"` // Optional narrative, never affects any number above
}

// Experiment returns the named experiment result, or nil
func (r *Report) Experiment(name string) *ExperimentResult {
	for i := range r.Experiments {
		if r.Experiments[i].Config.Name == name {
			return &r.Experiments[i]
		}
	}
	return nil
}

// Signal is a diagnostic observation about the data or a model
type Signal struct {
	Type        SignalType             `json:"type"`
	Severity    SignalSeverity         `json:"severity"`
	Experiment  string                 `json:"experiment,omitempty"`
	Description string                 `json:"description"`
	Data        map[string]interface{} `json:"data,omitempty"`
}

// SignalType classifies the diagnostic signal
type SignalType string

const (
	SignalClassBalance   SignalType = "class_balance"   // Share of positive labels
	SignalModelQuality   SignalType = "model_quality"   // AUC band
	SignalProbeAgreement SignalType = "probe_agreement" // All probes get one label
	SignalVocabulary     SignalType = "vocabulary"      // Tiny vocabulary after min_df
	SignalConvergence    SignalType = "convergence"     // Optimizer stopped at its limit
	SignalBaselineGap    SignalType = "baseline_gap"    // Best model vs lexicon baseline
)

// SignalSeverity indicates the importance of the signal
type SignalSeverity string

const (
	SeverityInfo     SignalSeverity = "info"
	SeverityWarning  SignalSeverity = "warning"
	SeverityCritical SignalSeverity = "critical"
)

// LLMSummary contains an optional LLM-written narrative of the report
type LLMSummary struct {
	Enabled   bool     `json:"enabled"`
	Provider  string   `json:"provider,omitempty"`
	Model     string   `json:"model,omitempty"`
	Strict    bool     `json:"strict_features"` // Quoted terms checked against reported features
	SummaryMD string   `json:"summary_md,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
}
