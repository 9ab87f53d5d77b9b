// Package ai augments the analysis pipeline with a vision-capable model.
// The augmenter is strictly advisory: when it is disabled, times out or
// returns something unusable, the pipeline proceeds on traditional
// signals alone.
package ai

import "context"

// MatchSummary is the traditional matching context shared with the model.
type MatchSummary struct {
	Label      string
	Confidence int
}

// ProbeContext carries non-image context about the probe.
type ProbeContext struct {
	Filename  string
	FaceCount int
	Matches   []MatchSummary
}

// Provider is one vision model backend. AnalyzeProbe performs a single
// call and returns the raw response text for parsing.
type Provider interface {
	Name() string
	AnalyzeProbe(ctx context.Context, imageData []byte, probe ProbeContext) (string, error)
}

// Section is the tagged variant for one assessment section: the model
// either returned structured fields or free text that was split on
// section markers. Exactly one side is populated.
type Section struct {
	Structured map[string]any    `json:"structured,omitempty"`
	Raw        map[string]string `json:"raw,omitempty"`
}

// Empty reports whether neither variant is populated.
func (s Section) Empty() bool {
	return len(s.Structured) == 0 && len(s.Raw) == 0
}

// Assessment is a parsed model response: the three analysis sections plus
// the threat signal extracted from the threat assessment section.
type Assessment struct {
	FaceAnalysis     Section `json:"face_analysis"`
	OSINTAnalysis    Section `json:"osint_analysis"`
	ThreatAssessment Section `json:"threat_assessment"`

	// ThreatLevel is "" when the model did not signal a level.
	ThreatLevel string `json:"threat_level,omitempty"`
	Confidence  int    `json:"confidence,omitempty"`
	Model       string `json:"model"`
}

// Result is the augmentation outcome handed to the pipeline. Enabled is
// false only when no credential is configured; a failed or unparseable
// call yields Enabled true with a nil Assessment.
type Result struct {
	Enabled    bool        `json:"enabled"`
	Assessment *Assessment `json:"assessment,omitempty"`
}
