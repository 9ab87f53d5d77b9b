package ai

import (
	"errors"
	"testing"
)

func TestParseAssessment_StructuredJSON(t *testing.T) {
	text := `{
		"face_analysis": {"estimated_age": "30-40", "expression": "neutral"},
		"osint_analysis": {"search_keywords": ["portrait", "office"]},
		"threat_assessment": {"threat_level": "high", "confidence_score": 72, "risk_factors": ["public profile"]}
	}`

	a, err := ParseAssessment(text, "gemini")
	if err != nil {
		t.Fatalf("ParseAssessment failed: %v", err)
	}
	if a.Model != "gemini" {
		t.Errorf("model = %q, want gemini", a.Model)
	}
	if a.FaceAnalysis.Structured["estimated_age"] != "30-40" {
		t.Errorf("face analysis not mapped: %+v", a.FaceAnalysis)
	}
	if a.ThreatLevel != "HIGH" {
		t.Errorf("threat level = %q, want HIGH", a.ThreatLevel)
	}
	if a.Confidence != 72 {
		t.Errorf("confidence = %d, want 72", a.Confidence)
	}
}

func TestParseAssessment_JSONWrappedInProse(t *testing.T) {
	text := "Here is the analysis you asked for:\n```json\n" +
		`{"threat_assessment": {"threat_level": "LOW", "confidence_score": "15"}}` +
		"\n```\nLet me know if you need more."

	a, err := ParseAssessment(text, "gemini")
	if err != nil {
		t.Fatalf("ParseAssessment failed: %v", err)
	}
	if a.ThreatLevel != "LOW" {
		t.Errorf("threat level = %q, want LOW", a.ThreatLevel)
	}
	if a.Confidence != 15 {
		t.Errorf("string confidence should parse, got %d", a.Confidence)
	}
}

func TestParseAssessment_RawText(t *testing.T) {
	text := `FACE DETECTION AND ANALYSIS
One adult subject, frontal pose.

SOCIAL MEDIA INDICATORS
Clothing suggests a conference badge.

THREAT ASSESSMENT
Overall risk is MEDIUM with confidence 65/100.`

	a, err := ParseAssessment(text, "gemini")
	if err != nil {
		t.Fatalf("ParseAssessment failed: %v", err)
	}
	if a.FaceAnalysis.Raw["face_detection"] != "One adult subject, frontal pose." {
		t.Errorf("face section = %+v", a.FaceAnalysis.Raw)
	}
	if a.OSINTAnalysis.Raw["social_media_indicators"] == "" {
		t.Errorf("osint section missing: %+v", a.OSINTAnalysis.Raw)
	}
	if a.ThreatLevel != "MEDIUM" {
		t.Errorf("threat level = %q, want MEDIUM", a.ThreatLevel)
	}
	if a.Confidence != 65 {
		t.Errorf("confidence = %d, want 65", a.Confidence)
	}
}

func TestParseAssessment_RawTextHighestSeverityWins(t *testing.T) {
	text := `THREAT ASSESSMENT
Low exposure overall, but one HIGH risk factor was identified.`

	a, err := ParseAssessment(text, "gemini")
	if err != nil {
		t.Fatalf("ParseAssessment failed: %v", err)
	}
	if a.ThreatLevel != "HIGH" {
		t.Errorf("threat level = %q, want HIGH", a.ThreatLevel)
	}
}

func TestParseAssessment_Unparseable(t *testing.T) {
	tests := []string{
		"",
		"I cannot help with that request.",
		"{not valid json at all",
	}

	for _, text := range tests {
		_, err := ParseAssessment(text, "gemini")
		if !errors.Is(err, errUnparseable) {
			t.Errorf("ParseAssessment(%q) error = %v, want errUnparseable", text, err)
		}
	}
}

func TestParseAssessment_JSONWithoutKnownSections(t *testing.T) {
	// A JSON object with none of the section keys falls through to the
	// raw-text parser, which also finds no markers.
	_, err := ParseAssessment(`{"foo": "bar"}`, "gemini")
	if !errors.Is(err, errUnparseable) {
		t.Errorf("error = %v, want errUnparseable", err)
	}
}

func TestAnyToInt(t *testing.T) {
	tests := []struct {
		in   any
		want int
	}{
		{float64(85), 85},
		{"42", 42},
		{" 7 ", 7},
		{"not a number", 0},
		{nil, 0},
		{true, 0},
	}

	for _, tc := range tests {
		if got := anyToInt(tc.in); got != tc.want {
			t.Errorf("anyToInt(%v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestSection_Empty(t *testing.T) {
	if !(Section{}).Empty() {
		t.Error("zero section should be empty")
	}
	if (Section{Structured: map[string]any{"k": 1}}).Empty() {
		t.Error("structured section should not be empty")
	}
	if (Section{Raw: map[string]string{"k": "v"}}).Empty() {
		t.Error("raw section should not be empty")
	}
}
