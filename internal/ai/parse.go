package ai

import (
	"encoding/json"
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// errUnparseable marks a response that fits neither the structured nor
// the free-text shape. The augmenter collapses it into "no assessment".
var errUnparseable = errors.New("unparseable model response")

var confidencePattern = regexp.MustCompile(`(\d+)\s*(?:/\s*100|%)`)

// ParseAssessment interprets a raw model response. It accepts either a
// JSON object with the three analysis sections, or free text split on
// case-insensitive section markers.
func ParseAssessment(text, model string) (*Assessment, error) {
	if a, ok := parseStructured(text, model); ok {
		return a, nil
	}
	return parseRawText(text, model)
}

// parseStructured pulls the outermost JSON object out of the response and
// maps the known section keys.
func parseStructured(text, model string) (*Assessment, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, false
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(text[start:end+1]), &payload); err != nil {
		return nil, false
	}

	a := &Assessment{Model: model}
	found := false
	if s, ok := structuredSection(payload["face_analysis"]); ok {
		a.FaceAnalysis = s
		found = true
	}
	if s, ok := structuredSection(payload["osint_analysis"]); ok {
		a.OSINTAnalysis = s
		found = true
	}
	if s, ok := structuredSection(payload["threat_assessment"]); ok {
		a.ThreatAssessment = s
		found = true

		if level, ok := s.Structured["threat_level"].(string); ok {
			a.ThreatLevel = strings.ToUpper(strings.TrimSpace(level))
		}
		a.Confidence = anyToInt(s.Structured["confidence_score"])
	}
	if !found {
		return nil, false
	}
	return a, true
}

func structuredSection(v any) (Section, bool) {
	fields, ok := v.(map[string]any)
	if !ok || len(fields) == 0 {
		return Section{}, false
	}
	return Section{Structured: fields}, true
}

func anyToInt(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return i
		}
	}
	return 0
}

// rawMarker routes a free-text heading line to a section bucket.
type rawMarker struct {
	substr  string // matched case-insensitively against the line
	section int    // 0 face, 1 osint, 2 threat
	key     string
}

var rawMarkers = []rawMarker{
	{"FACE DETECTION", 0, "face_detection"},
	{"FACIAL ATTRIBUTES", 0, "facial_attributes"},
	{"CONTEXTUAL", 0, "contextual_analysis"},
	{"REVERSE IMAGE", 1, "reverse_image_search"},
	{"SOCIAL MEDIA", 1, "social_media_indicators"},
	{"PROFESSIONAL", 1, "professional_clues"},
	{"GEOGRAPHIC", 1, "geographic_clues"},
	{"LOCATION", 1, "geographic_clues"},
	{"KEYWORDS", 1, "search_keywords"},
	{"OSINT", 1, "osint_potential"},
	{"RISK", 2, "risk_factors"},
	{"VULNERABILIT", 2, "vulnerabilities"},
	{"RECOMMENDATION", 2, "recommendations"},
	{"MITIGATION", 2, "recommendations"},
	{"THREAT", 2, "threat_summary"},
}

// parseRawText splits free text into sections by heading markers. Each
// section accumulates lines until the next marker.
func parseRawText(text, model string) (*Assessment, error) {
	buckets := [3]map[string]string{{}, {}, {}}

	var current *rawMarker
	matched := false
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		upper := strings.ToUpper(line)

		marker := matchMarker(upper)
		if marker != nil {
			current = marker
			matched = true
			continue
		}
		if current != nil && line != "" {
			buckets[current.section][current.key] += line + " "
		}
	}

	if !matched {
		return nil, errUnparseable
	}

	a := &Assessment{
		FaceAnalysis:     rawSection(buckets[0]),
		OSINTAnalysis:    rawSection(buckets[1]),
		ThreatAssessment: rawSection(buckets[2]),
		Model:            model,
	}

	// Highest severity mentioned anywhere wins.
	upper := strings.ToUpper(text)
	for _, level := range []string{"CRITICAL", "HIGH", "MEDIUM", "LOW"} {
		if strings.Contains(upper, level) {
			a.ThreatLevel = level
			break
		}
	}
	if m := confidencePattern.FindStringSubmatch(text); m != nil {
		a.Confidence, _ = strconv.Atoi(m[1])
	}
	return a, nil
}

func matchMarker(upperLine string) *rawMarker {
	for i := range rawMarkers {
		if strings.Contains(upperLine, rawMarkers[i].substr) {
			return &rawMarkers[i]
		}
	}
	return nil
}

func rawSection(bucket map[string]string) Section {
	trimmed := make(map[string]string, len(bucket))
	for k, v := range bucket {
		trimmed[k] = strings.TrimSpace(v)
	}
	if len(trimmed) == 0 {
		return Section{}
	}
	return Section{Raw: trimmed}
}
