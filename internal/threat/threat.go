// Package threat fuses the independent analysis signals (best gallery
// match, public-data correlations, optional AI assessment) into a single
// deterministic threat level. The level is a pure function of its inputs.
package threat

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Level is the fused threat level.
type Level int

const (
	Low Level = iota
	Medium
	High
	Critical
)

// String implements fmt.Stringer.
func (l Level) String() string {
	switch l {
	case Critical:
		return "CRITICAL"
	case High:
		return "HIGH"
	case Medium:
		return "MEDIUM"
	default:
		return "LOW"
	}
}

// MarshalJSON encodes the level as its string form.
func (l Level) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// ParseLevel parses a level name case-insensitively.
func ParseLevel(s string) (Level, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "LOW":
		return Low, true
	case "MEDIUM":
		return Medium, true
	case "HIGH":
		return High, true
	case "CRITICAL":
		return Critical, true
	}
	return Low, false
}

// Thresholds are the tunable fusion constants. They are configuration,
// not law: defaults live in the embedded thresholds file and can be
// overridden through the environment.
type Thresholds struct {
	MatchFloor    int `yaml:"match_floor"`    // minimum reportable match confidence
	StrongMatch   int `yaml:"strong_match"`   // match confidence for HIGH
	ModerateMatch int `yaml:"moderate_match"` // match confidence for MEDIUM
	StrongOSINT   int `yaml:"strong_osint"`   // successful sources for HIGH
	OSINTWeight   int `yaml:"osint_weight"`   // confidence points per successful source
}

// Match is the single best gallery match across all detected faces.
type Match struct {
	Label      string
	Confidence int
}

// Inputs are the signals available at fusion time.
type Inputs struct {
	Match        *Match   // nil when no reportable match
	OSINTSources []string // names of sources that produced findings
	AIPresent    bool
	AILevel      Level // meaningful only when AIPresent
}

// Assessment is the final fused output.
type Assessment struct {
	Level      Level    `json:"level"`
	Confidence int      `json:"confidence"`
	Factors    []string `json:"factors"`
}

// Engine applies the fusion rule.
type Engine struct {
	t Thresholds
}

// NewEngine creates an engine with the given thresholds.
func NewEngine(t Thresholds) *Engine {
	return &Engine{t: t}
}

// Assess fuses the inputs into one threat assessment.
//
// Baseline: CRITICAL needs both a strong match and multiple public-data
// correlations; HIGH needs either; MEDIUM a moderate match or a single
// correlation. A present AI assessment may raise the baseline by at most
// one level and can never reach CRITICAL on its own.
func (e *Engine) Assess(in Inputs) Assessment {
	m := 0
	if in.Match != nil {
		m = in.Match.Confidence
	}
	o := len(in.OSINTSources)

	strongBoth := m >= e.t.StrongMatch && o >= e.t.StrongOSINT

	var baseline Level
	switch {
	case strongBoth:
		baseline = Critical
	case m >= e.t.StrongMatch || o >= e.t.StrongOSINT:
		baseline = High
	case m >= e.t.ModerateMatch || o == 1:
		baseline = Medium
	default:
		baseline = Low
	}

	level := baseline
	escalated := false
	if in.AIPresent && in.AILevel > baseline {
		level = min(in.AILevel, baseline+1)
		if level == Critical && !strongBoth {
			level = High
		}
		escalated = level > baseline
	}

	confidence := m
	if w := e.t.OSINTWeight * o; w > confidence {
		confidence = w
	}
	if confidence > 100 {
		confidence = 100
	}
	if level == Critical {
		confidence = 100
	}

	var factors []string
	if in.Match != nil {
		factors = append(factors, fmt.Sprintf("match %s (%d%%)", in.Match.Label, in.Match.Confidence))
	}
	for _, src := range in.OSINTSources {
		factors = append(factors, "osint "+src)
	}
	if escalated {
		factors = append(factors, "ai escalation to "+level.String())
	}

	return Assessment{Level: level, Confidence: confidence, Factors: factors}
}
