package ai

import (
	_ "embed"
	"fmt"
	"strings"
)

//go:embed prompts/probe_analysis.txt
var probeAnalysisPrompt string

// buildProbePrompt combines the embedded analysis prompt with the
// traditional matching context. Shared across all providers.
func buildProbePrompt(probe ProbeContext) string {
	var b strings.Builder
	b.WriteString(probeAnalysisPrompt)
	b.WriteString("\nTraditional analysis context:\n")
	fmt.Fprintf(&b, "- faces detected: %d\n", probe.FaceCount)
	if probe.Filename != "" {
		fmt.Fprintf(&b, "- probe filename: %s\n", probe.Filename)
	}
	if len(probe.Matches) == 0 {
		b.WriteString("- gallery matches: none\n")
	}
	for _, m := range probe.Matches {
		fmt.Fprintf(&b, "- gallery match: %s (%d%% confidence)\n", m.Label, m.Confidence)
	}
	return b.String()
}
