package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/facetrace/facetrace/internal/config"
	"github.com/facetrace/facetrace/internal/pipeline"
	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <image>",
	Short: "Analyze a single probe image",
	Long: `Run one image through the full analysis pipeline and print the
threat assessment.

Examples:
  # Analyze a photo against the configured gallery
  facetrace analyze ./probe.jpg

  # Output the full report as JSON
  facetrace analyze ./probe.jpg --json`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().Bool("json", false, "Output the full report as JSON")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	asJSON := mustGetBool(cmd, "json")

	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading probe image: %w", err)
	}

	ctx := context.Background()
	pipe, err := buildPipeline(ctx, cfg)
	if err != nil {
		return err
	}

	report, err := pipe.Analyze(ctx, raw, filepath.Base(args[0]))
	if err != nil {
		return fmt.Errorf("analyzing probe: %w", err)
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	printReport(report)
	return nil
}

func printReport(report *pipeline.Report) {
	fmt.Printf("Faces detected: %d\n", report.FacesDetected)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if len(report.Matches) > 0 {
		fmt.Fprintln(w, "\nMATCH\tCONFIDENCE")
		for _, m := range report.Matches {
			fmt.Fprintf(w, "%s\t%d%%\n", m.Label, m.Confidence)
		}
	} else {
		fmt.Println("No gallery matches")
	}

	fmt.Fprintln(w, "\nOSINT SOURCE\tRESULT")
	for _, f := range report.Findings {
		if f.Success {
			fmt.Fprintf(w, "%s\tfound\n", f.Source)
		} else {
			fmt.Fprintf(w, "%s\t%s\n", f.Source, f.Reason)
		}
	}
	w.Flush()

	if report.AI.Enabled {
		if report.AI.Assessment != nil {
			fmt.Printf("\nAI assessment: %s", report.AI.Assessment.Model)
			if report.AI.Assessment.ThreatLevel != "" {
				fmt.Printf(" (signals %s)", report.AI.Assessment.ThreatLevel)
			}
			fmt.Println()
		} else {
			fmt.Println("\nAI assessment: unavailable for this request")
		}
	}

	fmt.Printf("\nThreat level: %s (confidence %d)\n", report.Threat.Level, report.Threat.Confidence)
	for _, factor := range report.Threat.Factors {
		fmt.Printf("  - %s\n", factor)
	}
}
