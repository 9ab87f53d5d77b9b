package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "facetrace",
	Short: "A face-matching OSINT threat analysis service",
	Long: `Facetrace ingests a probe image, matches detected faces against a
gallery of known templates, correlates the result with public data
sources, optionally augments it with a vision-capable AI model and fuses
everything into a single threat assessment.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
