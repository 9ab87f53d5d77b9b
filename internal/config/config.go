// Package config loads runtime configuration from the environment, with
// fusion thresholds defaulting from an embedded YAML file.
package config

import (
	_ "embed"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/facetrace/facetrace/internal/threat"
	"gopkg.in/yaml.v3"
)

//go:embed thresholds.yaml
var thresholdsYAML []byte

type Config struct {
	Gallery    GalleryConfig
	OSINT      OSINTConfig
	AI         AIConfig
	Pipeline   PipelineConfig
	Thresholds threat.Thresholds
}

type GalleryConfig struct {
	Dir string // directory of known face images
}

type OSINTConfig struct {
	Timeout      time.Duration // per-source hard timeout
	EmailDomains []string      // candidate email domains for Gravatar
	GravatarURL  string        // defaults to https://www.gravatar.com
	GitHubURL    string        // defaults to https://api.github.com
}

type AIConfig struct {
	Provider     string // "gemini" or "openai"
	GeminiAPIKey string
	OpenAIToken  string
	Timeout      time.Duration // hard timeout for the single model call
	CacheSize    int           // max cached assessments
}

type PipelineConfig struct {
	Deadline time.Duration // outer deadline for one request
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envString returns the env var value or a default when unset.
func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

// envList splits a comma-separated env var, falling back to defaults.
func envList(key string, defaults []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return defaults
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaults
	}
	return out
}

func Load() *Config {
	var thresholds threat.Thresholds
	if err := yaml.Unmarshal(thresholdsYAML, &thresholds); err != nil {
		// Embedded file, cannot happen in practice.
		panic("failed to unmarshal embedded thresholds.yaml: " + err.Error())
	}

	// Environment overrides for the fusion constants.
	thresholds.MatchFloor = envInt("MATCH_FLOOR", thresholds.MatchFloor)
	thresholds.StrongMatch = envInt("STRONG_MATCH", thresholds.StrongMatch)
	thresholds.ModerateMatch = envInt("MODERATE_MATCH", thresholds.ModerateMatch)
	thresholds.StrongOSINT = envInt("STRONG_OSINT", thresholds.StrongOSINT)
	thresholds.OSINTWeight = envInt("OSINT_WEIGHT", thresholds.OSINTWeight)

	return &Config{
		Gallery: GalleryConfig{
			Dir: envString("GALLERY_DIR", "face_data/known_faces"),
		},
		OSINT: OSINTConfig{
			Timeout:      time.Duration(envInt("OSINT_TIMEOUT_SECONDS", 5)) * time.Second,
			EmailDomains: envList("OSINT_EMAIL_DOMAINS", []string{"gmail.com", "yahoo.com", "hotmail.com"}),
			GravatarURL:  envString("GRAVATAR_URL", "https://www.gravatar.com"),
			GitHubURL:    envString("GITHUB_API_URL", "https://api.github.com"),
		},
		AI: AIConfig{
			Provider:     envString("AI_PROVIDER", "gemini"),
			GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
			OpenAIToken:  os.Getenv("OPENAI_TOKEN"),
			Timeout:      time.Duration(envInt("AI_TIMEOUT_SECONDS", 30)) * time.Second,
			CacheSize:    envInt("AI_CACHE_SIZE", 128),
		},
		Pipeline: PipelineConfig{
			Deadline: time.Duration(envInt("PIPELINE_DEADLINE_SECONDS", 60)) * time.Second,
		},
		Thresholds: thresholds,
	}
}
