package cmd

import (
	"context"
	"fmt"

	"github.com/facetrace/facetrace/internal/ai"
	"github.com/facetrace/facetrace/internal/config"
	"github.com/facetrace/facetrace/internal/detect"
	"github.com/facetrace/facetrace/internal/gallery"
	"github.com/facetrace/facetrace/internal/match"
	"github.com/facetrace/facetrace/internal/osint"
	"github.com/facetrace/facetrace/internal/pipeline"
	"github.com/facetrace/facetrace/internal/threat"
)

// buildAIProvider picks the configured AI backend. Returns nil (not an
// error) when no credential is present - augmentation is then disabled.
func buildAIProvider(ctx context.Context, cfg *config.Config) (ai.Provider, error) {
	switch cfg.AI.Provider {
	case "openai":
		if cfg.AI.OpenAIToken == "" {
			return nil, nil
		}
		return ai.NewOpenAIProvider(cfg.AI.OpenAIToken), nil
	default:
		if cfg.AI.GeminiAPIKey == "" {
			return nil, nil
		}
		provider, err := ai.NewGeminiProvider(ctx, cfg.AI.GeminiAPIKey)
		if err != nil {
			return nil, fmt.Errorf("initializing Gemini provider: %w", err)
		}
		return provider, nil
	}
}

// buildPipeline assembles the full analysis pipeline from configuration.
func buildPipeline(ctx context.Context, cfg *config.Config) (*pipeline.Pipeline, error) {
	detector := detect.New(detect.DefaultParams())

	store, err := gallery.Load(cfg.Gallery.Dir, detector)
	if err != nil {
		return nil, fmt.Errorf("loading gallery: %w", err)
	}
	fmt.Printf("Gallery loaded: %d known faces from %s\n", store.Count(), cfg.Gallery.Dir)

	provider, err := buildAIProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if provider != nil {
		fmt.Printf("AI augmentation enabled (%s)\n", provider.Name())
	} else {
		fmt.Println("AI augmentation disabled (no credential configured)")
	}

	aggregator := osint.NewAggregator(cfg.OSINT.Timeout,
		&osint.GravatarSource{BaseURL: cfg.OSINT.GravatarURL},
		&osint.GitHubSource{BaseURL: cfg.OSINT.GitHubURL},
	)

	return pipeline.New(
		detector,
		store,
		match.NewMatcher(cfg.Thresholds.MatchFloor),
		aggregator,
		ai.NewAugmenter(provider, cfg.AI.Timeout, ai.NewCache(cfg.AI.CacheSize)),
		threat.NewEngine(cfg.Thresholds),
		cfg.OSINT.EmailDomains,
		cfg.Pipeline.Deadline,
	), nil
}
