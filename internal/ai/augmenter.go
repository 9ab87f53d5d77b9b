package ai

import (
	"context"
	"log"
	"time"
)

// Augmenter wraps a provider with the degradation and caching rules: one
// call per probe under a hard timeout, cached by image content hash, and
// every failure absorbed into an absent assessment.
type Augmenter struct {
	provider Provider // nil when no credential is configured
	timeout  time.Duration
	cache    *Cache
}

// NewAugmenter creates an augmenter. A nil provider produces a disabled
// augmenter that never attempts a call.
func NewAugmenter(provider Provider, timeout time.Duration, cache *Cache) *Augmenter {
	return &Augmenter{provider: provider, timeout: timeout, cache: cache}
}

// Enabled reports whether a provider credential is configured.
func (a *Augmenter) Enabled() bool {
	return a.provider != nil
}

// Augment analyzes the probe. It never returns an error: DISABLED yields
// Enabled=false, and any call or parse failure yields Enabled=true with a
// nil Assessment so the pipeline proceeds on traditional signals.
func (a *Augmenter) Augment(ctx context.Context, imageData []byte, probe ProbeContext) Result {
	if !a.Enabled() {
		return Result{Enabled: false}
	}

	key := CacheKey(imageData)
	if cached, ok := a.cache.Get(key); ok {
		return Result{Enabled: true, Assessment: cached}
	}

	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	text, err := a.provider.AnalyzeProbe(callCtx, imageData, probe)
	if err != nil {
		log.Printf("ai augmentation skipped: %v", err)
		return Result{Enabled: true}
	}

	assessment, err := ParseAssessment(text, a.provider.Name())
	if err != nil {
		log.Printf("ai response discarded: %v", err)
		return Result{Enabled: true}
	}

	a.cache.Put(key, assessment)
	return Result{Enabled: true, Assessment: assessment}
}
