// Package osint correlates probe-derived identifiers against a small,
// fixed set of public, unauthenticated data sources. Sources are queried
// independently: one source failing never affects another, and failures
// are recorded as data rather than raised as errors.
package osint

import (
	"context"
	"net/http"
	"time"
)

// Finding is the outcome of one source query. Exactly one of Data or
// Reason is meaningful, selected by Success.
type Finding struct {
	Source  string         `json:"source"`
	Success bool           `json:"success"`
	Reason  string         `json:"reason,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

// Source is one public-data lookup. Lookup performs a single bounded
// attempt; there are no retries.
type Source interface {
	Name() string
	Lookup(ctx context.Context, ids Identifiers) (map[string]any, error)
}

// Aggregator fans out to all configured sources concurrently and joins
// the per-source outcomes.
type Aggregator struct {
	sources []Source
	timeout time.Duration
}

// NewAggregator creates an aggregator with a per-source hard timeout.
func NewAggregator(timeout time.Duration, sources ...Source) *Aggregator {
	return &Aggregator{sources: sources, timeout: timeout}
}

// SourceCount returns the number of configured sources.
func (a *Aggregator) SourceCount() int {
	return len(a.sources)
}

type indexedFinding struct {
	index   int
	finding Finding
}

// Collect queries every source concurrently and returns one Finding per
// source, in configuration order. If ctx expires before all sources
// finish, completed findings are kept and the rest are recorded as
// failures; Collect never returns an error.
func (a *Aggregator) Collect(ctx context.Context, ids Identifiers) []Finding {
	findings := make([]Finding, len(a.sources))
	ch := make(chan indexedFinding, len(a.sources))

	for i, src := range a.sources {
		findings[i] = Finding{Source: src.Name(), Success: false, Reason: "deadline exceeded"}

		go func(i int, src Source) {
			srcCtx, cancel := context.WithTimeout(ctx, a.timeout)
			defer cancel()

			data, err := src.Lookup(srcCtx, ids)
			if err != nil {
				ch <- indexedFinding{i, Finding{Source: src.Name(), Success: false, Reason: err.Error()}}
				return
			}
			ch <- indexedFinding{i, Finding{Source: src.Name(), Success: true, Data: data}}
		}(i, src)
	}

	for range a.sources {
		select {
		case r := <-ch:
			findings[r.index] = r.finding
		case <-ctx.Done():
			return findings
		}
	}
	return findings
}

// SuccessfulSources returns the names of sources that produced a finding.
func SuccessfulSources(findings []Finding) []string {
	var names []string
	for _, f := range findings {
		if f.Success {
			names = append(names, f.Source)
		}
	}
	return names
}

// defaultClient bounds every outbound request even if the caller's
// context is generous.
var defaultClient = &http.Client{Timeout: 10 * time.Second}
