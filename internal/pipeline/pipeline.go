// Package pipeline runs one probe through the full analysis chain:
// normalize, detect, match, fan out to OSINT and AI, then fuse into a
// threat assessment. Only an undecodable image aborts a request; every
// other degradation is absorbed and reflected in the report content.
package pipeline

import (
	"context"
	"image"
	"sort"
	"sync"
	"time"

	"github.com/facetrace/facetrace/internal/ai"
	"github.com/facetrace/facetrace/internal/detect"
	"github.com/facetrace/facetrace/internal/gallery"
	"github.com/facetrace/facetrace/internal/imaging"
	"github.com/facetrace/facetrace/internal/match"
	"github.com/facetrace/facetrace/internal/osint"
	"github.com/facetrace/facetrace/internal/threat"
)

// ErrInvalidImage re-exports the only fatal input error.
var ErrInvalidImage = imaging.ErrInvalidImage

// Report is the complete analysis payload for one probe.
type Report struct {
	FacesDetected int               `json:"faces_detected"`
	Regions       []detect.Region   `json:"regions,omitempty"`
	Matches       []match.Result    `json:"matches"`
	Findings      []osint.Finding   `json:"osint"`
	AI            ai.Result         `json:"ai"`
	Threat        threat.Assessment `json:"threat"`
}

// Pipeline owns the per-stage components. The gallery and AI cache are
// the only state shared between requests; both are safe for concurrent
// use.
type Pipeline struct {
	detector   *detect.Detector
	store      *gallery.Store
	matcher    *match.Matcher
	aggregator *osint.Aggregator
	augmenter  *ai.Augmenter
	engine     *threat.Engine
	domains    []string
	deadline   time.Duration
}

// New assembles a pipeline.
func New(
	detector *detect.Detector,
	store *gallery.Store,
	matcher *match.Matcher,
	aggregator *osint.Aggregator,
	augmenter *ai.Augmenter,
	engine *threat.Engine,
	domains []string,
	deadline time.Duration,
) *Pipeline {
	return &Pipeline{
		detector:   detector,
		store:      store,
		matcher:    matcher,
		aggregator: aggregator,
		augmenter:  augmenter,
		engine:     engine,
		domains:    domains,
		deadline:   deadline,
	}
}

// GalleryCount returns the number of loaded gallery records.
func (p *Pipeline) GalleryCount() int {
	return p.store.Count()
}

// AIEnabled reports whether the AI augmenter has a credential.
func (p *Pipeline) AIEnabled() bool {
	return p.augmenter.Enabled()
}

// Analyze runs one probe through the pipeline. filename is the untrusted
// identifier hint from the upload layer. Only ErrInvalidImage is returned
// as an error; an expired deadline yields a report with partial results.
func (p *Pipeline) Analyze(ctx context.Context, raw []byte, filename string) (*Report, error) {
	ctx, cancel := context.WithTimeout(ctx, p.deadline)
	defer cancel()

	g, err := imaging.Decode(raw)
	if err != nil {
		return nil, err
	}

	regions := p.detector.Detect(g)
	matches := p.matchFaces(g, regions)

	// OSINT keys off the best match label when there is one, otherwise
	// the probe filename. Both are best-effort hints.
	hint := filename
	if len(matches) > 0 {
		hint = matches[0].Label
	}
	ids := osint.Derive(hint, p.domains)

	probe := ai.ProbeContext{Filename: filename, FaceCount: len(regions)}
	for _, m := range matches {
		probe.Matches = append(probe.Matches, ai.MatchSummary{Label: m.Label, Confidence: m.Confidence})
	}

	// OSINT sources and the AI call are independent; fan out and join
	// under the outer deadline. Each callee honors ctx, so a deadline
	// drops the AI assessment first (it degrades to absent) while
	// completed OSINT findings are kept.
	var (
		wg       sync.WaitGroup
		findings []osint.Finding
		aiResult ai.Result
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		findings = p.aggregator.Collect(ctx, ids)
	}()
	go func() {
		defer wg.Done()
		aiResult = p.augmenter.Augment(ctx, raw, probe)
	}()
	wg.Wait()

	assessment := p.fuse(matches, findings, aiResult)

	return &Report{
		FacesDetected: len(regions),
		Regions:       regions,
		Matches:       matches,
		Findings:      findings,
		AI:            aiResult,
		Threat:        assessment,
	}, nil
}

// matchFaces matches every detected face independently against the
// gallery and merges the results, highest confidence first.
func (p *Pipeline) matchFaces(g *image.Gray, regions []detect.Region) []match.Result {
	templates := p.store.Templates()

	var all []match.Result
	for _, region := range regions {
		descriptor := match.Extract(g, region.Rect())
		all = append(all, p.matcher.Match(descriptor, templates)...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Confidence > all[j].Confidence
	})
	return all
}

// fuse builds the threat engine inputs and runs the fusion rule.
func (p *Pipeline) fuse(matches []match.Result, findings []osint.Finding, aiResult ai.Result) threat.Assessment {
	in := threat.Inputs{
		OSINTSources: osint.SuccessfulSources(findings),
	}
	if len(matches) > 0 {
		in.Match = &threat.Match{Label: matches[0].Label, Confidence: matches[0].Confidence}
	}
	if aiResult.Assessment != nil {
		if level, ok := threat.ParseLevel(aiResult.Assessment.ThreatLevel); ok {
			in.AIPresent = true
			in.AILevel = level
		}
	}
	return p.engine.Assess(in)
}
