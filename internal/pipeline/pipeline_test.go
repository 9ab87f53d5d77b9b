package pipeline

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/facetrace/facetrace/internal/ai"
	"github.com/facetrace/facetrace/internal/detect"
	"github.com/facetrace/facetrace/internal/gallery"
	"github.com/facetrace/facetrace/internal/match"
	"github.com/facetrace/facetrace/internal/osint"
	"github.com/facetrace/facetrace/internal/threat"
)

type stubSource struct {
	name string
	data map[string]any
	err  error
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Lookup(_ context.Context, _ osint.Identifiers) (map[string]any, error) {
	return s.data, s.err
}

type stubProvider struct {
	response string
	err      error
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) AnalyzeProbe(_ context.Context, _ []byte, _ ai.ProbeContext) (string, error) {
	return p.response, p.err
}

// faceJPEG encodes a light frame with a dark eye band, the pattern the
// detector accepts as a frontal face.
func faceJPEG(t *testing.T) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 128, 128))
	for y := 0; y < 128; y++ {
		v := uint8(200)
		if y >= 36 && y < 51 {
			v = 60
		}
		for x := 0; x < 128; x++ {
			img.Pix[y*img.Stride+x] = v
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}); err != nil {
		t.Fatalf("failed to encode face image: %v", err)
	}
	return buf.Bytes()
}

func flatJPEG(t *testing.T) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 128, 128))
	for i := range img.Pix {
		img.Pix[i] = 128
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}); err != nil {
		t.Fatalf("failed to encode flat image: %v", err)
	}
	return buf.Bytes()
}

func testThresholds() threat.Thresholds {
	return threat.Thresholds{
		MatchFloor:    40,
		StrongMatch:   85,
		ModerateMatch: 50,
		StrongOSINT:   2,
		OSINTWeight:   20,
	}
}

// newTestPipeline wires a pipeline with the given gallery directory,
// sources and AI provider. A nil provider disables augmentation.
func newTestPipeline(t *testing.T, galleryDir string, provider ai.Provider, sources ...osint.Source) *Pipeline {
	t.Helper()
	detector := detect.New(detect.DefaultParams())
	store, err := gallery.Load(galleryDir, detector)
	if err != nil {
		t.Fatalf("loading gallery: %v", err)
	}
	return New(
		detector,
		store,
		match.NewMatcher(match.DefaultFloor),
		osint.NewAggregator(time.Second, sources...),
		ai.NewAugmenter(provider, time.Second, ai.NewCache(4)),
		threat.NewEngine(testThresholds()),
		[]string{"gmail.com"},
		5*time.Second,
	)
}

func TestAnalyze_InvalidImage(t *testing.T) {
	pipe := newTestPipeline(t, t.TempDir(), nil)

	_, err := pipe.Analyze(context.Background(), []byte("not an image"), "x.jpg")
	if !errors.Is(err, ErrInvalidImage) {
		t.Fatalf("expected ErrInvalidImage, got %v", err)
	}
}

func TestAnalyze_KnownFaceWithStrongSignals(t *testing.T) {
	probe := faceJPEG(t)

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "suspect.jpg"), probe, 0o644); err != nil {
		t.Fatal(err)
	}

	pipe := newTestPipeline(t, dir, nil,
		&stubSource{name: "gravatar", data: map[string]any{"email": "suspect@gmail.com"}},
		&stubSource{name: "github", data: map[string]any{"username": "suspect"}},
	)

	report, err := pipe.Analyze(context.Background(), probe, "upload.jpg")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if report.FacesDetected == 0 {
		t.Fatal("expected at least one detected face")
	}
	if len(report.Matches) == 0 {
		t.Fatal("expected a gallery match")
	}
	if report.Matches[0].Label != "suspect" || report.Matches[0].Confidence != 100 {
		t.Errorf("best match = %+v, want suspect at 100", report.Matches[0])
	}
	if len(report.Findings) != 2 {
		t.Fatalf("expected 2 findings, got %d", len(report.Findings))
	}
	for _, f := range report.Findings {
		if !f.Success {
			t.Errorf("source %s should have succeeded: %+v", f.Source, f)
		}
	}
	if report.AI.Enabled {
		t.Error("AI should be disabled without a provider")
	}
	if report.Threat.Level != threat.Critical {
		t.Errorf("level = %v, want CRITICAL", report.Threat.Level)
	}
	if report.Threat.Confidence != 100 {
		t.Errorf("confidence = %d, want 100", report.Threat.Confidence)
	}
}

func TestAnalyze_NoFaceNeverCritical(t *testing.T) {
	pipe := newTestPipeline(t, t.TempDir(), nil,
		&stubSource{name: "gravatar", data: map[string]any{}},
		&stubSource{name: "github", data: map[string]any{}},
	)

	report, err := pipe.Analyze(context.Background(), flatJPEG(t), "nobody.jpg")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if report.FacesDetected != 0 {
		t.Errorf("expected no faces, got %d", report.FacesDetected)
	}
	if len(report.Matches) != 0 {
		t.Errorf("expected no matches, got %+v", report.Matches)
	}
	if report.Threat.Level != threat.High {
		t.Errorf("two sources without a match should fuse to HIGH, got %v", report.Threat.Level)
	}
	if report.Threat.Level == threat.Critical {
		t.Error("CRITICAL must require a strong match")
	}
}

func TestAnalyze_SourceFailuresAreData(t *testing.T) {
	pipe := newTestPipeline(t, t.TempDir(), nil,
		&stubSource{name: "gravatar", err: errors.New("gravatar down")},
		&stubSource{name: "github", err: errors.New("github down")},
	)

	report, err := pipe.Analyze(context.Background(), flatJPEG(t), "nobody.jpg")
	if err != nil {
		t.Fatalf("source failures must not fail the request: %v", err)
	}

	if len(report.Findings) != 2 {
		t.Fatalf("expected 2 findings, got %d", len(report.Findings))
	}
	for _, f := range report.Findings {
		if f.Success {
			t.Errorf("source %s should have failed: %+v", f.Source, f)
		}
		if f.Reason == "" {
			t.Errorf("failed finding must carry a reason: %+v", f)
		}
	}
	if report.Threat.Level != threat.Low {
		t.Errorf("no signals should fuse to LOW, got %v", report.Threat.Level)
	}
	if report.Threat.Confidence != 0 {
		t.Errorf("confidence = %d, want 0", report.Threat.Confidence)
	}
}

func TestAnalyze_AIEscalatesOneLevel(t *testing.T) {
	provider := &stubProvider{
		response: `{"threat_assessment": {"threat_level": "CRITICAL", "confidence_score": 95}}`,
	}
	pipe := newTestPipeline(t, t.TempDir(), provider,
		&stubSource{name: "github", data: map[string]any{"username": "nobody"}},
	)

	report, err := pipe.Analyze(context.Background(), flatJPEG(t), "nobody.jpg")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if !report.AI.Enabled || report.AI.Assessment == nil {
		t.Fatalf("expected an AI assessment, got %+v", report.AI)
	}
	// Baseline is MEDIUM (one source); the model's CRITICAL verdict can
	// raise it a single step, no further.
	if report.Threat.Level != threat.High {
		t.Errorf("level = %v, want HIGH", report.Threat.Level)
	}
}

func TestAnalyze_ProviderFailureDegradesQuietly(t *testing.T) {
	provider := &stubProvider{err: errors.New("quota exhausted")}
	pipe := newTestPipeline(t, t.TempDir(), provider,
		&stubSource{name: "github", data: map[string]any{"username": "nobody"}},
	)

	report, err := pipe.Analyze(context.Background(), flatJPEG(t), "nobody.jpg")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if !report.AI.Enabled {
		t.Error("a configured provider reports Enabled=true even on failure")
	}
	if report.AI.Assessment != nil {
		t.Error("a failed call must not produce an assessment")
	}
	if report.Threat.Level != threat.Medium {
		t.Errorf("fusion should fall back to traditional signals, got %v", report.Threat.Level)
	}
}

func TestPipeline_Accessors(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "suspect.jpg"), faceJPEG(t), 0o644); err != nil {
		t.Fatal(err)
	}

	pipe := newTestPipeline(t, dir, &stubProvider{response: "{}"})
	if pipe.GalleryCount() != 1 {
		t.Errorf("gallery count = %d, want 1", pipe.GalleryCount())
	}
	if !pipe.AIEnabled() {
		t.Error("AIEnabled should be true with a provider")
	}

	disabled := newTestPipeline(t, dir, nil)
	if disabled.AIEnabled() {
		t.Error("AIEnabled should be false without a provider")
	}
}
