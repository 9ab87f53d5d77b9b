// Package detect locates face regions in a grayscale image using a
// multi-scale sliding-window classifier over a rescaled image pyramid.
// Overlapping detections are merged by non-maximum suppression.
package detect

import (
	"image"
	"math"
	"sort"

	"github.com/facetrace/facetrace/internal/imaging"
)

// Region is a detected face bounding box in original image coordinates.
type Region struct {
	X     int     `json:"x"`
	Y     int     `json:"y"`
	W     int     `json:"w"`
	H     int     `json:"h"`
	Score float64 `json:"score"`
}

// Area returns the pixel area of the region.
func (r Region) Area() int {
	return r.W * r.H
}

// Rect returns the region as an image.Rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.W, r.Y+r.H)
}

// Params controls the detector. Detection is deterministic for a fixed
// Params and input image, so tests must pin these values.
type Params struct {
	// Window is the sliding window size in pixels at each pyramid level.
	Window int
	// Step is the window stride in pixels.
	Step int
	// ScaleFactor is the downscale ratio between pyramid levels (>1).
	ScaleFactor float64
	// MinVariance rejects flat, featureless windows.
	MinVariance float64
	// EyeMargin is how much darker the eye band must be than the cheek
	// band for a window to classify as a face.
	EyeMargin float64
	// Overlap is the intersection-over-smaller-area threshold above which
	// two candidates are merged during non-maximum suppression.
	Overlap float64
}

// DefaultParams returns detector parameters tuned for frontal faces
// occupying a reasonable share of the probe image.
func DefaultParams() Params {
	return Params{
		Window:      48,
		Step:        8,
		ScaleFactor: 1.25,
		MinVariance: 150,
		EyeMargin:   12,
		Overlap:     0.4,
	}
}

// Detector runs sliding-window face detection.
type Detector struct {
	params Params
}

// New creates a detector with the given parameters.
func New(params Params) *Detector {
	return &Detector{params: params}
}

// Detect returns zero or more face regions ordered largest-area first.
// An empty result is a valid outcome, not an error.
func (d *Detector) Detect(g *image.Gray) []Region {
	var candidates []Region

	scale := 1.0
	level := g
	for level.Bounds().Dx() >= d.params.Window && level.Bounds().Dy() >= d.params.Window {
		candidates = append(candidates, d.scanLevel(level, scale)...)

		scale *= d.params.ScaleFactor
		w := int(float64(g.Bounds().Dx()) / scale)
		h := int(float64(g.Bounds().Dy()) / scale)
		if w < d.params.Window || h < d.params.Window {
			break
		}
		level = imaging.Resize(g, w, h)
	}

	merged := suppress(candidates, d.params.Overlap)

	// Largest face first; equal areas keep detection order.
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Area() > merged[j].Area()
	})
	return merged
}

// scanLevel slides the classifier window over one pyramid level and maps
// accepted windows back to original image coordinates.
func (d *Detector) scanLevel(level *image.Gray, scale float64) []Region {
	sums, squares := integrate(level)
	w := level.Bounds().Dx()
	h := level.Bounds().Dy()
	win := d.params.Window

	var out []Region
	for y := 0; y+win <= h; y += d.params.Step {
		for x := 0; x+win <= w; x += d.params.Step {
			score, ok := d.classify(sums, squares, x, y, win)
			if !ok {
				continue
			}
			out = append(out, Region{
				X:     int(float64(x) * scale),
				Y:     int(float64(y) * scale),
				W:     int(float64(win) * scale),
				H:     int(float64(win) * scale),
				Score: score,
			})
		}
	}
	return out
}

// classify applies the window tests: enough texture, and an eye band
// darker than the cheek band below it. The score is the band contrast.
func (d *Detector) classify(sums, squares *integral, x, y, win int) (float64, bool) {
	n := float64(win * win)
	total := sums.sum(x, y, win, win)
	mean := total / n
	variance := squares.sum(x, y, win, win)/n - mean*mean
	if variance < d.params.MinVariance {
		return 0, false
	}

	eyeTop := y + win*20/100
	eyeBot := y + win*45/100
	cheekTop := y + win*55/100
	cheekBot := y + win*80/100

	eyeMean := sums.sum(x, eyeTop, win, eyeBot-eyeTop) / float64(win*(eyeBot-eyeTop))
	cheekMean := sums.sum(x, cheekTop, win, cheekBot-cheekTop) / float64(win*(cheekBot-cheekTop))

	contrast := cheekMean - eyeMean
	if contrast < d.params.EyeMargin {
		return 0, false
	}
	return contrast, true
}

// suppress merges overlapping candidates, keeping the highest score in
// each cluster. Overlap is measured as intersection over the smaller area
// so a small box inside a large one is always merged.
func suppress(candidates []Region, threshold float64) []Region {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	var kept []Region
	for _, c := range candidates {
		overlapped := false
		for _, k := range kept {
			if overlapRatio(c, k) > threshold {
				overlapped = true
				break
			}
		}
		if !overlapped {
			kept = append(kept, c)
		}
	}
	return kept
}

// overlapRatio computes intersection area over the smaller region's area.
func overlapRatio(a, b Region) float64 {
	ix := a.Rect().Intersect(b.Rect())
	if ix.Empty() {
		return 0
	}
	smaller := math.Min(float64(a.Area()), float64(b.Area()))
	if smaller <= 0 {
		return 0
	}
	return float64(ix.Dx()*ix.Dy()) / smaller
}

// integral is a summed-area table for O(1) window sums.
type integral struct {
	w, h int
	tab  []float64 // (w+1)*(h+1), row-major
}

// integrate builds plain and squared summed-area tables for g.
func integrate(g *image.Gray) (*integral, *integral) {
	w := g.Bounds().Dx()
	h := g.Bounds().Dy()
	s := &integral{w: w, h: h, tab: make([]float64, (w+1)*(h+1))}
	sq := &integral{w: w, h: h, tab: make([]float64, (w+1)*(h+1))}

	stride := w + 1
	for y := 1; y <= h; y++ {
		var rowSum, rowSq float64
		for x := 1; x <= w; x++ {
			v := float64(g.Pix[(y-1)*g.Stride+(x-1)])
			rowSum += v
			rowSq += v * v
			s.tab[y*stride+x] = s.tab[(y-1)*stride+x] + rowSum
			sq.tab[y*stride+x] = sq.tab[(y-1)*stride+x] + rowSq
		}
	}
	return s, sq
}

// sum returns the pixel sum of the w×h window with top-left corner (x, y).
func (in *integral) sum(x, y, w, h int) float64 {
	stride := in.w + 1
	return in.tab[(y+h)*stride+(x+w)] -
		in.tab[y*stride+(x+w)] -
		in.tab[(y+h)*stride+x] +
		in.tab[y*stride+x]
}
