// Package match extracts fixed-size face descriptors and scores them
// against a gallery of known templates using normalized cross-correlation.
package match

import (
	"image"
	"math"
	"sort"

	"github.com/facetrace/facetrace/internal/imaging"
)

// DescriptorSize is the side length of the normalized face template.
const DescriptorSize = 100

// DefaultFloor is the minimum confidence for a match to be reportable.
// Results below the floor are dropped, not reported as weak matches.
const DefaultFloor = 40

// Template is a gallery entry the matcher compares against.
type Template struct {
	Label      string
	Descriptor []float64
}

// Result is a reportable match against one gallery template.
type Result struct {
	Label      string `json:"label"`
	Confidence int    `json:"confidence"`
}

// Extract crops the face region out of g and resamples it into a flat
// DescriptorSize×DescriptorSize grayscale descriptor.
func Extract(g *image.Gray, region image.Rectangle) []float64 {
	face := imaging.Resize(imaging.Crop(g, region), DescriptorSize, DescriptorSize)

	desc := make([]float64, DescriptorSize*DescriptorSize)
	for y := 0; y < DescriptorSize; y++ {
		for x := 0; x < DescriptorSize; x++ {
			desc[y*DescriptorSize+x] = float64(face.Pix[y*face.Stride+x])
		}
	}
	return desc
}

// Correlation computes the normalized cross-correlation coefficient of two
// descriptors after mean subtraction. The result is in [-1, 1]; degenerate
// inputs (mismatched lengths, zero variance) yield 0.
func Correlation(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var meanA, meanB float64
	for i := range a {
		meanA += a[i]
		meanB += b[i]
	}
	meanA /= float64(len(a))
	meanB /= float64(len(b))

	var dot, normA, normB float64
	for i := range a {
		da := a[i] - meanA
		db := b[i] - meanB
		dot += da * db
		normA += da * da
		normB += db * db
	}

	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}
	return dot / denom
}

// Confidence maps a correlation coefficient in [-1, 1] to a percentage
// in [0, 100] via a monotonic calibration.
func Confidence(coeff float64) int {
	c := int(math.Round((coeff + 1) / 2 * 100))
	if c < 0 {
		return 0
	}
	if c > 100 {
		return 100
	}
	return c
}

// Matcher scores descriptors against gallery templates.
type Matcher struct {
	floor int
}

// NewMatcher creates a matcher with the given reportability floor.
func NewMatcher(floor int) *Matcher {
	return &Matcher{floor: floor}
}

// Match scores the descriptor against every template and returns the
// reportable results ordered by confidence, highest first. Ties keep
// gallery insertion order.
func (m *Matcher) Match(descriptor []float64, templates []Template) []Result {
	var results []Result
	for _, t := range templates {
		conf := Confidence(Correlation(descriptor, t.Descriptor))
		if conf < m.floor {
			continue
		}
		results = append(results, Result{Label: t.Label, Confidence: conf})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Confidence > results[j].Confidence
	})
	return results
}
