// Package gallery loads the fixed set of known face templates from a
// directory at process start. Records are immutable during request
// processing; mutation happens only through the gallery CLI commands.
package gallery

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/facetrace/facetrace/internal/detect"
	"github.com/facetrace/facetrace/internal/imaging"
	"github.com/facetrace/facetrace/internal/match"
)

// Record is one gallery entry: a stable label (derived from the source
// filename) plus a precomputed face descriptor.
type Record struct {
	Label      string
	Path       string
	Descriptor []float64
}

// Store holds the loaded gallery. Safe for concurrent reads.
type Store struct {
	records   []Record
	templates []match.Template
}

// AllowedFile reports whether a filename has a supported image extension.
func AllowedFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".jpg", ".jpeg", ".gif":
		return true
	}
	return false
}

// Label derives the gallery label from a source filename ("jane.jpg" -> "jane").
func Label(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Load reads every supported image in dir, extracts the largest detected
// face and precomputes its descriptor. Undecodable files are skipped;
// a missing directory yields an empty gallery, not an error.
func Load(dir string, detector *detect.Detector) (*Store, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return &Store{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading gallery directory: %w", err)
	}

	store := &Store{}
	for _, entry := range entries {
		if entry.IsDir() || !AllowedFile(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		desc, err := DescriptorFromFile(path, detector)
		if err != nil {
			// A corrupt or faceless gallery file is skipped, not fatal.
			continue
		}
		store.add(Record{Label: Label(entry.Name()), Path: path, Descriptor: desc})
	}
	return store, nil
}

// DescriptorFromFile decodes an image file and extracts the descriptor of
// its largest detected face.
func DescriptorFromFile(path string, detector *detect.Detector) ([]float64, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	g, err := imaging.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	regions := detector.Detect(g)
	var face image.Rectangle
	if len(regions) > 0 {
		face = regions[0].Rect()
	} else {
		// Gallery images are usually tight crops already; fall back to
		// the whole frame when the detector finds nothing.
		face = g.Bounds()
	}
	return match.Extract(g, face), nil
}

func (s *Store) add(r Record) {
	s.records = append(s.records, r)
	s.templates = append(s.templates, match.Template{Label: r.Label, Descriptor: r.Descriptor})
}

// Records returns the loaded gallery entries in insertion order.
func (s *Store) Records() []Record {
	return s.records
}

// Templates returns the gallery as matcher templates in insertion order.
func (s *Store) Templates() []match.Template {
	return s.templates
}

// Count returns the number of gallery entries.
func (s *Store) Count() int {
	return len(s.records)
}
