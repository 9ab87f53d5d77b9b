package handlers

import (
	"net/http"

	"github.com/facetrace/facetrace/internal/pipeline"
)

// StatusHandler reports service state and capabilities.
type StatusHandler struct {
	pipe *pipeline.Pipeline
}

// NewStatusHandler creates a status handler.
func NewStatusHandler(pipe *pipeline.Pipeline) *StatusHandler {
	return &StatusHandler{pipe: pipe}
}

// Get returns gallery size and the feature map, including whether AI
// augmentation is configured.
func (h *StatusHandler) Get(w http.ResponseWriter, r *http.Request) {
	aiEnabled := h.pipe.AIEnabled()

	capabilities := []string{}
	if aiEnabled {
		capabilities = []string{
			"Advanced face analysis",
			"Enhanced OSINT correlation",
			"Intelligent threat assessment",
		}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"status":      "active",
		"known_faces": h.pipe.GalleryCount(),
		"features": map[string]bool{
			"face_detection":    true,
			"face_matching":     true,
			"osint_lookup":      true,
			"threat_assessment": true,
			"ai_integration":    aiEnabled,
		},
		"ai": map[string]any{
			"enabled":      aiEnabled,
			"capabilities": capabilities,
		},
	})
}
