package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/facetrace/facetrace/internal/pipeline"
	"github.com/google/uuid"
)

// WebcamHandler handles base64 webcam snapshots.
type WebcamHandler struct {
	pipe *pipeline.Pipeline
}

// NewWebcamHandler creates a webcam handler.
func NewWebcamHandler(pipe *pipeline.Pipeline) *WebcamHandler {
	return &WebcamHandler{pipe: pipe}
}

type webcamRequest struct {
	Image string `json:"image"` // data URL or bare base64
}

// decodeDataURL strips an optional "data:image/...;base64," prefix and
// decodes the payload.
func decodeDataURL(s string) ([]byte, error) {
	if idx := strings.Index(s, ","); idx >= 0 && strings.HasPrefix(s, "data:") {
		s = s[idx+1:]
	}
	return base64.StdEncoding.DecodeString(s)
}

// Capture accepts a JSON body with a base64 image and runs the same
// analysis as an upload.
func (h *WebcamHandler) Capture(w http.ResponseWriter, r *http.Request) {
	var req webcamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Image == "" {
		respondError(w, http.StatusBadRequest, "no image data provided")
		return
	}

	raw, err := decodeDataURL(req.Image)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid base64 image data")
		return
	}

	uploadID := uuid.New().String()
	filename := "webcam_" + uploadID[:8] + ".jpg"

	report, err := h.pipe.Analyze(r.Context(), raw, filename)
	if err != nil {
		if errors.Is(err, pipeline.ErrInvalidImage) {
			respondError(w, http.StatusBadRequest, "invalid image")
			return
		}
		log.Printf("webcam analyze failed: %v", err)
		respondError(w, http.StatusInternalServerError, "analysis failed")
		return
	}

	respondJSON(w, http.StatusOK, analysisResponse(report, filename, uploadID))
}
