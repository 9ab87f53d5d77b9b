package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/facetrace/facetrace/internal/pipeline"
	"github.com/google/uuid"
)

// AnalyzeHandler handles probe uploads.
type AnalyzeHandler struct {
	pipe *pipeline.Pipeline
}

// NewAnalyzeHandler creates an analyze handler.
func NewAnalyzeHandler(pipe *pipeline.Pipeline) *AnalyzeHandler {
	return &AnalyzeHandler{pipe: pipe}
}

// allowedUpload reports whether the uploaded filename has a supported
// image extension.
func allowedUpload(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp":
		return true
	}
	return false
}

// Analyze accepts a multipart probe upload under the "file" field and
// returns the complete analysis payload.
func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close()

	if header.Filename == "" || !allowedUpload(header.Filename) {
		respondError(w, http.StatusBadRequest, "invalid file type")
		return
	}

	raw, err := io.ReadAll(io.LimitReader(file, MaxUploadSize))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to read upload")
		return
	}

	filename := filepath.Base(header.Filename)
	report, err := h.pipe.Analyze(r.Context(), raw, filename)
	if err != nil {
		if errors.Is(err, pipeline.ErrInvalidImage) {
			respondError(w, http.StatusBadRequest, "invalid image")
			return
		}
		log.Printf("analyze failed for %s: %v", sanitizeForLog(filename), err)
		respondError(w, http.StatusInternalServerError, "analysis failed")
		return
	}

	respondJSON(w, http.StatusOK, analysisResponse(report, filename, uuid.New().String()))
}

// analysisResponse flattens a pipeline report into the API payload.
// Matches are truncated to the top five.
func analysisResponse(report *pipeline.Report, filename, uploadID string) map[string]any {
	matches := report.Matches
	if len(matches) > 5 {
		matches = matches[:5]
	}

	resp := map[string]any{
		"success":          true,
		"upload_id":        uploadID,
		"uploaded_file":    filename,
		"faces_detected":   report.FacesDetected,
		"matches":          matches,
		"osint":            report.Findings,
		"threat_level":     report.Threat.Level,
		"confidence_score": report.Threat.Confidence,
		"factors":          report.Threat.Factors,
		"gemini_enabled":   report.AI.Enabled,
	}
	if report.AI.Assessment != nil {
		resp["ai_analysis"] = report.AI.Assessment
	}
	return resp
}
