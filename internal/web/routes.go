package web

import (
	"github.com/facetrace/facetrace/internal/web/handlers"
	"github.com/go-chi/chi/v5"
)

func (s *Server) setupRoutes() {
	analyzeHandler := handlers.NewAnalyzeHandler(s.pipe)
	webcamHandler := handlers.NewWebcamHandler(s.pipe)
	statusHandler := handlers.NewStatusHandler(s.pipe)

	s.router.Get("/api/v1/health", handlers.HealthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/analyze", analyzeHandler.Analyze)
		r.Post("/webcam", webcamHandler.Capture)
		r.Get("/status", statusHandler.Get)
	})
}
