package server

import (
	"net/http"

	"go.opentelemetry.io/otel/attribute"

	"resumeimport/internal/extraction"
	"resumeimport/internal/types"
)

// parseHandler runs the strategy chain over the posted text.
func (s *Server) parseHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.om.Tracer("resumeimport.api").Start(r.Context(), "api.parse")
	defer span.End()

	var req types.ParseRequest
	if err := s.decodeRequest(r, &req); err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String("error.type", "validation"))
		s.writeAppError(w, r, err)
		return
	}

	span.SetAttributes(
		attribute.Int("request.text_length", len(req.Text)),
		attribute.Int("request.job_length", len(req.JobDescription)),
		attribute.Bool("request.disable_ai", req.DisableAI),
	)

	result := s.service.Parse(ctx, extraction.Request{
		RequestID:      requestIDFrom(ctx),
		Text:           req.Text,
		JobDescription: req.JobDescription,
		DisableAI:      req.DisableAI,
	})

	span.SetAttributes(
		attribute.Bool("success", true),
		attribute.String("strategy", result.Strategy),
		attribute.Int("quality.score", result.Analysis.Score),
	)
	writeJSON(w, http.StatusOK, result)
}

// scoreHandler returns only the quality analysis of the rule-based profile.
func (s *Server) scoreHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.om.Tracer("resumeimport.api").Start(r.Context(), "api.score")
	defer span.End()

	var req types.ScoreRequest
	if err := s.decodeRequest(r, &req); err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String("error.type", "validation"))
		s.writeAppError(w, r, err)
		return
	}

	span.SetAttributes(
		attribute.Int("request.text_length", len(req.Text)),
		attribute.Int("request.job_length", len(req.JobDescription)),
	)

	analysis := s.service.Score(ctx, req.Text, req.JobDescription)

	span.SetAttributes(attribute.Int("quality.score", analysis.Score))
	writeJSON(w, http.StatusOK, analysis)
}
