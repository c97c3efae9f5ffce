package server

import (
	"fmt"
	"net/http"

	"profilelens/internal/common"
	"profilelens/internal/errors"
	"profilelens/internal/formatters"
	"profilelens/internal/observability"
	"profilelens/internal/types"

	"go.opentelemetry.io/otel/attribute"
)

const (
	tracerName             = "profilelens.api"
	reportFilenamePrefix   = "linkedin_profile_analysis_"
	reportTimestampLayout  = "20060102_150405"
	missingAPIKeyErrorText = "API key not configured"
)

// createAnalyzeHandler runs the profile pipeline for a ProfileInput body
func (s *Server) createAnalyzeHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeErrorResponse(w, "Method not allowed", "use POST", http.StatusMethodNotAllowed)
			return
		}

		ctx, span := om.Tracer(tracerName).Start(r.Context(), "api.analyze")
		defer span.End()

		// Absent fields decode as empty strings
		var input types.ProfileInput
		if err := parseJSONRequest(r, &input); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.Int("request.text_length", len(input.CombinedText())),
			attribute.String("request.id", requestIDFrom(ctx)),
			attribute.String("operation", "analyze"),
		)

		result, err := s.Analyzer.AnalyzeProfile(ctx, input)
		if err != nil {
			span.RecordError(err)
			if errors.HasCode(err, errors.ErrCodeMissingAPIKey) {
				span.SetAttributes(attribute.String("error.type", "configuration"))
				s.Logger.LogError(err, "Profile analysis refused",
					"request_id", requestIDFrom(ctx))
				writeErrorResponse(w, missingAPIKeyErrorText, "", http.StatusInternalServerError)
				return
			}
			s.Logger.LogError(err, "Profile analysis failed",
				"request_id", requestIDFrom(ctx))
			writeErrorResponse(w, "Failed to analyze profile", err.Error(), http.StatusInternalServerError)
			return
		}

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("profile.score", result.Score),
			attribute.Int("profile.keywords", result.Keywords.Len()),
		)

		writeJSONResponse(w, http.StatusOK, result)
	}
}

// createReportHandler renders an AnalysisResult body as a downloadable report
func (s *Server) createReportHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeErrorResponse(w, "Method not allowed", "use POST", http.StatusMethodNotAllowed)
			return
		}

		ctx, span := om.Tracer(tracerName).Start(r.Context(), "api.report")
		defer span.End()

		format := r.URL.Query().Get("format")
		if format == "" {
			format = s.ReportFormat
		}
		if err := common.ValidateOutputFormat(format, s.SupportedFormats); err != nil {
			span.RecordError(err)
			writeErrorResponse(w, "Unsupported format", err.Error(), http.StatusBadRequest)
			return
		}

		var result types.AnalysisResult
		if err := parseJSONRequest(r, &result); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}
		if err := common.ValidateAnalysisResult(result); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid analysis result", err.Error(), http.StatusBadRequest)
			return
		}

		generatedAt := s.now()
		rendered, err := s.Formatters.Format(types.AnalysisReport{
			GeneratedAt: generatedAt,
			Analysis:    result,
		}, format)
		if err != nil {
			span.RecordError(err)
			writeErrorResponse(w, "Unsupported format", err.Error(), http.StatusBadRequest)
			return
		}

		filename := reportFilename(generatedAt.Format(reportTimestampLayout), format)
		span.SetAttributes(
			attribute.String("report.format", format),
			attribute.String("report.filename", filename),
			attribute.String("request.id", requestIDFrom(ctx)),
		)

		w.Header().Set("Content-Type", formatters.ContentType(format))
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(rendered)); err != nil {
			s.Logger.LogError(err, "Failed to write report",
				"request_id", requestIDFrom(ctx))
		}
	}
}

func reportFilename(stamp, format string) string {
	return reportFilenamePrefix + stamp + "." + formatters.FileExtension(format)
}
