package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/dokbae/voice-todo/internal/models"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// VoiceAnalyzer runs the transcription and extraction pipeline. It is an
// interface so handler tests can substitute a fake pipeline.
type VoiceAnalyzer interface {
	Analyze(ctx context.Context, upload io.Reader, filename string) *models.ExtractionResult
}

// VoiceHandler handles voice analysis requests
type VoiceHandler struct {
	analyzer VoiceAnalyzer
	logger   *zap.Logger
}

// NewVoiceHandler creates a new voice handler
func NewVoiceHandler(analyzer VoiceAnalyzer, logger *zap.Logger) *VoiceHandler {
	return &VoiceHandler{analyzer: analyzer, logger: logger}
}

// RegisterRoutes registers the voice analysis route
func (h *VoiceHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/analyze-voice", h.AnalyzeVoice).Methods("POST")
}

// AnalyzeVoice accepts one audio payload as multipart form data and
// returns the extraction result. Pipeline failures degrade to sentinel
// values inside the analyzer and still produce a 200; only a missing or
// oversized upload is a client error.
func (h *VoiceHandler) AnalyzeVoice(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			respondJSONError(w, http.StatusRequestEntityTooLarge, "Request Entity Too Large", "Audio upload exceeds the maximum size")
			return
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Multipart field 'file' with the audio recording is required")
		return
	}
	defer func() {
		if err := file.Close(); err != nil {
			h.logger.Warn("failed_to_close_upload", zap.Error(err))
		}
	}()

	result := h.analyzer.Analyze(r.Context(), file, header.Filename)

	respondJSON(w, http.StatusOK, result)
}
