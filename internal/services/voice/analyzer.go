// Package voice orchestrates the voice-to-task pipeline: spool the
// upload, transcribe it, extract a title and due date, and degrade to
// sentinel values whenever a stage fails. The pipeline trades precision
// for availability: it always produces a well-formed result.
package voice

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dokbae/voice-todo/internal/clock"
	"github.com/dokbae/voice-todo/internal/extract"
	logpkg "github.com/dokbae/voice-todo/internal/logger"
	"github.com/dokbae/voice-todo/internal/models"
	"github.com/dokbae/voice-todo/internal/services/ai"
	"go.uber.org/zap"
)

// Sentinel transcripts. Clients distinguish them from genuine speech by
// exact equality, so they must never change.
const (
	// SentinelSilence replaces the transcript when the recording is too
	// small to contain speech.
	SentinelSilence = "목소리가 들리지 않습니다."
	// SentinelFailure replaces the transcript when transcription fails.
	SentinelFailure = "인식 실패"
)

const (
	// DefaultSilenceThreshold is the minimum recording size in bytes.
	// Anything smaller skips transcription entirely.
	DefaultSilenceThreshold int64 = 100
	// DefaultCallTimeout bounds each external call. A timeout degrades
	// the same way as that call failing.
	DefaultCallTimeout = 30 * time.Second
)

// Analyzer runs the voice analysis pipeline.
type Analyzer struct {
	transcriber ai.Transcriber
	strategy    extract.Strategy
	clock       clock.Clock
	logger      *zap.Logger

	tempDir          string
	silenceThreshold int64
	callTimeout      time.Duration
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithTempDir sets the directory for transient audio artifacts.
// Empty means the OS default.
func WithTempDir(dir string) Option {
	return func(a *Analyzer) { a.tempDir = dir }
}

// WithSilenceThreshold sets the minimum recording size in bytes.
func WithSilenceThreshold(n int64) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.silenceThreshold = n
		}
	}
}

// WithCallTimeout bounds each external call.
func WithCallTimeout(d time.Duration) Option {
	return func(a *Analyzer) {
		if d > 0 {
			a.callTimeout = d
		}
	}
}

// NewAnalyzer creates the pipeline orchestrator. All collaborators are
// injected so tests can substitute fakes.
func NewAnalyzer(transcriber ai.Transcriber, strategy extract.Strategy, clk clock.Clock, logger *zap.Logger, opts ...Option) *Analyzer {
	a := &Analyzer{
		transcriber:      transcriber,
		strategy:         strategy,
		clock:            clk,
		logger:           logger,
		silenceThreshold: DefaultSilenceThreshold,
		callTimeout:      DefaultCallTimeout,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze runs the full pipeline on one uploaded recording. It is a
// total function: every failure mode degrades to a sentinel transcript
// or an absent date, never an error.
func (a *Analyzer) Analyze(ctx context.Context, upload io.Reader, filename string) *models.ExtractionResult {
	text := a.transcribe(ctx, upload, filename)

	if text == SentinelSilence || text == SentinelFailure {
		return &models.ExtractionResult{
			OriginalText:   text,
			SuggestedTitle: text,
		}
	}

	title, dueDate := a.extractTask(ctx, text)
	return &models.ExtractionResult{
		OriginalText:   text,
		ParsedDate:     dueDate,
		SuggestedTitle: title,
	}
}

// transcribe spools the upload to a transient file and submits it to the
// transcription collaborator. The file name comes from os.CreateTemp, so
// concurrent uploads never collide regardless of the uploaded filename.
// The deferred removal guarantees cleanup on every exit path.
func (a *Analyzer) transcribe(ctx context.Context, upload io.Reader, filename string) string {
	tmp, err := os.CreateTemp(a.tempDir, "voice-*"+sanitizeExt(filename))
	if err != nil {
		a.logger.Error("failed_to_create_temp_audio_file", zap.Error(err))
		return SentinelFailure
	}
	defer func() {
		if err := os.Remove(tmp.Name()); err != nil {
			a.logger.Warn("failed_to_remove_temp_audio_file",
				zap.String("path", tmp.Name()),
				zap.Error(err),
			)
		}
	}()
	defer func() {
		_ = tmp.Close()
	}()

	size, err := io.Copy(tmp, upload)
	if err != nil {
		a.logger.Warn("failed_to_spool_audio_upload", zap.Error(err))
		return SentinelFailure
	}

	a.logger.Debug("received_audio_upload",
		zap.Int64("size_bytes", size),
		zap.String("filename", logpkg.SanitizePath(filename)),
	)

	if size < a.silenceThreshold {
		a.logger.Info("audio_below_silence_threshold",
			zap.Int64("size_bytes", size),
			zap.Int64("threshold_bytes", a.silenceThreshold),
		)
		return SentinelSilence
	}

	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		a.logger.Warn("failed_to_rewind_temp_audio_file", zap.Error(err))
		return SentinelFailure
	}

	callCtx, cancel := context.WithTimeout(ctx, a.callTimeout)
	defer cancel()

	text, err := a.transcriber.Transcribe(callCtx, tmp, filename)
	if err != nil {
		a.logger.Warn("transcription_failed",
			zap.String("error", logpkg.SanitizeError(err)),
		)
		return SentinelFailure
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return SentinelSilence
	}

	a.logger.Info("transcription_completed",
		zap.Int("transcript_length", len(text)),
	)
	return text
}

// extractTask resolves the transcript into a title and optional due date
// against the current anchor. Extraction failures degrade to the raw
// transcript with no date.
func (a *Analyzer) extractTask(ctx context.Context, text string) (string, *time.Time) {
	anchor := a.clock.Now()

	callCtx, cancel := context.WithTimeout(ctx, a.callTimeout)
	defer cancel()

	result, err := a.strategy.ExtractTask(callCtx, text, anchor)
	if err != nil {
		a.logger.Warn("extraction_failed_falling_back",
			zap.String("error", logpkg.SanitizeError(err)),
		)
		return extract.CleanTitle(text), nil
	}

	title := strings.TrimSpace(result.Title)
	if title == "" {
		title = extract.CleanTitle(text)
	}

	if result.DueDate != nil {
		a.logger.Info("due_date_extracted",
			zap.Time("due_date", *result.DueDate),
			zap.String("matched", logpkg.SanitizeTranscript(result.Matched)),
		)
	}
	return title, result.DueDate
}

// sanitizeExt keeps the upload's extension as a format hint for the
// transient file, dropping anything that is not a plain suffix.
func sanitizeExt(filename string) string {
	ext := filepath.Ext(filepath.Base(filename))
	if len(ext) > 8 || strings.ContainsAny(ext, "/\\ ") {
		return ""
	}
	return ext
}
