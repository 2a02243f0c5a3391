package ai

import (
	"context"
	"io"
)

// Transcriber converts recorded speech into text. It is injected into
// the voice analyzer so tests can substitute fakes for the external
// transcription service.
type Transcriber interface {
	// Transcribe reads one audio recording and returns its transcript.
	// The filename carries the container format hint for the backend.
	Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error)
}
