package models

import "time"

// ExtractionResult is the outcome of analyzing one voice recording.
// It is returned to the client as-is and never persisted; the client
// confirms or edits it before creating a Task.
type ExtractionResult struct {
	// OriginalText is the verbatim transcript, or a sentinel string when
	// transcription was skipped (silence) or failed.
	OriginalText string `json:"original_text"`
	// ParsedDate is the resolved due date, or null when no date/time
	// expression was found in the transcript.
	ParsedDate *time.Time `json:"parsed_date"`
	// SuggestedTitle is the transcript with date/time phrases stripped.
	// It is never empty when OriginalText is non-empty.
	SuggestedTitle string `json:"suggested_title"`
}
