// Package extract turns a free-form Korean transcript into a task title
// and an optional absolute due date. The transcript mixes task content and
// date content in one sentence, so the extractor searches the whole text
// for date/time-bearing spans instead of parsing the string as a date.
package extract

import (
	"context"
	"time"
)

// Result is the outcome of extracting a task from one transcript.
type Result struct {
	// Title is the transcript with the matched date phrase removed.
	// Never empty when the input text is non-empty.
	Title string
	// DueDate is the resolved due date, nil when no date/time expression
	// was found.
	DueDate *time.Time
	// Matched is the date/time substring the due date was resolved from,
	// empty when DueDate is nil.
	Matched string
}

// Strategy resolves a transcript into a title and optional due date
// relative to the anchor instant. Implementations must be deterministic
// for a given (text, anchor) pair. The orchestrator treats any returned
// error as "no date found" and falls back to the raw transcript.
type Strategy interface {
	ExtractTask(ctx context.Context, text string, anchor time.Time) (*Result, error)
}
