package logger

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSanitizeString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     string
		maxLength int
		want      string
	}{
		{name: "empty", input: "", maxLength: 10, want: ""},
		{name: "plain passes through", input: "hello world", maxLength: 100, want: "hello world"},
		{name: "korean passes through", input: "내일 아침 7시에 회의", maxLength: 100, want: "내일 아침 7시에 회의"},
		{name: "control characters stripped", input: "abc\x00\x1bdef", maxLength: 100, want: "abcdef"},
		{name: "newlines kept", input: "line1\nline2", maxLength: 100, want: "line1\nline2"},
		{name: "truncated with ellipsis", input: strings.Repeat("a", 20), maxLength: 10, want: strings.Repeat("a", 10) + "..."},
		{name: "invalid utf8 dropped", input: "ab\xffcd", maxLength: 100, want: "abcd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := SanitizeString(tt.input, tt.maxLength); got != tt.want {
				t.Errorf("SanitizeString(%q, %d) = %q, want %q", tt.input, tt.maxLength, got, tt.want)
			}
		})
	}
}

func TestSanitizeString_TruncatesOnRuneBoundary(t *testing.T) {
	t.Parallel()

	// Each Hangul syllable is 3 bytes, so a byte limit of 10 falls inside
	// the fourth syllable and must back up to the boundary.
	input := "가나다라마바사"
	got := SanitizeString(input, 10)

	trimmed := strings.TrimSuffix(got, "...")
	if !utf8.ValidString(trimmed) {
		t.Errorf("SanitizeString produced invalid UTF-8: %q", got)
	}
	if trimmed != "가나다" {
		t.Errorf("SanitizeString(%q, 10) = %q, want 가나다 plus ellipsis", input, got)
	}
}

func TestSanitizeError(t *testing.T) {
	t.Parallel()

	if got := SanitizeError(nil); got != "" {
		t.Errorf("SanitizeError(nil) = %q, want empty", got)
	}
	if got := SanitizeError(errors.New("boom\x00")); got != "boom" {
		t.Errorf("SanitizeError = %q, want boom", got)
	}
}

func TestSanitizeTranscript_BoundsPreview(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("회의 ", 200)
	got := SanitizeTranscript(long)

	if len(got) > MaxTranscriptPreviewLength+len("...") {
		t.Errorf("preview length = %d, want at most %d", len(got), MaxTranscriptPreviewLength+3)
	}
	if !utf8.ValidString(got) {
		t.Errorf("preview is invalid UTF-8: %q", got)
	}
}
