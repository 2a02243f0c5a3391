package extract

import "strings"

// Particles that commonly trail a date phrase ("내일 7시에 회의").
// Longest first so 에는 is not half-stripped as 에.
var trailingParticles = []string{"에는", "에서", "까지", "부터", "쯤", "에"}

// CleanTitle collapses whitespace and trims the transcript.
func CleanTitle(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// StripSpan removes the matched date span (byte offsets) from text,
// together with an immediately trailing particle, and collapses the
// remaining whitespace. A title must never be blank: when stripping
// leaves nothing, the full transcript is returned instead.
func StripSpan(text string, start, end int) string {
	rest := text[end:]
	for _, p := range trailingParticles {
		if strings.HasPrefix(rest, p) {
			rest = rest[len(p):]
			break
		}
	}
	title := CleanTitle(text[:start] + " " + rest)
	if title == "" {
		return CleanTitle(text)
	}
	return title
}
