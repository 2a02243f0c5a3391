package validation

import (
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// Validate is a shared validator instance
var Validate *validator.Validate

func init() {
	Validate = validator.New()
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	text = strings.TrimSpace(text)

	var sanitized strings.Builder
	sanitized.Grow(len(text))
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return strings.TrimSpace(sanitized.String())
}
