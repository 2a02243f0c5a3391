package middleware

import (
	"net/http"
)

const (
	// DefaultMaxRequestSize is the maximum JSON request body size (1MB)
	DefaultMaxRequestSize int64 = 1 << 20
	// MaxAudioUploadSize is the maximum voice recording size (25MB),
	// matching the transcription service's own upload ceiling
	MaxAudioUploadSize int64 = 25 << 20
)

// MaxRequestSize limits the size of request bodies
func MaxRequestSize(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxRequestSize
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				http.Error(w, "Request Entity Too Large", http.StatusRequestEntityTooLarge)
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			defer r.Body.Close()

			next.ServeHTTP(w, r)
		})
	}
}
