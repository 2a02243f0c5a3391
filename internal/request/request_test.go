package request

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{
			name:   "remote addr fallback",
			remote: "203.0.113.7:52341",
			want:   "203.0.113.7:52341",
		},
		{
			name:    "x-forwarded-for first hop",
			headers: map[string]string{"X-Forwarded-For": "198.51.100.4, 10.0.0.1"},
			remote:  "10.0.0.1:1234",
			want:    "198.51.100.4",
		},
		{
			name:    "x-real-ip",
			headers: map[string]string{"X-Real-IP": "198.51.100.9"},
			remote:  "10.0.0.1:1234",
			want:    "198.51.100.9",
		},
		{
			name: "forwarded-for wins over real-ip",
			headers: map[string]string{
				"X-Forwarded-For": "198.51.100.4",
				"X-Real-IP":       "198.51.100.9",
			},
			remote: "10.0.0.1:1234",
			want:   "198.51.100.4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			if got := ClientIP(req); got != tt.want {
				t.Errorf("ClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}
