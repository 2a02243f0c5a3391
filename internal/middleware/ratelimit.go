package middleware

import (
	"net/http"

	"github.com/dokbae/voice-todo/internal/request"
	"github.com/ulule/limiter/v3"
	stdlibmw "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	memorystore "github.com/ulule/limiter/v3/drivers/store/memory"
)

const defaultRateLimit = "10-M"

// RateLimit returns per-client-IP rate limiting middleware backed by an
// in-memory store. Applied to the voice route: every hit costs a
// transcription call, so it is the one endpoint worth throttling.
func RateLimit(rateFormat string) (func(http.Handler) http.Handler, error) {
	if rateFormat == "" {
		rateFormat = defaultRateLimit
	}
	rate, err := limiter.NewRateFromFormatted(rateFormat)
	if err != nil {
		return nil, err
	}

	instance := limiter.New(memorystore.NewStore(), rate)
	keyGetter := func(r *http.Request) string {
		return request.ClientIP(r)
	}
	mw := stdlibmw.NewMiddleware(instance, stdlibmw.WithKeyGetter(keyGetter))
	return mw.Handler, nil
}
