package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// CORSConfig holds CORS configuration options.
type CORSConfig struct {
	// AllowedOrigins lists origins allowed to call the API from a browser.
	// Empty means no cross-origin access.
	AllowedOrigins []string
	// Debug enables rs/cors request logging.
	Debug bool
}

// CORS returns a middleware that handles Cross-Origin Resource Sharing.
// Tokens travel in the Authorization header, so credentials are never allowed.
func CORS(cfg CORSConfig) func(http.Handler) http.Handler {
	opts := cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			RequestIDHeader,
			TraceIDHeader,
		},
		ExposedHeaders: []string{
			RequestIDHeader,
			"Retry-After",
			"X-RateLimit-Remaining",
			"X-RateLimit-Reset",
		},
		AllowCredentials: false,
		MaxAge:           86400,
		Debug:            cfg.Debug,
	}
	// rs/cors treats an empty origin list as "allow all".
	if len(cfg.AllowedOrigins) == 0 {
		opts.AllowOriginFunc = func(string) bool { return false }
	}
	return cors.New(opts).Handler
}
