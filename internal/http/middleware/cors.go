package middleware

import (
	"net/http"

	"github.com/rs/cors"

	"github.com/davidbz/ghostline/internal/config"
)

// exposedHeaders are readable by browser-hosted editors.
var exposedHeaders = []string{traceHeader, requestHeader, "X-Ghostline-Cache"} //nolint:gochecknoglobals // constant list

// CORS lets browser-hosted editors call the completion endpoints.
func CORS(cfg *config.CORSConfig) Middleware {
	if cfg == nil {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   cfg.AllowedHeaders,
		ExposedHeaders:   exposedHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	})

	return c.Handler
}
