package middleware

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sangkips/tillpoint-api/internal/config"
)

// Headers the register client always needs, whatever the configured lists say.
var (
	requiredRequestHeaders = []string{"Authorization", "Content-Type", IdempotencyKeyHeader, RequestIDHeader}
	requiredExposedHeaders = []string{"Content-Disposition", RequestIDHeader, "X-Idempotency-Replayed"}
	defaultCORSMethods     = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions}
	defaultDevOrigins      = []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	defaultPreflightMaxAge = 12 * time.Hour
)

func withRequired(list, required []string) []string {
	out := slices.Clone(list)
	for _, h := range required {
		if !slices.Contains(out, h) {
			out = append(out, h)
		}
	}
	return out
}

// corsConfig turns the app's CORS section into gin-contrib settings.
func corsConfig(cfg *config.CORSConfig) cors.Config {
	out := cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     cfg.AllowedMethods,
		AllowHeaders:     withRequired(cfg.AllowedHeaders, requiredRequestHeaders),
		ExposeHeaders:    withRequired(cfg.ExposedHeaders, requiredExposedHeaders),
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}
	if len(out.AllowOrigins) == 0 {
		out.AllowOrigins = defaultDevOrigins
	}
	if len(out.AllowMethods) == 0 {
		out.AllowMethods = defaultCORSMethods
	}
	if out.MaxAge <= 0 {
		out.MaxAge = defaultPreflightMaxAge
	}
	return out
}

// CORSMiddleware lets the register front end call the API from its own origin.
func CORSMiddleware(cfg *config.CORSConfig) gin.HandlerFunc {
	return cors.New(corsConfig(cfg))
}
