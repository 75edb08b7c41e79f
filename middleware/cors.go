package middleware

import (
	"log/slog"
	"regexp"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSMiddleware allows credentialed requests from origins matching
// originPattern.
func CORSMiddleware(originPattern string) gin.HandlerFunc {
	allowed, err := regexp.Compile(originPattern)
	if err != nil {
		slog.Error("invalid CORS origin pattern, cross-origin requests disabled", "pattern", originPattern, "error", err)
		allowed = regexp.MustCompile(`^$`)
	}

	return cors.New(cors.Config{
		AllowOriginFunc:  allowed.MatchString,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

// SecurityHeaders sets the response headers every route carries.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Next()
	}
}
