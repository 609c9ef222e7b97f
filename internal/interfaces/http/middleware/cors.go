// internal/interfaces/http/middleware/cors.go
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/your-org/agency-backend/internal/config"
)

// CORS allows browser access from the configured origins. The allow
// headers are precomputed once; only the origin check runs per request.
func CORS(cfg *config.Config) gin.HandlerFunc {
	origins := cfg.Security.CORSAllowedOrigins
	methods := strings.Join(cfg.Security.CORSAllowedMethods, ", ")
	headers := strings.Join(cfg.Security.CORSAllowedHeaders, ", ")

	return func(c *gin.Context) {
		if origin := c.Request.Header.Get("Origin"); matchOrigin(origin, origins) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Methods", methods)
		c.Header("Access-Control-Allow-Headers", headers)
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// matchOrigin accepts exact entries, "*", and "*.domain" wildcards that
// cover the apex domain and its subdomains.
func matchOrigin(origin string, allowed []string) bool {
	if origin == "" {
		return false
	}
	for _, entry := range allowed {
		switch {
		case entry == "*" || entry == origin:
			return true
		case strings.HasPrefix(entry, "*."):
			apex := strings.TrimPrefix(entry, "*.")
			host := origin
			if i := strings.Index(host, "://"); i >= 0 {
				host = host[i+3:]
			}
			if host == apex || strings.HasSuffix(host, "."+apex) {
				return true
			}
		}
	}
	return false
}
