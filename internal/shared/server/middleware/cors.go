package middleware

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS sets credentialed CORS headers for origins on the allow-list, or for
// any origin when allowAll is set. Entries may use a single "*" wildcard,
// e.g. https://*.vercel.app. Requests from other origins are served without
// CORS headers and are never rejected here.
func CORS(allowedOrigins []string, allowAll bool) gin.HandlerFunc {
	match := originMatcher(allowedOrigins, allowAll)
	withHeaders := cors.New(cors.Config{
		AllowOriginFunc:  match,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Accept", "Authorization", "Content-Type", "Content-Length", "X-Requested-With", requestIDHeader},
		ExposeHeaders:    []string{requestIDHeader},
		AllowCredentials: true,
		MaxAge:           10 * time.Minute,
	})

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" || !match(origin) {
			c.Next()
			return
		}
		withHeaders(c)
	}
}

// originMatcher matches exact origins and single-wildcard patterns.
func originMatcher(allowedOrigins []string, allowAll bool) func(string) bool {
	if allowAll {
		return func(string) bool { return true }
	}

	exact := make(map[string]struct{})
	type pattern struct{ prefix, suffix string }
	var patterns []pattern
	for _, o := range allowedOrigins {
		trimmed := strings.TrimSpace(o)
		if trimmed == "" {
			continue
		}
		if prefix, suffix, ok := strings.Cut(trimmed, "*"); ok {
			patterns = append(patterns, pattern{prefix: prefix, suffix: suffix})
			continue
		}
		exact[trimmed] = struct{}{}
	}

	return func(origin string) bool {
		if _, ok := exact[origin]; ok {
			return true
		}
		for _, p := range patterns {
			if len(origin) > len(p.prefix)+len(p.suffix) &&
				strings.HasPrefix(origin, p.prefix) && strings.HasSuffix(origin, p.suffix) {
				return true
			}
		}
		return false
	}
}
