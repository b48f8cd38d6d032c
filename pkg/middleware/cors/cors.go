package cors

import (
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	allowedMethods = "GET, POST, PUT, DELETE, OPTIONS"
	allowedHeaders = "Authorization, Content-Type, X-Request-ID"
	exposedHeaders = "Content-Disposition, X-Request-ID"
	preflightAge   = "600"
)

// New returns a CORS middleware for the registrar API. An empty origin list
// allows any origin without credentials. Entries may be glob patterns such
// as "https://*.example.edu".
func New(allowedOrigins []string) gin.HandlerFunc {
	policy := newPolicy(allowedOrigins)

	return func(c *gin.Context) {
		header := c.Writer.Header()
		header.Add("Vary", "Origin")

		if origin := c.GetHeader("Origin"); origin != "" {
			if allowed, credentials := policy.allow(origin); allowed {
				header.Set("Access-Control-Allow-Origin", origin)
				if credentials {
					header.Set("Access-Control-Allow-Credentials", "true")
				}
				header.Set("Access-Control-Expose-Headers", exposedHeaders)
			}
		} else if policy.open {
			header.Set("Access-Control-Allow-Origin", "*")
		}

		if c.Request.Method != http.MethodOptions {
			c.Next()
			return
		}

		header.Set("Access-Control-Allow-Methods", allowedMethods)
		header.Set("Access-Control-Allow-Headers", allowedHeaders)
		header.Set("Access-Control-Max-Age", preflightAge)
		c.AbortWithStatus(http.StatusNoContent)
	}
}

type policy struct {
	open     bool
	exact    map[string]struct{}
	patterns []string
}

func newPolicy(origins []string) policy {
	p := policy{open: len(origins) == 0, exact: make(map[string]struct{}, len(origins))}
	for _, origin := range origins {
		origin = normalize(origin)
		switch {
		case origin == "":
		case origin == "*":
			p.open = true
		case strings.ContainsAny(origin, "*?["):
			p.patterns = append(p.patterns, origin)
		default:
			p.exact[origin] = struct{}{}
		}
	}
	return p
}

// allow reports whether origin may call the API and whether credentials may
// be shared with it.
func (p policy) allow(origin string) (bool, bool) {
	origin = normalize(origin)
	if _, ok := p.exact[origin]; ok {
		return true, true
	}
	for _, pattern := range p.patterns {
		if ok, _ := path.Match(pattern, origin); ok {
			return true, true
		}
	}
	return p.open, false
}

func normalize(origin string) string {
	return strings.ToLower(strings.TrimRight(strings.TrimSpace(origin), "/"))
}
