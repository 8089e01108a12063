// Package security sets the response headers shared by every dashboard
// response and the cache policy of the embedded assets.
package security

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ChartCDN is the only third-party origin pages load code from.
const ChartCDN = "https://unpkg.com"

// Policy maps header names to values. Empty values are not sent.
type Policy map[string]string

// contentSecurityPolicy allows the page's own assets, inline theme styles
// and the chart library.
func contentSecurityPolicy() string {
	return strings.Join([]string{
		"default-src 'self'",
		"script-src 'self' " + ChartCDN,
		"style-src 'self' 'unsafe-inline'",
		"img-src 'self' data:",
		"connect-src 'self'",
		"object-src 'none'",
		"frame-ancestors 'none'",
		"base-uri 'self'",
		"form-action 'none'",
	}, "; ")
}

// DashboardPolicy is the header set for a read-only dashboard without
// forms or embeds. Cross-Origin-Embedder-Policy stays unset: require-corp
// would block the CDN script.
func DashboardPolicy() Policy {
	return Policy{
		"Content-Security-Policy":      contentSecurityPolicy(),
		"X-Content-Type-Options":       "nosniff",
		"X-Frame-Options":              "DENY",
		"Referrer-Policy":              "no-referrer",
		"Permissions-Policy":           "geolocation=(), microphone=(), camera=(), payment=()",
		"Cross-Origin-Opener-Policy":   "same-origin",
		"Cross-Origin-Resource-Policy": "same-origin",
		"Cross-Origin-Embedder-Policy": "",
	}
}

// Middleware applies the policy before the wrapped handler writes.
func (p Policy) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		for k, v := range p {
			if v != "" {
				h.Set(k, v)
			}
		}
		next.ServeHTTP(w, r)
	})
}

// StaticAssetMiddleware marks embedded assets cacheable for maxAge. They
// only change with a new binary.
func StaticAssetMiddleware(maxAge time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if maxAge > 0 {
				w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(maxAge.Seconds())))
			}
			next.ServeHTTP(w, r)
		})
	}
}
