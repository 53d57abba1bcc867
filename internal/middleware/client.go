package middleware

import (
	"net"
	"net/http"
	"strings"
)

// ClientAddress returns a function resolving the originating address of a request.
// With trustedProxies > 0 it reads X-Forwarded-For at the position written by the
// outermost trusted proxy, so entries prepended by the client are ignored.
func ClientAddress(trustedProxies int) func(r *http.Request) string {
	return func(r *http.Request) string {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" && trustedProxies > 0 {
			parts := strings.Split(xff, ",")
			idx := len(parts) - trustedProxies
			if idx < 0 {
				idx = 0
			}
			if ip := strings.TrimSpace(parts[idx]); ip != "" {
				return ip
			}
		}

		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			return r.RemoteAddr
		}
		return host
	}
}
