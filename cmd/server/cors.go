package main

import (
	"net/http"
	"strings"

	"github.com/talkbase/answerd/internal/config"
)

const (
	corsAllowMethods = "POST, GET, OPTIONS"
	corsAllowHeaders = "Authorization, Content-Type, X-Request-ID"
)

// corsMiddleware applies the cross-origin policy. Preflight requests are
// answered with an empty 200 so browser clients can probe the gateway
// without a credential.
func corsMiddleware(cfg config.CORSConfig, next http.Handler) http.Handler {
	if !cfg.Enabled {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			next.ServeHTTP(w, r)
			return
		}

		if !originAllowed(origin, cfg.AllowOrigins) {
			w.WriteHeader(http.StatusForbidden)
			return
		}

		allowOrigin := origin
		if len(cfg.AllowOrigins) == 0 {
			allowOrigin = "*"
		} else {
			w.Header().Add("Vary", "Origin")
		}

		w.Header().Set("Access-Control-Allow-Origin", allowOrigin)
		w.Header().Set("Access-Control-Allow-Methods", corsAllowMethods)
		w.Header().Set("Access-Control-Allow-Headers", corsAllowHeaders)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func originAllowed(origin string, allowlist []string) bool {
	if len(allowlist) == 0 {
		return true
	}
	for _, allowed := range allowlist {
		if strings.EqualFold(origin, allowed) {
			return true
		}
	}
	return false
}
