package server

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/thirdwave/contentapi/internal/config"
)

// requestLogger returns a middleware that logs each HTTP request using
// slog: method, path, status code, response size, duration, and client.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		slog.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).String(),
			"remote", r.RemoteAddr,
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// Whitelist returns a middleware enforcing the configured IP whitelist on
// every API request. Loopback clients are always allowed, mirroring the
// implicit allowance of the server's own address; a disabled whitelist
// admits everyone.
func Whitelist(wl config.Whitelist) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if wl.Disabled {
				next.ServeHTTP(w, r)
				return
			}

			client := clientIP(r)

			allowed := append([]string{"127.0.0.1", "::1"}, wl.IPs...)
			for _, ip := range allowed {
				if strings.Contains(client, ip) {
					next.ServeHTTP(w, r)
					return
				}
			}

			Exception(w, "ForbiddenException",
				fmt.Sprintf("Access from IP %s is not allowed.", client),
				http.StatusForbidden)
		})
	}
}

// clientIP returns the client address without the port. The router's
// RealIP middleware has already resolved forwarding headers by the time
// this runs.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
