package websocket

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	gows "github.com/gorilla/websocket"
	"github.com/samber/lo"
)

// NewUpgrader builds the HTTP upgrader for the relay endpoint.
// With no allowed origins, gorilla's same-host check applies. "*" allows any origin.
// Requests without an Origin header come from non-browser clients and are accepted.
func NewUpgrader(allowedOrigins []string, log *slog.Logger) *gows.Upgrader {
	upgrader := &gows.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	if len(allowedOrigins) == 0 {
		return upgrader
	}

	allowAll := lo.Contains(allowedOrigins, "*")
	allowed := lo.FilterMap(allowedOrigins, func(origin string, _ int) (string, bool) {
		return normalizeOrigin(origin)
	})

	upgrader.CheckOrigin = func(r *http.Request) bool {
		header := r.Header.Get("Origin")
		if header == "" || allowAll {
			return true
		}
		origin, ok := normalizeOrigin(header)
		if ok && lo.Contains(allowed, origin) {
			return true
		}
		log.Warn("Blocked connection from disallowed origin", "origin", header)
		return false
	}
	return upgrader
}

func normalizeOrigin(origin string) (string, bool) {
	parsed, err := url.Parse(strings.TrimSpace(origin))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", false
	}
	return strings.ToLower(parsed.Scheme) + "://" + strings.ToLower(parsed.Host), true
}
