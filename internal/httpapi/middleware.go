package httpapi

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/ryghoul/akobylee/internal/metrics"
)

type contextKey string

const cartIDKey contextKey = "cart_id"

// CartCookieName is the browser-side cart identity, the server analogue
// of the old localStorage cart key.
const CartCookieName = "cart_id"

// CartIDMiddleware mints a cart ID cookie on first contact and makes the
// ID available to handlers. The ID is opaque: losing the cookie simply
// starts an empty cart.
func CartIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var cartID string
		if c, err := r.Cookie(CartCookieName); err == nil && c.Value != "" {
			cartID = c.Value
		} else {
			cartID = uuid.New().String()
			http.SetCookie(w, &http.Cookie{
				Name:     CartCookieName,
				Value:    cartID,
				Path:     "/",
				MaxAge:   int((90 * 24 * time.Hour).Seconds()),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		ctx := context.WithValue(r.Context(), cartIDKey, cartID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func cartIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(cartIDKey).(string); ok {
		return id
	}
	return ""
}

// clientIP extracts the source address for throttling: first
// X-Forwarded-For hop when present, the socket peer otherwise.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if first := strings.TrimSpace(strings.Split(fwd, ",")[0]); first != "" {
			return first
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	if host == "" {
		return "unknown"
	}
	return host
}

// MetricsMiddleware records a request counter and latency histogram per
// route pattern.
func MetricsMiddleware(m *metrics.ServerMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			pattern := chiRoutePattern(r)
			m.Observe(pattern, strconv.Itoa(ww.Status()), float64(time.Since(start).Milliseconds()))
		})
	}
}

func chiRoutePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if pattern := rc.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}
