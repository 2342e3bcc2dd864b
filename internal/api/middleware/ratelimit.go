package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/famlink/family-api/internal/api/metrics"
	"github.com/famlink/family-api/internal/core/ports"
)

// Policy configures one guarded action class.
type Policy struct {
	// Tag namespaces the counter keys, e.g. "auth" or "invite".
	Tag string
	// Window is the fixed window length.
	Window time.Duration
	// Max is the number of requests allowed per window per client.
	Max int
}

type rateLimitedResponse struct {
	Error      string `json:"error"`
	RetryAfter int    `json:"retryAfter"`
}

// RateLimit bounds the request rate per client identity using a fixed-window
// counter in the external store. The store is best-effort: on read or write
// failure the limiter logs and fails open rather than blocking traffic.
func RateLimit(store ports.CounterStore, policy Policy, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity := clientIdentity(c)
			key := fmt.Sprintf("rate:%s:%s", policy.Tag, identity)
			now := time.Now()

			counter, err := store.Get(c.Request().Context(), key)
			if err != nil {
				log.Error().Err(err).Str("action", policy.Tag).Msg("rate limit store read failed, allowing request")
				return next(c)
			}

			if counter != nil && counter.ResetAt.After(now) {
				if counter.Count >= policy.Max {
					retryAfter := counter.Remaining(now)
					metrics.RateLimitedTotal.WithLabelValues(policy.Tag).Inc()
					c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfter))
					return c.JSON(http.StatusTooManyRequests, rateLimitedResponse{
						Error:      "too many requests, please try again later",
						RetryAfter: retryAfter,
					})
				}

				updated := ports.Counter{Count: counter.Count + 1, ResetAt: counter.ResetAt}
				if err := store.Set(c.Request().Context(), key, updated, counter.ResetAt.Sub(now)); err != nil {
					log.Error().Err(err).Str("action", policy.Tag).Msg("rate limit store write failed, allowing request")
				}
				return next(c)
			}

			fresh := ports.Counter{Count: 1, ResetAt: now.Add(policy.Window)}
			if err := store.Set(c.Request().Context(), key, fresh, policy.Window); err != nil {
				log.Error().Err(err).Str("action", policy.Tag).Msg("rate limit store write failed, allowing request")
			}
			return next(c)
		}
	}
}

// clientIdentity derives the rate-limit key from proxy headers. Clients with
// neither header all share the "unknown" bucket.
func clientIdentity(c echo.Context) string {
	if ip := c.Request().Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	if fwd := c.Request().Header.Get("X-Forwarded-For"); fwd != "" {
		if first := strings.TrimSpace(strings.Split(fwd, ",")[0]); first != "" {
			return first
		}
	}
	return "unknown"
}
