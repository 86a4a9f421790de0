package httpserver

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"realty_catalog/internal/adapters/observability"
	"realty_catalog/internal/domain"
)

func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler { return http.TimeoutHandler(next, d, "timeout") }
}

// ---- status-recording ResponseWriter ----

type srw struct {
	http.ResponseWriter
	status int
	wrote  bool
}

func (w *srw) WriteHeader(code int) {
	if !w.wrote {
		w.status = code
		w.wrote = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *srw) Write(b []byte) (int, error) {
	if !w.wrote {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

func (w *srw) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

// ---- request scoped values ----

type ctxKey int

const (
	tenantKey ctxKey = iota
	infoKey
)

// reqInfo is filled by inner middlewares and read by the access logger,
// which runs outside them.
type reqInfo struct{ tenant string }

func withInfo(r *http.Request) (*http.Request, *reqInfo) {
	info := &reqInfo{}
	return r.WithContext(context.WithValue(r.Context(), infoKey, info)), info
}

// TenantFrom returns the tenant resolved by the Tenant middleware.
func TenantFrom(ctx context.Context) (domain.Tenant, bool) {
	t, ok := ctx.Value(tenantKey).(domain.Tenant)
	return t, ok
}

func mustTenant(r *http.Request) domain.Tenant {
	t, _ := TenantFrom(r.Context())
	return t
}

// ---- Tenant resolution ----

// TenantResolver maps a request key (domain or slug) to a tenant.
type TenantResolver interface {
	Resolve(key string) (domain.Tenant, error)
}

// Tenant resolves the tenant from the X-Tenant header, the tenant query
// parameter or the request host, in that order. The first key present is the
// only one tried.
func Tenant(res TenantResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t, err := res.Resolve(tenantKeyOf(r))
			if err != nil {
				writeError(w, r, err)
				return
			}
			if info, ok := r.Context().Value(infoKey).(*reqInfo); ok {
				info.tenant = t.ID
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), tenantKey, t)))
		})
	}
}

func tenantKeyOf(r *http.Request) string {
	if k := strings.TrimSpace(r.Header.Get("X-Tenant")); k != "" {
		return k
	}
	if k := strings.TrimSpace(r.URL.Query().Get("tenant")); k != "" {
		return k
	}
	host := r.Host
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return host
}

// ---- Metrics middleware ----

func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &srw{ResponseWriter: w}
		next.ServeHTTP(sw, r)
		observability.ObserveHTTP(routeOf(r), r.Method, sw.Status(), time.Since(start))
	})
}

// ---- Structured logging middleware ----

func Logger(l zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &srw{ResponseWriter: w}
			r, info := withInfo(r)
			next.ServeHTTP(sw, r)
			l.Info().
				Str("route", routeOf(r)).
				Str("method", r.Method).
				Int("status", sw.Status()).
				Dur("duration", time.Since(start)).
				Str("remote", remoteIP(r)).
				Str("ua", r.UserAgent()).
				Str("tenant", info.tenant).
				Msg("http_request")
		})
	}
}

func routeOf(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if route := rc.RoutePattern(); route != "" {
			return route
		}
	}
	return r.URL.Path
}

// Picks first X-Forwarded-For IP, else X-Real-IP, else RemoteAddr host.
func remoteIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	if xrip := r.Header.Get("X-Real-IP"); xrip != "" {
		return xrip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

// ---- Lead intake throttling ----

// LeadRateLimit allows perMinute submissions per client IP and tenant. A
// non-positive limit disables throttling.
func LeadRateLimit(perMinute int) func(http.Handler) http.Handler {
	if perMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(
		perMinute,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP, func(r *http.Request) (string, error) {
			return mustTenant(r).ID, nil
		}),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			log.Warn().
				Str("tenant", mustTenant(r).ID).
				Str("ip", remoteIP(r)).
				Str("path", r.URL.Path).
				Msg("lead rate limit exceeded")
			writeFailure(w, http.StatusTooManyRequests, apiError{Code: "RATE_LIMITED", Message: "too many submissions, try again later"})
		}),
	)
}
