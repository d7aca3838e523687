package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"

	"jugayaprende/internal/models"
	"jugayaprende/internal/security"
	"jugayaprende/internal/service"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	UserContextKey      ContextKey = "user"
	ClaimsContextKey    ContextKey = "claims"
	RequestIDContextKey ContextKey = "request_id"
)

// RequestIDHeader carries the request id in both directions
const RequestIDHeader = "X-Request-ID"

// Middleware holds dependencies for middleware functions
type Middleware struct {
	authService *service.AuthService
	limiter     *security.RateLimiter
	logger      *slog.Logger
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(authService *service.AuthService, limiter *security.RateLimiter, logger *slog.Logger) *Middleware {
	return &Middleware{
		authService: authService,
		limiter:     limiter,
		logger:      logger,
	}
}

// authenticate resolves the auth cookie; ok is false when there is no valid host token
func (m *Middleware) authenticate(r *http.Request) (*models.User, security.TokenClaims, bool) {
	cookie, err := r.Cookie(security.AuthCookieName)
	if err != nil || cookie.Value == "" {
		return nil, security.TokenClaims{}, false
	}
	user, claims, err := m.authService.Authenticate(cookie.Value)
	if err != nil {
		if !errors.Is(err, service.ErrUnauthorized) {
			m.logger.Error("failed to authenticate host token", "error", err)
		}
		return nil, security.TokenClaims{}, false
	}
	return user, claims, true
}

// RequireHost is middleware that requires a signed-in host
func (m *Middleware) RequireHost(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, claims, ok := m.authenticate(r)
		if !ok {
			if _, err := r.Cookie(security.AuthCookieName); err == nil {
				http.SetCookie(w, security.CreateDeleteCookie(r, security.AuthCookieName))
			}
			writeError(w, http.StatusUnauthorized, ErrUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, user)
		ctx = context.WithValue(ctx, ClaimsContextKey, claims)
		next(w, r.WithContext(ctx))
	}
}

// OptionalHost adds the host to the context when a valid token is present
func (m *Middleware) OptionalHost(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if user, claims, ok := m.authenticate(r); ok {
			ctx := context.WithValue(r.Context(), UserContextKey, user)
			ctx = context.WithValue(ctx, ClaimsContextKey, claims)
			r = r.WithContext(ctx)
		}
		next(w, r)
	}
}

// CSRFProtect checks the CSRF header on unsafe methods. Must run inside RequireHost.
func (m *Middleware) CSRFProtect(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next(w, r)
			return
		}

		claims, ok := r.Context().Value(ClaimsContextKey).(security.TokenClaims)
		if !ok || !m.authService.ValidateCSRF(claims, r.Header.Get(security.CSRFHeader)) {
			writeError(w, http.StatusForbidden, ErrInvalidCSRF)
			return
		}
		next(w, r)
	}
}

// RateLimit limits requests per client IP
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := security.GetClientIP(r)
		if !m.limiter.Allow(ip) {
			m.logger.Warn("rate limit exceeded", "ip", ip, "path", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, ErrTooManyRequests)
			return
		}
		next(w, r)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

// Logging middleware tags each request with an id and logs it once served
func Logging(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, requestID)
		r = r.WithContext(context.WithValue(r.Context(), RequestIDContextKey, requestID))

		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		status := rec.status
		if status == 0 {
			status = http.StatusOK
		}
		if status < http.StatusBadRequest && isNoisyRequest(r) {
			return
		}

		fields := []any{
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"duration", time.Since(start),
			"bytes", rec.bytes,
		}
		switch {
		case status >= 500:
			logger.Error("http_request", fields...)
		case status >= 400:
			logger.Warn("http_request", fields...)
		default:
			logger.Info("http_request", fields...)
		}
	})
}

// Recover turns a panicking handler into a logged 500 response
func Recover(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			logger.Error("handler panic", "method", r.Method, "path", r.URL.Path, "stack", string(debug.Stack()))
			if sr, ok := w.(*statusRecorder); ok && sr.status != 0 {
				return
			}
			respondWithError(w, logger, http.StatusInternalServerError, ErrInternalServerError, "recovered from panic", fmt.Errorf("panic: %v", rec))
		}()
		next.ServeHTTP(w, r)
	})
}

// isNoisyRequest reports requests frequent enough that successful ones are not logged
func isNoisyRequest(r *http.Request) bool {
	switch r.URL.Path {
	case "/healthz", "/metrics":
		return true
	}
	// clients poll GET /games/{code} every two seconds
	code, ok := strings.CutPrefix(r.URL.Path, "/games/")
	return ok && r.Method == http.MethodGet && code != "" && !strings.Contains(code, "/")
}

// GetUserFromContext retrieves the host from the request context
func GetUserFromContext(ctx context.Context) *models.User {
	user, ok := ctx.Value(UserContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}
