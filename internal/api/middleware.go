package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"trend-watch/internal/app"
	"trend-watch/observability"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const (
	userIDKey    contextKey = "user_id"
	sessionIDKey contextKey = "session_id"
)

// UserID returns the authenticated user id from the request context, or zero
// for anonymous requests.
func UserID(ctx context.Context) int64 {
	id, _ := ctx.Value(userIDKey).(int64)
	return id
}

// SessionID returns the session id from the request context.
func SessionID(ctx context.Context) string {
	id, _ := ctx.Value(sessionIDKey).(string)
	return id
}

// responseWriter wraps http.ResponseWriter to capture status code and response size
type responseWriter struct {
	http.ResponseWriter
	statusCode   int
	responseSize int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK, // default status code
	}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	size, err := rw.ResponseWriter.Write(b)
	rw.responseSize += size
	return size, err
}

// MetricsMiddleware records HTTP metrics for each request
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Wrap the response writer to capture status code and size
		wrapped := newResponseWriter(w)

		// Process the request
		next.ServeHTTP(wrapped, r)

		// Get the route pattern from chi
		routePattern := chi.RouteContext(r.Context()).RoutePattern()
		if routePattern == "" {
			routePattern = r.URL.Path
		}

		// Record metrics
		metrics := observability.GetMetrics()
		duration := time.Since(start)
		statusCode := strconv.Itoa(wrapped.statusCode)

		metrics.RecordHTTPRequest(r.Method, routePattern, statusCode, duration, wrapped.responseSize)
	})
}

// authenticate verifies a bearer token and returns the user and session it
// carries. The signature must check out AND the session must still be live.
func authenticate(r *http.Request, a *app.App) (int64, string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return 0, "", fmt.Errorf("authorization header required")
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.JWTSecret(), nil
	})
	if err != nil || !token.Valid {
		return 0, "", fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, "", fmt.Errorf("invalid token claims")
	}
	rawUserID, ok := claims["user_id"].(float64)
	if !ok {
		return 0, "", fmt.Errorf("invalid token claims")
	}
	sessionID, ok := claims["jti"].(string)
	if !ok {
		return 0, "", fmt.Errorf("invalid token claims")
	}

	// Logout revokes the session, killing the token before its exp
	userID, err := a.Sessions().Validate(r.Context(), sessionID)
	if err != nil {
		return 0, "", fmt.Errorf("session expired or revoked")
	}
	if userID != int64(rawUserID) {
		return 0, "", fmt.Errorf("session does not match token")
	}

	return userID, sessionID, nil
}

func withAuthContext(r *http.Request, userID int64, sessionID string) *http.Request {
	ctx := context.WithValue(r.Context(), userIDKey, userID)
	ctx = context.WithValue(ctx, sessionIDKey, sessionID)
	return r.WithContext(ctx)
}

// RequireAuth rejects requests without a valid token and live session
func RequireAuth(a *app.App) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, sessionID, err := authenticate(r, a)
			if err != nil {
				writeJSONError(w, err.Error(), http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, withAuthContext(r, userID, sessionID))
		})
	}
}

// OptionalAuth attaches the user when a valid token is present but lets
// anonymous requests through. A bad token is still rejected so a caller
// never silently loses their identity.
func OptionalAuth(a *app.App) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				next.ServeHTTP(w, r)
				return
			}
			userID, sessionID, err := authenticate(r, a)
			if err != nil {
				writeJSONError(w, err.Error(), http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, withAuthContext(r, userID, sessionID))
		})
	}
}
