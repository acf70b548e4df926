package handlers

import (
	"bufio"
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/CrowderSoup/gamific/services"
)

type contextKey string

const sessionContextKey contextKey = "session"

// SessionFrom returns the session the auth middleware stored on ctx.
func SessionFrom(ctx context.Context) (services.Session, bool) {
	s, ok := ctx.Value(sessionContextKey).(services.Session)
	return s, ok
}

type AuthMiddleware struct {
	authService  *services.AuthService
	boardService *services.BoardService
}

func NewAuthMiddleware(authService *services.AuthService, boardService *services.BoardService) *AuthMiddleware {
	return &AuthMiddleware{
		authService:  authService,
		boardService: boardService,
	}
}

// bearerToken extracts the token from an "Authorization: Bearer" header.
func bearerToken(r *http.Request) (string, bool) {
	authParts := strings.Split(r.Header.Get("Authorization"), " ")
	if len(authParts) != 2 || authParts[0] != "Bearer" || authParts[1] == "" {
		return "", false
	}
	return authParts[1], true
}

// authenticate resolves the session for token and records the caller's
// account and user.
func (m *AuthMiddleware) authenticate(ctx context.Context, token string) (services.Session, error) {
	session, err := m.authService.Authenticate(ctx, token)
	if err != nil {
		return services.Session{}, err
	}
	if err := m.boardService.EnsureIdentity(ctx, session); err != nil {
		return services.Session{}, err
	}
	return session, nil
}

func (m *AuthMiddleware) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
			return
		}

		session, err := m.authenticate(r.Context(), token)
		if err != nil {
			respondError(w, "authenticating request", err)
			return
		}

		ctx := context.WithValue(r.Context(), sessionContextKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Hijack lets the websocket upgrade take over a logged connection.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// LoggingMiddleware logs one line per request.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("%s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}
