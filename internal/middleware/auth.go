package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/render"

	"github.com/Decentr-net/photon/internal/session"
)

// SessionCookie is a name of cookie with session token.
const SessionCookie = "session"

// LoginPath is where browsers are redirected to when they are unauthenticated.
const LoginPath = "/login"

type sessionContextKey struct{}

type tokenContextKey struct{}

// GetSession returns session of authenticated request.
func GetSession(ctx context.Context) (*session.Session, bool) {
	s, ok := ctx.Value(sessionContextKey{}).(*session.Session)
	return s, ok
}

// GetUserID returns id of authenticated user or empty string.
func GetUserID(ctx context.Context) string {
	if s, ok := GetSession(ctx); ok {
		return s.UserID
	}
	return ""
}

// GetToken returns raw session token of authenticated request.
func GetToken(ctx context.Context) string {
	v, _ := ctx.Value(tokenContextKey{}).(string)
	return v
}

// WithSession puts session into the context.
func WithSession(ctx context.Context, token string, s *session.Session) context.Context {
	return context.WithValue(context.WithValue(ctx, sessionContextKey{}, s), tokenContextKey{}, token)
}

// ExtractToken returns token from Authorization header or session cookie.
func ExtractToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
			return strings.TrimSpace(h[7:])
		}
		return ""
	}

	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}

	return ""
}

// Authenticator rejects requests without valid session.
// Browsers are redirected to the login page, API clients get 401.
func Authenticator(m session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r)
			if token == "" {
				unauthorized(w, r, "missing session token")
				return
			}

			s, err := m.Lookup(r.Context(), token)
			if err != nil {
				if errors.Is(err, session.ErrNotFound) || errors.Is(err, session.ErrInvalidToken) {
					unauthorized(w, r, "invalid session")
					return
				}

				GetLogger(r.Context()).WithError(err).Error("failed to lookup session")
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, errorResponse{Error: "internal error"})
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), token, s)))
		})
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func unauthorized(w http.ResponseWriter, r *http.Request, msg string) {
	if strings.Contains(r.Header.Get("Accept"), "text/html") {
		http.Redirect(w, r, LoginPath, http.StatusFound)
		return
	}

	render.Status(r, http.StatusUnauthorized)
	render.JSON(w, r, errorResponse{Error: msg})
}
