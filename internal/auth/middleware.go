package auth

import (
	"context"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/google/uuid"
)

type contextKey string

const (
	VisitorContextKey contextKey = "visitor"
	AdminContextKey   contextKey = "admin"
)

// Middleware identifies anonymous visitors and guards the admin area.
type Middleware struct {
	sessions   *scs.SessionManager
	adminEmail string
}

// NewMiddleware creates a new auth Middleware.
func NewMiddleware(sm *scs.SessionManager, adminEmail string) *Middleware {
	return &Middleware{sessions: sm, adminEmail: adminEmail}
}

// Visitor assigns every session a random visitor id on first contact and
// sets it on the request context. Must run inside sessions.LoadAndSave.
func (m *Middleware) Visitor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := m.sessions.GetString(r.Context(), SessionVisitorIDKey)
		if id == "" {
			id = uuid.New().String()
			m.sessions.Put(r.Context(), SessionVisitorIDKey, id)
		}
		ctx := context.WithValue(r.Context(), VisitorContextKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin redirects to /auth/login unless the session belongs to the
// configured admin.
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email := m.sessions.GetString(r.Context(), SessionAdminEmailKey)
		if email == "" {
			http.Redirect(w, r, "/auth/login?redirect="+r.URL.RequestURI(), http.StatusFound)
			return
		}
		if !sameEmail(email, m.adminEmail) {
			// Admin changed since this session was issued.
			_ = m.sessions.Destroy(r.Context())
			http.Redirect(w, r, "/auth/login", http.StatusFound)
			return
		}
		ctx := context.WithValue(r.Context(), AdminContextKey, email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalAdmin sets the admin email on the context when the session has
// one, without requiring it.
func (m *Middleware) OptionalAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email := m.sessions.GetString(r.Context(), SessionAdminEmailKey)
		if email != "" && sameEmail(email, m.adminEmail) {
			r = r.WithContext(context.WithValue(r.Context(), AdminContextKey, email))
		}
		next.ServeHTTP(w, r)
	})
}

// VisitorIDFromContext retrieves the visitor id set by Visitor.
func VisitorIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(VisitorContextKey).(string)
	return id
}

// AdminFromContext returns the signed-in admin email, or "".
func AdminFromContext(ctx context.Context) string {
	e, _ := ctx.Value(AdminContextKey).(string)
	return e
}
