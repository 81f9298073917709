package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/joestump/portfolio/internal/contact"
	"github.com/joestump/portfolio/internal/content"
)

const defaultSendTimeout = 15 * time.Second

// Deps holds all dependencies required to build the API router.
type Deps struct {
	Content     *content.Portfolio
	Sender      contact.Sender
	SendTimeout time.Duration
}

// NewAPIRouter creates a chi sub-router for /api/v1. Theme routes expect
// theme.Middleware to have run on the parent router.
func NewAPIRouter(deps Deps) chi.Router {
	r := chi.NewRouter()
	r.Use(jsonContentType)

	th := &themeAPI{}
	r.Get("/theme", th.Get)
	r.Post("/theme/toggle", th.Toggle)

	pf := &portfolioAPI{site: deps.Content}
	r.Get("/portfolio", pf.Get)
	r.Get("/projects/{id}", pf.Project)

	ct := &contactAPI{sender: deps.Sender, timeout: deps.SendTimeout}
	if ct.timeout <= 0 {
		ct.timeout = defaultSendTimeout
	}
	r.Post("/contact", ct.Submit)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found", "not_found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "method_not_allowed")
	})

	return r
}

// jsonContentType is a middleware that sets Content-Type: application/json on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}
