package handler

import (
	"io/fs"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/joestump/portfolio/docs/swagger"

	"github.com/joestump/portfolio/internal/api"
	"github.com/joestump/portfolio/internal/auth"
	"github.com/joestump/portfolio/internal/contact"
	"github.com/joestump/portfolio/internal/content"
	"github.com/joestump/portfolio/internal/store"
	"github.com/joestump/portfolio/internal/theme"
	"github.com/joestump/portfolio/web"
)

// Deps holds all dependencies required to build the HTTP router.
type Deps struct {
	SessionManager *scs.SessionManager
	AuthMiddleware *auth.Middleware
	AuthHandlers   *auth.Handlers // nil leaves the admin inbox unmounted
	Content        *content.Portfolio
	ContactForms   *contact.Registry
	ContactSender  contact.Sender
	SendTimeout    time.Duration
	MessageStore   store.MessageStoreIface
	VisitStore     store.VisitStoreIface
	VisitCh        chan<- store.PageView
}

// NewRouter assembles the full chi router with all middleware and routes.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	// Health checks and scrapes stay outside the session so they don't mint cookies.
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	// API reference for /api/v1, served from the registered swagger doc.
	r.Get("/api/docs/*", httpSwagger.WrapHandler)

	// Static assets (embedded). Use fs.Sub so the file server sees
	// css/app.css and js/app.js directly, not static/css/... paths.
	staticSub, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		panic("failed to sub static FS: " + err.Error())
	}
	r.Handle("/static/*", http.StripPrefix("/static", http.FileServerFS(staticSub)))

	r.Group(func(r chi.Router) {
		r.Use(deps.SessionManager.LoadAndSave)
		r.Use(deps.AuthMiddleware.Visitor)
		r.Use(deps.AuthMiddleware.OptionalAdmin)
		r.Use(theme.Middleware)

		contactHandler := NewContactHandler(deps.ContactForms, deps.SendTimeout)
		portfolio := NewPortfolioHandler(deps.Content, contactHandler, deps.VisitCh)
		themeHandler := NewThemeHandler()

		r.Get("/", portfolio.Index)
		r.Get("/projects/{id}", portfolio.ProjectDetail)
		r.Post("/theme", themeHandler.Toggle)

		r.Get("/contact", contactHandler.Form)
		r.Post("/contact", contactHandler.Submit)
		r.Post("/contact/field", contactHandler.UpdateField)

		if deps.AuthHandlers != nil {
			r.Get("/auth/login", deps.AuthHandlers.Login)
			r.Get("/auth/callback", deps.AuthHandlers.Callback)
			r.Post("/auth/logout", deps.AuthHandlers.Logout)

			admin := NewAdminHandler(deps.Content, deps.MessageStore, deps.VisitStore)
			r.Group(func(r chi.Router) {
				r.Use(deps.AuthMiddleware.RequireAdmin)
				r.Get("/admin", func(w http.ResponseWriter, r *http.Request) {
					http.Redirect(w, r, "/admin/messages", http.StatusFound)
				})
				r.Get("/admin/messages", admin.Messages)
				r.Get("/admin/messages/{id}", admin.Message)
				r.Delete("/admin/messages/{id}", admin.Delete)
			})
		}

		r.Mount("/api/v1", api.NewAPIRouter(api.Deps{
			Content:     deps.Content,
			Sender:      deps.ContactSender,
			SendTimeout: deps.SendTimeout,
		}))
	})

	return r
}
