package handler

import (
	"errors"
	"net"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/joestump/portfolio/internal/content"
	"github.com/joestump/portfolio/internal/metrics"
	"github.com/joestump/portfolio/internal/store"
)

type indexPage struct {
	BasePage
	Contact     contactView
	OpenProject *content.Project
}

// PortfolioHandler serves the single-page portfolio and its project modal.
type PortfolioHandler struct {
	site    *content.Portfolio
	contact *ContactHandler
	visits  chan<- store.PageView
}

// NewPortfolioHandler creates a PortfolioHandler. visits may be nil to
// disable page-view tracking.
func NewPortfolioHandler(site *content.Portfolio, ch *ContactHandler, visits chan<- store.PageView) *PortfolioHandler {
	return &PortfolioHandler{site: site, contact: ch, visits: visits}
}

// Index handles GET /.
func (h *PortfolioHandler) Index(w http.ResponseWriter, r *http.Request) {
	h.recordView(r)
	render(w, "index.html", h.page(r, nil))
}

// ProjectDetail handles GET /projects/{id}. HTMX callers receive the modal
// fragment; a plain navigation gets the full page with the modal open.
func (h *PortfolioHandler) ProjectDetail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	p, err := h.site.Project(id)
	if errors.Is(err, content.ErrProjectNotFound) {
		http.NotFound(w, r)
		return
	}
	if isHTMX(r) {
		renderFragment(w, "project_modal", p)
		return
	}
	render(w, "index.html", h.page(r, p))
}

func (h *PortfolioHandler) page(r *http.Request, open *content.Project) indexPage {
	return indexPage{
		BasePage:    newBasePage(r, h.site),
		Contact:     h.contact.view(r),
		OpenProject: open,
	}
}

// recordView queues a page view without blocking the response. Visitors
// sending DNT or Sec-GPC are not tracked.
func (h *PortfolioHandler) recordView(r *http.Request) {
	if h.visits == nil || r.Header.Get("DNT") == "1" || r.Header.Get("Sec-GPC") == "1" {
		return
	}
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	v := store.PageView{
		Path:      r.URL.Path,
		IPHash:    store.HashIP(ip),
		UserAgent: r.UserAgent(),
		Referrer:  r.Referer(),
	}
	select {
	case h.visits <- v:
	default:
		metrics.PageViewsDroppedTotal.Inc()
	}
}
