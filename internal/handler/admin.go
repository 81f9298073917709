package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/joestump/portfolio/internal/content"
	"github.com/joestump/portfolio/internal/store"
)

const inboxLimit = 200

type inboxPage struct {
	BasePage
	Messages []*store.Message
	Unread   int64
	Visits   store.VisitStats
}

type messagePage struct {
	BasePage
	Message *store.Message
}

// AdminHandler serves the contact inbox to the signed-in admin.
type AdminHandler struct {
	site     *content.Portfolio
	messages store.MessageStoreIface
	visits   store.VisitStoreIface
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(site *content.Portfolio, ms store.MessageStoreIface, vs store.VisitStoreIface) *AdminHandler {
	return &AdminHandler{site: site, messages: ms, visits: vs}
}

// Messages handles GET /admin/messages.
func (h *AdminHandler) Messages(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.messages.List(r.Context(), inboxLimit)
	if err != nil {
		log.Printf("admin list messages: %v", err)
		http.Error(w, "could not load messages", http.StatusInternalServerError)
		return
	}
	unread, err := h.messages.CountUnread(r.Context())
	if err != nil {
		log.Printf("admin count unread: %v", err)
	}
	stats, err := h.visits.GetVisitStats(r.Context())
	if err != nil {
		log.Printf("admin visit stats: %v", err)
	}

	data := inboxPage{
		BasePage: newBasePage(r, h.site),
		Messages: msgs,
		Unread:   unread,
		Visits:   stats,
	}
	if isHTMX(r) {
		renderPageFragment(w, "admin/messages.html", "content", data)
		return
	}
	render(w, "admin/messages.html", data)
}

// Message handles GET /admin/messages/{id} and marks the message read.
func (h *AdminHandler) Message(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	m, err := h.messages.GetByID(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		log.Printf("admin get message %s: %v", id, err)
		http.Error(w, "could not load message", http.StatusInternalServerError)
		return
	}
	if !m.IsRead() {
		if err := h.messages.MarkRead(r.Context(), id); err != nil {
			log.Printf("admin mark read %s: %v", id, err)
		}
	}
	render(w, "admin/message.html", messagePage{BasePage: newBasePage(r, h.site), Message: m})
}

// Delete handles DELETE /admin/messages/{id}. HTMX callers get an empty
// body so the row is swapped out; others are redirected to the inbox.
func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := h.messages.Delete(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		log.Printf("admin delete message %s: %v", id, err)
		http.Error(w, "could not delete message", http.StatusInternalServerError)
		return
	}
	if isHTMX(r) {
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, "/admin/messages", http.StatusSeeOther)
}
