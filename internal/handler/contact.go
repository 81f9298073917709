package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/joestump/portfolio/internal/auth"
	"github.com/joestump/portfolio/internal/contact"
	"github.com/joestump/portfolio/internal/metrics"
)

const (
	msgSucceeded = "Message sent successfully! I'll get back to you soon."
	msgFailed    = "Oops! Something went wrong. Please try again."
)

// pollSlack keeps the follow-up GET from racing the reset timer.
const pollSlack = 250 * time.Millisecond

type fieldMeta struct {
	label, inputType, placeholder string
}

var contactFieldMeta = map[contact.Field]fieldMeta{
	contact.FieldName:    {"Your Name", "text", "John Doe"},
	contact.FieldEmail:   {"Your Email", "email", "john@example.com"},
	contact.FieldSubject: {"Subject", "text", "How can I help you?"},
	contact.FieldMessage: {"Message", "textarea", "Tell me about your project..."},
}

type contactField struct {
	Name        string
	Label       string
	Type        string
	Placeholder string
	Value       string
	Error       string
}

type contactView struct {
	Fields    []contactField
	Status    string
	Banner    string
	Busy      bool
	PollAfter string // htmx delay before re-fetching the form, "" for none
}

func newContactView(st contact.State, resetDelay time.Duration) contactView {
	v := contactView{Status: st.Status.String()}
	for _, f := range contact.AllFields {
		v.Fields = append(v.Fields, newContactField(f, st))
	}
	switch st.Status {
	case contact.Submitting:
		v.Busy = true
		v.PollAfter = "1s"
	case contact.Succeeded:
		v.Banner = msgSucceeded
		v.PollAfter = fmt.Sprintf("%dms", (resetDelay + pollSlack).Milliseconds())
	case contact.Failed:
		v.Banner = msgFailed
		v.PollAfter = fmt.Sprintf("%dms", (resetDelay + pollSlack).Milliseconds())
	}
	return v
}

func newContactField(f contact.Field, st contact.State) contactField {
	m := contactFieldMeta[f]
	return contactField{
		Name:        string(f),
		Label:       m.label,
		Type:        m.inputType,
		Placeholder: m.placeholder,
		Value:       st.Fields.Get(f),
		Error:       st.Errors[f],
	}
}

// ContactHandler binds the per-visitor contact form to HTMX endpoints.
type ContactHandler struct {
	forms   *contact.Registry
	timeout time.Duration
}

// NewContactHandler creates a ContactHandler. timeout bounds each send.
func NewContactHandler(forms *contact.Registry, timeout time.Duration) *ContactHandler {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &ContactHandler{forms: forms, timeout: timeout}
}

func (h *ContactHandler) controller(r *http.Request) *contact.Controller {
	return h.forms.Get(auth.VisitorIDFromContext(r.Context()))
}

func (h *ContactHandler) view(r *http.Request) contactView {
	c := h.controller(r)
	return newContactView(c.State(), c.ResetDelay())
}

// Form handles GET /contact.
func (h *ContactHandler) Form(w http.ResponseWriter, r *http.Request) {
	renderFragment(w, "contact_form", h.view(r))
}

// UpdateField handles POST /contact/field, sent as the visitor types. It
// returns the field's error slot, which is now empty.
func (h *ContactHandler) UpdateField(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	f, err := contact.ParseField(r.FormValue("field"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	c := h.controller(r)
	if err := c.UpdateField(f, r.FormValue(string(f))); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	renderFragment(w, "contact_field_error", newContactField(f, c.State()))
}

// Submit handles POST /contact. The posted values replace the form's fields
// before validation; the response is the re-rendered form.
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	c := h.controller(r)
	for _, f := range contact.AllFields {
		if err := c.UpdateField(f, r.PostFormValue(string(f))); err != nil {
			h.conflict(w, r, err)
			return
		}
	}

	// The send outlives a visitor navigating away, but not the timeout.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), h.timeout)
	defer cancel()
	if err := c.Submit(ctx); err != nil {
		h.conflict(w, r, err)
		return
	}
	if st := c.State(); len(st.Errors) > 0 {
		metrics.ContactSubmissionsTotal.WithLabelValues("invalid").Inc()
	}

	if !isHTMX(r) {
		http.Redirect(w, r, "/#contact", http.StatusSeeOther)
		return
	}
	renderFragment(w, "contact_form", newContactView(c.State(), c.ResetDelay()))
}

func (h *ContactHandler) conflict(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, contact.ErrSubmitInProgress) && isHTMX(r) {
		// Another tab is mid-send; show that instead of failing.
		renderFragment(w, "contact_form", h.view(r))
		return
	}
	http.Error(w, err.Error(), http.StatusConflict)
}
