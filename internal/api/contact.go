package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/joestump/portfolio/internal/contact"
	"github.com/joestump/portfolio/internal/metrics"
)

const maxContactBody = 64 << 10

type contactAPI struct {
	sender  contact.Sender
	timeout time.Duration
}

// Submit handles POST /api/v1/contact. Each call drives a fresh form
// through validation and one send attempt.
//
// @Summary      Send a contact message
// @Description  Validates the message and makes one delivery attempt. Nothing is kept between calls.
// @Tags         Contact
// @Accept       json
// @Produce      json
// @Param        body  body      ContactRequest   true  "Message to send"
// @Success      200   {object}  ContactResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      422   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Failure      502   {object}  ContactResponse
// @Router       /contact [post]
func (h *contactAPI) Submit(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxContactBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", "bad_request")
		return
	}

	c := contact.NewController(h.sender)
	defer c.Close()
	values := contact.Fields{Name: req.Name, Email: req.Email, Subject: req.Subject, Message: req.Message}
	for _, f := range contact.AllFields {
		if err := c.UpdateField(f, values.Get(f)); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error(), "internal_error")
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	if err := c.Submit(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error(), "internal_error")
		return
	}

	st := c.State()
	switch {
	case len(st.Errors) > 0:
		metrics.ContactSubmissionsTotal.WithLabelValues("invalid").Inc()
		fields := make(map[string]string, len(st.Errors))
		for f, msg := range st.Errors {
			fields[string(f)] = msg
		}
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:  "validation failed",
			Code:   "validation_failed",
			Fields: fields,
		})
	case st.Status == contact.Succeeded:
		writeJSON(w, http.StatusOK, ContactResponse{
			Status:  st.Status.String(),
			Message: "Message sent successfully! I'll get back to you soon.",
		})
	default:
		writeJSON(w, http.StatusBadGateway, ContactResponse{
			Status:  st.Status.String(),
			Message: "Oops! Something went wrong. Please try again.",
		})
	}
}
