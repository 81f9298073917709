package handler

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/joestump/portfolio/internal/metrics"
	"github.com/joestump/portfolio/internal/theme"
)

// ThemeHandler handles the theme toggle endpoint.
type ThemeHandler struct{}

// NewThemeHandler creates a new ThemeHandler.
func NewThemeHandler() *ThemeHandler {
	return &ThemeHandler{}
}

// Toggle handles POST /theme. The theme middleware has already resolved the
// visitor's current theme; Toggle flips it, which rewrites the cookie, and
// returns HX-Trigger so the page can swap data-theme without a reload.
func (h *ThemeHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	tr := theme.FromContext(r.Context())
	if tr == nil {
		http.Error(w, "theme unavailable", http.StatusInternalServerError)
		return
	}
	next := tr.Toggle()
	metrics.ThemeTogglesTotal.WithLabelValues(next.String()).Inc()

	trigger, _ := json.Marshal(map[string]any{
		"themeChanged": map[string]string{"theme": next.String()},
	})
	w.Header().Set("HX-Trigger", string(trigger))

	if isHTMX(r) {
		renderFragment(w, "theme_toggle", BasePage{Theme: next.String()})
		return
	}
	http.Redirect(w, r, backTo(r), http.StatusSeeOther)
}

// backTo returns the same-host path of the Referer, or "/".
func backTo(r *http.Request) string {
	ref, err := url.Parse(r.Referer())
	if err != nil || ref.Host != r.Host || !strings.HasPrefix(ref.Path, "/") || strings.HasPrefix(ref.Path, "//") {
		return "/"
	}
	if ref.RawQuery != "" {
		return ref.Path + "?" + ref.RawQuery
	}
	return ref.Path
}
