package api

import (
	"net/http"

	"github.com/joestump/portfolio/internal/metrics"
	"github.com/joestump/portfolio/internal/theme"
)

type themeAPI struct{}

// Get handles GET /api/v1/theme.
//
// @Summary      Current theme
// @Description  Resolved from the theme cookie, then the Sec-CH-Prefers-Color-Scheme hint, then light.
// @Tags         Theme
// @Produce      json
// @Success      200  {object}  ThemeResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /theme [get]
func (h *themeAPI) Get(w http.ResponseWriter, r *http.Request) {
	tr := theme.FromContext(r.Context())
	if tr == nil {
		writeError(w, http.StatusInternalServerError, "theme unavailable", "internal_error")
		return
	}
	writeJSON(w, http.StatusOK, ThemeResponse{Theme: tr.Theme().String(), Persistent: tr.Persistent()})
}

// Toggle handles POST /api/v1/theme/toggle.
//
// @Summary      Toggle the theme
// @Description  Flips between light and dark and rewrites the theme cookie.
// @Tags         Theme
// @Produce      json
// @Success      200  {object}  ThemeResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /theme/toggle [post]
func (h *themeAPI) Toggle(w http.ResponseWriter, r *http.Request) {
	tr := theme.FromContext(r.Context())
	if tr == nil {
		writeError(w, http.StatusInternalServerError, "theme unavailable", "internal_error")
		return
	}
	next := tr.Toggle()
	metrics.ThemeTogglesTotal.WithLabelValues(next.String()).Inc()
	writeJSON(w, http.StatusOK, ThemeResponse{Theme: next.String(), Persistent: tr.Persistent()})
}
