package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/joestump/portfolio/internal/content"
)

type portfolioAPI struct {
	site *content.Portfolio
}

// Get handles GET /api/v1/portfolio.
//
// @Summary      Portfolio content
// @Tags         Portfolio
// @Produce      json
// @Success      200  {object}  content.Portfolio
// @Router       /portfolio [get]
func (h *portfolioAPI) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.site)
}

// Project handles GET /api/v1/projects/{id}.
//
// @Summary      Get a project
// @Tags         Portfolio
// @Produce      json
// @Param        id   path      int  true  "Project ID"
// @Success      200  {object}  content.Project
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /projects/{id} [get]
func (h *portfolioAPI) Project(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "project id must be an integer", "bad_request")
		return
	}
	p, err := h.site.Project(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "project not found", "not_found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}
