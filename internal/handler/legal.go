package handler

import (
	"errors"
	"net/http"

	"github.com/stridehq/stride/internal/service"
)

type LegalHandler struct {
	legal *service.LegalService
}

func NewLegalHandler(legal *service.LegalService) *LegalHandler {
	return &LegalHandler{legal: legal}
}

// List handles GET /api/legal.
func (h *LegalHandler) List(w http.ResponseWriter, r *http.Request) {
	docs, err := h.legal.Pages()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", "failed to load pages")
		return
	}

	pages := make([]map[string]string, 0, len(docs))
	for _, doc := range docs {
		pages = append(pages, map[string]string{
			"slug":  doc.Slug,
			"title": doc.Meta.Title,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"pages": pages})
}

// Page handles GET /api/legal/{slug} and returns the rendered HTML.
func (h *LegalHandler) Page(w http.ResponseWriter, r *http.Request) {
	doc, err := h.legal.Page(r.PathValue("slug"))
	if err != nil {
		if errors.Is(err, service.ErrPageNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "page not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal", "failed to render page")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"slug":  doc.Slug,
		"title": doc.Meta.Title,
		"html":  doc.HTML,
	})
}
