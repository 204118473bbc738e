package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sniperbusiness/ebook-funnel/internal/entity"
)

type EbookHandler struct {
	Repo entity.EbookRepositoryInterface
	log  *zap.SugaredLogger
}

func NewEbookHandler(repo entity.EbookRepositoryInterface, log *zap.SugaredLogger) *EbookHandler {
	return &EbookHandler{Repo: repo, log: log}
}

// ListVisible handles GET /ebooks/public.
func (h *EbookHandler) ListVisible(w http.ResponseWriter, r *http.Request) {
	ebooks, err := h.Repo.FindVisible(r.Context())
	if err != nil {
		h.log.Errorw("failed to list visible ebooks", "error", err)
		writeErrorResponse(w, http.StatusInternalServerError, "DATABASE_ERROR", "internal error")
		return
	}
	writeJSON(w, http.StatusOK, ebooks)
}

// GetPublic handles GET /ebooks/public/{id}. Hidden and unknown ebooks answer null.
func (h *EbookHandler) GetPublic(w http.ResponseWriter, r *http.Request) {
	ebook, err := h.Repo.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, entity.ErrEbookNotFound) {
			writeJSON(w, http.StatusOK, nil)
			return
		}
		h.log.Errorw("failed to load ebook", "error", err)
		writeErrorResponse(w, http.StatusInternalServerError, "DATABASE_ERROR", "internal error")
		return
	}

	if !ebook.IsVisible {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	writeJSON(w, http.StatusOK, ebook)
}

// List handles GET /ebooks for admins.
func (h *EbookHandler) List(w http.ResponseWriter, r *http.Request) {
	ebooks, err := h.Repo.FindAll(r.Context())
	if err != nil {
		h.log.Errorw("failed to list ebooks", "error", err)
		writeErrorResponse(w, http.StatusInternalServerError, "DATABASE_ERROR", "internal error")
		return
	}
	writeJSON(w, http.StatusOK, ebooks)
}
