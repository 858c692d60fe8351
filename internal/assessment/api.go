package assessment

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kc-aidesigntech/atlas/internal/identity"
	"github.com/kc-aidesigntech/atlas/internal/shared/errors"
	"github.com/kc-aidesigntech/atlas/internal/shared/httpx"
	"github.com/kc-aidesigntech/atlas/internal/shared/types"
)

// Handler serves the assessment sync endpoints
type Handler struct {
	service *Service
	guard   *identity.Guard
}

// NewHandler creates a new assessment handler
func NewHandler(service *Service, guard *identity.Guard) *Handler {
	return &Handler{service: service, guard: guard}
}

// Routes registers the assessment routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/status", h.Status)
	r.Post("/enrollees/{enrolleeID}/sync", h.Sync)
	return r
}

// Status reports whether the integration is configured
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	if _, err := h.guard.Require(r.Context(), identity.ActionViewEnrollee); err != nil {
		httpx.Error(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{
		"enabled": h.service.Enabled(),
		"source":  h.service.Source(),
	})
}

// Sync refreshes one enrollee's risk profile from the external source
func (h *Handler) Sync(w http.ResponseWriter, r *http.Request) {
	if _, err := h.guard.Require(r.Context(), identity.ActionEditEnrollee); err != nil {
		httpx.Error(w, err)
		return
	}

	id, err := types.ParseID(chi.URLParam(r, "enrolleeID"))
	if err != nil {
		httpx.Error(w, errors.BadRequest("invalid enrollee ID"))
		return
	}

	result, err := h.service.Sync(r.Context(), id)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, result)
}
