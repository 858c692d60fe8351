package sandbox

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kc-aidesigntech/atlas/internal/identity"
	"github.com/kc-aidesigntech/atlas/internal/shared/httpx"
)

// Handler serves the sample-data endpoints
type Handler struct {
	seeder *Seeder
	guard  *identity.Guard
}

// NewHandler creates a new sandbox handler
func NewHandler(seeder *Seeder, guard *identity.Guard) *Handler {
	return &Handler{seeder: seeder, guard: guard}
}

// Routes registers the sandbox routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/load", h.Load)
	r.Post("/clear", h.Clear)
	return r
}

// Load writes the demo dataset
func (h *Handler) Load(w http.ResponseWriter, r *http.Request) {
	if _, err := h.guard.Require(r.Context(), identity.ActionLoadSampleData); err != nil {
		httpx.Error(w, err)
		return
	}

	report, err := h.seeder.Load(r.Context())
	if err != nil {
		httpx.Error(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, report)
}

// Clear removes the demo dataset
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	if _, err := h.guard.Require(r.Context(), identity.ActionLoadSampleData); err != nil {
		httpx.Error(w, err)
		return
	}

	report, err := h.seeder.Clear(r.Context())
	if err != nil {
		httpx.Error(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, report)
}
