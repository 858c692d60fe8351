package audit

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kc-aidesigntech/atlas/internal/identity"
	"github.com/kc-aidesigntech/atlas/internal/shared/errors"
	"github.com/kc-aidesigntech/atlas/internal/shared/httpx"
	"github.com/kc-aidesigntech/atlas/internal/shared/types"
)

// Handler serves the admin-only audit endpoints
type Handler struct {
	repo  *Repository
	guard *identity.Guard
}

// NewHandler creates a new audit handler
func NewHandler(repo *Repository, guard *identity.Guard) *Handler {
	return &Handler{repo: repo, guard: guard}
}

// Routes registers the audit routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Get("/verify", h.Verify)
	return r
}

// List returns audit entries, newest first
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if _, err := h.guard.Require(r.Context(), identity.ActionAdminConsole); err != nil {
		httpx.Error(w, err)
		return
	}

	var filter ListFilter
	q := r.URL.Query()
	if v := q.Get("actor_id"); v != "" {
		id, err := types.ParseID(v)
		if err != nil {
			httpx.Error(w, errors.BadRequest("invalid actor ID"))
			return
		}
		filter.ActorID = id
	}
	if v := q.Get("resource_id"); v != "" {
		id, err := types.ParseID(v)
		if err != nil {
			httpx.Error(w, errors.BadRequest("invalid resource ID"))
			return
		}
		filter.ResourceID = id
	}
	filter.Action = q.Get("action")
	filter.ResourceType = q.Get("resource_type")
	if v := q.Get("limit"); v != "" {
		filter.Limit, _ = strconv.Atoi(v)
	}
	if v := q.Get("offset"); v != "" {
		filter.Offset, _ = strconv.Atoi(v)
	}

	entries, err := h.repo.List(r.Context(), filter)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{"data": entries, "total": len(entries)})
}

// Verify walks the full chain and reports integrity
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	if _, err := h.guard.Require(r.Context(), identity.ActionAdminConsole); err != nil {
		httpx.Error(w, err)
		return
	}

	status, err := h.repo.VerifyChain(r.Context())
	if err != nil {
		httpx.Error(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, status)
}
