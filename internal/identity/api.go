package identity

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kc-aidesigntech/atlas/internal/shared/errors"
	"github.com/kc-aidesigntech/atlas/internal/shared/events"
	"github.com/kc-aidesigntech/atlas/internal/shared/httpx"
	"github.com/kc-aidesigntech/atlas/internal/shared/types"
)

// Handler provides HTTP handlers for profiles and user management
type Handler struct {
	repo  *Repository
	guard *Guard
	bus   events.EventBus
}

// NewHandler creates a new identity handler
func NewHandler(repo *Repository, guard *Guard, bus events.EventBus) *Handler {
	return &Handler{repo: repo, guard: guard, bus: bus}
}

// Routes registers the identity routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/me", h.Me)
	r.Get("/me/navigation", h.MyNavigation)

	r.Route("/users", func(r chi.Router) {
		r.Get("/", h.ListUsers)
		r.Put("/{principalID}/role", h.SetRole)
		r.Put("/{principalID}/assignments", h.SetAssignments)
	})

	return r
}

type meResponse struct {
	Profile *Profile `json:"profile"`
	Role    Role     `json:"role"`
}

type setRoleRequest struct {
	Role Role `json:"role"`
}

type setAssignmentsRequest struct {
	EnrolleeIDs []types.ID `json:"enrollee_ids"`
}

// Me returns the caller's profile, creating a default one on first access.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	profile, err := h.guard.Resolve(r.Context())
	if err != nil {
		httpx.Error(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, meResponse{Profile: profile, Role: ResolveRole(profile)})
}

// MyNavigation returns the navigation items for the caller's role.
func (h *Handler) MyNavigation(w http.ResponseWriter, r *http.Request) {
	profile, err := h.guard.Resolve(r.Context())
	if err != nil {
		httpx.Error(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{
		"role":  ResolveRole(profile),
		"items": NavigationFor(ResolveRole(profile)),
	})
}

// ListUsers returns all profiles. Requires user management permission.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	if _, err := h.guard.Require(r.Context(), ActionManageUsers); err != nil {
		httpx.Error(w, err)
		return
	}

	profiles, err := h.repo.List(r.Context())
	if err != nil {
		httpx.Error(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{"data": profiles, "total": len(profiles)})
}

// SetRole assigns a role to a user. Role changes are an administrative
// action; there is no self-service role switch.
func (h *Handler) SetRole(w http.ResponseWriter, r *http.Request) {
	actor, err := h.guard.Require(r.Context(), ActionManageUsers)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	principalID, err := types.ParseID(chi.URLParam(r, "principalID"))
	if err != nil {
		httpx.Error(w, errors.BadRequest("invalid principal ID"))
		return
	}

	var req setRoleRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	if !KnownRole(req.Role) {
		httpx.Error(w, errors.Validation("unknown role", map[string]string{"role": string(req.Role)}))
		return
	}

	if err := h.repo.UpdateRole(r.Context(), principalID, req.Role); err != nil {
		httpx.Error(w, err)
		return
	}

	h.publish(r.Context(), events.New(events.TypeRoleChanged, map[string]any{
		"principal_id": principalID,
		"role":         req.Role,
	}).WithActor(actor.PrincipalID, string(actor.Role)))

	httpx.JSON(w, http.StatusOK, map[string]any{"principal_id": principalID, "role": req.Role})
}

// SetAssignments replaces a user's assigned enrollee list.
func (h *Handler) SetAssignments(w http.ResponseWriter, r *http.Request) {
	if _, err := h.guard.Require(r.Context(), ActionManageUsers); err != nil {
		httpx.Error(w, err)
		return
	}

	principalID, err := types.ParseID(chi.URLParam(r, "principalID"))
	if err != nil {
		httpx.Error(w, errors.BadRequest("invalid principal ID"))
		return
	}

	var req setAssignmentsRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}

	if err := h.repo.UpdateAssignments(r.Context(), principalID, req.EnrolleeIDs); err != nil {
		httpx.Error(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{
		"principal_id": principalID,
		"enrollee_ids": req.EnrolleeIDs,
	})
}

// publish sends an event, tolerating an absent or failing bus. Event delivery
// never blocks a user-facing write.
func (h *Handler) publish(ctx context.Context, event events.Event) {
	if h.bus == nil {
		return
	}
	_ = h.bus.Publish(ctx, event)
}
