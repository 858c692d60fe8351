package resource

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kc-aidesigntech/atlas/internal/enrollee"
	"github.com/kc-aidesigntech/atlas/internal/identity"
	"github.com/kc-aidesigntech/atlas/internal/shared/errors"
	"github.com/kc-aidesigntech/atlas/internal/shared/events"
	"github.com/kc-aidesigntech/atlas/internal/shared/httpx"
	"github.com/kc-aidesigntech/atlas/internal/shared/types"
)

// Handler provides HTTP handlers for the resource directory
type Handler struct {
	repo      *Repository
	enrollees *enrollee.Repository
	guard     *identity.Guard
	bus       events.EventBus
}

// NewHandler creates a new resource handler
func NewHandler(repo *Repository, enrollees *enrollee.Repository, guard *identity.Guard, bus events.EventBus) *Handler {
	return &Handler{repo: repo, enrollees: enrollees, guard: guard, bus: bus}
}

// Routes registers the resource routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Post("/", h.Create)

	r.Route("/{resourceID}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Put("/", h.Update)
		r.Delete("/", h.Delete)
	})

	return r
}

type upsertRequest struct {
	Name        string             `json:"name"`
	Category    Category           `json:"category"`
	Description string             `json:"description"`
	Address     *types.Address     `json:"address,omitempty"`
	Contact     *types.ContactInfo `json:"contact,omitempty"`
	Eligibility *Eligibility       `json:"eligibility,omitempty"`
}

// List returns directory resources. When enrollee_id is given, only resources
// whose eligibility criteria match that enrollee are returned.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if _, err := h.guard.Require(r.Context(), identity.ActionViewResource); err != nil {
		httpx.Error(w, err)
		return
	}

	filter := ListFilter{
		Search:   r.URL.Query().Get("search"),
		Category: Category(r.URL.Query().Get("category")),
	}

	resources, err := h.repo.List(r.Context(), filter)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	if enrolleeParam := r.URL.Query().Get("enrollee_id"); enrolleeParam != "" {
		enrolleeID, err := types.ParseID(enrolleeParam)
		if err != nil {
			httpx.Error(w, errors.BadRequest("invalid enrollee ID"))
			return
		}
		subject, err := h.enrollees.FindByID(r.Context(), enrolleeID)
		if err != nil {
			httpx.Error(w, err)
			return
		}
		resources = FilterEligible(subject, resources)
	}

	httpx.JSON(w, http.StatusOK, map[string]any{"data": resources, "total": len(resources)})
}

// Get returns one resource
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if _, err := h.guard.Require(r.Context(), identity.ActionViewResource); err != nil {
		httpx.Error(w, err)
		return
	}

	id, err := types.ParseID(chi.URLParam(r, "resourceID"))
	if err != nil {
		httpx.Error(w, errors.BadRequest("invalid resource ID"))
		return
	}

	res, err := h.repo.FindByID(r.Context(), id)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, res)
}

// Create adds a resource listing
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := h.guard.Require(r.Context(), identity.ActionCreateResource)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	var req upsertRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}

	res, err := New(req.Name, req.Category, req.Description)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	applyUpsert(res, &req)

	if err := h.repo.Save(r.Context(), res); err != nil {
		httpx.Error(w, err)
		return
	}

	h.publish(r.Context(), actor, events.New(events.TypeResourceCreated, res))
	httpx.JSON(w, http.StatusCreated, res)
}

// Update edits a resource listing
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	actor, err := h.guard.Require(r.Context(), identity.ActionEditResource)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	id, err := types.ParseID(chi.URLParam(r, "resourceID"))
	if err != nil {
		httpx.Error(w, errors.BadRequest("invalid resource ID"))
		return
	}

	res, err := h.repo.FindByID(r.Context(), id)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	var req upsertRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}

	if req.Name != "" {
		res.Name = req.Name
	}
	if req.Category != "" {
		res.Category = req.Category
	}
	if req.Description != "" {
		res.Description = req.Description
	}
	applyUpsert(res, &req)

	if err := h.repo.Update(r.Context(), res); err != nil {
		httpx.Error(w, err)
		return
	}

	h.publish(r.Context(), actor, events.New(events.TypeResourceUpdated, res))
	httpx.JSON(w, http.StatusOK, res)
}

// Delete removes a resource listing
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, err := h.guard.Require(r.Context(), identity.ActionDeleteResource)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	id, err := types.ParseID(chi.URLParam(r, "resourceID"))
	if err != nil {
		httpx.Error(w, errors.BadRequest("invalid resource ID"))
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		httpx.Error(w, err)
		return
	}

	h.publish(r.Context(), actor, events.New(events.TypeResourceDeleted, map[string]any{"id": id}))
	httpx.JSON(w, http.StatusNoContent, nil)
}

func applyUpsert(res *Resource, req *upsertRequest) {
	if req.Address != nil {
		res.Address = req.Address
	}
	if req.Contact != nil {
		res.Contact = *req.Contact
	}
	if req.Eligibility != nil {
		elig := *req.Eligibility
		if elig.ClassificationCodes == nil {
			elig.ClassificationCodes = []string{}
		}
		res.Eligibility = elig
	}
}

func (h *Handler) publish(ctx context.Context, actor *identity.Profile, event events.Event) {
	if h.bus == nil {
		return
	}
	if actor != nil {
		event = event.WithActor(actor.PrincipalID, string(actor.Role))
	}
	_ = h.bus.Publish(ctx, event)
}
