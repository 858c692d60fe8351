package enrollee

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kc-aidesigntech/atlas/internal/identity"
	"github.com/kc-aidesigntech/atlas/internal/shared/errors"
	"github.com/kc-aidesigntech/atlas/internal/shared/events"
	"github.com/kc-aidesigntech/atlas/internal/shared/httpx"
	"github.com/kc-aidesigntech/atlas/internal/shared/metrics"
	"github.com/kc-aidesigntech/atlas/internal/shared/types"
)

// Handler provides HTTP handlers for enrollees and care plans
type Handler struct {
	repo  *Repository
	guard *identity.Guard
	bus   events.EventBus
}

// NewHandler creates a new enrollee handler
func NewHandler(repo *Repository, guard *identity.Guard, bus events.EventBus) *Handler {
	return &Handler{repo: repo, guard: guard, bus: bus}
}

// Routes registers the enrollee routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Post("/", h.Create)

	r.Route("/{enrolleeID}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Put("/", h.Update)
		r.Delete("/", h.Delete)
		r.Put("/risk-profile", h.SetRiskProfile)

		r.Route("/care-plan", func(r chi.Router) {
			r.Get("/", h.ListCarePlan)
			r.Post("/", h.AddCarePlanEntry)
			r.Put("/{entryID}/status", h.SetInsightStatus)
			r.Delete("/{entryID}", h.DeleteCarePlanEntry)
		})
	})

	return r
}

type upsertRequest struct {
	FirstName   string           `json:"first_name"`
	LastName    string           `json:"last_name"`
	DateOfBirth *time.Time       `json:"date_of_birth,omitempty"`
	Address     *types.Address   `json:"address,omitempty"`
	CareTeam    []CareTeamMember `json:"care_team,omitempty"`
}

type riskProfileRequest struct {
	Tier                int            `json:"tier"`
	WellnessScores      map[string]int `json:"wellness_scores"`
	ClassificationCodes []string       `json:"classification_codes"`
	DomainScores        map[string]int `json:"domain_scores,omitempty"`
}

type carePlanRequest struct {
	Kind EntryKind `json:"kind"`
	Body string    `json:"body"`
}

type insightStatusRequest struct {
	Status InsightStatus `json:"status"`
}

// List returns enrollees matching the query filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if _, err := h.guard.Require(r.Context(), identity.ActionViewEnrollee); err != nil {
		httpx.Error(w, err)
		return
	}

	filter := ListFilter{Search: r.URL.Query().Get("search")}
	if t := r.URL.Query().Get("tier"); t != "" {
		tier, err := strconv.Atoi(t)
		if err != nil || tier < TierUnassessed || tier > TierThree {
			httpx.Error(w, errors.BadRequest("invalid tier filter"))
			return
		}
		filter.Tier = &tier
	}

	enrollees, err := h.repo.List(r.Context(), filter)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{"data": enrollees, "total": len(enrollees)})
}

// Get returns one enrollee. A deleted enrollee yields 404, not an error page.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if _, err := h.guard.Require(r.Context(), identity.ActionViewEnrollee); err != nil {
		httpx.Error(w, err)
		return
	}

	id, err := types.ParseID(chi.URLParam(r, "enrolleeID"))
	if err != nil {
		httpx.Error(w, errors.BadRequest("invalid enrollee ID"))
		return
	}

	e, err := h.repo.FindByID(r.Context(), id)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, e)
}

// Create enrolls a new case subject.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := h.guard.Require(r.Context(), identity.ActionCreateEnrollee)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	var req upsertRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}

	e, err := New(req.FirstName, req.LastName)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	e.DateOfBirth = req.DateOfBirth
	e.Address = req.Address
	if req.CareTeam != nil {
		e.CareTeam = req.CareTeam
	}

	if err := h.repo.Save(r.Context(), e); err != nil {
		httpx.Error(w, err)
		return
	}

	metrics.RecordEnrolleeCreated()
	h.publish(r.Context(), actor, events.New(events.TypeEnrolleeCreated, e))

	httpx.JSON(w, http.StatusCreated, e)
}

// Update replaces demographic fields and the care team.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	actor, err := h.guard.Require(r.Context(), identity.ActionEditEnrollee)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	id, err := types.ParseID(chi.URLParam(r, "enrolleeID"))
	if err != nil {
		httpx.Error(w, errors.BadRequest("invalid enrollee ID"))
		return
	}

	var req upsertRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}

	e, err := h.repo.FindByID(r.Context(), id)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	if req.FirstName != "" {
		e.FirstName = req.FirstName
	}
	if req.LastName != "" {
		e.LastName = req.LastName
	}
	if req.DateOfBirth != nil {
		e.DateOfBirth = req.DateOfBirth
	}
	if req.Address != nil {
		e.Address = req.Address
	}
	if req.CareTeam != nil {
		e.CareTeam = req.CareTeam
	}
	e.UpdatedAt = time.Now()

	if err := h.repo.Update(r.Context(), e); err != nil {
		httpx.Error(w, err)
		return
	}

	h.publish(r.Context(), actor, events.New(events.TypeEnrolleeUpdated, e))
	httpx.JSON(w, http.StatusOK, e)
}

// SetRiskProfile replaces the enrollee's risk profile.
func (h *Handler) SetRiskProfile(w http.ResponseWriter, r *http.Request) {
	actor, err := h.guard.Require(r.Context(), identity.ActionEditEnrollee)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	id, err := types.ParseID(chi.URLParam(r, "enrolleeID"))
	if err != nil {
		httpx.Error(w, errors.BadRequest("invalid enrollee ID"))
		return
	}

	var req riskProfileRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}

	e, err := h.repo.FindByID(r.Context(), id)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	if err := e.SetRiskProfile(RiskProfile(req)); err != nil {
		httpx.Error(w, err)
		return
	}

	if err := h.repo.Update(r.Context(), e); err != nil {
		httpx.Error(w, err)
		return
	}

	h.publish(r.Context(), actor, events.New(events.TypeEnrolleeUpdated, e))
	httpx.JSON(w, http.StatusOK, e)
}

// Delete removes an enrollee.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, err := h.guard.Require(r.Context(), identity.ActionDeleteEnrollee)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	id, err := types.ParseID(chi.URLParam(r, "enrolleeID"))
	if err != nil {
		httpx.Error(w, errors.BadRequest("invalid enrollee ID"))
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		httpx.Error(w, err)
		return
	}

	h.publish(r.Context(), actor, events.New(events.TypeEnrolleeDeleted, map[string]any{"id": id}))
	httpx.JSON(w, http.StatusNoContent, nil)
}

// ListCarePlan returns an enrollee's care-plan entries.
func (h *Handler) ListCarePlan(w http.ResponseWriter, r *http.Request) {
	if _, err := h.guard.Require(r.Context(), identity.ActionViewCarePlanNote); err != nil {
		httpx.Error(w, err)
		return
	}

	id, err := types.ParseID(chi.URLParam(r, "enrolleeID"))
	if err != nil {
		httpx.Error(w, errors.BadRequest("invalid enrollee ID"))
		return
	}

	entries, err := h.repo.ListEntries(r.Context(), id)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{"data": entries, "total": len(entries)})
}

// AddCarePlanEntry appends a note, insight or alert.
func (h *Handler) AddCarePlanEntry(w http.ResponseWriter, r *http.Request) {
	actor, err := h.guard.Require(r.Context(), identity.ActionCreateCarePlanNote)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	id, err := types.ParseID(chi.URLParam(r, "enrolleeID"))
	if err != nil {
		httpx.Error(w, errors.BadRequest("invalid enrollee ID"))
		return
	}

	// The enrollee must still exist; a dangling entry would never render.
	if _, err := h.repo.FindByID(r.Context(), id); err != nil {
		httpx.Error(w, err)
		return
	}

	var req carePlanRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}

	entry, err := NewCarePlanEntry(id, req.Kind, req.Body, actor.PrincipalID)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	if err := h.repo.AddEntry(r.Context(), entry); err != nil {
		httpx.Error(w, err)
		return
	}

	h.publish(r.Context(), actor, events.New(events.TypeCarePlanAdded, entry))
	httpx.JSON(w, http.StatusCreated, entry)
}

// SetInsightStatus accepts or dismisses an insight entry.
func (h *Handler) SetInsightStatus(w http.ResponseWriter, r *http.Request) {
	if _, err := h.guard.Require(r.Context(), identity.ActionEditCarePlanNote); err != nil {
		httpx.Error(w, err)
		return
	}

	entryID, err := types.ParseID(chi.URLParam(r, "entryID"))
	if err != nil {
		httpx.Error(w, errors.BadRequest("invalid entry ID"))
		return
	}

	var req insightStatusRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}

	entry, err := h.repo.FindEntry(r.Context(), entryID)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	if err := entry.SetInsightStatus(req.Status); err != nil {
		httpx.Error(w, err)
		return
	}

	if err := h.repo.UpdateEntryStatus(r.Context(), entryID, req.Status); err != nil {
		httpx.Error(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, entry)
}

// DeleteCarePlanEntry removes a care-plan entry.
func (h *Handler) DeleteCarePlanEntry(w http.ResponseWriter, r *http.Request) {
	if _, err := h.guard.Require(r.Context(), identity.ActionDeleteCarePlanNote); err != nil {
		httpx.Error(w, err)
		return
	}

	entryID, err := types.ParseID(chi.URLParam(r, "entryID"))
	if err != nil {
		httpx.Error(w, errors.BadRequest("invalid entry ID"))
		return
	}

	if err := h.repo.DeleteEntry(r.Context(), entryID); err != nil {
		httpx.Error(w, err)
		return
	}

	httpx.JSON(w, http.StatusNoContent, nil)
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
