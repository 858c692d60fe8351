package referral

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kc-aidesigntech/atlas/internal/identity"
	"github.com/kc-aidesigntech/atlas/internal/resource"
	"github.com/kc-aidesigntech/atlas/internal/shared/errors"
	"github.com/kc-aidesigntech/atlas/internal/shared/events"
	"github.com/kc-aidesigntech/atlas/internal/shared/httpx"
	"github.com/kc-aidesigntech/atlas/internal/shared/metrics"
	"github.com/kc-aidesigntech/atlas/internal/shared/types"
)

// Handler provides HTTP handlers for referrals
type Handler struct {
	repo      *Repository
	resources *resource.Repository
	guard     *identity.Guard
	bus       events.EventBus
}

// NewHandler creates a new referral handler
func NewHandler(repo *Repository, resources *resource.Repository, guard *identity.Guard, bus events.EventBus) *Handler {
	return &Handler{repo: repo, resources: resources, guard: guard, bus: bus}
}

// Routes registers the referral routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Post("/", h.Create)

	r.Route("/{referralID}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Delete("/", h.Delete)
		r.Post("/respond", h.Respond)
		r.Post("/cancel", h.Cancel)
		r.Post("/complete", h.Complete)
		r.Get("/messages", h.ListMessages)
		r.Post("/messages", h.PostMessage)
	})

	return r
}

type createRequest struct {
	EnrolleeID types.ID `json:"enrollee_id"`
	ResourceID types.ID `json:"resource_id"`
	Notes      string   `json:"notes"`
}

type respondRequest struct {
	Decision Status `json:"decision"`
	Notes    string `json:"notes"`
}

type messageRequest struct {
	Body string `json:"body"`
}

// List returns referrals, optionally filtered by enrollee, resource or status
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if _, err := h.guard.Require(r.Context(), identity.ActionViewReferral); err != nil {
		httpx.Error(w, err)
		return
	}

	var filter ListFilter
	if v := r.URL.Query().Get("enrollee_id"); v != "" {
		id, err := types.ParseID(v)
		if err != nil {
			httpx.Error(w, errors.BadRequest("invalid enrollee ID"))
			return
		}
		filter.EnrolleeID = id
	}
	if v := r.URL.Query().Get("resource_id"); v != "" {
		id, err := types.ParseID(v)
		if err != nil {
			httpx.Error(w, errors.BadRequest("invalid resource ID"))
			return
		}
		filter.ResourceID = id
	}
	if v := r.URL.Query().Get("status"); v != "" {
		status := Status(v)
		if !KnownStatus(status) {
			httpx.Error(w, errors.BadRequest("unknown referral status"))
			return
		}
		filter.Status = status
	}

	referrals, err := h.repo.List(r.Context(), filter)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{"data": referrals, "total": len(referrals)})
}

// Get returns one referral
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if _, err := h.guard.Require(r.Context(), identity.ActionViewReferral); err != nil {
		httpx.Error(w, err)
		return
	}

	ref, err := h.load(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, ref)
}

// Create opens a referral against a resource
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := h.guard.Require(r.Context(), identity.ActionCreateReferral)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	var req createRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}

	// The target resource must exist; its category also labels the metric.
	res, err := h.resources.FindByID(r.Context(), req.ResourceID)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	ref, err := New(req.EnrolleeID, req.ResourceID, actor.PrincipalID, req.Notes)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	if err := h.repo.Save(r.Context(), ref); err != nil {
		httpx.Error(w, err)
		return
	}

	metrics.RecordReferralCreated(string(res.Category))
	h.publish(r.Context(), actor, events.New(events.TypeReferralCreated, ref))
	httpx.JSON(w, http.StatusCreated, ref)
}

// Respond records the resource partner's accept or reject decision
func (h *Handler) Respond(w http.ResponseWriter, r *http.Request) {
	actor, err := h.guard.Require(r.Context(), identity.ActionRespondReferral)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	ref, err := h.load(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	var req respondRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}

	if err := ref.Respond(req.Decision, actor.PrincipalID, req.Notes); err != nil {
		httpx.Error(w, err)
		return
	}
	if err := h.repo.Update(r.Context(), ref); err != nil {
		httpx.Error(w, err)
		return
	}

	metrics.RecordReferralResponded(string(ref.Status))
	h.publish(r.Context(), actor, events.New(events.TypeReferralResponse, ref))
	httpx.JSON(w, http.StatusOK, ref)
}

// Cancel withdraws a pending referral
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	actor, err := h.guard.Require(r.Context(), identity.ActionCancelReferral)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	ref, err := h.load(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	if err := ref.Cancel(actor.PrincipalID); err != nil {
		httpx.Error(w, err)
		return
	}
	if err := h.repo.Update(r.Context(), ref); err != nil {
		httpx.Error(w, err)
		return
	}

	h.publish(r.Context(), actor, events.New(events.TypeReferralCancel, ref))
	httpx.JSON(w, http.StatusOK, ref)
}

// Complete marks an accepted referral as fulfilled
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	actor, err := h.guard.Require(r.Context(), identity.ActionEditReferral)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	ref, err := h.load(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	if err := ref.Complete(); err != nil {
		httpx.Error(w, err)
		return
	}
	if err := h.repo.Update(r.Context(), ref); err != nil {
		httpx.Error(w, err)
		return
	}

	h.publish(r.Context(), actor, events.New(events.TypeReferralResponse, ref))
	httpx.JSON(w, http.StatusOK, ref)
}

// Delete removes a referral and its thread
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	_, err := h.guard.Require(r.Context(), identity.ActionDeleteReferral)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	id, err := types.ParseID(chi.URLParam(r, "referralID"))
	if err != nil {
		httpx.Error(w, errors.BadRequest("invalid referral ID"))
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		httpx.Error(w, err)
		return
	}

	httpx.JSON(w, http.StatusNoContent, nil)
}

// ListMessages returns the referral's communication thread
func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	if _, err := h.guard.Require(r.Context(), identity.ActionViewReferral); err != nil {
		httpx.Error(w, err)
		return
	}

	ref, err := h.load(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	messages, err := h.repo.ListMessages(r.Context(), ref.ID)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{"data": messages, "total": len(messages)})
}

// PostMessage appends to the referral's communication thread
func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	actor, err := h.guard.Require(r.Context(), identity.ActionViewReferral)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	ref, err := h.load(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	var req messageRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}

	msg, err := NewMessage(ref.ID, actor.PrincipalID, req.Body)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	if err := h.repo.AddMessage(r.Context(), msg); err != nil {
		httpx.Error(w, err)
		return
	}

	h.publish(r.Context(), actor, events.New(events.TypeReferralMessage, msg))
	httpx.JSON(w, http.StatusCreated, msg)
}

func (h *Handler) load(r *http.Request) (*Referral, error) {
	id, err := types.ParseID(chi.URLParam(r, "referralID"))
	if err != nil {
		return nil, errors.BadRequest("invalid referral ID")
	}
	return h.repo.FindByID(r.Context(), id)
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
