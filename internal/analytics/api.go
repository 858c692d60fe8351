package analytics

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kc-aidesigntech/atlas/internal/enrollee"
	"github.com/kc-aidesigntech/atlas/internal/identity"
	"github.com/kc-aidesigntech/atlas/internal/referral"
	"github.com/kc-aidesigntech/atlas/internal/resource"
	"github.com/kc-aidesigntech/atlas/internal/shared/errors"
	"github.com/kc-aidesigntech/atlas/internal/shared/httpx"
	"github.com/kc-aidesigntech/atlas/internal/shared/types"
)

// Handler serves the analytics endpoints. It reads a fresh snapshot per
// request; the computations themselves are pure.
type Handler struct {
	enrollees *enrollee.Repository
	referrals *referral.Repository
	resources *resource.Repository
	guard     *identity.Guard
}

// NewHandler creates a new analytics handler
func NewHandler(enrollees *enrollee.Repository, referrals *referral.Repository, resources *resource.Repository, guard *identity.Guard) *Handler {
	return &Handler{enrollees: enrollees, referrals: referrals, resources: resources, guard: guard}
}

// Routes registers the analytics routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/summary", h.Summary)
	r.Get("/enrollees/{enrolleeID}/wellness", h.Wellness)
	r.Get("/enrollees/{enrolleeID}/recommendation", h.Recommendation)
	return r
}

// Summary returns the full population dashboard
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	if _, err := h.guard.Require(r.Context(), identity.ActionViewEnrollee); err != nil {
		httpx.Error(w, err)
		return
	}

	subjects, err := h.enrollees.List(r.Context(), enrollee.ListFilter{})
	if err != nil {
		httpx.Error(w, err)
		return
	}
	referrals, err := h.referrals.List(r.Context(), referral.ListFilter{})
	if err != nil {
		httpx.Error(w, err)
		return
	}
	resources, err := h.resources.List(r.Context(), resource.ListFilter{})
	if err != nil {
		httpx.Error(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, BuildSummary(subjects, referrals, resources))
}

// Wellness returns one enrollee's composite wellness and trend bucket
func (h *Handler) Wellness(w http.ResponseWriter, r *http.Request) {
	subject, err := h.loadSubject(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	subjects, err := h.enrollees.List(r.Context(), enrollee.ListFilter{})
	if err != nil {
		httpx.Error(w, err)
		return
	}

	wellness := SubjectWellness(subject)
	average := AverageWellness(subjects)
	httpx.JSON(w, http.StatusOK, map[string]any{
		"enrollee_id":        subject.ID,
		"wellness":           wellness,
		"population_average": average,
		"trend":              ClassifyTrend(wellness, average),
	})
}

// Recommendation returns the advisory risk-tier suggestion for one enrollee
func (h *Handler) Recommendation(w http.ResponseWriter, r *http.Request) {
	subject, err := h.loadSubject(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, RecommendTierFor(subject))
}

func (h *Handler) loadSubject(r *http.Request) (*enrollee.Enrollee, error) {
	if _, err := h.guard.Require(r.Context(), identity.ActionViewEnrollee); err != nil {
		return nil, err
	}
	id, err := types.ParseID(chi.URLParam(r, "enrolleeID"))
	if err != nil {
		return nil, errors.BadRequest("invalid enrollee ID")
	}
	return h.enrollees.FindByID(r.Context(), id)
}
