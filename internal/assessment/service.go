package assessment

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/kc-aidesigntech/atlas/internal/enrollee"
	"github.com/kc-aidesigntech/atlas/internal/shared/errors"
	"github.com/kc-aidesigntech/atlas/internal/shared/events"
	"github.com/kc-aidesigntech/atlas/internal/shared/metrics"
	"github.com/kc-aidesigntech/atlas/internal/shared/types"
)

// Fetcher supplies the latest assessment for a subject. Both the HTTP client
// and the legacy store satisfy it.
type Fetcher interface {
	FetchLatest(ctx context.Context, subjectRef string) (*Record, error)
}

// SyncResult reports what a sync attempt did.
type SyncResult struct {
	Enrollee *enrollee.Enrollee `json:"enrollee"`

	// Synced is false when the external fetch failed or returned nothing and
	// the stored profile was served unchanged.
	Synced bool   `json:"synced"`
	Source string `json:"source,omitempty"`
}

// Service pulls external assessments into enrollee risk profiles.
type Service struct {
	source    Fetcher
	sourceTag string
	enrollees *enrollee.Repository
	bus       events.EventBus
	logger    zerolog.Logger
}

// NewService creates the sync service. source may be nil when the integration
// is not configured; Sync then always falls back to the stored profile.
func NewService(source Fetcher, sourceTag string, enrollees *enrollee.Repository, bus events.EventBus, logger zerolog.Logger) *Service {
	return &Service{
		source:    source,
		sourceTag: sourceTag,
		enrollees: enrollees,
		bus:       bus,
		logger:    logger.With().Str("component", "assessment").Logger(),
	}
}

// Enabled reports whether an external source is configured.
func (s *Service) Enabled() bool {
	return s.source != nil
}

// Source names the configured fetcher, empty when disabled.
func (s *Service) Source() string {
	if s.source == nil {
		return ""
	}
	return s.sourceTag
}

// Sync refreshes one enrollee's risk profile from the external source. A
// failed or empty fetch never fails the call: the stored profile is returned
// with Synced=false.
func (s *Service) Sync(ctx context.Context, enrolleeID types.ID) (*SyncResult, error) {
	subject, err := s.enrollees.FindByID(ctx, enrolleeID)
	if err != nil {
		return nil, err
	}

	if s.source == nil {
		return nil, errors.Unavailable("assessment integration")
	}

	rec, err := s.source.FetchLatest(ctx, enrolleeID.String())
	if err != nil {
		s.logger.Warn().Err(err).
			Str("enrollee_id", enrolleeID.String()).
			Msg("assessment fetch failed, serving stored profile")
		metrics.RecordAssessmentSync("fallback")
		return &SyncResult{Enrollee: subject}, nil
	}
	if rec == nil {
		metrics.RecordAssessmentSync("empty")
		return &SyncResult{Enrollee: subject}, nil
	}

	if err := subject.SetRiskProfile(ToRiskProfile(rec)); err != nil {
		return nil, err
	}
	if err := s.enrollees.Update(ctx, subject); err != nil {
		return nil, err
	}

	metrics.RecordAssessmentSync("synced")
	if s.bus != nil {
		_ = s.bus.Publish(ctx, events.New(events.TypeEnrolleeUpdated, subject))
	}

	s.logger.Info().
		Str("enrollee_id", enrolleeID.String()).
		Int("composite_score", rec.CompositeScore).
		Int("tier", subject.RiskProfile.Tier).
		Msg("assessment synced")

	return &SyncResult{Enrollee: subject, Synced: true, Source: s.sourceTag}, nil
}
