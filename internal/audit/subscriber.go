package audit

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/kc-aidesigntech/atlas/internal/shared/events"
)

// Subscriber turns domain events into audit entries.
type Subscriber struct {
	repo   *Repository
	bus    events.EventBus
	logger zerolog.Logger
}

// NewSubscriber creates a new audit subscriber
func NewSubscriber(repo *Repository, bus events.EventBus, logger zerolog.Logger) *Subscriber {
	return &Subscriber{
		repo:   repo,
		bus:    bus,
		logger: logger.With().Str("component", "audit").Logger(),
	}
}

// Start subscribes to every audited event family. Subscriptions end when ctx
// is cancelled.
func (s *Subscriber) Start(ctx context.Context) error {
	patterns := []struct {
		pattern      string
		consumerName string
	}{
		{"enrollee.*", "audit-enrollee-subscriber"},
		{"resource.*", "audit-resource-subscriber"},
		{"referral.*", "audit-referral-subscriber"},
		{"profile.*", "audit-profile-subscriber"},
		{"sandbox.*", "audit-sandbox-subscriber"},
	}

	for _, p := range patterns {
		if err := s.bus.Subscribe(ctx, p.pattern, p.consumerName, s.handleEvent); err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", p.pattern, err)
		}
	}
	return nil
}

func (s *Subscriber) handleEvent(ctx context.Context, event events.Event) error {
	entry := FromEvent(event)
	if entry == nil {
		return nil
	}

	if err := s.repo.Append(ctx, entry); err != nil {
		s.logger.Error().Err(err).Str("event_type", event.Type).Msg("failed to append audit entry")
		return err
	}
	return nil
}
