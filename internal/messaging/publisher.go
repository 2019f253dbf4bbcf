package messaging

import (
	"context"

	"github.com/fractionlabs/vault-engine/internal/domain"
)

// Publisher defines the interface for publishing lifecycle and distribution
// events to the message broker. Publishing is fire-and-forget from the
// caller's perspective: delivery to notification consumers happens elsewhere.
//
//go:generate mockgen -source=publisher.go -destination=../mocks/publisher.go -package=mocks -mock_names=Publisher=MockPublisher
type Publisher interface {
	// PublishEvent publishes a vault event to the message broker
	PublishEvent(ctx context.Context, event *domain.Event) error
	// Close closes the connection
	Close()
}
