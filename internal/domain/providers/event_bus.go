package providers

import (
	"context"

	"github.com/cartlane/sessionrec/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to artifact
// lifecycle events across service replicas.
type EventBus interface {
	// Publish publishes an event to all subscribers of a channel.
	Publish(ctx context.Context, channel string, event *entities.ArtifactEvent) error

	// Subscribe subscribes to events on a channel. The subscription ends
	// when the context is cancelled or Unsubscribe is called.
	Subscribe(ctx context.Context, channel string) (<-chan *entities.ArtifactEvent, error)

	// Unsubscribe removes all subscriptions for a channel.
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions.
	Close() error
}

// EventChannelArtifactsPublished carries announcements that the offline
// pipeline published a new artifact bundle.
const EventChannelArtifactsPublished = "artifacts:published"
