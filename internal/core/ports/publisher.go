package ports

import "github.com/lockstep-network/lockstep/internal/core/domain"

// EventPublisher receives the facts produced by agreement transitions, in
// the order they were raised.
type EventPublisher interface {
	Publish(events ...domain.Event)
}
