package shared

import "time"

// DomainEvent represents an event that has occurred in the domain
type DomainEvent interface {
	EventName() string
	OccurredAt() time.Time
}

// EventPublisher delivers domain events to interested subscribers.
type EventPublisher interface {
	Publish(event DomainEvent)
}

// EventPublisherFunc adapts a function to EventPublisher.
type EventPublisherFunc func(event DomainEvent)

// Publish calls f(event).
func (f EventPublisherFunc) Publish(event DomainEvent) {
	f(event)
}

// NopPublisher discards every event.
var NopPublisher EventPublisher = EventPublisherFunc(func(DomainEvent) {})

// AggregateRoot collects events raised while an aggregate is mutated so they
// can be published after the mutation is committed.
type AggregateRoot struct {
	events []DomainEvent
}

// AddEvent adds a domain event to be dispatched
func (a *AggregateRoot) AddEvent(event DomainEvent) {
	a.events = append(a.events, event)
}

// Events returns and clears pending domain events
func (a *AggregateRoot) Events() []DomainEvent {
	events := a.events
	a.events = nil
	return events
}
