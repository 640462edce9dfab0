package events

// EventSink represents a destination for playback events. Implementations
// can publish events to different backends like watermill, logging systems,
// or in-memory collectors.
type EventSink interface {
	// PublishEvent publishes an event to the sink.
	// Returns an error if the event could not be published.
	PublishEvent(event Event) error
}
