package events

// Event represents a structured state change emitted by the router.
type Event interface {
	EventType() string
}

// Emitter broadcasts events to downstream subscribers (e.g. the HTTP API,
// indexers, audit sinks).
type Emitter interface {
	Emit(Event)
}

// NoopEmitter satisfies the Emitter interface while discarding all events.
// Components use it when no subscriber is wired.
type NoopEmitter struct{}

// Emit implements the Emitter interface.
func (NoopEmitter) Emit(Event) {}
