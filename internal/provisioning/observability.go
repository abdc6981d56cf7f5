package provisioning

import (
	"fmt"
	"log"
	"time"
)

// Observer receives progress and resource-lifecycle events during a run.
type Observer interface {
	// Printf logs a free-form message.
	Printf(format string, v ...any)
	// Event emits a structured event.
	Event(event Event)
}

// Event is one structured provisioning event.
type Event struct {
	Type     EventType
	Step     string
	Resource string
	Message  string
}

// EventType classifies provisioning events.
type EventType string

const (
	// EventStepStarted indicates a build step has started.
	EventStepStarted EventType = "step.started"
	// EventStepCompleted indicates a build step completed.
	EventStepCompleted EventType = "step.completed"
	// EventStepFailed indicates a build step failed.
	EventStepFailed EventType = "step.failed"
	// EventResourceCreating indicates a resource is being created.
	EventResourceCreating EventType = "resource.creating"
	// EventResourceCreated indicates a resource was created and tagged.
	EventResourceCreated EventType = "resource.created"
	// EventResourceExists indicates the resource was already present.
	EventResourceExists EventType = "resource.exists"
	// EventWarning indicates a non-fatal problem.
	EventWarning EventType = "warning"
)

// ConsoleObserver writes events through the standard log package.
type ConsoleObserver struct{}

// NewConsoleObserver creates a console-based observer.
func NewConsoleObserver() *ConsoleObserver {
	return &ConsoleObserver{}
}

// Printf implements Observer.
func (o *ConsoleObserver) Printf(format string, v ...any) {
	log.Printf(format, v...)
}

// Event implements Observer.
func (o *ConsoleObserver) Event(event Event) {
	switch {
	case event.Step != "" && event.Resource != "":
		log.Printf("%s [%s] %s: %s", event.Type, event.Step, event.Resource, event.Message)
	case event.Step != "":
		log.Printf("%s [%s] %s", event.Type, event.Step, event.Message)
	default:
		log.Printf("%s %s", event.Type, event.Message)
	}
}

// LogStepStart emits a step start event.
func LogStepStart(obs Observer, step string) {
	obs.Event(Event{Type: EventStepStarted, Step: step, Message: "starting"})
}

// LogStepComplete emits a step completion event.
func LogStepComplete(obs Observer, step string, d time.Duration) {
	obs.Event(Event{
		Type:    EventStepCompleted,
		Step:    step,
		Message: fmt.Sprintf("completed in %v", d.Round(time.Millisecond)),
	})
}

// LogStepFailed emits a step failure event.
func LogStepFailed(obs Observer, step string, err error) {
	obs.Event(Event{Type: EventStepFailed, Step: step, Message: err.Error()})
}
