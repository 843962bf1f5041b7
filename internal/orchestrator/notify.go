package orchestrator

// EventType tells what happened to a request.
type EventType int

const (
	EventDispatched EventType = iota
	EventCompleted
	EventFailed
)

func (t EventType) String() string {
	switch t {
	case EventDispatched:
		return "dispatched"
	case EventCompleted:
		return "completed"
	case EventFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Event reports a state change of one request.
// Message and Err are set only for EventFailed.
type Event struct {
	Type    EventType
	Kind    Kind
	Prompt  string
	Message string
	Err     error
}

// Notifier receives request events. Notify is called from the goroutine
// running the request and must not block for long.
type Notifier interface {
	Notify(Event)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Event)

func (f NotifierFunc) Notify(e Event) { f(e) }
