package bot

import "time"

// Kind is the class of inbound interaction. Together with a name it selects
// the handler.
type Kind string

const (
	KindCommand Kind = "command"         // slash command, name without "/"
	KindAction  Kind = "action"          // block action, name is the action id
	KindView    Kind = "view_submission" // modal submit, name is the callback id
	KindEvent   Kind = "event"           // events API, name is the event type
	KindMessage Kind = "message"         // channel message, matched by keyword
)

// Interaction is a platform-neutral view of one inbound envelope.
type Interaction struct {
	ID        string // correlation id, assigned by the router when empty
	Kind      Kind
	Name      string
	UserID    string
	UserName  string
	ChannelID string
	TriggerID string
	Text      string

	// Values holds modal input by action id: selected user, selected
	// conversation or typed text.
	Values map[string]string

	ReceivedAt time.Time
}

// AckFunc acknowledges the envelope to the platform.
type AckFunc func() error
