package notify

// Event names pushed over the live channel. The task lifecycle events carry a
// task snapshot or id; "notification" is the generic out-of-band message used
// for things like profile-update confirmations.
const (
	EventTaskAssigned = "task.assigned"
	EventTaskUpdated  = "task.updated"
	EventTaskDeleted  = "task.deleted"
	EventNotification = "notification"
)

// Event is a single message delivered to every live connection of one user.
type Event struct {
	Name    string `json:"-"` // carried as the SSE event field, not the payload
	Message string `json:"message"`
	Task    any    `json:"task,omitempty"`
	TaskID  string `json:"taskId,omitempty"`
}

// Publisher delivers an event to every live connection bound to a user.
// Delivery is best-effort, at-most-once: when the user has no bound
// connection the event is silently dropped.
type Publisher interface {
	Publish(userID string, event Event)
}
