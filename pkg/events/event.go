package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "USER_LOGIN").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the common implementation used by the typed constructors
// below.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Event type codes emitted by the backend.
const (
	TypeUserRegistered = "USER_REGISTERED"
	TypeUserLogin      = "USER_LOGIN"
	TypeChatCompleted  = "CHAT_COMPLETED"
	TypeSessionDeleted = "SESSION_DELETED"
)

func NewUserRegisteredEvent(userID, username, classLevel string) Event {
	return BaseEvent{
		Type: TypeUserRegistered,
		Data: map[string]interface{}{
			"user_id":     userID,
			"username":    username,
			"class_level": classLevel,
		},
		OccurredAt: time.Now(),
	}
}

func NewUserLoginEvent(userID string) Event {
	return BaseEvent{
		Type: TypeUserLogin,
		Data: map[string]interface{}{
			"user_id": userID,
		},
		OccurredAt: time.Now(),
	}
}

func NewChatCompletedEvent(userID, sessionID string, inScope bool) Event {
	return BaseEvent{
		Type: TypeChatCompleted,
		Data: map[string]interface{}{
			"user_id":    userID,
			"session_id": sessionID,
			"in_scope":   inScope,
		},
		OccurredAt: time.Now(),
	}
}

func NewSessionDeletedEvent(userID, sessionID string) Event {
	return BaseEvent{
		Type: TypeSessionDeleted,
		Data: map[string]interface{}{
			"user_id":    userID,
			"session_id": sessionID,
		},
		OccurredAt: time.Now(),
	}
}
