package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventAccountRegistered EventType = "account_registered"
	EventAccountUpdated    EventType = "account_updated"
	EventAccountDeleted    EventType = "account_deleted"
	EventLoginSucceeded    EventType = "login_succeeded"
	EventLoginFailed       EventType = "login_failed"
	EventTokensRotated     EventType = "tokens_rotated"
)

// AllAccountEvents lists every account lifecycle and token event.
func AllAccountEvents() []EventType {
	return []EventType{
		EventAccountRegistered,
		EventAccountUpdated,
		EventAccountDeleted,
		EventLoginSucceeded,
		EventLoginFailed,
		EventTokensRotated,
	}
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	AccountID string      `json:"account_id,omitempty"`
	ActorID   string      `json:"actor_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// AccountUpdatedPayload lists which fields changed. Values are not carried.
type AccountUpdatedPayload struct {
	Fields      []string `json:"fields"`
	RoleChanged bool     `json:"role_changed"`
}

// LoginFailedPayload carries a hashed email so audit logs hold no raw address.
type LoginFailedPayload struct {
	EmailHash string `json:"email_hash"`
	Reason    string `json:"reason"`
}
