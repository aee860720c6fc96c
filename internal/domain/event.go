package domain

type EventType string

const (
	EventNewMessage      EventType = "new_message"
	EventStatusUpdate    EventType = "status_update"
	EventNewConversation EventType = "new_conversation"
)

// Event is the payload pushed to live connections on relevant
// mutations. Delivery is best-effort: a client that misses an event
// recovers by re-fetching, not by replay.
type Event struct {
	Type      EventType `json:"type"`
	ChatID    int64     `json:"chat_id,omitempty"`
	MessageID int64     `json:"message_id,omitempty"`
	SenderID  int64     `json:"sender_id,omitempty"`
	StatusID  int64     `json:"status_id,omitempty"`
	AuthorID  int64     `json:"author_id,omitempty"`
}
