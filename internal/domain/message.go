package domain

import (
	"time"
)

// Message belongs to exactly one chat. Immutable once created except
// for ReadBy, which only grows and never holds duplicates.
type Message struct {
	ID        int64     `json:"id"`
	ChatID    int64     `json:"chat_id"`
	SenderID  int64     `json:"sender_id"`
	Text      *string   `json:"text,omitempty"`
	ImageURL  *string   `json:"image_url,omitempty"`
	ReadBy    []int64   `json:"read_by"`
	CreatedAt time.Time `json:"created_at"`
}

// HasContent reports whether the message carries text or an image.
// At least one is required at send time.
func (m Message) HasContent() bool {
	return (m.Text != nil && *m.Text != "") || (m.ImageURL != nil && *m.ImageURL != "")
}

func (m Message) ReadByUser(userID int64) bool {
	for _, id := range m.ReadBy {
		if id == userID {
			return true
		}
	}
	return false
}

func (m Message) Clone() Message {
	c := m
	c.Text = cloneStringPtr(m.Text)
	c.ImageURL = cloneStringPtr(m.ImageURL)
	c.ReadBy = append([]int64(nil), m.ReadBy...)
	return c
}
