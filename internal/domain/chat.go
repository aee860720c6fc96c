package domain

import (
	"time"
)

// Chat is a conversation between users. LastMessage/LastMessageAt and
// MemberCount are denormalized caches maintained by the writers; the
// message history and the membership table stay authoritative.
type Chat struct {
	ID            int64      `json:"id"`
	Kind          ChatKind   `json:"kind"`
	Name          *string    `json:"name,omitempty"`
	AvatarURL     *string    `json:"avatar_url,omitempty"`
	LastMessage   *string    `json:"last_message,omitempty"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`
	MemberCount   int        `json:"member_count"`
	CreatedBy     int64      `json:"created_by"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (c Chat) Clone() Chat {
	d := c
	d.Name = cloneStringPtr(c.Name)
	d.AvatarURL = cloneStringPtr(c.AvatarURL)
	d.LastMessage = cloneStringPtr(c.LastMessage)
	if c.LastMessageAt != nil {
		v := *c.LastMessageAt
		d.LastMessageAt = &v
	}
	return d
}

// Membership links a user to a chat. A user appears at most once per
// chat; the pair (ChatID, UserID) is unique.
type Membership struct {
	ID       int64     `json:"id"`
	ChatID   int64     `json:"chat_id"`
	UserID   int64     `json:"user_id"`
	IsAdmin  bool      `json:"is_admin"`
	JoinedAt time.Time `json:"joined_at"`
}

func cloneStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
