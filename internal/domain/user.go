package domain

import (
	"time"
)

// User is a registered account. UID is the stable identifier issued by
// the external identity provider; ID is the local numeric id. UID and ID
// are immutable after creation, profile fields are not.
type User struct {
	ID          int64      `json:"id"`
	UID         string     `json:"uid"`
	DisplayName string     `json:"display_name"`
	Email       string     `json:"email"`
	AvatarURL   *string    `json:"avatar_url,omitempty"`
	LastSeenAt  *time.Time `json:"last_seen_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (u User) Clone() User {
	c := u
	if u.AvatarURL != nil {
		v := *u.AvatarURL
		c.AvatarURL = &v
	}
	if u.LastSeenAt != nil {
		v := *u.LastSeenAt
		c.LastSeenAt = &v
	}
	return c
}
