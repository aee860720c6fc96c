package domain

import (
	"time"
)

// Status is an ephemeral post that expires StatusTTL after creation.
// Expired statuses are filtered from reads, never reactivated.
type Status struct {
	ID        int64     `json:"id"`
	AuthorID  int64     `json:"author_id"`
	Text      *string   `json:"text,omitempty"`
	ImageURL  *string   `json:"image_url,omitempty"`
	ViewedBy  []int64   `json:"viewed_by"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s Status) Active(now time.Time) bool {
	return now.Before(s.ExpiresAt)
}

func (s Status) ViewCount() int {
	return len(s.ViewedBy)
}

func (s Status) ViewedByUser(userID int64) bool {
	for _, id := range s.ViewedBy {
		if id == userID {
			return true
		}
	}
	return false
}

func (s Status) HasContent() bool {
	return (s.Text != nil && *s.Text != "") || (s.ImageURL != nil && *s.ImageURL != "")
}

func (s Status) Clone() Status {
	c := s
	c.Text = cloneStringPtr(s.Text)
	c.ImageURL = cloneStringPtr(s.ImageURL)
	c.ViewedBy = append([]int64(nil), s.ViewedBy...)
	return c
}

// StatusView records the first time a viewer saw a status. Repeat views
// do not create additional rows.
type StatusView struct {
	ID       int64     `json:"id"`
	StatusID int64     `json:"status_id"`
	ViewerID int64     `json:"viewer_id"`
	ViewedAt time.Time `json:"viewed_at"`
}
