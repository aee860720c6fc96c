package services

import (
	"context"
	"sort"
	"time"

	"ripple-chat/internal/domain"
	"ripple-chat/internal/store"
	ripple_errors "ripple-chat/pkg/errors"
)

type StatusService struct {
	store    *store.Store
	notifier Notifier
	now      func() time.Time
}

func NewStatusService(st *store.Store, notifier Notifier) *StatusService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &StatusService{store: st, notifier: notifier, now: time.Now}
}

type StatusContent struct {
	Text     string
	ImageURL string
}

// Create posts a status. The 24h expiry is computed here from the
// server clock; whatever expiry a client may have supplied never
// reaches this point.
func (s *StatusService) Create(ctx context.Context, authorID int64, content StatusContent) (domain.Status, error) {
	if content.Text == "" && content.ImageURL == "" {
		return domain.Status{}, ripple_errors.ErrValidation
	}

	var status domain.Status
	err := s.store.UpdateAt(s.now(), func(tx *store.Tx) error {
		if _, err := tx.GetUser(authorID); err != nil {
			return err
		}
		draft := store.StatusDraft{AuthorID: authorID}
		if content.Text != "" {
			text := content.Text
			draft.Text = &text
		}
		if content.ImageURL != "" {
			image := content.ImageURL
			draft.ImageURL = &image
		}
		var err error
		status, err = tx.InsertStatus(draft)
		return err
	})
	if err != nil {
		return domain.Status{}, err
	}

	s.notifier.Broadcast(domain.Event{
		Type:     domain.EventStatusUpdate,
		StatusID: status.ID,
		AuthorID: authorID,
	}, authorID)
	return status, nil
}

// View records that viewerID saw the status. Idempotent: a repeat view
// leaves the count unchanged. Self-views are recorded like any other.
func (s *StatusService) View(ctx context.Context, statusID, viewerID int64) (domain.Status, error) {
	var status domain.Status
	err := s.store.UpdateAt(s.now(), func(tx *store.Tx) error {
		var err error
		status, _, err = tx.RecordStatusView(statusID, viewerID)
		return err
	})
	return status, err
}

// ViewHistory lists first-view rows for a status, oldest first. Only
// the author may see who viewed their status.
func (s *StatusService) ViewHistory(ctx context.Context, statusID, requesterID int64) ([]domain.StatusView, error) {
	var views []domain.StatusView
	err := s.store.View(func(tx *store.Tx) error {
		status, err := tx.GetStatus(statusID)
		if err != nil {
			return err
		}
		if status.AuthorID != requesterID {
			return ripple_errors.ErrForbidden
		}
		views = tx.StatusViewHistory(statusID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(views, func(i, j int) bool {
		if !views[i].ViewedAt.Equal(views[j].ViewedAt) {
			return views[i].ViewedAt.Before(views[j].ViewedAt)
		}
		return views[i].ID < views[j].ID
	})
	return views, nil
}

// StatusFeedEntry summarizes one author in the feed: their most recent
// active status plus counts across all their active statuses.
type StatusFeedEntry struct {
	Author      domain.User   `json:"author"`
	Latest      domain.Status `json:"latest"`
	ViewCount   int           `json:"view_count"`
	StatusCount int           `json:"status_count"`
	UnseenCount int           `json:"unseen_count"`
}

// Feed builds the status feed for a viewer: one entry per author with
// at least one active status. The viewer's own entry comes first, then
// authors with statuses the viewer has not seen, then fully-seen
// authors, recency descending within each band. Expired statuses never
// appear. Authors whose user record is gone are skipped.
func (s *StatusService) Feed(ctx context.Context, viewerID int64) ([]StatusFeedEntry, error) {
	var entries []StatusFeedEntry
	err := s.store.ViewAt(s.now(), func(tx *store.Tx) error {
		byAuthor := make(map[int64][]domain.Status)
		for _, status := range tx.ActiveStatuses() {
			byAuthor[status.AuthorID] = append(byAuthor[status.AuthorID], status)
		}

		for authorID, statuses := range byAuthor {
			author, err := tx.GetUser(authorID)
			if err != nil {
				continue
			}
			entry := StatusFeedEntry{Author: author, StatusCount: len(statuses)}
			for _, status := range statuses {
				if laterThan(status, entry.Latest) {
					entry.Latest = status
				}
				if !status.ViewedByUser(viewerID) {
					entry.UnseenCount++
				}
			}
			entry.ViewCount = entry.Latest.ViewCount()
			entries = append(entries, entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if (a.Author.ID == viewerID) != (b.Author.ID == viewerID) {
			return a.Author.ID == viewerID
		}
		if (a.UnseenCount > 0) != (b.UnseenCount > 0) {
			return a.UnseenCount > 0
		}
		if !a.Latest.CreatedAt.Equal(b.Latest.CreatedAt) {
			return a.Latest.CreatedAt.After(b.Latest.CreatedAt)
		}
		return a.Latest.ID > b.Latest.ID
	})
	return entries, nil
}

func laterThan(a, b domain.Status) bool {
	if b.ID == 0 {
		return true
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}
