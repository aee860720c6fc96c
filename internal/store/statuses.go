package store

import (
	"ripple-chat/internal/domain"
	ripple_errors "ripple-chat/pkg/errors"
)

type StatusDraft struct {
	AuthorID int64
	Text     *string
	ImageURL *string
}

// InsertStatus stores a new status expiring StatusTTL after the
// transaction timestamp. The expiry is always store-computed.
func (tx *Tx) InsertStatus(draft StatusDraft) (domain.Status, error) {
	status := tx.s.statuses.insert(func(id int64) domain.Status {
		return domain.Status{
			ID:        id,
			AuthorID:  draft.AuthorID,
			Text:      draft.Text,
			ImageURL:  draft.ImageURL,
			ViewedBy:  []int64{},
			CreatedAt: tx.now,
			ExpiresAt: tx.now.Add(domain.StatusTTL),
		}
	})
	tx.s.statusesByUser[status.AuthorID] = append(tx.s.statusesByUser[status.AuthorID], status.ID)
	return status.Clone(), nil
}

func (tx *Tx) GetStatus(id int64) (domain.Status, error) {
	status, ok := tx.s.statuses.get(id)
	if !ok {
		return domain.Status{}, ripple_errors.ErrNotFound
	}
	return status.Clone(), nil
}

// RecordStatusView appends viewerID to the status viewer set and
// materializes a StatusView row for first-time views. Idempotent: a
// repeat view changes nothing. The bool return is true only when a new
// view was recorded.
func (tx *Tx) RecordStatusView(id, viewerID int64) (domain.Status, bool, error) {
	status, ok := tx.s.statuses.get(id)
	if !ok {
		return domain.Status{}, false, ripple_errors.ErrNotFound
	}
	if status.ViewedByUser(viewerID) {
		return status.Clone(), false, nil
	}

	updated := status.Clone()
	updated.ViewedBy = append(updated.ViewedBy, viewerID)
	tx.s.statuses.put(id, updated)

	view := tx.s.statusViews.insert(func(viewID int64) domain.StatusView {
		return domain.StatusView{
			ID:       viewID,
			StatusID: id,
			ViewerID: viewerID,
			ViewedAt: tx.now,
		}
	})
	byViewer, ok := tx.s.viewsByStatus[id]
	if !ok {
		byViewer = make(map[int64]int64)
		tx.s.viewsByStatus[id] = byViewer
	}
	byViewer[viewerID] = view.ID

	return updated.Clone(), true, nil
}

func (tx *Tx) StatusesByAuthor(authorID int64) []domain.Status {
	ids := tx.s.statusesByUser[authorID]
	out := make([]domain.Status, 0, len(ids))
	for _, id := range ids {
		if status, ok := tx.s.statuses.get(id); ok {
			out = append(out, status.Clone())
		}
	}
	return out
}

// ActiveStatuses returns every status still active at the transaction
// timestamp. Expired rows stay in the table; they are filtered here,
// never purged.
func (tx *Tx) ActiveStatuses() []domain.Status {
	out := make([]domain.Status, 0)
	for _, status := range tx.s.statuses.rows {
		if status.Active(tx.now) {
			out = append(out, status.Clone())
		}
	}
	return out
}

// StatusViewHistory returns the first-view rows for a status.
func (tx *Tx) StatusViewHistory(statusID int64) []domain.StatusView {
	byViewer := tx.s.viewsByStatus[statusID]
	out := make([]domain.StatusView, 0, len(byViewer))
	for _, viewID := range byViewer {
		if view, ok := tx.s.statusViews.get(viewID); ok {
			out = append(out, view)
		}
	}
	return out
}
