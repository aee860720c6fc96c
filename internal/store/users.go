package store

import (
	"ripple-chat/internal/domain"
	ripple_errors "ripple-chat/pkg/errors"
)

// UserDraft carries the caller-supplied fields for a new user. Id and
// timestamps are generated by the store.
type UserDraft struct {
	UID         string
	DisplayName string
	Email       string
	AvatarURL   *string
}

// InsertUser stores a new user. Fails with ErrConflict when the uid or
// a non-empty email collides with an existing user.
func (tx *Tx) InsertUser(draft UserDraft) (domain.User, error) {
	if _, ok := tx.s.userByUID[draft.UID]; ok {
		return domain.User{}, ripple_errors.ErrConflict
	}
	if draft.Email != "" {
		if _, ok := tx.s.userByEmail[draft.Email]; ok {
			return domain.User{}, ripple_errors.ErrConflict
		}
	}

	user := tx.s.users.insert(func(id int64) domain.User {
		return domain.User{
			ID:          id,
			UID:         draft.UID,
			DisplayName: draft.DisplayName,
			Email:       draft.Email,
			AvatarURL:   draft.AvatarURL,
			CreatedAt:   tx.now,
			UpdatedAt:   tx.now,
		}
	})
	tx.s.userByUID[user.UID] = user.ID
	if user.Email != "" {
		tx.s.userByEmail[user.Email] = user.ID
	}
	return user.Clone(), nil
}

func (tx *Tx) GetUser(id int64) (domain.User, error) {
	user, ok := tx.s.users.get(id)
	if !ok {
		return domain.User{}, ripple_errors.ErrNotFound
	}
	return user.Clone(), nil
}

func (tx *Tx) UserByUID(uid string) (domain.User, error) {
	id, ok := tx.s.userByUID[uid]
	if !ok {
		return domain.User{}, ripple_errors.ErrNotFound
	}
	return tx.GetUser(id)
}

func (tx *Tx) UserByEmail(email string) (domain.User, error) {
	id, ok := tx.s.userByEmail[email]
	if !ok {
		return domain.User{}, ripple_errors.ErrNotFound
	}
	return tx.GetUser(id)
}

// AllUsers returns every stored user in id order.
func (tx *Tx) AllUsers() []domain.User {
	out := make([]domain.User, 0, tx.s.users.len())
	for id := int64(1); id <= tx.s.users.lastID; id++ {
		if user, ok := tx.s.users.get(id); ok {
			out = append(out, user.Clone())
		}
	}
	return out
}

// UpdateUser merges changes into the stored user via mutate and returns
// the stored copy. Identity (id, uid) is immutable; a uid change in the
// mutator is discarded. An email change is re-checked for uniqueness.
func (tx *Tx) UpdateUser(id int64, mutate func(*domain.User)) (domain.User, error) {
	stored, ok := tx.s.users.get(id)
	if !ok {
		return domain.User{}, ripple_errors.ErrNotFound
	}
	updated := stored.Clone()
	mutate(&updated)
	updated.ID = stored.ID
	updated.UID = stored.UID
	updated.CreatedAt = stored.CreatedAt
	updated.UpdatedAt = tx.now

	if updated.Email != stored.Email {
		if updated.Email != "" {
			if other, ok := tx.s.userByEmail[updated.Email]; ok && other != id {
				return domain.User{}, ripple_errors.ErrConflict
			}
		}
		if stored.Email != "" {
			delete(tx.s.userByEmail, stored.Email)
		}
		if updated.Email != "" {
			tx.s.userByEmail[updated.Email] = id
		}
	}

	tx.s.users.put(id, updated)
	return updated.Clone(), nil
}
