package store

import (
	"ripple-chat/internal/domain"
	ripple_errors "ripple-chat/pkg/errors"
)

type ChatDraft struct {
	Kind      domain.ChatKind
	Name      *string
	AvatarURL *string
	CreatedBy int64
}

func (tx *Tx) InsertChat(draft ChatDraft) (domain.Chat, error) {
	chat := tx.s.chats.insert(func(id int64) domain.Chat {
		return domain.Chat{
			ID:        id,
			Kind:      draft.Kind,
			Name:      draft.Name,
			AvatarURL: draft.AvatarURL,
			CreatedBy: draft.CreatedBy,
			CreatedAt: tx.now,
			UpdatedAt: tx.now,
		}
	})
	return chat.Clone(), nil
}

func (tx *Tx) GetChat(id int64) (domain.Chat, error) {
	chat, ok := tx.s.chats.get(id)
	if !ok {
		return domain.Chat{}, ripple_errors.ErrNotFound
	}
	return chat.Clone(), nil
}

// UpdateChat merges changes into the stored chat. Id, kind and creation
// metadata are immutable.
func (tx *Tx) UpdateChat(id int64, mutate func(*domain.Chat)) (domain.Chat, error) {
	stored, ok := tx.s.chats.get(id)
	if !ok {
		return domain.Chat{}, ripple_errors.ErrNotFound
	}
	updated := stored.Clone()
	mutate(&updated)
	updated.ID = stored.ID
	updated.Kind = stored.Kind
	updated.CreatedBy = stored.CreatedBy
	updated.CreatedAt = stored.CreatedAt
	updated.UpdatedAt = tx.now
	tx.s.chats.put(id, updated)
	return updated.Clone(), nil
}

// InsertMembership adds a user to a chat. Fails with ErrConflict when
// the (chat, user) pair already exists. Capacity rules live in the
// mutation layer; the store only guards uniqueness.
func (tx *Tx) InsertMembership(chatID, userID int64, isAdmin bool) (domain.Membership, error) {
	byUser, ok := tx.s.membersByChat[chatID]
	if ok {
		if _, dup := byUser[userID]; dup {
			return domain.Membership{}, ripple_errors.ErrConflict
		}
	}

	m := tx.s.memberships.insert(func(id int64) domain.Membership {
		return domain.Membership{
			ID:       id,
			ChatID:   chatID,
			UserID:   userID,
			IsAdmin:  isAdmin,
			JoinedAt: tx.now,
		}
	})

	if byUser == nil {
		byUser = make(map[int64]int64)
		tx.s.membersByChat[chatID] = byUser
	}
	byUser[userID] = m.ID

	chats, ok := tx.s.chatsByUser[userID]
	if !ok {
		chats = make(map[int64]struct{})
		tx.s.chatsByUser[userID] = chats
	}
	chats[chatID] = struct{}{}

	return m, nil
}

// DeleteMembership removes the (chat, user) pair. Deleting an absent
// membership is a no-op; the returned bool reports whether a row was
// removed.
func (tx *Tx) DeleteMembership(chatID, userID int64) bool {
	byUser, ok := tx.s.membersByChat[chatID]
	if !ok {
		return false
	}
	membershipID, ok := byUser[userID]
	if !ok {
		return false
	}
	tx.s.memberships.remove(membershipID)
	delete(byUser, userID)
	if len(byUser) == 0 {
		delete(tx.s.membersByChat, chatID)
	}
	if chats, ok := tx.s.chatsByUser[userID]; ok {
		delete(chats, chatID)
		if len(chats) == 0 {
			delete(tx.s.chatsByUser, userID)
		}
	}
	return true
}

func (tx *Tx) GetMembership(chatID, userID int64) (domain.Membership, error) {
	byUser, ok := tx.s.membersByChat[chatID]
	if !ok {
		return domain.Membership{}, ripple_errors.ErrNotFound
	}
	membershipID, ok := byUser[userID]
	if !ok {
		return domain.Membership{}, ripple_errors.ErrNotFound
	}
	m, ok := tx.s.memberships.get(membershipID)
	if !ok {
		return domain.Membership{}, ripple_errors.ErrNotFound
	}
	return m, nil
}

func (tx *Tx) IsMember(chatID, userID int64) bool {
	_, err := tx.GetMembership(chatID, userID)
	return err == nil
}

func (tx *Tx) MembershipsByChat(chatID int64) []domain.Membership {
	byUser := tx.s.membersByChat[chatID]
	out := make([]domain.Membership, 0, len(byUser))
	for _, membershipID := range byUser {
		if m, ok := tx.s.memberships.get(membershipID); ok {
			out = append(out, m)
		}
	}
	return out
}

func (tx *Tx) MemberIDs(chatID int64) []int64 {
	byUser := tx.s.membersByChat[chatID]
	out := make([]int64, 0, len(byUser))
	for userID := range byUser {
		out = append(out, userID)
	}
	return out
}

func (tx *Tx) MemberCount(chatID int64) int {
	return len(tx.s.membersByChat[chatID])
}

func (tx *Tx) ChatIDsByUser(userID int64) []int64 {
	chats := tx.s.chatsByUser[userID]
	out := make([]int64, 0, len(chats))
	for chatID := range chats {
		out = append(out, chatID)
	}
	return out
}
