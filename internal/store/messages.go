package store

import (
	"ripple-chat/internal/domain"
	ripple_errors "ripple-chat/pkg/errors"
)

type MessageDraft struct {
	ChatID   int64
	SenderID int64
	Text     *string
	ImageURL *string
}

// InsertMessage stores a new message with the sender pre-seeded into
// the read set.
func (tx *Tx) InsertMessage(draft MessageDraft) (domain.Message, error) {
	msg := tx.s.messages.insert(func(id int64) domain.Message {
		return domain.Message{
			ID:        id,
			ChatID:    draft.ChatID,
			SenderID:  draft.SenderID,
			Text:      draft.Text,
			ImageURL:  draft.ImageURL,
			ReadBy:    []int64{draft.SenderID},
			CreatedAt: tx.now,
		}
	})
	tx.s.messagesByChat[msg.ChatID] = append(tx.s.messagesByChat[msg.ChatID], msg.ID)
	return msg.Clone(), nil
}

func (tx *Tx) GetMessage(id int64) (domain.Message, error) {
	msg, ok := tx.s.messages.get(id)
	if !ok {
		return domain.Message{}, ripple_errors.ErrNotFound
	}
	return msg.Clone(), nil
}

// MarkMessageRead appends userID to the message's read set. Idempotent;
// the read set never shrinks.
func (tx *Tx) MarkMessageRead(id, userID int64) (domain.Message, error) {
	msg, ok := tx.s.messages.get(id)
	if !ok {
		return domain.Message{}, ripple_errors.ErrNotFound
	}
	if msg.ReadByUser(userID) {
		return msg.Clone(), nil
	}
	updated := msg.Clone()
	updated.ReadBy = append(updated.ReadBy, userID)
	tx.s.messages.put(id, updated)
	return updated.Clone(), nil
}

func (tx *Tx) MessagesByChat(chatID int64) []domain.Message {
	ids := tx.s.messagesByChat[chatID]
	out := make([]domain.Message, 0, len(ids))
	for _, id := range ids {
		if msg, ok := tx.s.messages.get(id); ok {
			out = append(out, msg.Clone())
		}
	}
	return out
}
