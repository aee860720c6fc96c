package services

import (
	"context"
	"sort"
	"time"

	"ripple-chat/internal/domain"
	"ripple-chat/internal/store"
	ripple_errors "ripple-chat/pkg/errors"
)

type MessageService struct {
	store    *store.Store
	notifier Notifier
	now      func() time.Time
}

func NewMessageService(st *store.Store, notifier Notifier) *MessageService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &MessageService{store: st, notifier: notifier, now: time.Now}
}

type MessageContent struct {
	Text     string
	ImageURL string
}

// Send posts a message to a chat. The sender must be a member and the
// content must carry text or an image. The chat's last-message cache is
// updated in the same transaction as the insert; the other members are
// notified after the transaction commits.
func (s *MessageService) Send(ctx context.Context, chatID, senderID int64, content MessageContent) (domain.Message, error) {
	if content.Text == "" && content.ImageURL == "" {
		return domain.Message{}, ripple_errors.ErrValidation
	}

	var msg domain.Message
	var recipients []int64
	err := s.store.UpdateAt(s.now(), func(tx *store.Tx) error {
		if _, err := tx.GetChat(chatID); err != nil {
			return err
		}
		if !tx.IsMember(chatID, senderID) {
			return ripple_errors.ErrValidation
		}

		draft := store.MessageDraft{ChatID: chatID, SenderID: senderID}
		if content.Text != "" {
			text := content.Text
			draft.Text = &text
		}
		if content.ImageURL != "" {
			image := content.ImageURL
			draft.ImageURL = &image
		}

		var err error
		msg, err = tx.InsertMessage(draft)
		if err != nil {
			return err
		}

		preview := content.Text
		if preview == "" {
			preview = "Photo"
		}
		if _, err := tx.UpdateChat(chatID, func(c *domain.Chat) {
			c.LastMessage = &preview
			ts := msg.CreatedAt
			c.LastMessageAt = &ts
		}); err != nil {
			return err
		}

		for _, memberID := range tx.MemberIDs(chatID) {
			if memberID != senderID {
				recipients = append(recipients, memberID)
			}
		}
		return nil
	})
	if err != nil {
		return domain.Message{}, err
	}

	s.notifier.Notify(recipients, domain.Event{
		Type:      domain.EventNewMessage,
		ChatID:    chatID,
		MessageID: msg.ID,
		SenderID:  senderID,
	})
	return msg, nil
}

// MarkRead records that userID has read the message. Idempotent.
func (s *MessageService) MarkRead(ctx context.Context, messageID, userID int64) (domain.Message, error) {
	var msg domain.Message
	err := s.store.UpdateAt(s.now(), func(tx *store.Tx) error {
		var err error
		msg, err = tx.MarkMessageRead(messageID, userID)
		return err
	})
	return msg, err
}

// MessageView is the thread projection entry: the message with its
// sender attached. Sender is nil when the user record is gone.
type MessageView struct {
	Message domain.Message `json:"message"`
	Sender  *domain.User   `json:"sender,omitempty"`
}

// GetMessagesForChat returns the chat's messages in creation order,
// sorted explicitly by timestamp with ties broken by id. Insertion
// order is not trusted.
func (s *MessageService) GetMessagesForChat(ctx context.Context, chatID int64) ([]MessageView, error) {
	var views []MessageView
	err := s.store.View(func(tx *store.Tx) error {
		if _, err := tx.GetChat(chatID); err != nil {
			return err
		}
		messages := tx.MessagesByChat(chatID)
		sort.Slice(messages, func(i, j int) bool {
			if !messages[i].CreatedAt.Equal(messages[j].CreatedAt) {
				return messages[i].CreatedAt.Before(messages[j].CreatedAt)
			}
			return messages[i].ID < messages[j].ID
		})
		views = make([]MessageView, 0, len(messages))
		for _, msg := range messages {
			view := MessageView{Message: msg}
			if sender, err := tx.GetUser(msg.SenderID); err == nil {
				view.Sender = &sender
			}
			views = append(views, view)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return views, nil
}
