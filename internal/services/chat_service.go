package services

import (
	"context"
	"sort"
	"time"

	"ripple-chat/internal/domain"
	"ripple-chat/internal/store"
	ripple_errors "ripple-chat/pkg/errors"
)

type ChatService struct {
	store    *store.Store
	notifier Notifier
	now      func() time.Time
}

func NewChatService(st *store.Store, notifier Notifier) *ChatService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &ChatService{store: st, notifier: notifier, now: time.Now}
}

type CreateChatInput struct {
	Kind      domain.ChatKind
	Name      string
	AvatarURL string
	CreatorID int64
	// MemberIDs are added after the creator, subject to the same
	// capacity and uniqueness rules as AddMember.
	MemberIDs []int64
}

// Create creates a chat with the creator as first member and admin.
// Group chats require a name, direct chats must not carry one. The
// whole member list is validated before the chat is inserted, so a
// failed create leaves nothing in the store.
func (s *ChatService) Create(ctx context.Context, in CreateChatInput) (domain.Chat, error) {
	if in.Kind != domain.ChatKindDirect && in.Kind != domain.ChatKindGroup {
		return domain.Chat{}, ripple_errors.ErrValidation
	}
	if in.Kind == domain.ChatKindGroup && in.Name == "" {
		return domain.Chat{}, ripple_errors.ErrValidation
	}
	if in.Kind == domain.ChatKindDirect && in.Name != "" {
		return domain.Chat{}, ripple_errors.ErrValidation
	}

	var chat domain.Chat
	var added []int64
	err := s.store.UpdateAt(s.now(), func(tx *store.Tx) error {
		if _, err := tx.GetUser(in.CreatorID); err != nil {
			return err
		}

		members := make([]int64, 0, len(in.MemberIDs))
		seen := map[int64]struct{}{in.CreatorID: {}}
		for _, memberID := range in.MemberIDs {
			if memberID == in.CreatorID {
				continue
			}
			if _, dup := seen[memberID]; dup {
				return ripple_errors.ErrConflict
			}
			if _, err := tx.GetUser(memberID); err != nil {
				return err
			}
			seen[memberID] = struct{}{}
			members = append(members, memberID)
		}
		limit := domain.MaxGroupMembers
		if in.Kind == domain.ChatKindDirect {
			limit = domain.DirectChatMembers
		}
		if len(members)+1 > limit {
			return ripple_errors.ErrCapacityExceeded
		}

		draft := store.ChatDraft{Kind: in.Kind, CreatedBy: in.CreatorID}
		if in.Name != "" {
			name := in.Name
			draft.Name = &name
		}
		if in.AvatarURL != "" {
			avatar := in.AvatarURL
			draft.AvatarURL = &avatar
		}

		created, err := tx.InsertChat(draft)
		if err != nil {
			return err
		}
		if _, err := tx.InsertMembership(created.ID, in.CreatorID, true); err != nil {
			return err
		}
		for _, memberID := range members {
			if _, err := tx.InsertMembership(created.ID, memberID, false); err != nil {
				return err
			}
		}
		added = members

		chat, err = tx.UpdateChat(created.ID, func(c *domain.Chat) {
			c.MemberCount = tx.MemberCount(created.ID)
		})
		return err
	})
	if err != nil {
		return domain.Chat{}, err
	}

	if len(added) > 0 {
		s.notifier.Notify(added, domain.Event{Type: domain.EventNewConversation, ChatID: chat.ID})
	}
	return chat, nil
}

// AddMember adds userID to a chat. Fails with ErrNotFound when the chat
// or user is missing, ErrConflict on an existing membership and
// ErrCapacityExceeded at the membership limit. The member-count cache
// is refreshed in the same transaction.
func (s *ChatService) AddMember(ctx context.Context, chatID, userID int64, asAdmin bool) (domain.Membership, error) {
	var membership domain.Membership
	err := s.store.UpdateAt(s.now(), func(tx *store.Tx) error {
		chat, err := tx.GetChat(chatID)
		if err != nil {
			return err
		}
		if _, err := tx.GetUser(userID); err != nil {
			return err
		}
		if err := addMemberTx(tx, chat, userID, asAdmin); err != nil {
			return err
		}
		membership, err = tx.GetMembership(chatID, userID)
		if err != nil {
			return err
		}
		_, err = tx.UpdateChat(chatID, func(c *domain.Chat) {
			c.MemberCount = tx.MemberCount(chatID)
		})
		return err
	})
	if err != nil {
		return domain.Membership{}, err
	}

	s.notifier.Notify([]int64{userID}, domain.Event{Type: domain.EventNewConversation, ChatID: chatID})
	return membership, nil
}

// addMemberTx enforces capacity and uniqueness inside the caller's
// transaction. The capacity check and the insert share one write lock,
// so concurrent adds cannot overshoot the limit.
func addMemberTx(tx *store.Tx, chat domain.Chat, userID int64, asAdmin bool) error {
	limit := domain.MaxGroupMembers
	if chat.Kind == domain.ChatKindDirect {
		limit = domain.DirectChatMembers
	}
	if tx.MemberCount(chat.ID) >= limit {
		return ripple_errors.ErrCapacityExceeded
	}
	_, err := tx.InsertMembership(chat.ID, userID, asAdmin)
	return err
}

// RemoveMember removes userID from the chat. Removing an absent
// membership is a no-op, not an error. Emptied chats are left in place.
func (s *ChatService) RemoveMember(ctx context.Context, chatID, userID int64) error {
	return s.store.UpdateAt(s.now(), func(tx *store.Tx) error {
		if _, err := tx.GetChat(chatID); err != nil {
			return err
		}
		if !tx.DeleteMembership(chatID, userID) {
			return nil
		}
		_, err := tx.UpdateChat(chatID, func(c *domain.Chat) {
			c.MemberCount = tx.MemberCount(chatID)
		})
		return err
	})
}

type UpdateChatInput struct {
	Name      *string
	AvatarURL *string
}

// UpdateProfile changes a chat's display fields. Only members may do
// this; only group chats carry a name.
func (s *ChatService) UpdateProfile(ctx context.Context, chatID, actorID int64, in UpdateChatInput) (domain.Chat, error) {
	var chat domain.Chat
	err := s.store.UpdateAt(s.now(), func(tx *store.Tx) error {
		existing, err := tx.GetChat(chatID)
		if err != nil {
			return err
		}
		if !tx.IsMember(chatID, actorID) {
			return ripple_errors.ErrForbidden
		}
		if in.Name != nil && (existing.Kind != domain.ChatKindGroup || *in.Name == "") {
			return ripple_errors.ErrValidation
		}
		chat, err = tx.UpdateChat(chatID, func(c *domain.Chat) {
			if in.Name != nil {
				c.Name = in.Name
			}
			if in.AvatarURL != nil {
				c.AvatarURL = in.AvatarURL
			}
		})
		return err
	})
	return chat, err
}

// ChatSummary is the chat-list projection entry: the chat plus resolved
// members and the viewer's unread count. For direct chats Other is the
// counterpart member.
type ChatSummary struct {
	Chat        domain.Chat   `json:"chat"`
	Members     []domain.User `json:"members,omitempty"`
	Other       *domain.User  `json:"other,omitempty"`
	UnreadCount int           `json:"unread_count"`
}

// GetChatsForUser lists the user's chats, most recently active first.
// Chats that never saw a message sort last.
func (s *ChatService) GetChatsForUser(ctx context.Context, userID int64) ([]ChatSummary, error) {
	var summaries []ChatSummary
	err := s.store.View(func(tx *store.Tx) error {
		for _, chatID := range tx.ChatIDsByUser(userID) {
			chat, err := tx.GetChat(chatID)
			if err != nil {
				continue
			}
			summary := ChatSummary{Chat: chat}

			for _, m := range tx.MembershipsByChat(chatID) {
				member, err := tx.GetUser(m.UserID)
				if err != nil {
					continue
				}
				if chat.Kind == domain.ChatKindDirect {
					if member.ID != userID {
						other := member
						summary.Other = &other
					}
					continue
				}
				summary.Members = append(summary.Members, member)
			}
			if chat.Kind == domain.ChatKindGroup {
				sort.Slice(summary.Members, func(i, j int) bool {
					return summary.Members[i].ID < summary.Members[j].ID
				})
			}

			for _, msg := range tx.MessagesByChat(chatID) {
				if !msg.ReadByUser(userID) {
					summary.UnreadCount++
				}
			}
			summaries = append(summaries, summary)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(summaries, func(i, j int) bool {
		a, b := summaries[i].Chat, summaries[j].Chat
		switch {
		case a.LastMessageAt == nil && b.LastMessageAt == nil:
			return a.ID > b.ID
		case a.LastMessageAt == nil:
			return false
		case b.LastMessageAt == nil:
			return true
		case !a.LastMessageAt.Equal(*b.LastMessageAt):
			return a.LastMessageAt.After(*b.LastMessageAt)
		default:
			return a.ID > b.ID
		}
	})
	return summaries, nil
}

// ChatMember is a membership joined with its user record.
type ChatMember struct {
	Membership domain.Membership `json:"membership"`
	User       domain.User       `json:"user"`
}

// GetChatMembers lists a chat's members with user records attached.
// Memberships whose user record is gone are skipped.
func (s *ChatService) GetChatMembers(ctx context.Context, chatID int64) ([]ChatMember, error) {
	var members []ChatMember
	err := s.store.View(func(tx *store.Tx) error {
		if _, err := tx.GetChat(chatID); err != nil {
			return err
		}
		for _, m := range tx.MembershipsByChat(chatID) {
			user, err := tx.GetUser(m.UserID)
			if err != nil {
				continue
			}
			members = append(members, ChatMember{Membership: m, User: user})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(members, func(i, j int) bool {
		if !members[i].Membership.JoinedAt.Equal(members[j].Membership.JoinedAt) {
			return members[i].Membership.JoinedAt.Before(members[j].Membership.JoinedAt)
		}
		return members[i].Membership.ID < members[j].Membership.ID
	})
	return members, nil
}

func (s *ChatService) GetByID(ctx context.Context, chatID int64) (domain.Chat, error) {
	var chat domain.Chat
	err := s.store.View(func(tx *store.Tx) error {
		var err error
		chat, err = tx.GetChat(chatID)
		return err
	})
	return chat, err
}
