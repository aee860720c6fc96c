package services

import (
	"context"
	"strconv"
	"time"

	"ripple-chat/internal/domain"
	"ripple-chat/internal/redis"
	"ripple-chat/internal/store"
	ripple_errors "ripple-chat/pkg/errors"
)

type UserService struct {
	store    *store.Store
	presence *redis.PresenceStore
	now      func() time.Time
}

func NewUserService(st *store.Store, presence *redis.PresenceStore) *UserService {
	return &UserService{store: st, presence: presence, now: time.Now}
}

// EnsureUser upserts the user for a provider-verified identity. First
// authentication creates the record; later ones refresh the mutable
// profile fields. Idempotent.
func (s *UserService) EnsureUser(ctx context.Context, uid string, claims *IdentityClaims) (domain.User, error) {
	var user domain.User
	err := s.store.UpdateAt(s.now(), func(tx *store.Tx) error {
		existing, err := tx.UserByUID(uid)
		if err == nil {
			user, err = tx.UpdateUser(existing.ID, func(u *domain.User) {
				if claims.Name != "" {
					u.DisplayName = claims.Name
				}
				if claims.Email != "" {
					u.Email = claims.Email
				}
				if claims.Picture != "" {
					avatar := claims.Picture
					u.AvatarURL = &avatar
				}
			})
			return err
		}

		draft := store.UserDraft{
			UID:         uid,
			DisplayName: claims.Name,
			Email:       claims.Email,
		}
		if draft.DisplayName == "" {
			draft.DisplayName = uid
		}
		if claims.Picture != "" {
			avatar := claims.Picture
			draft.AvatarURL = &avatar
		}
		user, err = tx.InsertUser(draft)
		return err
	})
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id int64) (domain.User, error) {
	var user domain.User
	err := s.store.View(func(tx *store.Tx) error {
		var err error
		user, err = tx.GetUser(id)
		return err
	})
	return user, err
}

// List returns every known user, for the contact picker.
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	err := s.store.View(func(tx *store.Tx) error {
		users = tx.AllUsers()
		return nil
	})
	return users, err
}

type UpdateProfileInput struct {
	DisplayName *string
	AvatarURL   *string
}

func (s *UserService) UpdateProfile(ctx context.Context, actorID, userID int64, in UpdateProfileInput) (domain.User, error) {
	if actorID != userID {
		return domain.User{}, ripple_errors.ErrForbidden
	}
	if in.DisplayName != nil && *in.DisplayName == "" {
		return domain.User{}, ripple_errors.ErrValidation
	}
	var user domain.User
	err := s.store.UpdateAt(s.now(), func(tx *store.Tx) error {
		var err error
		user, err = tx.UpdateUser(userID, func(u *domain.User) {
			if in.DisplayName != nil {
				u.DisplayName = *in.DisplayName
			}
			if in.AvatarURL != nil {
				u.AvatarURL = in.AvatarURL
			}
		})
		return err
	})
	return user, err
}

// Heartbeat refreshes the user's presence timestamp, both on the user
// record and in the presence store when one is configured.
func (s *UserService) Heartbeat(ctx context.Context, userID int64) error {
	now := s.now()
	err := s.store.UpdateAt(now, func(tx *store.Tx) error {
		_, err := tx.UpdateUser(userID, func(u *domain.User) {
			ts := now
			u.LastSeenAt = &ts
		})
		return err
	})
	if err != nil {
		return err
	}
	if s.presence != nil {
		_ = s.presence.Touch(ctx, strconv.FormatInt(userID, 10))
	}
	return nil
}

// SetOnline marks the user online in the presence store. Called from
// the websocket handler on connect.
func (s *UserService) SetOnline(ctx context.Context, userID int64) {
	if s.presence != nil {
		_ = s.presence.SetOnline(ctx, strconv.FormatInt(userID, 10))
	}
}

// SetOffline marks the user offline and stamps last-seen. Called from
// the websocket handler on disconnect.
func (s *UserService) SetOffline(ctx context.Context, userID int64) {
	_ = s.Heartbeat(ctx, userID)
	if s.presence != nil {
		_ = s.presence.SetOffline(ctx, strconv.FormatInt(userID, 10))
	}
}
