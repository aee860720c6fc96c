package redis

import (
	"context"
	"encoding/json"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// PresenceStatus represents a user's online status
type PresenceStatus struct {
	UserID   string    `json:"user_id"`
	IsOnline bool      `json:"is_online"`
	LastSeen time.Time `json:"last_seen"`
}

// PresenceStore handles presence tracking in Redis
type PresenceStore struct {
	client *goredis.Client
	ttl    time.Duration
}

// Redis key prefixes for presence
const (
	presenceKeyPrefix = "presence:"       // JSON presence record per user
	presenceOnlineSet = "presence:online" // Set of online user IDs
)

// NewPresenceStore creates a new presence store
func NewPresenceStore(client *goredis.Client, ttl time.Duration) *PresenceStore {
	if ttl == 0 {
		ttl = 5 * time.Minute
	}
	return &PresenceStore{client: client, ttl: ttl}
}

// SetOnline marks a user as online
func (p *PresenceStore) SetOnline(ctx context.Context, userID string) error {
	if err := p.write(ctx, userID, true); err != nil {
		return err
	}
	return p.client.SAdd(ctx, presenceOnlineSet, userID).Err()
}

// SetOffline marks a user as offline, keeping the last-seen record.
func (p *PresenceStore) SetOffline(ctx context.Context, userID string) error {
	if err := p.write(ctx, userID, false); err != nil {
		return err
	}
	return p.client.SRem(ctx, presenceOnlineSet, userID).Err()
}

// Touch refreshes the user's presence record and its TTL. Used for
// heartbeats from clients without a live socket.
func (p *PresenceStore) Touch(ctx context.Context, userID string) error {
	return p.write(ctx, userID, true)
}

// Get returns the presence record for a user. The second return is
// false when no record exists (or it expired).
func (p *PresenceStore) Get(ctx context.Context, userID string) (PresenceStatus, bool, error) {
	raw, err := p.client.Get(ctx, presenceKeyPrefix+userID).Result()
	if err == goredis.Nil {
		return PresenceStatus{}, false, nil
	}
	if err != nil {
		return PresenceStatus{}, false, err
	}
	var status PresenceStatus
	if err := json.Unmarshal([]byte(raw), &status); err != nil {
		return PresenceStatus{}, false, err
	}
	return status, true, nil
}

// IsOnline reports whether the user is in the online set.
func (p *PresenceStore) IsOnline(ctx context.Context, userID string) (bool, error) {
	return p.client.SIsMember(ctx, presenceOnlineSet, userID).Result()
}

// OnlineUsers returns the IDs of all users currently online.
func (p *PresenceStore) OnlineUsers(ctx context.Context) ([]string, error) {
	return p.client.SMembers(ctx, presenceOnlineSet).Result()
}

func (p *PresenceStore) write(ctx context.Context, userID string, online bool) error {
	status := PresenceStatus{
		UserID:   userID,
		IsOnline: online,
		LastSeen: time.Now(),
	}
	raw, err := json.Marshal(status)
	if err != nil {
		return err
	}
	return p.client.Set(ctx, presenceKeyPrefix+userID, raw, p.ttl).Err()
}
