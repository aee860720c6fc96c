package services

import (
	"context"
)

type contextKey string

const userContextKey contextKey = "auth_user"

type authUser struct {
	ID  int64
	UID string
}

func WithUserContext(ctx context.Context, userID int64, uid string) context.Context {
	return context.WithValue(ctx, userContextKey, authUser{ID: userID, UID: uid})
}

func UserIDFromContext(ctx context.Context) (int64, bool) {
	u, ok := ctx.Value(userContextKey).(authUser)
	if !ok {
		return 0, false
	}
	return u.ID, true
}

func UserUIDFromContext(ctx context.Context) (string, bool) {
	u, ok := ctx.Value(userContextKey).(authUser)
	if !ok {
		return "", false
	}
	return u.UID, true
}
