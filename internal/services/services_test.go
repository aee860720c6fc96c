package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"ripple-chat/internal/domain"
	"ripple-chat/internal/store"
)

// fakeNotifier records fan-out calls for assertions.
type fakeNotifier struct {
	notifies   [][]int64
	events     []domain.Event
	broadcasts []domain.Event
	excluded   [][]int64
}

func (f *fakeNotifier) Notify(userIDs []int64, event domain.Event) {
	f.notifies = append(f.notifies, append([]int64(nil), userIDs...))
	f.events = append(f.events, event)
}

func (f *fakeNotifier) Broadcast(event domain.Event, exclude ...int64) {
	f.broadcasts = append(f.broadcasts, event)
	f.excluded = append(f.excluded, append([]int64(nil), exclude...))
}

// seedUsers inserts n users and returns them in creation order.
func seedUsers(t *testing.T, st *store.Store, n int) []domain.User {
	t.Helper()
	users := make([]domain.User, 0, n)
	err := st.Update(func(tx *store.Tx) error {
		for i := 0; i < n; i++ {
			user, err := tx.InsertUser(store.UserDraft{
				UID:         fmt.Sprintf("u%d", i+1),
				DisplayName: fmt.Sprintf("User %d", i+1),
				Email:       fmt.Sprintf("user%d@example.com", i+1),
			})
			if err != nil {
				return err
			}
			users = append(users, user)
		}
		return nil
	})
	require.NoError(t, err)
	return users
}
