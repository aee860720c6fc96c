package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"ripple-chat/internal/domain"
	"ripple-chat/internal/store"
	ripple_errors "ripple-chat/pkg/errors"
)

func TestCreateChatAddsCreatorAsAdmin(t *testing.T) {
	st := store.New()
	users := seedUsers(t, st, 1)
	svc := NewChatService(st, nil)

	chat, err := svc.Create(context.Background(), CreateChatInput{
		Kind:      domain.ChatKindGroup,
		Name:      "Weekend Plans",
		CreatorID: users[0].ID,
	})
	require.NoError(t, err)
	require.Equal(t, 1, chat.MemberCount)

	members, err := svc.GetChatMembers(context.Background(), chat.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	require.Equal(t, users[0].ID, members[0].User.ID)
	require.True(t, members[0].Membership.IsAdmin)
}

func TestCreateGroupChatRequiresName(t *testing.T) {
	st := store.New()
	users := seedUsers(t, st, 1)
	svc := NewChatService(st, nil)

	_, err := svc.Create(context.Background(), CreateChatInput{
		Kind:      domain.ChatKindGroup,
		CreatorID: users[0].ID,
	})
	require.ErrorIs(t, err, ripple_errors.ErrValidation)
}

func TestCreateChatNotifiesInitialMembers(t *testing.T) {
	st := store.New()
	users := seedUsers(t, st, 3)
	notifier := &fakeNotifier{}
	svc := NewChatService(st, notifier)

	chat, err := svc.Create(context.Background(), CreateChatInput{
		Kind:      domain.ChatKindGroup,
		Name:      "Team",
		CreatorID: users[0].ID,
		MemberIDs: []int64{users[1].ID, users[2].ID},
	})
	require.NoError(t, err)
	require.Equal(t, 3, chat.MemberCount)

	require.Len(t, notifier.notifies, 1)
	require.ElementsMatch(t, []int64{users[1].ID, users[2].ID}, notifier.notifies[0])
	require.Equal(t, domain.EventNewConversation, notifier.events[0].Type)
	require.Equal(t, chat.ID, notifier.events[0].ChatID)
}

func TestDirectChatHoldsExactlyTwoMembers(t *testing.T) {
	st := store.New()
	users := seedUsers(t, st, 3)
	svc := NewChatService(st, nil)

	chat, err := svc.Create(context.Background(), CreateChatInput{
		Kind:      domain.ChatKindDirect,
		CreatorID: users[0].ID,
		MemberIDs: []int64{users[1].ID},
	})
	require.NoError(t, err)
	require.Equal(t, 2, chat.MemberCount)

	_, err = svc.AddMember(context.Background(), chat.ID, users[2].ID, false)
	require.ErrorIs(t, err, ripple_errors.ErrCapacityExceeded)

	members, err := svc.GetChatMembers(context.Background(), chat.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)
}

func TestCreateChatFailureLeavesNoTrace(t *testing.T) {
	st := store.New()
	users := seedUsers(t, st, 3)
	svc := NewChatService(st, nil)

	// Third member overflows the direct-chat limit.
	_, err := svc.Create(context.Background(), CreateChatInput{
		Kind:      domain.ChatKindDirect,
		CreatorID: users[0].ID,
		MemberIDs: []int64{users[1].ID, users[2].ID},
	})
	require.ErrorIs(t, err, ripple_errors.ErrCapacityExceeded)

	// Unknown member id.
	_, err = svc.Create(context.Background(), CreateChatInput{
		Kind:      domain.ChatKindGroup,
		Name:      "Team",
		CreatorID: users[0].ID,
		MemberIDs: []int64{999},
	})
	require.ErrorIs(t, err, ripple_errors.ErrNotFound)

	// Same member listed twice.
	_, err = svc.Create(context.Background(), CreateChatInput{
		Kind:      domain.ChatKindGroup,
		Name:      "Team",
		CreatorID: users[0].ID,
		MemberIDs: []int64{users[1].ID, users[1].ID},
	})
	require.ErrorIs(t, err, ripple_errors.ErrConflict)

	for _, u := range users {
		summaries, err := svc.GetChatsForUser(context.Background(), u.ID)
		require.NoError(t, err)
		require.Empty(t, summaries, "a failed create must not leave a chat behind for user %d", u.ID)
	}
}

func TestCreateDirectChatRejectsName(t *testing.T) {
	st := store.New()
	users := seedUsers(t, st, 2)
	svc := NewChatService(st, nil)

	_, err := svc.Create(context.Background(), CreateChatInput{
		Kind:      domain.ChatKindDirect,
		Name:      "Us Two",
		CreatorID: users[0].ID,
		MemberIDs: []int64{users[1].ID},
	})
	require.ErrorIs(t, err, ripple_errors.ErrValidation)
}

func TestAddMemberRejectsDuplicates(t *testing.T) {
	st := store.New()
	users := seedUsers(t, st, 2)
	svc := NewChatService(st, nil)

	chat, err := svc.Create(context.Background(), CreateChatInput{
		Kind:      domain.ChatKindGroup,
		Name:      "Team",
		CreatorID: users[0].ID,
	})
	require.NoError(t, err)

	_, err = svc.AddMember(context.Background(), chat.ID, users[1].ID, false)
	require.NoError(t, err)
	_, err = svc.AddMember(context.Background(), chat.ID, users[1].ID, false)
	require.ErrorIs(t, err, ripple_errors.ErrConflict)

	_, err = svc.AddMember(context.Background(), 999, users[1].ID, false)
	require.ErrorIs(t, err, ripple_errors.ErrNotFound)
}

func TestGroupChatCapacityLimit(t *testing.T) {
	st := store.New()
	users := seedUsers(t, st, domain.MaxGroupMembers+1)
	svc := NewChatService(st, nil)

	chat, err := svc.Create(context.Background(), CreateChatInput{
		Kind:      domain.ChatKindGroup,
		Name:      "Everyone",
		CreatorID: users[0].ID,
	})
	require.NoError(t, err)

	for _, u := range users[1:domain.MaxGroupMembers] {
		_, err := svc.AddMember(context.Background(), chat.ID, u.ID, false)
		require.NoError(t, err)
	}

	_, err = svc.AddMember(context.Background(), chat.ID, users[domain.MaxGroupMembers].ID, false)
	require.ErrorIs(t, err, ripple_errors.ErrCapacityExceeded)

	got, err := svc.GetByID(context.Background(), chat.ID)
	require.NoError(t, err)
	require.Equal(t, domain.MaxGroupMembers, got.MemberCount)
}

func TestRemoveMemberIsIdempotent(t *testing.T) {
	st := store.New()
	users := seedUsers(t, st, 2)
	svc := NewChatService(st, nil)

	chat, err := svc.Create(context.Background(), CreateChatInput{
		Kind:      domain.ChatKindGroup,
		Name:      "Team",
		CreatorID: users[0].ID,
		MemberIDs: []int64{users[1].ID},
	})
	require.NoError(t, err)

	require.NoError(t, svc.RemoveMember(context.Background(), chat.ID, users[1].ID))
	require.NoError(t, svc.RemoveMember(context.Background(), chat.ID, users[1].ID))

	got, err := svc.GetByID(context.Background(), chat.ID)
	require.NoError(t, err)
	require.Equal(t, 1, got.MemberCount, "emptied chats stay in place with the cache refreshed")
}

func TestGetChatsForUserSeesSharedDirectChat(t *testing.T) {
	st := store.New()
	users := seedUsers(t, st, 2)
	svc := NewChatService(st, nil)

	chat, err := svc.Create(context.Background(), CreateChatInput{
		Kind:      domain.ChatKindDirect,
		CreatorID: users[0].ID,
		MemberIDs: []int64{users[1].ID},
	})
	require.NoError(t, err)

	for viewer, other := range map[int64]int64{users[0].ID: users[1].ID, users[1].ID: users[0].ID} {
		summaries, err := svc.GetChatsForUser(context.Background(), viewer)
		require.NoError(t, err)
		require.Len(t, summaries, 1)
		require.Equal(t, chat.ID, summaries[0].Chat.ID)
		require.Equal(t, 2, summaries[0].Chat.MemberCount)
		require.NotNil(t, summaries[0].Other)
		require.Equal(t, other, summaries[0].Other.ID)
	}
}

func TestGetChatsForUserOrdersByActivity(t *testing.T) {
	st := store.New()
	users := seedUsers(t, st, 2)
	chats := NewChatService(st, nil)
	messages := NewMessageService(st, nil)

	quiet, err := chats.Create(context.Background(), CreateChatInput{
		Kind: domain.ChatKindGroup, Name: "Quiet", CreatorID: users[0].ID,
	})
	require.NoError(t, err)
	stale, err := chats.Create(context.Background(), CreateChatInput{
		Kind: domain.ChatKindGroup, Name: "Stale", CreatorID: users[0].ID, MemberIDs: []int64{users[1].ID},
	})
	require.NoError(t, err)
	busy, err := chats.Create(context.Background(), CreateChatInput{
		Kind: domain.ChatKindGroup, Name: "Busy", CreatorID: users[0].ID, MemberIDs: []int64{users[1].ID},
	})
	require.NoError(t, err)

	_, err = messages.Send(context.Background(), stale.ID, users[1].ID, MessageContent{Text: "first"})
	require.NoError(t, err)
	_, err = messages.Send(context.Background(), busy.ID, users[1].ID, MessageContent{Text: "second"})
	require.NoError(t, err)

	summaries, err := chats.GetChatsForUser(context.Background(), users[0].ID)
	require.NoError(t, err)
	require.Len(t, summaries, 3)
	require.Equal(t, busy.ID, summaries[0].Chat.ID)
	require.Equal(t, stale.ID, summaries[1].Chat.ID)
	require.Equal(t, quiet.ID, summaries[2].Chat.ID, "chats without messages sort last")

	require.Equal(t, 1, summaries[0].UnreadCount)
	require.Equal(t, 1, summaries[1].UnreadCount)
	require.Equal(t, 0, summaries[2].UnreadCount)
}

func TestUpdateChatProfile(t *testing.T) {
	st := store.New()
	users := seedUsers(t, st, 2)
	svc := NewChatService(st, nil)

	chat, err := svc.Create(context.Background(), CreateChatInput{
		Kind: domain.ChatKindGroup, Name: "Old Name", CreatorID: users[0].ID,
	})
	require.NoError(t, err)

	name := "New Name"
	updated, err := svc.UpdateProfile(context.Background(), chat.ID, users[0].ID, UpdateChatInput{Name: &name})
	require.NoError(t, err)
	require.Equal(t, name, *updated.Name)

	_, err = svc.UpdateProfile(context.Background(), chat.ID, users[1].ID, UpdateChatInput{Name: &name})
	require.ErrorIs(t, err, ripple_errors.ErrForbidden, "non-members cannot edit the chat")
}
