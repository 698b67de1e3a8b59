package delivery

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tamaralmogy/message-app/internal/directory"
	"github.com/tamaralmogy/message-app/internal/messagestore"
	"github.com/tamaralmogy/message-app/internal/models"
	"github.com/tamaralmogy/message-app/internal/storage"
)

type fixture struct {
	users    *directory.UserDir
	groups   *directory.GroupDir
	messages *messagestore.Store
	engine   *Engine
}

func newFixture() fixture {
	store := storage.NewMemoryStore()
	users := directory.NewUserDir(store)
	groups := directory.NewGroupDir(store)
	messages := messagestore.NewStore(store)
	return fixture{
		users:    users,
		groups:   groups,
		messages: messages,
		engine:   NewEngine(users, groups, messages),
	}
}

func TestSendDirectDelivers(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	recipient, err := f.users.Register(ctx, "bob", "bob@example.com")
	require.NoError(t, err)

	msg, err := f.engine.SendDirect(ctx, "sender-1", recipient.UserID, "hi there", "2024-01-01T00:00:00Z")
	require.NoError(t, err)
	require.NotEmpty(t, msg.MessageID)

	list, err := f.messages.ListForRecipient(ctx, recipient.UserID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, msg.MessageID, list[0].MessageID)
	require.Equal(t, "hi there", list[0].Content)
	require.Equal(t, "sender-1", list[0].SenderID)
}

func TestSendDirectBlockedStoresNothing(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	recipient, err := f.users.Register(ctx, "carol", "carol@example.com")
	require.NoError(t, err)
	require.NoError(t, f.users.Block(ctx, recipient.UserID, "sender-1"))

	_, err = f.engine.SendDirect(ctx, "sender-1", recipient.UserID, "let me in", "")
	require.ErrorIs(t, err, ErrBlocked)

	list, err := f.messages.ListForRecipient(ctx, recipient.UserID)
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestSendDirectUnknownRecipientStillStores(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	msg, err := f.engine.SendDirect(ctx, "sender-1", "ghost", "anyone home?", "")
	require.NoError(t, err)

	list, err := f.messages.ListForRecipient(ctx, "ghost")
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, msg.MessageID, list[0].MessageID)
}

func TestSendGroupFansOut(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	group, err := f.groups.Create(ctx, "trio", []string{"user-a", "user-b", "user-c"})
	require.NoError(t, err)

	copies, err := f.engine.SendGroup(ctx, "sender-1", group.GroupID, "hello all", "ts")
	require.NoError(t, err)
	require.Len(t, copies, 3)

	recipients := map[string]bool{}
	for _, msg := range copies {
		require.Equal(t, copies[0].MessageID, msg.MessageID)
		require.Equal(t, "sender-1", msg.SenderID)
		require.Equal(t, group.GroupID, msg.GroupID)
		require.Equal(t, "hello all", msg.Content)
		recipients[msg.RecipientID] = true
	}
	require.Equal(t, map[string]bool{"user-a": true, "user-b": true, "user-c": true}, recipients)

	listB, err := f.messages.ListForRecipient(ctx, "user-b")
	require.NoError(t, err)
	require.Len(t, listB, 1)
	require.Equal(t, copies[0].MessageID, listB[0].MessageID)
}

func TestSendGroupIncludesDuplicatesAndSender(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	group, err := f.groups.Create(ctx, "echo chamber", []string{"sender-1", "user-a", "user-a"})
	require.NoError(t, err)

	copies, err := f.engine.SendGroup(ctx, "sender-1", group.GroupID, "echo", "")
	require.NoError(t, err)
	require.Len(t, copies, 3)

	listA, err := f.messages.ListForRecipient(ctx, "user-a")
	require.NoError(t, err)
	// the duplicate member collapses onto the same copy key
	require.NotEmpty(t, listA)

	listSender, err := f.messages.ListForRecipient(ctx, "sender-1")
	require.NoError(t, err)
	require.Len(t, listSender, 1)
}

func TestSendGroupEmptyGroup(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	group, err := f.groups.Create(ctx, "empty", nil)
	require.NoError(t, err)

	_, err = f.engine.SendGroup(ctx, "sender-1", group.GroupID, "anyone?", "")
	require.ErrorIs(t, err, ErrEmptyGroup)

	list, err := f.messages.ListForRecipient(ctx, "sender-1")
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestSendGroupUnknownGroup(t *testing.T) {
	f := newFixture()

	_, err := f.engine.SendGroup(context.Background(), "sender-1", "missing", "hi", "")
	require.ErrorIs(t, err, directory.ErrGroupNotFound)
}

type flakyStore struct {
	mock.Mock
}

func (m *flakyStore) Append(ctx context.Context, msg models.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *flakyStore) ListForRecipient(ctx context.Context, userID string) ([]models.Message, error) {
	args := m.Called(ctx, userID)
	return nil, args.Error(1)
}

func TestSendGroupPartialFailureReturnsStorageError(t *testing.T) {
	store := storage.NewMemoryStore()
	groups := directory.NewGroupDir(store)
	users := directory.NewUserDir(store)
	ctx := context.Background()

	group, err := groups.Create(ctx, "partial", []string{"user-a", "user-b"})
	require.NoError(t, err)

	storeErr := errors.New("write failed")
	messages := new(flakyStore)
	messages.On("Append", mock.Anything, mock.MatchedBy(func(msg models.Message) bool {
		return msg.RecipientID == "user-a"
	})).Return(nil).Once()
	messages.On("Append", mock.Anything, mock.MatchedBy(func(msg models.Message) bool {
		return msg.RecipientID == "user-b"
	})).Return(storeErr).Once()

	engine := NewEngine(users, groups, messages)

	copies, err := engine.SendGroup(ctx, "sender-1", group.GroupID, "half delivered", "")
	require.ErrorIs(t, err, storeErr)
	// the copy written before the failure is reported, not rolled back
	require.Len(t, copies, 1)
	require.Equal(t, "user-a", copies[0].RecipientID)
	messages.AssertExpectations(t)
}
