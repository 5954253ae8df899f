package service

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"anoa.com/survivehub/internal/entity"
	chatRepo "anoa.com/survivehub/internal/modules/chat/repository"
	userRepo "anoa.com/survivehub/internal/modules/user/repository"
	"anoa.com/survivehub/internal/testutil"
	"anoa.com/survivehub/pkg/apperror"
	"anoa.com/survivehub/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memoryRepo mirrors the update semantics of the Mongo repository.
type memoryRepo struct {
	mu    sync.Mutex
	chats map[primitive.ObjectID]*entity.Chat
	clock time.Time
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{chats: map[primitive.ObjectID]*entity.Chat{}, clock: time.Now()}
}

func (m *memoryRepo) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func clone(c *entity.Chat) *entity.Chat {
	out := *c
	out.Participants = append([]entity.ChatParticipant(nil), c.Participants...)
	out.Messages = append([]entity.Message(nil), c.Messages...)
	return &out
}

func (m *memoryRepo) Create(_ context.Context, chat *entity.Chat) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	chat.ID = primitive.NewObjectID()
	chat.CreatedAt = m.tick()
	chat.UpdatedAt = chat.CreatedAt
	m.chats[chat.ID] = clone(chat)
	return nil
}

func (m *memoryRepo) FindBetween(_ context.Context, a, b string) (*entity.Chat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.chats {
		if len(c.Participants) == 2 && c.Participant(a) != nil && c.Participant(b) != nil {
			return clone(c), nil
		}
	}
	return nil, chatRepo.ErrNotFound
}

func (m *memoryRepo) FindByID(_ context.Context, id primitive.ObjectID) (*entity.Chat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.chats[id]
	if !ok {
		return nil, chatRepo.ErrNotFound
	}
	return clone(c), nil
}

func (m *memoryRepo) PushMessage(_ context.Context, id primitive.ObjectID, msg entity.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.chats[id]
	if !ok || c.Participant(msg.Author) == nil {
		return chatRepo.ErrNotFound
	}
	c.Messages = append(c.Messages, msg)
	for i := range c.Participants {
		c.Participants[i].Read = c.Participants[i].User == msg.Author
	}
	c.Open = true
	c.UpdatedAt = m.tick()
	return nil
}

func (m *memoryRepo) MarkRead(_ context.Context, id primitive.ObjectID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.chats[id]
	if !ok || c.Participant(userID) == nil {
		return chatRepo.ErrNotFound
	}
	c.Participant(userID).Read = true
	return nil
}

func (m *memoryRepo) SetOpen(_ context.Context, id primitive.ObjectID, userID string, open bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.chats[id]
	if !ok || c.Participant(userID) == nil {
		return chatRepo.ErrNotFound
	}
	c.Open = open
	return nil
}

func (m *memoryRepo) ListOpen(_ context.Context, userID string) ([]entity.Chat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.Chat
	for _, c := range m.chats {
		if c.Open && c.Participant(userID) != nil {
			out = append(out, *clone(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (m *memoryRepo) CountUnread(_ context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, c := range m.chats {
		if p := c.Participant(userID); c.Open && p != nil && !p.Read {
			n++
		}
	}
	return n, nil
}

func TestStartChat(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	repo := newMemoryRepo()
	svc := NewChatService(repo, userRepo.NewUserRepository(db), logger.Nop())

	alice := testutil.CreateUser(t, db, "alice").Principal()
	bob := testutil.CreateUser(t, db, "bob").Principal()

	t.Run("cannot chat with yourself", func(t *testing.T) {
		_, err := svc.StartChat(ctx, alice, alice.UserID, "hello me")
		assert.ErrorIs(t, err, apperror.ErrBadRequest)
	})

	t.Run("recipient must exist", func(t *testing.T) {
		_, err := svc.StartChat(ctx, alice, uuid.New(), "hello?")
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("empty text is rejected", func(t *testing.T) {
		_, err := svc.StartChat(ctx, alice, bob.UserID, "   ")
		assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	})

	chat, err := svc.StartChat(ctx, alice, bob.UserID, "hi bob")
	require.NoError(t, err)

	t.Run("new chat marks only the sender read", func(t *testing.T) {
		require.Len(t, chat.Participants, 2)
		assert.True(t, chat.Participant(alice.UserID.String()).Read)
		assert.False(t, chat.Participant(bob.UserID.String()).Read)
		require.Len(t, chat.Messages, 1)
		assert.Equal(t, "hi bob", chat.Messages[0].Text)
		assert.True(t, chat.Open)
	})

	t.Run("starting again reuses and reopens the pair chat", func(t *testing.T) {
		require.NoError(t, svc.CloseChat(ctx, bob, chat.ID.Hex()))

		again, err := svc.StartChat(ctx, bob, alice.UserID, "back again")
		require.NoError(t, err)
		assert.Equal(t, chat.ID, again.ID)
		assert.True(t, again.Open)
		assert.Len(t, again.Messages, 2)
		assert.Len(t, repo.chats, 1)
	})
}

func TestConversation(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	svc := NewChatService(newMemoryRepo(), userRepo.NewUserRepository(db), logger.Nop())

	alice := testutil.CreateUser(t, db, "alice").Principal()
	bob := testutil.CreateUser(t, db, "bob").Principal()
	carol := testutil.CreateUser(t, db, "carol").Principal()

	chat, err := svc.StartChat(ctx, alice, bob.UserID, "first")
	require.NoError(t, err)
	id := chat.ID.Hex()

	t.Run("outsiders are forbidden", func(t *testing.T) {
		_, err := svc.SendMessage(ctx, carol, id, "let me in")
		assert.ErrorIs(t, err, apperror.ErrForbidden)
		_, err = svc.OpenChat(ctx, carol, id)
		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})

	t.Run("unknown chat id", func(t *testing.T) {
		_, err := svc.OpenChat(ctx, alice, primitive.NewObjectID().Hex())
		assert.ErrorIs(t, err, apperror.ErrNotFound)
		_, err = svc.OpenChat(ctx, alice, "not-an-id")
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("opening marks the reader read", func(t *testing.T) {
		n, err := svc.UnreadCount(ctx, bob)
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)

		opened, err := svc.OpenChat(ctx, bob, id)
		require.NoError(t, err)
		require.NotNil(t, opened.With)
		assert.Equal(t, alice.UserID, opened.With.ID)

		n, err = svc.UnreadCount(ctx, bob)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("a reply flips the read flags", func(t *testing.T) {
		msg, err := svc.SendMessage(ctx, bob, id, "reply")
		require.NoError(t, err)
		assert.Equal(t, bob.UserID.String(), msg.Author)

		list, err := svc.ListChats(ctx, alice)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.True(t, list[0].Unread)
		require.NotNil(t, list[0].LastMessage)
		assert.Equal(t, "reply", list[0].LastMessage.Text)

		list, err = svc.ListChats(ctx, bob)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.False(t, list[0].Unread)
	})

	t.Run("closed chats leave the inbox until reopened", func(t *testing.T) {
		require.NoError(t, svc.CloseChat(ctx, alice, id))
		list, err := svc.ListChats(ctx, alice)
		require.NoError(t, err)
		assert.Empty(t, list)

		require.NoError(t, svc.ReopenChat(ctx, alice, id))
		list, err = svc.ListChats(ctx, alice)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("inbox is ordered by last activity", func(t *testing.T) {
		_, err := svc.StartChat(ctx, carol, alice.UserID, "newer")
		require.NoError(t, err)

		list, err := svc.ListChats(ctx, alice)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, carol.UserID, list[0].With.ID)
	})
}

func TestChatDisabled(t *testing.T) {
	svc := NewChatService(nil, nil, logger.Nop())
	p := entity.Principal{UserID: uuid.New(), Role: entity.RoleMember}

	_, err := svc.ListChats(context.Background(), p)
	assert.ErrorIs(t, err, ErrChatDisabled)
	assert.Equal(t, 503, apperror.MapErrorToStatus(err))
}
