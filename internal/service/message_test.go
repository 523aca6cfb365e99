package service

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tableguild/tableguild/internal/model"
	redisclient "github.com/tableguild/tableguild/internal/pkg/redis"
	"github.com/tableguild/tableguild/internal/repository"
	"github.com/tableguild/tableguild/utils/snowflake"
)

func newMessageService(t *testing.T, f *fixture) IMessageService {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	gen, err := snowflake.NewGenerator(1)
	require.NoError(t, err)

	return NewMessageService(
		repository.NewMessageRepository(f.db),
		f.memberRepo,
		redisclient.NewClientFrom(rdb),
		gen,
	)
}

// TestConversationID is identical from both sides of the pair.
func TestConversationID(t *testing.T) {
	assert.Equal(t, ConversationID("a", "b"), ConversationID("b", "a"))
	assert.Equal(t, "a:b", ConversationID("b", "a"))
}

// TestMessageSend assigns monotonically increasing sequence numbers within
// a conversation.
func TestMessageSend(t *testing.T) {
	f := newFixture(t)
	svc := newMessageService(t, f)
	ctx := context.Background()

	alice := f.createMember(t, "alice", model.RoleMember)
	bob := f.createMember(t, "bob", model.RoleMember)

	first, err := svc.Send(ctx, alice.ID, &SendMessageRequest{
		RecipientID: bob.ID,
		Content:     "still on for saturday?",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.SeqID)
	assert.Equal(t, ConversationID(alice.ID, bob.ID), first.ConversationID)

	// The reply lands in the same conversation with the next seq.
	second, err := svc.Send(ctx, bob.ID, &SendMessageRequest{
		RecipientID: alice.ID,
		Content:     "yes, bringing snacks",
	})
	require.NoError(t, err)
	assert.Equal(t, first.ConversationID, second.ConversationID)
	assert.Equal(t, int64(2), second.SeqID)
}

// TestMessageSend_Validation covers empty content, self-messaging and
// unknown recipients.
func TestMessageSend_Validation(t *testing.T) {
	f := newFixture(t)
	svc := newMessageService(t, f)
	ctx := context.Background()

	alice := f.createMember(t, "alice", model.RoleMember)
	bob := f.createMember(t, "bob", model.RoleMember)

	_, err := svc.Send(ctx, alice.ID, &SendMessageRequest{RecipientID: bob.ID, Content: "   "})
	assert.ErrorIs(t, err, ErrEmptyMessage)

	_, err = svc.Send(ctx, alice.ID, &SendMessageRequest{RecipientID: alice.ID, Content: "note to self"})
	assert.ErrorIs(t, err, ErrSelfMessage)

	_, err = svc.Send(ctx, alice.ID, &SendMessageRequest{RecipientID: "no-such-member", Content: "hello?"})
	assert.ErrorIs(t, err, ErrMemberNotFound)
}

// TestMessageHistory pages through a conversation oldest first.
func TestMessageHistory(t *testing.T) {
	f := newFixture(t)
	svc := newMessageService(t, f)
	ctx := context.Background()

	alice := f.createMember(t, "alice", model.RoleMember)
	bob := f.createMember(t, "bob", model.RoleMember)

	for _, content := range []string{"one", "two", "three", "four"} {
		_, err := svc.Send(ctx, alice.ID, &SendMessageRequest{RecipientID: bob.ID, Content: content})
		require.NoError(t, err)
	}

	page, err := svc.History(ctx, bob.ID, alice.ID, 0, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "one", page[0].Content)
	assert.Equal(t, "two", page[1].Content)

	rest, err := svc.History(ctx, bob.ID, alice.ID, page[1].SeqID, 0)
	require.NoError(t, err)
	require.Len(t, rest, 2)
	assert.Equal(t, "three", rest[0].Content)
	assert.Equal(t, "four", rest[1].Content)
}
