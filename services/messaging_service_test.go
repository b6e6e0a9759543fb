package services

import (
	"alumni-net/domain"
	"alumni-net/errors"
	"alumni-net/runtime"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func conversationWith(t *testing.T, views []domain.ConversationView, other domain.UserID) domain.ConversationView {
	t.Helper()
	view, ok := lo.Find(views, func(v domain.ConversationView) bool { return v.Other.ID == other })
	require.True(t, ok, "no conversation with %s", other)
	return view
}

func TestMessagingService_EndToEndSharedCounter(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	env := newTestEnv(t, domain.UnreadShared, nil)
	env.seed(t, "alice", "bob")

	// Given Alice says hi at t=100
	env.at(100)
	_, err := env.messaging.SendMessage(ctx, "alice", "bob", "hi")
	req.NoError(err)

	views, err := env.messaging.ConversationsFor(ctx, "bob")
	req.NoError(err)
	req.Len(views, 1)
	req.Equal(1, views[0].Unread)
	req.Equal(time.Unix(100, 0).UTC(), views[0].Conversation.LastMessageAt)
	req.Equal(domain.UserID("alice"), views[0].Other.ID)

	// When Bob answers at t=105 the shared counter conflates both directions
	env.at(105)
	_, err = env.messaging.SendMessage(ctx, "bob", "alice", "hello back")
	req.NoError(err)

	views, err = env.messaging.ConversationsFor(ctx, "alice")
	req.NoError(err)
	req.Equal(2, views[0].Unread)
	req.Equal(time.Unix(105, 0).UTC(), views[0].Conversation.LastMessageAt)

	// Then Bob reading Alice's messages resets the shared counter
	flipped, err := env.messaging.MarkRead(ctx, "alice", "bob")
	req.NoError(err)
	req.Equal(1, flipped)

	for _, viewer := range []domain.UserID{"alice", "bob"} {
		views, err = env.messaging.ConversationsFor(ctx, viewer)
		req.NoError(err)
		req.Zero(views[0].Unread, viewer)
	}
	// The viewer scoped counter still knows Alice has not read "hello back"
	req.Equal(1, views[0].Conversation.UnreadBy["alice"])
	req.Equal(0, views[0].Conversation.UnreadBy["bob"])
}

func TestMessagingService_EndToEndPerViewerCounter(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	env := newTestEnv(t, domain.UnreadPerViewer, nil)
	env.seed(t, "alice", "bob")

	env.at(100)
	_, err := env.messaging.SendMessage(ctx, "alice", "bob", "hi")
	req.NoError(err)
	env.at(105)
	_, err = env.messaging.SendMessage(ctx, "bob", "alice", "hello back")
	req.NoError(err)

	_, err = env.messaging.MarkRead(ctx, "alice", "bob")
	req.NoError(err)

	total, err := env.messaging.UnreadTotal(ctx, "bob")
	req.NoError(err)
	req.Zero(total)
	total, err = env.messaging.UnreadTotal(ctx, "alice")
	req.NoError(err)
	req.Equal(1, total)

	_, err = env.messaging.MarkRead(ctx, "bob", "alice")
	req.NoError(err)
	total, err = env.messaging.UnreadTotal(ctx, "alice")
	req.NoError(err)
	req.Zero(total)
}

func TestMessagingService_OneConversationPerPair(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	env := newTestEnv(t, domain.UnreadShared, nil)
	env.seed(t, "alice", "bob", "carol")

	for i, pair := range [][2]domain.UserID{{"bob", "alice"}, {"alice", "bob"}, {"alice", "carol"}, {"bob", "alice"}} {
		env.at(int64(10 + i))
		_, err := env.messaging.SendMessage(ctx, pair[0], pair[1], "ping")
		req.NoError(err)
	}

	views, err := env.messaging.ConversationsFor(ctx, "alice")
	req.NoError(err)
	req.Len(views, 2)
	// Most recent first
	req.Equal(domain.UserID("bob"), views[0].Other.ID)
	req.Equal(domain.UserID("carol"), views[1].Other.ID)
	req.Equal(3, views[0].Unread)

	views, err = env.messaging.ConversationsFor(ctx, "carol")
	req.NoError(err)
	req.Len(views, 1)
}

func TestMessagingService_MessagesBetweenFollowsCallOrder(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	env := newTestEnv(t, domain.UnreadShared, nil)
	env.seed(t, "alice", "bob")

	// The wall clock is frozen, and even goes backwards once
	env.at(500)
	var expected []string
	for i := 0; i < 10; i++ {
		if i == 5 {
			env.at(400)
		}
		from, to := domain.UserID("alice"), domain.UserID("bob")
		if i%3 == 0 {
			from, to = to, from
		}
		content := strings.Repeat("m", i+1)
		expected = append(expected, content)
		_, err := env.messaging.SendMessage(ctx, from, to, content)
		req.NoError(err)
	}

	messages, err := env.messaging.MessagesBetween(ctx, "bob", "alice")
	req.NoError(err)
	req.Equal(expected, lo.Map(messages, func(m domain.Message, _ int) string { return m.Content }))
	for i := 1; i < len(messages); i++ {
		req.False(messages[i].At.Before(messages[i-1].At))
	}

	empty, err := env.messaging.MessagesBetween(ctx, "alice", "nobody")
	req.NoError(err)
	req.NotNil(empty)
	req.Empty(empty)
}

func TestMessagingService_SendValidation(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	env := newTestEnv(t, domain.UnreadShared, nil)
	env.seed(t, "alice", "bob")

	_, err := env.messaging.SendMessage(ctx, "alice", "bob", "   \n\t")
	req.ErrorIs(err, errors.ErrInvalidArgument)
	_, err = env.messaging.SendMessage(ctx, "alice", "bob", strings.Repeat("é", 51))
	req.ErrorIs(err, errors.ErrInvalidArgument)
	_, err = env.messaging.SendMessage(ctx, "alice", "alice", "note to self")
	req.ErrorIs(err, errors.ErrInvalidArgument)
	_, err = env.messaging.SendMessage(ctx, "alice", "ghost", "hello?")
	req.ErrorIs(err, errors.ErrNotFound)
	_, err = env.messaging.SendMessage(ctx, "ghost", "alice", "boo")
	req.ErrorIs(err, errors.ErrNotFound)

	// Nothing was stored by the failed attempts
	views, err := env.messaging.ConversationsFor(ctx, "alice")
	req.NoError(err)
	req.Empty(views)

	// Exactly at the limit, surrounding blanks do not count
	message, err := env.messaging.SendMessage(ctx, "alice", "bob", "  "+strings.Repeat("é", 50)+"  ")
	req.NoError(err)
	req.Equal(strings.Repeat("é", 50), message.Content)
	req.False(message.Read)
}

func TestMessagingService_SendIsModerated(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	env := newTestEnv(t, domain.UnreadShared, nil)
	env.seed(t, "alice", "bob")

	message, err := env.messaging.SendMessage(ctx, "alice", "bob", "this is a scam")
	req.NoError(err)
	req.Equal("this is a ****", message.Content)

	stored, err := env.messaging.MessagesBetween(ctx, "alice", "bob")
	req.NoError(err)
	req.Equal(message, stored[0])
}

func TestMessagingService_MarkReadWithoutConversation(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t, domain.UnreadShared, nil)

	flipped, err := env.messaging.MarkRead(context.Background(), "alice", "bob")
	req.NoError(err)
	req.Zero(flipped)
}

func TestMessagingService_ConversationsForUnresolvableParticipant(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	env := newTestEnv(t, domain.UnreadShared, nil)
	env.seed(t, "alice")

	// A message towards an identity the profile store does not know
	_, _, err := env.messages.AppendMessage(ctx, domain.Message{
		SenderID:   "alice",
		ReceiverID: "ghost",
		Content:    "orphan",
		At:         time.Unix(1, 0).UTC(),
	})
	req.NoError(err)

	_, err = env.messaging.ConversationsFor(ctx, "alice")
	req.ErrorIs(err, errors.ErrConsistency)

	_, err = env.messaging.ConversationsFor(ctx, "ghost")
	req.ErrorIs(err, errors.ErrNotFound)
}

func TestMessagingService_ConcurrentSendsOnOnePair(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	env := newTestEnv(t, domain.UnreadShared, runtime.NewMonotonicClock())
	env.seed(t, "alice", "bob")

	const n = 40
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			from, to := domain.UserID("alice"), domain.UserID("bob")
			if i%2 == 0 {
				from, to = to, from
			}
			_, err := env.messaging.SendMessage(ctx, from, to, "concurrent")
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		req.NoError(err)
	}

	views, err := env.messaging.ConversationsFor(ctx, "alice")
	req.NoError(err)
	req.Len(views, 1)
	req.Equal(n, views[0].Conversation.UnreadCount)
	req.Equal(n/2, views[0].Conversation.UnreadBy["alice"])
	req.Equal(n/2, views[0].Conversation.UnreadBy["bob"])

	messages, err := env.messaging.MessagesBetween(ctx, "alice", "bob")
	req.NoError(err)
	req.Len(messages, n)
	req.Equal(n, len(lo.UniqBy(messages, func(m domain.Message) uint64 { return m.Seq })))
}

func TestMessagingService_RebuildConversations(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	env := newTestEnv(t, domain.UnreadPerViewer, nil)
	env.seed(t, "alice", "bob", "carol")

	env.at(10)
	_, err := env.messaging.SendMessage(ctx, "alice", "bob", "one")
	req.NoError(err)
	env.at(20)
	_, err = env.messaging.SendMessage(ctx, "carol", "alice", "two")
	req.NoError(err)
	before, err := env.messaging.ConversationsFor(ctx, "alice")
	req.NoError(err)

	count, err := env.messaging.RebuildConversations(ctx)
	req.NoError(err)
	req.Equal(2, count)

	after, err := env.messaging.ConversationsFor(ctx, "alice")
	req.NoError(err)
	req.Equal(before, after)

	// MarkRead zeroes the shared counter although bob's reply is unread,
	// a rebuild recounts the unread flags of both directions.
	env.at(30)
	_, err = env.messaging.SendMessage(ctx, "bob", "alice", "three")
	req.NoError(err)
	_, err = env.messaging.MarkRead(ctx, "alice", "bob")
	req.NoError(err)
	key := domain.NewPairKey("alice", "bob")
	live, err := env.messages.GetConversation(ctx, key)
	req.NoError(err)
	req.Equal(0, live.UnreadCount)
	req.Equal(1, live.UnreadFor("alice", domain.UnreadPerViewer))
	req.Equal(0, live.UnreadFor("bob", domain.UnreadPerViewer))

	_, err = env.messaging.RebuildConversations(ctx)
	req.NoError(err)
	rebuilt, err := env.messages.GetConversation(ctx, key)
	req.NoError(err)
	req.Equal(1, rebuilt.UnreadCount)
	req.Equal(live.ID, rebuilt.ID)
	req.Equal(live.LastMessageAt, rebuilt.LastMessageAt)
	req.Equal(1, rebuilt.UnreadFor("alice", domain.UnreadPerViewer))
	req.Equal(0, rebuilt.UnreadFor("bob", domain.UnreadPerViewer))
}
