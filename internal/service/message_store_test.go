package service

import (
	"Volunteer/internal/pkg/mongo"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCreateMessageValidation(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	_, err := h.store.CreateMessage(ctx, alice, []uint64{bob}, "   ")
	require.ErrorIs(t, err, ErrEmptyText)

	_, err = h.store.CreateMessage(ctx, alice, nil, "hi")
	require.ErrorIs(t, err, ErrNoRecipients)

	_, err = h.store.CreateMessage(ctx, alice, []uint64{bob, 0}, "hi")
	require.ErrorIs(t, err, ErrInvalidID)

	require.Zero(t, h.messages.saves)
}

func TestCreateMessageKindAndRecipients(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	direct, err := h.store.CreateMessage(ctx, alice, []uint64{bob, bob}, "  hello ")
	require.NoError(t, err)
	require.Equal(t, mongo.KindDirect, direct.Kind)
	require.Equal(t, []uint64{bob}, direct.Recipients)
	require.Equal(t, "hello", direct.Text)
	require.False(t, direct.ID.IsZero())
	require.Empty(t, direct.ReadBy)

	group, err := h.store.CreateMessage(ctx, alice, []uint64{carol, bob, carol}, "hello")
	require.NoError(t, err)
	require.Equal(t, mongo.KindGroup, group.Kind)
	require.Equal(t, []uint64{carol, bob}, group.Recipients)
}

func TestFindConversationOrdering(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	var want []string
	for i, step := range []struct {
		from, to uint64
	}{{alice, bob}, {carol, alice}, {bob, alice}, {alice, carol}, {alice, bob}} {
		msg, err := h.store.CreateMessage(ctx, step.from, []uint64{step.to}, "m")
		require.NoError(t, err, i)
		if (step.from == alice && step.to == bob) || (step.from == bob && step.to == alice) {
			want = append(want, msg.ID.Hex())
		}
	}

	collect := func() []string {
		var got []string
		for msg, err := range h.store.FindConversation(ctx, bob, alice) {
			require.NoError(t, err)
			got = append(got, msg.ID.Hex())
		}
		return got
	}
	require.Equal(t, want, collect())
	// 可重复遍历
	require.Equal(t, want, collect())

	listed, err := h.store.ListConversation(ctx, alice, bob)
	require.NoError(t, err)
	require.Len(t, listed, 3)

	for range h.store.FindConversation(ctx, alice, bob) {
		break
	}
}

func TestFindConversationSameTimestampUsesInsertionOrder(t *testing.T) {
	h := newHarness()
	at := time.Now()
	first := &mongo.Message{ID: primitive.NewObjectID(), SenderID: alice, Recipients: []uint64{bob}, Text: "1", CreatedAt: at}
	second := &mongo.Message{ID: primitive.NewObjectID(), SenderID: bob, Recipients: []uint64{alice}, Text: "2", CreatedAt: at}
	require.NoError(t, h.messages.SaveMessage(context.Background(), second))
	require.NoError(t, h.messages.SaveMessage(context.Background(), first))

	listed, err := h.store.ListConversation(context.Background(), alice, bob)
	require.NoError(t, err)
	require.Equal(t, []string{"1", "2"}, []string{listed[0].Text, listed[1].Text})
}

func TestFindInboxNewestFirst(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	m1, err := h.store.CreateMessage(ctx, alice, []uint64{bob}, "first")
	require.NoError(t, err)
	m2, err := h.store.CreateMessage(ctx, carol, []uint64{bob, dave}, "second")
	require.NoError(t, err)
	_, err = h.store.CreateMessage(ctx, bob, []uint64{alice}, "outgoing")
	require.NoError(t, err)

	inbox, err := h.store.FindInbox(ctx, bob)
	require.NoError(t, err)
	require.Len(t, inbox, 2)
	require.Equal(t, m2.ID, inbox[0].ID)
	require.Equal(t, m1.ID, inbox[1].ID)
}

func TestMarkReadMonotonic(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	msg, err := h.store.CreateMessage(ctx, alice, []uint64{bob, carol}, "hi")
	require.NoError(t, err)

	ok, err := h.store.MarkRead(ctx, msg.ID, bob, time.Now())
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = h.store.MarkRead(ctx, msg.ID, bob, time.Now())
	require.NoError(t, err)
	require.False(t, ok)

	// 非接收人不能留下回执，按消息不存在处理
	ok, err = h.store.MarkRead(ctx, msg.ID, dave, time.Now())
	require.ErrorIs(t, err, ErrMessageNotFound)
	require.False(t, ok)
	require.Len(t, h.messages.receipts(msg.ID.Hex()), 1)

	ok, err = h.store.MarkRead(ctx, msg.ID, carol, time.Now())
	require.NoError(t, err)
	require.True(t, ok)

	receipts := h.messages.receipts(msg.ID.Hex())
	require.Len(t, receipts, 2)
	require.Equal(t, bob, receipts[0].UserID)
	require.Equal(t, carol, receipts[1].UserID)

	_, err = h.store.MarkRead(ctx, primitive.NewObjectID(), bob, time.Now())
	require.ErrorIs(t, err, ErrMessageNotFound)
}

func TestGetMessage(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	_, err := h.store.GetMessage(ctx, "not-an-id")
	require.ErrorIs(t, err, ErrInvalidID)

	_, err = h.store.GetMessage(ctx, primitive.NewObjectID().Hex())
	require.ErrorIs(t, err, ErrMessageNotFound)

	msg, err := h.store.CreateMessage(ctx, alice, []uint64{bob}, "hi")
	require.NoError(t, err)
	got, err := h.store.GetMessage(ctx, msg.ID.Hex())
	require.NoError(t, err)
	require.Equal(t, "hi", got.Text)
}
