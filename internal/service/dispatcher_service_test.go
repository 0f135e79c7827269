package service

import (
	"Volunteer/internal/api/dto"
	"Volunteer/internal/pkg/consts"
	"Volunteer/internal/pkg/mongo"
	"Volunteer/internal/pkg/presence"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSendMessageGroupScenario(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	out, err := h.dispatcher.SendMessage(ctx, alice, []uint64{bob, carol}, "hello")
	require.NoError(t, err)
	h.settle()

	require.Equal(t, 1, h.messages.saves)
	require.Equal(t, mongo.KindGroup, out.Kind)
	require.Equal(t, []uint64{bob, carol}, out.Recipients)
	require.Equal(t, "Alice", out.SenderName)
	require.Len(t, out.ID, 24)

	require.Equal(t, uint64(1), h.ledger.get(bob, alice))
	require.Equal(t, uint64(1), h.ledger.get(carol, alice))
	require.Equal(t, 2, h.ledger.increments)

	for _, r := range []uint64{bob, carol} {
		got := h.transport.to(presence.UserRoom(r))
		require.Len(t, got, 1)
		require.Equal(t, consts.EventReceiveMessage, got[0].event)
		require.Equal(t, out.ID, got[0].payload.(*dto.MessageDTO).ID)
	}
	require.Empty(t, h.transport.to(presence.UserRoom(alice)))
}

func TestSendMessageFanOutIndependentOfTransport(t *testing.T) {
	h := newHarness()
	h.transport.err = errors.New("bus down")

	recipients := []uint64{bob, carol, dave, 5, 6}
	_, err := h.dispatcher.SendMessage(context.Background(), alice, recipients, "hi")
	require.NoError(t, err)
	h.settle()

	require.Equal(t, 1, h.messages.saves)
	require.Equal(t, len(recipients), h.ledger.increments)
	require.Equal(t, len(recipients), h.transport.count())
}

func TestSendMessagePartialDelivery(t *testing.T) {
	h := newHarness()
	h.ledger.failFor[carol] = true

	out, err := h.dispatcher.SendMessage(context.Background(), alice, []uint64{bob, carol, dave}, "hi")
	require.NoError(t, err)
	require.NotNil(t, out)
	h.settle()

	require.Equal(t, 1, h.messages.saves)
	require.Equal(t, uint64(1), h.ledger.get(bob, alice))
	require.Equal(t, uint64(1), h.ledger.get(dave, alice))
	require.Equal(t, []pair{{carol, alice}}, h.dirty.marked())
	// 账本失败不影响推送
	require.Len(t, h.transport.to(presence.UserRoom(carol)), 1)
}

func TestSendMessageRejectsBeforeWriting(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	_, err := h.dispatcher.SendMessage(ctx, alice, []uint64{bob}, "")
	require.ErrorIs(t, err, ErrEmptyText)
	_, err = h.dispatcher.SendMessage(ctx, alice, []uint64{}, "hi")
	require.ErrorIs(t, err, ErrNoRecipients)
	h.settle()

	require.Zero(t, h.messages.saves)
	require.Zero(t, h.ledger.increments)
	require.Zero(t, h.transport.count())
}

func TestSendMessageToSelf(t *testing.T) {
	h := newHarness()
	_, err := h.dispatcher.SendMessage(context.Background(), alice, []uint64{alice}, "note")
	require.NoError(t, err)
	h.settle()

	require.Equal(t, uint64(1), h.ledger.get(alice, alice))
	require.Len(t, h.transport.to(presence.UserRoom(alice)), 1)
}

func TestSendMessageConcurrentNoLostIncrements(t *testing.T) {
	h := newHarness()
	const n = 40

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(sender uint64) {
			defer wg.Done()
			_, _ = h.dispatcher.SendMessage(context.Background(), sender, []uint64{dave}, "ping")
		}(uint64(i%3 + 1))
	}
	wg.Wait()
	h.settle()

	total := h.ledger.get(dave, alice) + h.ledger.get(dave, bob) + h.ledger.get(dave, carol)
	require.Equal(t, uint64(n), total)
	require.Equal(t, n, h.messages.saves)
}

func TestReply(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	_, err := h.dispatcher.Reply(ctx, bob, 99, "hi")
	require.ErrorIs(t, err, ErrUserNotFound)

	_, err = h.dispatcher.Reply(ctx, bob, alice, " ")
	require.ErrorIs(t, err, ErrEmptyText)

	out, err := h.dispatcher.Reply(ctx, bob, alice, "got it")
	require.NoError(t, err)
	h.settle()

	require.Equal(t, mongo.KindDirect, out.Kind)
	require.Equal(t, "Bob", out.SenderName)
	require.Equal(t, uint64(1), h.ledger.get(alice, bob))
}
