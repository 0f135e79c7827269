package service

import (
	"Volunteer/internal/pkg/mongo"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestToMessageDTO(t *testing.T) {
	at := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	msg := &mongo.Message{
		ID:         primitive.NewObjectID(),
		SenderID:   alice,
		Recipients: []uint64{bob, carol},
		Text:       "hello",
		Kind:       mongo.KindGroup,
		ReadBy:     []mongo.ReadReceipt{{UserID: bob, ReadAt: at}},
		CreatedAt:  at,
	}

	out := toMessageDTO(msg, "Alice")
	require.Equal(t, msg.ID.Hex(), out.ID)
	require.Equal(t, alice, out.SenderID)
	require.Equal(t, "Alice", out.SenderName)
	require.Equal(t, []uint64{bob, carol}, out.Recipients)
	require.Equal(t, mongo.KindGroup, out.Kind)
	require.Equal(t, at, out.CreatedAt)
	require.Len(t, out.ReadBy, 1)
	require.Equal(t, bob, out.ReadBy[0].UserID)
	require.Equal(t, at, out.ReadBy[0].ReadAt)

	// 读模型与实体不共享切片
	out.Recipients[0] = dave
	require.Equal(t, bob, msg.Recipients[0])
}

func TestToMessageDTOWithoutReceipts(t *testing.T) {
	out := toMessageDTO(&mongo.Message{ID: primitive.NewObjectID(), SenderID: alice, Recipients: []uint64{bob}}, "Alice")
	require.NotNil(t, out.ReadBy)
	require.Empty(t, out.ReadBy)
}
