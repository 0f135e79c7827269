package mongo

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestConversationFilterCoversBothDirections(t *testing.T) {
	filter := conversationFilter(1, 2)

	or, ok := filter["$or"].(bson.A)
	require.True(t, ok)
	require.Equal(t, bson.A{
		bson.M{"sender_id": uint64(1), "recipients": uint64(2)},
		bson.M{"sender_id": uint64(2), "recipients": uint64(1)},
	}, or)
}

func TestUnreadFilterExcludesOwnReceipt(t *testing.T) {
	require.Equal(t, bson.M{
		"sender_id":       uint64(1),
		"recipients":      uint64(2),
		"read_by.user_id": bson.M{"$ne": uint64(2)},
	}, unreadFilter(1, 2))
}

func TestMarkReadFilterRequiresRecipient(t *testing.T) {
	id := primitive.NewObjectID()

	filter := markReadFilter(id, 7)
	require.Equal(t, id, filter["_id"])
	require.Equal(t, uint64(7), filter["recipients"])
	require.Equal(t, bson.M{"$ne": uint64(7)}, filter["read_by.user_id"])

	// 兜底查询只看是否为接收人，不能带上回执条件
	require.Equal(t, bson.M{"_id": id, "recipients": uint64(7)}, recipientFilter(id, 7))
}

func TestNotificationFilters(t *testing.T) {
	require.Equal(t, bson.M{"receiver_id": uint64(3)}, notificationListFilter(3, ""))
	require.Equal(t, bson.M{"receiver_id": uint64(3), "type": NotifyEvent}, notificationListFilter(3, NotifyEvent))
	require.Equal(t, bson.M{"receiver_id": uint64(3), "is_read": false}, unreadNotificationFilter(3))
}

func TestFiltersSerializeToBSON(t *testing.T) {
	for _, filter := range []bson.M{
		conversationFilter(1, 2),
		unreadFilter(1, 2),
		markReadFilter(primitive.NewObjectID(), 2),
		notificationListFilter(2, NotifyEvent),
	} {
		_, err := bson.Marshal(filter)
		require.NoError(t, err)
	}
}
