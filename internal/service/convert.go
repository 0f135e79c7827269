package service

import (
	"Volunteer/internal/api/dto"
	"Volunteer/internal/pkg/mongo"

	"github.com/jinzhu/copier"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var objectIDToHex = copier.TypeConverter{
	SrcType: primitive.ObjectID{},
	DstType: copier.String,
	Fn: func(src interface{}) (interface{}, error) {
		return src.(primitive.ObjectID).Hex(), nil
	},
}

// toMessageDTO 组装读模型，持久化实体保持不变
func toMessageDTO(msg *mongo.Message, senderName string) *dto.MessageDTO {
	out := &dto.MessageDTO{}
	_ = copier.CopyWithOption(out, msg, copier.Option{
		Converters: []copier.TypeConverter{objectIDToHex},
	})
	out.ReadBy = make([]dto.ReadByDTO, 0, len(msg.ReadBy))
	_ = copier.Copy(&out.ReadBy, &msg.ReadBy)
	out.Recipients = append([]uint64(nil), msg.Recipients...)
	out.SenderName = senderName
	return out
}

func toEventChatMessageDTO(eventID uint64, msg *mongo.EventChatMessage, senderName string) *dto.EventChatMessageDTO {
	out := &dto.EventChatMessageDTO{}
	_ = copier.Copy(out, msg)
	out.Recipients = append([]uint64(nil), msg.Recipients...)
	out.EventID = eventID
	out.SenderName = senderName
	return out
}
