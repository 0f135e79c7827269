package handler

import (
	"Volunteer/internal/api/dto"
	"Volunteer/internal/pkg/response"
	"Volunteer/internal/service"

	"github.com/gin-gonic/gin"
)

type EventChatHandler struct {
	eventChat service.EventChatService
}

func NewEventChatHandler(eventChat service.EventChatService) *EventChatHandler {
	return &EventChatHandler{eventChat: eventChat}
}

// GetChats 当前用户参与的活动群聊
func (s *EventChatHandler) GetChats(c *gin.Context) {
	res, err := s.eventChat.ListUserChats(c, currentUser(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

func (s *EventChatHandler) GetEventMessages(c *gin.Context) {
	eventID, ok := uintParam(c, "event_id")
	if !ok {
		return
	}
	res, err := s.eventChat.GetEventMessages(c, currentUser(c), eventID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// Broadcast 活动群聊广播
func (s *EventChatHandler) Broadcast(c *gin.Context) {
	eventID, ok := uintParam(c, "event_id")
	if !ok {
		return
	}
	var req dto.BroadcastReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	res, err := s.eventChat.BroadcastToEvent(c, currentUser(c), eventID, req.Text, req.MediaURL, req.Recipients)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}
