package handler

import (
	"Volunteer/internal/api/dto"
	"Volunteer/internal/pkg/logger"
	"Volunteer/internal/pkg/response"
	"Volunteer/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

type IMHandler struct {
	dispatcher service.DispatcherService
	readSync   service.ReadSyncService
	query      service.ChatQueryService
}

func NewIMHandler(dispatcher service.DispatcherService, readSync service.ReadSyncService, query service.ChatQueryService) *IMHandler {
	return &IMHandler{dispatcher: dispatcher, readSync: readSync, query: query}
}

// GetSenders 联系人列表
func (s *IMHandler) GetSenders(c *gin.Context) {
	res, err := s.query.ListSenders(c, currentUser(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// GetMessages 与某人的完整会话，打开即已读
func (s *IMHandler) GetMessages(c *gin.Context) {
	counterpartID, ok := uintParam(c, "sender_id")
	if !ok {
		return
	}
	res, err := s.query.GetConversation(c, currentUser(c), counterpartID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// SendMessage 发送消息接口
func (s *IMHandler) SendMessage(c *gin.Context) {
	var req dto.SendMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	res, err := s.dispatcher.SendMessage(c, currentUser(c), req.Recipients, req.Text)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// Reply 回复某个发送者
func (s *IMHandler) Reply(c *gin.Context) {
	var req dto.ReplyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	res, err := s.dispatcher.Reply(c, currentUser(c), req.RecipientID, req.Text)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// MarkAsRead 将与 counterpart 的会话全部标记已读
func (s *IMHandler) MarkAsRead(c *gin.Context) {
	counterpartID, ok := uintParam(c, "counterpart_id")
	if !ok {
		return
	}
	ids, err := s.readSync.MarkConversationRead(c, currentUser(c), counterpartID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"messageIds": ids})
}

// GetInbox 收件箱
func (s *IMHandler) GetInbox(c *gin.Context) {
	res, err := s.query.Inbox(c, currentUser(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// GetUnread 未读汇总
func (s *IMHandler) GetUnread(c *gin.Context) {
	res, err := s.query.Unread(c, currentUser(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

func currentUser(c *gin.Context) uint64 {
	return c.GetUint64(logger.UserIDKey)
}

// uintParam 解析失败时直接写回错误响应
func uintParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.Error(c, service.ErrInvalidID)
		return 0, false
	}
	return id, true
}
