package handler

import (
	"Volunteer/internal/pkg/response"
	"Volunteer/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notifications service.NotificationService
}

func NewNotificationHandler(s service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: s}
}

// GetNotificationList 通知列表，?type=event 只看活动通知
func (s *NotificationHandler) GetNotificationList(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	list, err := s.notifications.GetNotificationList(c, currentUser(c), c.Query("type"), page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}

// GetUnreadCount 未读通知数
func (s *NotificationHandler) GetUnreadCount(c *gin.Context) {
	unread, err := s.notifications.GetUnreadCount(c, currentUser(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, unread)
}

// MarkRead 标记单条已读
func (s *NotificationHandler) MarkRead(c *gin.Context) {
	if err := s.notifications.MarkRead(c, currentUser(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// MarkAllRead 一键已读
func (s *NotificationHandler) MarkAllRead(c *gin.Context) {
	res, err := s.notifications.MarkAllRead(c, currentUser(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}
