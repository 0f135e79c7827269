package handler

import (
	"Volunteer/internal/api/dto"
	"Volunteer/internal/pkg/logger"
	"Volunteer/internal/service"
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubNotifications struct {
	kind     string
	page     int
	pageSize int
	readIDs  []string
}

func (s *stubNotifications) Notify(context.Context, uint64, string, uint64, string) error { return nil }

func (s *stubNotifications) GetNotificationList(_ context.Context, _ uint64, kind string, page, pageSize int) ([]*dto.NotificationDTO, error) {
	s.kind, s.page, s.pageSize = kind, page, pageSize
	return []*dto.NotificationDTO{{ID: "n1", Type: kind}}, nil
}

func (s *stubNotifications) GetUnreadCount(context.Context, uint64) (*dto.NotificationUnreadDTO, error) {
	return &dto.NotificationUnreadDTO{UnreadCount: 2}, nil
}

func (s *stubNotifications) MarkRead(_ context.Context, _ uint64, id string) error {
	if id == "missing" {
		return service.ErrNoticeNotFound
	}
	s.readIDs = append(s.readIDs, id)
	return nil
}

func (s *stubNotifications) MarkAllRead(context.Context, uint64) (*dto.NotificationReadAllDTO, error) {
	return &dto.NotificationReadAllDTO{Marked: 2}, nil
}

func (s *stubNotifications) Wait() {}

func newNotificationRouter(svc *stubNotifications) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewNotificationHandler(svc)
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set(logger.UserIDKey, uint64(1)) })
	r.GET("/notifications", h.GetNotificationList)
	r.GET("/notifications/unread", h.GetUnreadCount)
	r.POST("/notifications/read/:id", h.MarkRead)
	r.POST("/notifications/read-all", h.MarkAllRead)
	return r
}

func TestNotificationListQuery(t *testing.T) {
	svc := &stubNotifications{}
	r := newNotificationRouter(svc)

	resp := doJSON(r, http.MethodGet, "/notifications?type=event&page=2&page_size=5", "")
	require.Equal(t, 200, resp.Code)
	assert.Equal(t, "event", svc.kind)
	assert.Equal(t, 2, svc.page)
	assert.Equal(t, 5, svc.pageSize)

	doJSON(r, http.MethodGet, "/notifications", "")
	assert.Empty(t, svc.kind)
	assert.Equal(t, 1, svc.page)
	assert.Equal(t, 20, svc.pageSize)
}

func TestNotificationMarkReadRoutes(t *testing.T) {
	svc := &stubNotifications{}
	r := newNotificationRouter(svc)

	require.Equal(t, 200, doJSON(r, http.MethodPost, "/notifications/read/abc", "").Code)
	assert.Equal(t, []string{"abc"}, svc.readIDs)
	assert.Equal(t, 404, doJSON(r, http.MethodPost, "/notifications/read/missing", "").Code)

	require.Equal(t, 200, doJSON(r, http.MethodPost, "/notifications/read-all", "").Code)
	require.Equal(t, 200, doJSON(r, http.MethodGet, "/notifications/unread", "").Code)
	assert.Equal(t, []string{"abc"}, svc.readIDs)
}
