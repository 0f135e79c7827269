package api

import (
	"Volunteer/internal/api/middleware"
	"Volunteer/internal/pkg/consts"
	"Volunteer/internal/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRouter(group *HandlersGroup, allowOrigins []string) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	// TraceId & Logger & CORS
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.AuditMiddleware())
	r.Use(middleware.CORSMiddleware(allowOrigins...))
	logger.SetupGin(r)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"Code":    200,
				"Message": "pong",
				"Data":    nil,
			})
		})

		chatGroup := apiGroup.Group("/chat")
		chatGroup.Use(middleware.AuthMiddleware(), middleware.CheckRoles(consts.RoleVolunteer, consts.RoleEventManager, consts.RoleAdmin))
		{
			chatGroup.GET("/ws", group.WsHandler.Connect)

			chatGroup.GET("/senders", group.IMHandler.GetSenders)
			chatGroup.GET("/messages/:sender_id", group.IMHandler.GetMessages)
			chatGroup.POST("/send", group.IMHandler.SendMessage)
			chatGroup.POST("/reply", group.IMHandler.Reply)
			chatGroup.POST("/read/:counterpart_id", group.IMHandler.MarkAsRead)
			chatGroup.GET("/inbox", group.IMHandler.GetInbox)
			chatGroup.GET("/unread", group.IMHandler.GetUnread)

			chatGroup.GET("/chats", group.EventChatHandler.GetChats)
			chatGroup.GET("/events/:event_id/messages", group.EventChatHandler.GetEventMessages)
			chatGroup.POST("/events/:event_id/broadcast", group.EventChatHandler.Broadcast)

			chatGroup.GET("/notifications", group.NotificationHandler.GetNotificationList)
			chatGroup.GET("/notifications/unread", group.NotificationHandler.GetUnreadCount)
			chatGroup.POST("/notifications/read/:id", group.NotificationHandler.MarkRead)
			chatGroup.POST("/notifications/read-all", group.NotificationHandler.MarkAllRead)
		}
	}

	return r
}
