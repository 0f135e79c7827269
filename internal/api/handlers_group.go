package api

import "Volunteer/internal/api/handler"

// HandlersGroup 封装了所有已初始化的 Handler 实例
type HandlersGroup struct {
	IMHandler           *handler.IMHandler
	EventChatHandler    *handler.EventChatHandler
	NotificationHandler *handler.NotificationHandler
	WsHandler           *handler.WsHandler
}
