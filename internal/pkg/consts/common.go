package consts

const (
	RoleVolunteer    = "volunteer"
	RoleEventManager = "event_manager"
	RoleAdmin        = "admin"
)

// 推送事件名
const (
	EventReceiveMessage = "receiveMessage"
	EventMessageRead    = "messageRead"
	EventNotification   = "notification"
)

// WebSocket 客户端上行事件
const (
	WsJoinEventChat    = "joinEventChat"
	WsLeaveEventChat   = "leaveEventChat"
	WsMarkAsRead       = "markAsRead"
	WsSendMessage      = "sendMessage"
	WsBroadcastMessage = "broadcastMessage"
	WsError            = "error"
)

const (
	SystemSenderName = "系统"
)
