package consts

const (
	// IMRoomKey 推送总线频道前缀, 完整频道形如 im:room:user:42
	IMRoomKey = "im:room:"
	// IMRoomPattern 单实例订阅全部房间
	IMRoomPattern = IMRoomKey + "*"
	// IMLedgerDirtyKey 未读账本待校准集合, 成员为 owner_counterpart
	IMLedgerDirtyKey = "im:ledger:dirty"
	// UserDisplayNameKey 用户昵称缓存
	UserDisplayNameKey = "user:display:name:"
	// TokenRevokedKey 已注销 token 签名
	TokenRevokedKey = "token:revoked:"
)

const (
	IMLedgerReconcileLock = "lock:im:ledger:reconcile"
)
