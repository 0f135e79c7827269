package middleware

import "errors"

var (
	errTokenInvalid    = errors.New("Token 无效或已过期")
	errAuthUnavailable = errors.New("鉴权服务暂不可用")
)
