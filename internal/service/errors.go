package service

import (
	"errors"
)

const (
	BadRequest          = 400
	Unauthorized        = 401
	Forbidden           = 403
	NotFound            = 404
	Conflict            = 409
	InternalServerError = 500
)

var (
	ErrParamInvalid     = errors.New("参数错误")
	ErrEmptyText        = errors.New("消息内容不能为空")
	ErrNoRecipients     = errors.New("接收人不能为空")
	ErrInvalidID        = errors.New("ID 格式错误")
	ErrMessageNotFound  = errors.New("消息不存在")
	ErrNoticeNotFound   = errors.New("通知不存在")
	ErrEventNotFound    = errors.New("活动不存在")
	ErrUserNotFound     = errors.New("用户不存在")
	ErrNotEventMember   = errors.New("不是该活动的成员")
	ErrConcurrentUpdate = errors.New("群聊写入冲突，请重试")
	UnauthorizedError   = errors.New("权限不足")
	UnExpectedError     = errors.New("系统异常，请稍后重试")
)

var ErrorMap = map[error]int{
	ErrParamInvalid:     BadRequest,
	ErrEmptyText:        BadRequest,
	ErrNoRecipients:     BadRequest,
	ErrInvalidID:        BadRequest,
	ErrMessageNotFound:  NotFound,
	ErrNoticeNotFound:   NotFound,
	ErrEventNotFound:    NotFound,
	ErrUserNotFound:     NotFound,
	ErrNotEventMember:   Forbidden,
	ErrConcurrentUpdate: Conflict,
	UnauthorizedError:   Unauthorized,
	UnExpectedError:     InternalServerError,
}

// ErrorCode 按 errors.Is 匹配业务码，未知错误返回 false
func ErrorCode(err error) (error, int, bool) {
	if code, ok := ErrorMap[err]; ok {
		return err, code, true
	}
	for sentinel, code := range ErrorMap {
		if errors.Is(err, sentinel) {
			return sentinel, code, true
		}
	}
	return nil, 0, false
}
