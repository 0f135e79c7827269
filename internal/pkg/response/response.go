package response

import (
	"Volunteer/internal/api/dto"
	"Volunteer/internal/service"
	"errors"
	log "log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

const (
	Ok                  = 200
	BadRequest          = 400
	Unauthorized        = 401
	Forbidden           = 403
	NotFound            = 404
	Conflict            = 409
	InternalServerError = 500
)

// Success 成功返回封装
func Success(ctx *gin.Context, data interface{}) {
	ctx.JSON(http.StatusOK, dto.Response{
		Code:    Ok,
		Message: "success",
		Data:    data,
	})
}

// Fail 失败返回封装
func Fail(c *gin.Context, businessCode int, message string) {
	c.JSON(http.StatusOK, dto.Response{
		Code:    businessCode,
		Message: message,
		Data:    nil,
	})
}

// Error 业务错误按 ErrorMap 映射，其余一律返回通用提示，不透出存储层细节
func Error(c *gin.Context, err error) {
	code, message := Resolve(err)
	if code == InternalServerError {
		log.ErrorContext(c, "Error", "err", err)
	}
	Fail(c, code, message)
}

// Resolve 错误 -> (业务码, 提示)，websocket 错误帧同样使用
func Resolve(err error) (int, string) {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return BadRequest, service.ErrParamInvalid.Error()
	}

	var unmarshalTypeError *json.UnmarshalTypeError
	if errors.As(err, &unmarshalTypeError) {
		return BadRequest, "Json错误"
	}

	sentinel, code, ok := service.ErrorCode(err)
	if !ok {
		return InternalServerError, service.UnExpectedError.Error()
	}
	return code, sentinel.Error()
}
