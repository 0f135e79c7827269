package util

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// ValidateDTO 校验 websocket 上行帧等非 gin 绑定的结构体
func ValidateDTO(dto any) error {
	if err := validate.Struct(dto); err != nil {
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) {
			firstError := vErrs[0]
			return fmt.Errorf("字段 [%s] 校验失败，规则 [%s]", firstError.Field(), firstError.Tag())
		}
		return err
	}
	return nil
}
