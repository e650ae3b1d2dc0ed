package util

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	// 错误信息里使用 json 字段名，与请求体保持一致
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
}

// ValidateDTO 只返回第一个不满足的规则
func ValidateDTO(dto any) error {
	if err := validate.Struct(dto); err != nil {
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) {
			first := vErrs[0]
			if first.Param() != "" {
				return fmt.Errorf("field [%s] failed rule [%s=%s]", first.Field(), first.Tag(), first.Param())
			}
			return fmt.Errorf("field [%s] failed rule [%s]", first.Field(), first.Tag())
		}
		return err
	}
	return nil
}
