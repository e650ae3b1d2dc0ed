package response

import (
	"Larder/internal/api/dto"
	"Larder/internal/service"
	stdjson "encoding/json"
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

var kindCodes = map[service.Kind]int{
	service.KindValidation: BadRequest,
	service.KindAuth:       Unauthorized,
	service.KindPermission: Forbidden,
	service.KindNotFound:   NotFound,
	service.KindConflict:   Conflict,
	service.KindStorage:    InternalServerError,
}

// Success 成功返回封装
func Success(ctx *gin.Context, data interface{}) {
	ctx.JSON(http.StatusOK, dto.Response{
		Code:    Ok,
		Message: "success",
		Data:    data,
	})
}

// Fail 失败返回封装，HTTP 状态码与业务码保持一致
func Fail(c *gin.Context, businessCode int, message string) {
	c.JSON(businessCode, dto.Response{
		Code:    businessCode,
		Message: message,
		Data:    nil,
	})
}

// CodeOf 错误对应的业务码
func CodeOf(err error) int {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return BadRequest
	}

	var unmarshalTypeError *json.UnmarshalTypeError
	var syntaxError *json.SyntaxError
	if errors.As(err, &unmarshalTypeError) || errors.As(err, &syntaxError) {
		return BadRequest
	}

	// gin 默认用标准库解码请求体
	var stdTypeError *stdjson.UnmarshalTypeError
	var stdSyntaxError *stdjson.SyntaxError
	if errors.As(err, &stdTypeError) || errors.As(err, &stdSyntaxError) {
		return BadRequest
	}

	if code, ok := kindCodes[service.KindOf(err)]; ok {
		return code
	}
	return InternalServerError
}

// Error 处理错误，存储错误不向调用方暴露细节
func Error(c *gin.Context, err error) {
	code := CodeOf(err)
	switch {
	case code == InternalServerError:
		log.ErrorContext(c.Request.Context(), "Error", "err", err)
		Fail(c, code, "internal error")
	case service.KindOf(err) == "":
		Fail(c, code, "invalid request body")
	default:
		var se *service.Error
		errors.As(err, &se)
		Fail(c, code, se.Message)
	}
}
