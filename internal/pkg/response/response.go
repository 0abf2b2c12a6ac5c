package response

import (
	"errors"
	log "log/slog"
	"net/http"

	"Plume/internal/api/dto"
	"Plume/internal/pkg/aggregate"
	"Plume/internal/service"

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
	FailWithKind(c, businessCode, "", message)
}

// FailWithKind 附带机器可读的错误类别
func FailWithKind(c *gin.Context, businessCode int, kind string, message string) {
	c.JSON(http.StatusOK, dto.Response{
		Code:    businessCode,
		Kind:    kind,
		Message: message,
		Data:    nil,
	})
}

// Error 处理错误
func Error(c *gin.Context, err error) {
	if errors.Is(err, aggregate.ErrInvalidRange) {
		FailWithKind(c, BadRequest, aggregate.Kind(err), err.Error())
		return
	}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		FailWithKind(c, BadRequest, "InvalidArgument", "参数错误")
		return
	}

	var unmarshalTypeError *json.UnmarshalTypeError
	if errors.As(err, &unmarshalTypeError) {
		FailWithKind(c, BadRequest, "InvalidArgument", "Json错误")
		return
	}

	code, kind, ok := service.LookupError(err)
	if !ok {
		code = InternalServerError
		kind = "Internal"
		log.ErrorContext(c.Request.Context(), "Error", "err", err)
		FailWithKind(c, code, kind, service.UnExpectedError.Error())
		return
	}
	FailWithKind(c, code, kind, err.Error())
}
