package response

import (
	"DevNest/internal/api/dto"
	"DevNest/internal/service"
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

// Error 将错误映射为业务码；未登记的错误只返回通用提示
func Error(c *gin.Context, err error) {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		Fail(c, BadRequest, "参数错误")
		return
	}

	var unmarshalTypeError *json.UnmarshalTypeError
	if errors.As(err, &unmarshalTypeError) {
		Fail(c, BadRequest, "Json错误")
		return
	}

	code := service.CodeOf(err)
	if code == InternalServerError {
		log.ErrorContext(c.Request.Context(), "unhandled error", "path", c.FullPath(), "err", err)
		Fail(c, code, service.UnExpectedError.Error())
		return
	}
	Fail(c, code, rootMessage(err))
}

// rootMessage 返回被包装的哨兵错误信息
func rootMessage(err error) string {
	for known := range service.ErrorMap {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return err.Error()
}
