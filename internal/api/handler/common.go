package handler

import (
	"DevNest/internal/pkg/response"
	"DevNest/internal/pkg/security"
	"DevNest/internal/pkg/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

// pathID 解析路径中的 ID，失败时已写入响应
func pathID(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.Fail(c, response.BadRequest, "参数错误")
		return 0, false
	}
	return id, true
}

// bindJSON 绑定请求体并执行 validate 标签校验
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.Fail(c, response.BadRequest, "参数错误")
		return false
	}
	if err := util.ValidateDTO(req); err != nil {
		response.Fail(c, response.BadRequest, err.Error())
		return false
	}
	return true
}

func bindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		response.Fail(c, response.BadRequest, "参数错误")
		return false
	}
	if err := util.ValidateDTO(req); err != nil {
		response.Fail(c, response.BadRequest, err.Error())
		return false
	}
	return true
}

// currentUser 由鉴权中间件写入请求上下文，未登录为 0
func currentUser(c *gin.Context) uint64 {
	return security.UserIDFrom(c.Request.Context())
}
