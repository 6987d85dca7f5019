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
	ErrParamInvalid    = errors.New("参数错误")
	ErrUserNotFound    = errors.New("用户不存在")
	ErrPostNotFound    = errors.New("帖子不存在")
	ErrCommentNotFound = errors.New("评论不存在")
	ErrParentInvalid   = errors.New("父评论不存在或不属于该帖子")
	ErrTitleBlank      = errors.New("标题不能为空")
	ErrTitleTooLong    = errors.New("标题过长")
	ErrContentBlank    = errors.New("正文不能为空")
	ErrContentTooLong  = errors.New("正文过长")
	ErrSummaryTooLong  = errors.New("摘要过长")
	ErrHeroURLTooLong  = errors.New("封面地址过长")
	ErrTooManyTags     = errors.New("标签数量超过限制")
	ErrTagTooLong      = errors.New("标签过长")
	ErrBodyBlank       = errors.New("评论内容不能为空")
	ErrBodyTooLong     = errors.New("评论内容过长")
	ErrSlugExhausted   = errors.New("无法生成唯一的 slug")
	ErrForbidden       = errors.New("无权操作该资源")
	UnauthorizedError  = errors.New("请先登录")
	UnExpectedError    = errors.New("系统异常，请稍后重试")
)

var ErrorMap = map[error]int{
	ErrParamInvalid:    BadRequest,
	ErrUserNotFound:    Unauthorized,
	ErrPostNotFound:    NotFound,
	ErrCommentNotFound: NotFound,
	ErrParentInvalid:   BadRequest,
	ErrTitleBlank:      BadRequest,
	ErrTitleTooLong:    BadRequest,
	ErrContentBlank:    BadRequest,
	ErrContentTooLong:  BadRequest,
	ErrSummaryTooLong:  BadRequest,
	ErrHeroURLTooLong:  BadRequest,
	ErrTooManyTags:     BadRequest,
	ErrTagTooLong:      BadRequest,
	ErrBodyBlank:       BadRequest,
	ErrBodyTooLong:     BadRequest,
	ErrSlugExhausted:   Conflict,
	ErrForbidden:       Forbidden,
	UnauthorizedError:  Unauthorized,
	UnExpectedError:    InternalServerError,
}

// CodeOf 返回 err 对应的业务码，包装过的错误同样适用；未登记的错误视为 500
func CodeOf(err error) int {
	if code, ok := ErrorMap[err]; ok {
		return code
	}
	for known, code := range ErrorMap {
		if errors.Is(err, known) {
			return code
		}
	}
	return InternalServerError
}
