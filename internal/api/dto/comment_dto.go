package dto

import "time"

// CommentWriteDTO 发表评论请求，ParentID 为空表示直接评论帖子
type CommentWriteDTO struct {
	Body     string  `json:"body" binding:"required" validate:"max=5000"`
	ParentID *uint64 `json:"parent_id"`
}

// CommentUpdateDTO 修改评论请求
type CommentUpdateDTO struct {
	Body string `json:"body" binding:"required" validate:"max=5000"`
}

// CommentDTO 评论树节点
type CommentDTO struct {
	ID        uint64        `json:"id"`
	PostID    uint64        `json:"post_id"`
	ParentID  *uint64       `json:"parent_id"`
	Deleted   bool          `json:"deleted"`
	Body      *string       `json:"body"`
	Author    *AuthorDTO    `json:"author"`
	LikeCount int64         `json:"like_count"`
	Liked     bool          `json:"liked"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	Replies   []*CommentDTO `json:"replies"`
}

// UserCommentDTO 我的评论列表项
type UserCommentDTO struct {
	ID        uint64    `json:"id"`
	PostID    uint64    `json:"post_id"`
	PostTitle string    `json:"post_title"`
	PostSlug  string    `json:"post_slug"`
	ParentID  *uint64   `json:"parent_id"`
	Deleted   bool      `json:"deleted"`
	Body      *string   `json:"body"`
	LikeCount int64     `json:"like_count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserCommentPageDTO 我的评论分页结果
type UserCommentPageDTO struct {
	Items         []*UserCommentDTO `json:"items"`
	TotalElements int64             `json:"total_elements"`
	TotalPages    int               `json:"total_pages"`
	Page          int               `json:"page"`
	Size          int               `json:"size"`
}

// PageQuery 通用分页参数，page 从 0 开始
type PageQuery struct {
	Page int `form:"page"`
	Size int `form:"size"`
}
