package dto

import "time"

// PostWriteDTO 创建/更新帖子请求
type PostWriteDTO struct {
	Title        string   `json:"title" binding:"required" validate:"max=200"`
	Content      string   `json:"content" binding:"required" validate:"max=20000"`
	Summary      *string  `json:"summary" validate:"omitempty,max=500"`
	HeroImageURL *string  `json:"hero_image_url" validate:"omitempty,max=400"`
	Tags         []string `json:"tags" validate:"max=10"`
}

// PostListQuery 帖子分页查询，page 从 0 开始
type PostListQuery struct {
	Page    int    `form:"page"`
	Size    int    `form:"size"`
	Keyword string `form:"keyword" validate:"max=100"`
}

type AuthorDTO struct {
	ID          uint64 `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

type TagDTO struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// PostDetailDTO 帖子详情
type PostDetailDTO struct {
	ID           uint64     `json:"id"`
	Title        string     `json:"title"`
	Slug         string     `json:"slug"`
	Summary      *string    `json:"summary"`
	Content      string     `json:"content"`
	Tags         []TagDTO   `json:"tags"`
	HeroImageURL *string    `json:"hero_image_url"`
	Author       *AuthorDTO `json:"author"`
	Views        int64      `json:"views"`
	Likes        int64      `json:"likes"`
	PublishedAt  time.Time  `json:"published_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// PostSummaryDTO 列表项，不含正文
type PostSummaryDTO struct {
	ID           uint64     `json:"id"`
	Title        string     `json:"title"`
	Slug         string     `json:"slug"`
	Summary      *string    `json:"summary"`
	Tags         []TagDTO   `json:"tags"`
	HeroImageURL *string    `json:"hero_image_url"`
	Author       *AuthorDTO `json:"author"`
	Views        int64      `json:"views"`
	Likes        int64      `json:"likes"`
	PublishedAt  time.Time  `json:"published_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// PostPageDTO 分页结果
type PostPageDTO struct {
	Items         []*PostSummaryDTO `json:"items"`
	TotalElements int64             `json:"total_elements"`
	TotalPages    int               `json:"total_pages"`
	Page          int               `json:"page"`
	Size          int               `json:"size"`
}
