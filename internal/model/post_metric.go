package model

import (
	"time"
)

// PostMetric 帖子互动计数快照，与帖子一对一，首次写入时懒创建
type PostMetric struct {
	PostID     uint64     `gorm:"primaryKey;autoIncrement:false" json:"post_id"`
	ViewsCount int64      `gorm:"not null;default:0" json:"views_count"`
	LikesCount int64      `gorm:"not null;default:0" json:"likes_count"`
	LastViewAt *time.Time `json:"last_view_at"`
	LastLikeAt *time.Time `json:"last_like_at"`
}

func (PostMetric) TableName() string {
	return "post_metrics"
}
