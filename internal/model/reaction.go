package model

import (
	"time"
)

const (
	TargetPost    = "post"
	TargetComment = "comment"

	ReactionLike = "like"
)

// Reaction 用户对帖子或评论的表态，(target_type, target_id, user_id, kind) 唯一
type Reaction struct {
	TargetType string    `gorm:"type:varchar(16);primaryKey" json:"targetType"`
	TargetID   uint64    `gorm:"primaryKey;autoIncrement:false" json:"targetId"`
	UserID     uint64    `gorm:"primaryKey;autoIncrement:false;index:idx_reactions_user_id" json:"userId"`
	Kind       string    `gorm:"type:varchar(16);primaryKey" json:"kind"`
	PostID     uint64    `gorm:"not null;index:idx_reactions_post_id" json:"postId"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (Reaction) TableName() string {
	return "reactions"
}
