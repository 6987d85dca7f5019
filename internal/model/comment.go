package model

import (
	"time"
)

// Comment 评论，ParentID 为空表示直接评论帖子；删除为软删除，Body 置空
type Comment struct {
	ID         uint64    `gorm:"primaryKey" json:"id"`
	PostID     uint64    `gorm:"not null;index:idx_comments_post_id" json:"postId"`
	UserID     uint64    `gorm:"not null;index:idx_comments_user_id" json:"userId"`
	ParentID   *uint64   `gorm:"index:idx_comments_parent_id" json:"parentId"`
	Body       *string   `gorm:"type:text" json:"body"`
	IsDeleted  bool      `gorm:"not null;default:false" json:"isDeleted"`
	LikesCount int64     `gorm:"not null;default:0" json:"likesCount"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`

	User *User `gorm:"foreignKey:UserID;references:ID"`
	Post *Post `gorm:"foreignKey:PostID;references:ID"`
}

func (Comment) TableName() string {
	return "comments"
}
