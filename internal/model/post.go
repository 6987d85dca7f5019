package model

import (
	"time"
)

type Post struct {
	ID           uint64    `gorm:"primaryKey" json:"id"`
	UserID       uint64    `gorm:"not null;index:idx_posts_user_id" json:"user_id"`
	Title        string    `gorm:"type:varchar(200);not null" json:"title"`
	Slug         string    `gorm:"type:varchar(220);not null;uniqueIndex:idx_posts_slug" json:"slug"`
	Summary      *string   `gorm:"type:varchar(500)" json:"summary"`
	Content      string    `gorm:"type:mediumtext;not null" json:"content"`
	HeroImageURL *string   `gorm:"type:varchar(400)" json:"hero_image_url"`
	PublishedAt  time.Time `gorm:"not null;index:idx_posts_published_at" json:"published_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// 关联关系
	User   User        `gorm:"foreignKey:UserID;references:ID"`
	Tags   []Tag       `gorm:"many2many:post_tags;joinForeignKey:PostID;joinReferences:TagID"`
	Metric *PostMetric `gorm:"foreignKey:PostID;references:ID;constraint:OnDelete:CASCADE"`
}

func (Post) TableName() string {
	return "posts"
}
