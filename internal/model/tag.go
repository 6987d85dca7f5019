package model

import "time"

// Tag 以 slug 作为唯一标识，Name 保留首次提交的展示名
type Tag struct {
	ID          uint64  `gorm:"primaryKey" json:"id"`
	Name        string  `gorm:"type:varchar(80);not null" json:"name"`
	Slug        string  `gorm:"type:varchar(80);not null;uniqueIndex:idx_tags_slug" json:"slug"`
	Description *string `gorm:"type:varchar(255)" json:"description"`
	CreatedAt   time.Time
}

func (Tag) TableName() string {
	return "tags"
}
