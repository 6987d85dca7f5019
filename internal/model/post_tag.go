package model

type PostTag struct {
	PostID uint64 `gorm:"primaryKey;autoIncrement:false" json:"postId"`
	TagID  uint64 `gorm:"primaryKey;autoIncrement:false;index:idx_post_tags_tag_id" json:"tagId"`
}

func (PostTag) TableName() string {
	return "post_tags"
}
