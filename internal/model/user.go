package model

import (
	"time"
)

type User struct {
	ID          uint64  `gorm:"primaryKey"`
	Username    string  `gorm:"type:varchar(50);not null;uniqueIndex:idx_users_username"`
	DisplayName *string `gorm:"type:varchar(80)"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (User) TableName() string {
	return "users"
}
