package repository

import (
	"DevNest/internal/model"
	"context"

	"gorm.io/gorm"
)

type UserRepo interface {
	GetUserByID(ctx context.Context, id uint64) (*model.User, error)
}

type userRepoImpl struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) UserRepo {
	return &userRepoImpl{db: db}
}

func (s *userRepoImpl) GetUserByID(ctx context.Context, id uint64) (*model.User, error) {
	var user model.User
	if err := conn(ctx, s.db).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
