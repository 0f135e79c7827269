package repository

import (
	"Volunteer/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
)

// UserRepo 用户目录，只读
type UserRepo interface {
	GetUserById(ctx context.Context, id uint64) (*model.User, error)
	GetUserByIds(ctx context.Context, ids []uint64) ([]*model.User, error)
}

type UserRepoImpl struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) UserRepo {
	return &UserRepoImpl{db: db}
}

func (s *UserRepoImpl) GetUserById(ctx context.Context, id uint64) (*model.User, error) {
	user := &model.User{}
	result := s.db.WithContext(ctx).
		Select("id", "name", "role").
		Where("is_delete = ?", false).
		First(user, id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}

	return user, nil
}

func (s *UserRepoImpl) GetUserByIds(ctx context.Context, ids []uint64) ([]*model.User, error) {
	users := make([]*model.User, 0, len(ids))
	if len(ids) == 0 {
		return users, nil
	}
	result := s.db.WithContext(ctx).
		Select("id", "name", "role").
		Where("id IN ? AND is_delete = ?", ids, false).
		Find(&users)
	if result.Error != nil {
		return nil, result.Error
	}
	return users, nil
}
