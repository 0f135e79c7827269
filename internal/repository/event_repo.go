package repository

import (
	"Volunteer/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
)

// EventRepo 活动与团队成员，只读
type EventRepo interface {
	GetEventById(ctx context.Context, id uint64) (*model.Event, error)
	GetEventsByUser(ctx context.Context, userID uint64) ([]*model.Event, error)
}

type eventRepoImpl struct {
	db *gorm.DB
}

func NewEventRepo(db *gorm.DB) EventRepo {
	return &eventRepoImpl{db: db}
}

// GetEventById 含团队成员，不存在返回 nil
func (s *eventRepoImpl) GetEventById(ctx context.Context, id uint64) (*model.Event, error) {
	event := &model.Event{}
	err := s.db.WithContext(ctx).
		Preload("Members").
		First(event, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return event, nil
}

// GetEventsByUser 用户作为管理者或团队成员参与的活动
func (s *eventRepoImpl) GetEventsByUser(ctx context.Context, userID uint64) ([]*model.Event, error) {
	events := make([]*model.Event, 0)
	sub := s.db.Model(&model.EventTeamMember{}).Select("event_id").Where("user_id = ?", userID)
	err := s.db.WithContext(ctx).
		Select("id", "title", "created_by", "date").
		Preload("Members").
		Where("created_by = ? OR id IN (?)", userID, sub).
		Order("date DESC").
		Find(&events).Error
	return events, err
}
