package service

import (
	"Volunteer/internal/pkg/consts"
	"Volunteer/internal/repository"
	"context"
	log "log/slog"
	"strconv"
)

// NameCache 昵称缓存，失败时静默回源
type NameCache interface {
	GetName(ctx context.Context, userID uint64) (string, bool)
	SetName(ctx context.Context, userID uint64, name string)
}

// UserDirectory 用户昵称解析
type UserDirectory interface {
	DisplayName(ctx context.Context, userID uint64) string
	DisplayNames(ctx context.Context, userIDs []uint64) map[uint64]string
	Exists(ctx context.Context, userID uint64) (bool, error)
}

type userDirectoryImpl struct {
	userRepo repository.UserRepo
	cache    NameCache
}

func NewUserDirectory(userRepo repository.UserRepo, cache NameCache) UserDirectory {
	return &userDirectoryImpl{userRepo: userRepo, cache: cache}
}

func (s *userDirectoryImpl) DisplayName(ctx context.Context, userID uint64) string {
	return s.DisplayNames(ctx, []uint64{userID})[userID]
}

// DisplayNames 查不到的用户回退为 "用户<id>"，不会返回错误
func (s *userDirectoryImpl) DisplayNames(ctx context.Context, userIDs []uint64) map[uint64]string {
	names := make(map[uint64]string, len(userIDs))
	var missing []uint64
	for _, id := range userIDs {
		if _, ok := names[id]; ok {
			continue
		}
		if id == 0 {
			names[id] = consts.SystemSenderName
			continue
		}
		if name, ok := s.cache.GetName(ctx, id); ok {
			names[id] = name
			continue
		}
		names[id] = ""
		missing = append(missing, id)
	}

	if len(missing) > 0 {
		users, err := s.userRepo.GetUserByIds(ctx, missing)
		if err != nil {
			log.WarnContext(ctx, "resolve display names failed", "count", len(missing), "err", err)
		}
		for _, u := range users {
			names[u.ID] = u.Name
			s.cache.SetName(ctx, u.ID, u.Name)
		}
	}

	for id, name := range names {
		if name == "" {
			names[id] = "用户" + strconv.FormatUint(id, 10)
		}
	}
	return names
}

func (s *userDirectoryImpl) Exists(ctx context.Context, userID uint64) (bool, error) {
	user, err := s.userRepo.GetUserById(ctx, userID)
	if err != nil {
		return false, err
	}
	return user != nil, nil
}
