package redis

import (
	"Volunteer/internal/pkg/consts"
	"context"
	"strconv"
	"time"
)

// DisplayNameCache 用户昵称缓存
type DisplayNameCache struct {
	ttl time.Duration
}

func NewDisplayNameCache(ttl time.Duration) *DisplayNameCache {
	return &DisplayNameCache{ttl: ttl}
}

func (c *DisplayNameCache) GetName(ctx context.Context, userID uint64) (string, bool) {
	name, err := GetValue(ctx, consts.UserDisplayNameKey+strconv.FormatUint(userID, 10))
	if err != nil || name == "" {
		return "", false
	}
	return name, true
}

func (c *DisplayNameCache) SetName(ctx context.Context, userID uint64, name string) {
	_ = SetWithExpiration(ctx, consts.UserDisplayNameKey+strconv.FormatUint(userID, 10), name, c.ttl)
}
