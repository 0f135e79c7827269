package model

import (
	"time"
)

// User 用户目录 (由用户服务维护，本服务只读)
type User struct {
	ID        uint64 `gorm:"primaryKey"`
	Name      string `gorm:"type:varchar(100);not null"`
	Email     string `gorm:"type:varchar(255);uniqueIndex:idx_email"`
	Role      string `gorm:"type:varchar(20);not null;default:volunteer"`
	IsDelete  bool   `gorm:"type:tinyint(1);default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (User) TableName() string {
	return "users"
}
