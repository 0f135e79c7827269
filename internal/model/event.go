package model

import "time"

// Event 志愿活动 (由活动服务维护，本服务只读)
type Event struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"type:varchar(255);not null" json:"title"`
	CreatedBy uint64    `gorm:"not null;index" json:"createdBy"` // 活动管理者
	Date      time.Time `json:"date"`
	CreatedAt time.Time `json:"createdAt"`

	Members []EventTeamMember `gorm:"foreignKey:EventID;references:ID" json:"members"`
}

func (Event) TableName() string { return "events" }

// EventTeamMember 已录用的团队成员
type EventTeamMember struct {
	ID       uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	EventID  uint64    `gorm:"not null;uniqueIndex:idx_event_user" json:"eventId"`
	UserID   uint64    `gorm:"not null;uniqueIndex:idx_event_user;index" json:"userId"`
	JoinedAt time.Time `json:"joinedAt"`
}

func (EventTeamMember) TableName() string { return "event_team_members" }

// MemberIDs 管理者 + 团队成员，去重且管理者在前
func (e *Event) MemberIDs() []uint64 {
	ids := make([]uint64, 0, len(e.Members)+1)
	seen := make(map[uint64]struct{}, len(e.Members)+1)
	add := func(id uint64) {
		if _, ok := seen[id]; ok || id == 0 {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	add(e.CreatedBy)
	for _, m := range e.Members {
		add(m.UserID)
	}
	return ids
}

// IsParticipant 是否为管理者或团队成员
func (e *Event) IsParticipant(userID uint64) bool {
	if e.CreatedBy == userID {
		return true
	}
	for _, m := range e.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}
