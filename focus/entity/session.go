package entity

import (
	"github.com/hatcher/voyage/pkg/ormx"
	"time"
)

type Session struct {
	ormx.BaseModel
	UserID int64  `json:"userId" gorm:"column:user_id;index;not null"`
	TaskID *int64 `json:"taskId" gorm:"column:task_id"`
	Status SessionStatus `json:"status" gorm:"column:status;type:varchar(20);not null;index"`
	// 累计专注/分神秒数，心跳按固定间隔累加，仅用于统计展示
	FocusSeconds int64      `json:"focusSeconds" gorm:"column:total_focus_seconds;not null;default:0"`
	DriftSeconds int64      `json:"driftSeconds" gorm:"column:total_drift_seconds;not null;default:0"`
	DriftCount   int64      `json:"driftCount" gorm:"column:drift_count;not null;default:0"`
	StartedAt    *time.Time `json:"startedAt" gorm:"column:started_at;type:dateTime"`
	EndedAt      *time.Time `json:"endedAt" gorm:"column:ended_at;type:dateTime"`
}

func (s *Session) TableName() string {
	return "focus_sessions"
}

// Ended 会话是否已结束
func (s *Session) Ended() bool {
	return s.Status == SessionEnded
}

type SessionStatus string

const (
	SessionActive   SessionStatus = "active"
	SessionDrifting SessionStatus = "drifting"
	SessionEnded    SessionStatus = "ended"
)
