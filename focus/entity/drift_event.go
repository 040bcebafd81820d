package entity

import (
	"github.com/hatcher/voyage/pkg/ormx"
)

// DriftEvent 一次心跳采样的判定结果，按主键递增保证会话内有序
type DriftEvent struct {
	ormx.BaseModel
	SessionID  int64  `json:"sessionId" gorm:"column:session_id;index;not null"`
	UserID     int64  `json:"userId" gorm:"column:user_id;index;not null"`
	IsDrifting bool   `json:"isDrifting" gorm:"column:is_drifting;not null"`
	ActualTask string `json:"actualTask" gorm:"column:actual_task;type:varchar(2000)"`
	Reasons    string `json:"reasons" gorm:"column:reasons;type:varchar(2000)"`
	Mood       string `json:"mood" gorm:"column:mood;type:varchar(255)"`
	MoodReason string `json:"moodReason" gorm:"column:mood_reason;type:varchar(2000)"`
	// 仅允许 false -> true 翻转一次
	InterventionTriggered bool `json:"interventionTriggered" gorm:"column:intervention_triggered;not null;default:0"`
}

func (e *DriftEvent) TableName() string {
	return "drift_events"
}
