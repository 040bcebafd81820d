package entity

import (
	"github.com/hatcher/voyage/pkg/ormx"
)

// Intervention 一次升级干预的留档记录，写入后不再修改
type Intervention struct {
	ormx.BaseModel
	SessionID    int64  `json:"sessionId" gorm:"column:session_id;index;not null"`
	UserID       int64  `json:"userId" gorm:"column:user_id;index;not null"`
	Message      string `json:"message" gorm:"column:message;type:text;not null"`
	AudioOK      bool   `json:"audioOk" gorm:"column:audio_ok;not null"`
	Delivered    bool   `json:"delivered" gorm:"column:delivered;not null"`
	StreakLength int    `json:"streakLength" gorm:"column:streak_length;not null"`
	TaskTitle    string `json:"taskTitle" gorm:"column:task_title;type:varchar(255)"`
	Goal         string `json:"goal" gorm:"column:goal;type:varchar(2000)"`
}

func (i *Intervention) TableName() string {
	return "interventions"
}
