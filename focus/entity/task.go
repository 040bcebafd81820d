package entity

import (
	"github.com/hatcher/voyage/pkg/ormx"
)

type Task struct {
	ormx.DeleteAbleModel
	UserID          int64  `json:"userId" gorm:"column:user_id;index;not null"`
	Title           string `json:"title" gorm:"column:title;type:varchar(255);not null"`
	Description     string `json:"description" gorm:"column:description;type:varchar(5000)"`
	EstimateMinutes int    `json:"estimateMinutes" gorm:"column:estimate_minutes"`
	Completed       bool   `json:"completed" gorm:"column:completed;not null;default:0"`
}

func (t *Task) TableName() string {
	return "tasks"
}
