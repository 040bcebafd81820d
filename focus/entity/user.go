package entity

import (
	"github.com/hatcher/voyage/pkg/ormx"
	"time"
)

type User struct {
	ormx.DeleteAbleModel
	Username string `json:"username" gorm:"column:username;type:varchar(255);not null"`
	NickName string `json:"nickName" gorm:"column:nickName;type:varchar(255);"`
	Email    string `json:"email" gorm:"column:email;type:varchar(255);"`
	// 用户声明的总体目标，作为分神判定的上下文
	Goal           string     `json:"goal" gorm:"column:goal;type:varchar(2000);"`
	LastActiveTime *time.Time `json:"lastActiveTime" gorm:"column:last_active_time;type:dateTime;"`
}

func (u *User) TableName() string {
	return "users"
}
