package models

import "time"

// UserModel is a console account. Role gates the admin surface.
type UserModel struct {
	Base
	Email         string     `json:"email"           gorm:"size:191;uniqueIndex;not null"`
	Name          string     `json:"name"`
	Role          string     `json:"role"            gorm:"size:16;not null"`
	Password      string     `json:"-"               gorm:"not null"`
	LastLoginTime *time.Time `json:"last_login_time"`
	LastLoginIP   string     `json:"last_login_ip"`
}

func (UserModel) TableName() string { return "users" }
