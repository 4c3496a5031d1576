package models

import (
	"time"
)

const AccountStatusActive = "active"

type User struct {
	UserID        int        `gorm:"primaryKey;column:user_id" json:"user_id"`
	Email         string     `gorm:"column:email;unique" json:"email"`
	Password      string     `gorm:"column:password" json:"-"`
	DisplayName   string     `gorm:"column:display_name" json:"display_name"`
	IsAdmin       bool       `gorm:"column:is_admin" json:"is_admin"`
	AccountStatus string     `gorm:"column:account_status" json:"account_status"`
	CreateAt      *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt      *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt      *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

// IsActive reports whether the account is allowed to act in the system.
func (u *User) IsActive() bool {
	return u.AccountStatus == AccountStatusActive && u.DeleteAt == nil
}

// TableName overrides
func (User) TableName() string {
	return "users"
}
