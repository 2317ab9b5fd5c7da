// models/user.go
package models

import (
	"time"
)

type User struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	Username string  `gorm:"uniqueIndex;not null" json:"username"`
	Email    *string `gorm:"uniqueIndex" json:"email,omitempty"`
	Password string  `gorm:"not null" json:"-"`
	IsGuest  bool    `gorm:"default:false" json:"is_guest"`
	IsAdmin  bool    `gorm:"default:false" json:"is_admin"`
	IsBanned bool    `gorm:"default:false" json:"is_banned"`

	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	LastLogin    time.Time `json:"last_login"`
	LastActivity time.Time `json:"last_activity"`

	Player *Player `gorm:"foreignKey:UserID" json:"player,omitempty"`
}

func (User) TableName() string {
	return "users"
}
