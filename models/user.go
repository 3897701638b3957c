// SPDX-License-Identifier: GPL-3.0-only

package models

import (
	"time"

	"gorm.io/gorm"
)

var AllModels []any

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

type User struct {
	ID              uint     `gorm:"primaryKey"`
	Email           string   `gorm:"size:320;not null;uniqueIndex"`
	Password        string   `gorm:"not null"`
	FullName        string   `gorm:"size:255"`
	PhoneNumber     string   `gorm:"size:32"`
	Role            UserRole `gorm:"size:16;not null;default:user"`
	IsEmailVerified bool     `gorm:"not null;default:false"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       gorm.DeletedAt `gorm:"index"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func init() {
	AllModels = append(AllModels, &User{})
}
