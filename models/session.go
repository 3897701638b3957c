// SPDX-License-Identifier: GPL-3.0-only

package models

import (
	"time"
)

type Session struct {
	ID         uint    `gorm:"primaryKey"`
	Token      string  `gorm:"size:128;not null;uniqueIndex"`
	IPAddress  *string `gorm:"size:64;default:null"`
	UserAgent  *string `gorm:"type:text;default:null"`
	LastUsedAt *time.Time
	ExpiresAt  *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
	UserID     uint `gorm:"index"`
	User       User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func (s *Session) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && s.ExpiresAt.Before(now)
}

func init() {
	AllModels = append(AllModels, &Session{})
}
