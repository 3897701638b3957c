// SPDX-License-Identifier: GPL-3.0-only

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EmailStatus string

const (
	EmailSent   EmailStatus = "SENT"
	EmailFailed EmailStatus = "FAILED"
)

// EmailLog records one delivery attempt against one provider.
type EmailLog struct {
	ID        uint        `gorm:"primaryKey"`
	EID       string      `gorm:"size:36;not null;uniqueIndex"`
	Provider  string      `gorm:"size:32;not null;index"`
	To        string      `gorm:"column:recipient;size:320;not null;index"`
	Subject   string      `gorm:"size:255"`
	Template  string      `gorm:"size:64"`
	Status    EmailStatus `gorm:"size:16;not null"`
	MessageID *string     `gorm:"size:255;default:null;"`
	Error     *string     `gorm:"type:text;default:null;"`
	CreatedAt time.Time   `gorm:"index"`
}

func (emailLog *EmailLog) BeforeCreate(tx *gorm.DB) (err error) {
	if emailLog.EID == "" {
		emailLog.EID = uuid.NewString()
	}
	return
}

func init() {
	AllModels = append(AllModels, &EmailLog{})
}
