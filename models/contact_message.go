// SPDX-License-Identifier: GPL-3.0-only

package models

import "time"

type ContactMessage struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:255;not null"`
	Email     string `gorm:"size:320;not null;index"`
	Subject   string `gorm:"size:255"`
	Body      string `gorm:"type:text;not null"`
	CreatedAt time.Time
}

func init() {
	AllModels = append(AllModels, &ContactMessage{})
}
