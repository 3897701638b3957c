// SPDX-License-Identifier: GPL-3.0-only

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RegistrationStatus string

const (
	RegistrationPending  RegistrationStatus = "pending"
	RegistrationApproved RegistrationStatus = "approved"
)

func (s RegistrationStatus) Valid() bool {
	return s == RegistrationPending || s == RegistrationApproved
}

// Registration is a waitlist/account record keyed by normalized email.
type Registration struct {
	ID          string             `gorm:"primaryKey;size:36"`
	Email       string             `gorm:"size:320;not null;uniqueIndex"`
	FullName    string             `gorm:"size:255;not null"`
	PhoneNumber string             `gorm:"size:32;not null"`
	Preferences string             `gorm:"type:text"`
	Status      RegistrationStatus `gorm:"size:16;not null;default:pending;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (r *Registration) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Status == "" {
		r.Status = RegistrationPending
	}
	return nil
}

func (r *Registration) IsApproved() bool {
	return r.Status == RegistrationApproved
}

func init() {
	AllModels = append(AllModels, &Registration{})
}
