// SPDX-License-Identifier: GPL-3.0-only

package migrations

import (
	"fmt"
	"sort"

	"aventrada-server/commons"
	"aventrada-server/models"

	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

func List() []*gormigrate.Migration {
	return []*gormigrate.Migration{
		{
			// Rows imported from the hosted store were written with mixed-case emails.
			ID:       "202610010001_normalize_registration_emails",
			Migrate:  normalizeRegistrationEmails,
			Rollback: func(tx *gorm.DB) error { return nil },
		},
		{
			ID: "202610010002_create_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(models.AllModels...)
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(models.AllModels...)
			},
		},
	}
}

func normalizeRegistrationEmails(tx *gorm.DB) error {
	if !tx.Migrator().HasTable(&models.Registration{}) {
		return nil
	}

	var rows []models.Registration
	if err := tx.Order("created_at ASC").Find(&rows).Error; err != nil {
		return fmt.Errorf("failed to fetch registrations: %w", err)
	}

	groups := make(map[string][]models.Registration)
	for _, r := range rows {
		key := commons.NormalizeEmail(r.Email)
		groups[key] = append(groups[key], r)
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, email := range keys {
		group := groups[email]
		keep := pickSurvivor(group)

		for _, r := range group {
			if r.ID == keep.ID {
				continue
			}
			if err := tx.Delete(&models.Registration{}, "id = ?", r.ID).Error; err != nil {
				return fmt.Errorf("delete duplicate registration %s: %w", r.ID, err)
			}
		}

		updates := map[string]any{}
		if keep.Email != email {
			updates["email"] = email
		}
		for _, r := range group {
			if keep.FullName == "" && r.FullName != "" {
				keep.FullName = r.FullName
				updates["full_name"] = r.FullName
			}
			if keep.PhoneNumber == "" && r.PhoneNumber != "" {
				keep.PhoneNumber = r.PhoneNumber
				updates["phone_number"] = r.PhoneNumber
			}
			if keep.Preferences == "" && r.Preferences != "" {
				keep.Preferences = r.Preferences
				updates["preferences"] = r.Preferences
			}
		}
		if len(updates) > 0 {
			if err := tx.Model(&models.Registration{}).Where("id = ?", keep.ID).Updates(updates).Error; err != nil {
				return fmt.Errorf("update registration %s: %w", keep.ID, err)
			}
		}
	}
	return nil
}

// pickSurvivor prefers an approved row, then the oldest one. group is sorted by created_at.
func pickSurvivor(group []models.Registration) models.Registration {
	for _, r := range group {
		if r.IsApproved() {
			return r
		}
	}
	return group[0]
}
