// SPDX-License-Identifier: GPL-3.0-only

// Package registrations holds the store operations on the registrations table.
// Every write is keyed by the normalized email and relies on its unique index,
// so concurrent signups for the same address converge on one row.
package registrations

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"aventrada-server/commons"
	"aventrada-server/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrNotFound      = errors.New("registration not found")
	ErrInvalidStatus = errors.New("invalid registration status")
)

type Input struct {
	Email       string
	FullName    string
	PhoneNumber string
	Preferences string
	// Status defaults to pending. An existing approved row is never downgraded.
	Status models.RegistrationStatus
}

type Filter struct {
	Status   models.RegistrationStatus
	Page     int
	PageSize int
}

type ReconcileResult struct {
	Users    int
	Created  int
	Approved int
}

// Upsert inserts the registration or merges the input into the existing row.
// Name and phone only fill empty columns; non-empty preferences replace the stored ones.
func Upsert(ctx context.Context, conn *gorm.DB, in Input) (*models.Registration, bool, error) {
	email := commons.NormalizeEmail(in.Email)
	if email == "" {
		return nil, false, commons.ErrInvalidEmail
	}
	status := in.Status
	if status == "" {
		status = models.RegistrationPending
	}
	if !status.Valid() {
		return nil, false, ErrInvalidStatus
	}

	row := models.Registration{
		Email:       email,
		FullName:    strings.TrimSpace(in.FullName),
		PhoneNumber: commons.NormalizePhoneNumber(in.PhoneNumber, ""),
		Preferences: strings.TrimSpace(in.Preferences),
		Status:      status,
	}

	var reg models.Registration
	var created bool
	err := conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoNothing: true,
		}).Create(&row)
		if res.Error != nil {
			return fmt.Errorf("insert registration: %w", res.Error)
		}
		created = res.RowsAffected == 1

		if !created {
			updates := map[string]any{
				"full_name":    gorm.Expr("CASE WHEN full_name = '' THEN ? ELSE full_name END", row.FullName),
				"phone_number": gorm.Expr("CASE WHEN phone_number = '' THEN ? ELSE phone_number END", row.PhoneNumber),
			}
			if row.Preferences != "" {
				updates["preferences"] = row.Preferences
			}
			if status == models.RegistrationApproved {
				updates["status"] = models.RegistrationApproved
			}
			if err := tx.Model(&models.Registration{}).Where("email = ?", email).Updates(updates).Error; err != nil {
				return fmt.Errorf("update registration: %w", err)
			}
		}

		if err := tx.Where("email = ?", email).First(&reg).Error; err != nil {
			return fmt.Errorf("reload registration: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &reg, created, nil
}

// FindByEmail looks a registration up by email, ignoring case and surrounding spaces.
func FindByEmail(ctx context.Context, conn *gorm.DB, email string) (*models.Registration, error) {
	email = commons.NormalizeEmail(email)
	if email == "" {
		return nil, ErrNotFound
	}
	var reg models.Registration
	err := conn.WithContext(ctx).Where("email = ?", email).First(&reg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find registration: %w", err)
	}
	return &reg, nil
}

// Approve flips the registration to approved. changed is false when it already was.
// With createIfMissing an approved row is created for an unknown email.
func Approve(ctx context.Context, conn *gorm.DB, email string, createIfMissing bool) (*models.Registration, bool, error) {
	email = commons.NormalizeEmail(email)
	if email == "" {
		return nil, false, commons.ErrInvalidEmail
	}

	var reg models.Registration
	var changed bool
	err := conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Registration{}).
			Where("email = ? AND status <> ?", email, models.RegistrationApproved).
			Update("status", models.RegistrationApproved)
		if res.Error != nil {
			return fmt.Errorf("approve registration: %w", res.Error)
		}
		changed = res.RowsAffected > 0

		err := tx.Where("email = ?", email).First(&reg).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("find registration: %w", err)
		}
		if !createIfMissing {
			return ErrNotFound
		}

		reg = models.Registration{Email: email, Status: models.RegistrationApproved}
		res = tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&reg)
		if res.Error != nil {
			return fmt.Errorf("create registration: %w", res.Error)
		}
		changed = res.RowsAffected > 0
		if !changed {
			// A concurrent signup inserted the row first.
			res = tx.Model(&models.Registration{}).
				Where("email = ? AND status <> ?", email, models.RegistrationApproved).
				Update("status", models.RegistrationApproved)
			if res.Error != nil {
				return fmt.Errorf("approve registration: %w", res.Error)
			}
			changed = res.RowsAffected > 0
		}
		reg = models.Registration{}
		return tx.Where("email = ?", email).First(&reg).Error
	})
	if err != nil {
		return nil, false, err
	}
	return &reg, changed, nil
}

// List returns one page of registrations, newest first, and the total matching count.
func List(ctx context.Context, conn *gorm.DB, f Filter) ([]models.Registration, int64, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, 0, ErrInvalidStatus
	}
	q := conn.WithContext(ctx).Model(&models.Registration{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count registrations: %w", err)
	}

	var rows []models.Registration
	if err := q.Order("created_at DESC").
		Limit(f.PageSize).
		Offset((f.Page - 1) * f.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("list registrations: %w", err)
	}
	return rows, total, nil
}

// CountByStatus returns how many registrations are in each status.
func CountByStatus(ctx context.Context, conn *gorm.DB) (map[models.RegistrationStatus]int64, error) {
	var rows []struct {
		Status models.RegistrationStatus
		Count  int64
	}
	if err := conn.WithContext(ctx).Model(&models.Registration{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("count registrations: %w", err)
	}
	counts := map[models.RegistrationStatus]int64{
		models.RegistrationPending:  0,
		models.RegistrationApproved: 0,
	}
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}

// Reconcile makes sure every auth user has a registration, and approves the
// registrations of verified users and admins.
func Reconcile(ctx context.Context, conn *gorm.DB) (ReconcileResult, error) {
	var result ReconcileResult
	var batch []models.User

	err := conn.WithContext(ctx).Order("id ASC").FindInBatches(&batch, 200, func(_ *gorm.DB, _ int) error {
		for _, u := range batch {
			result.Users++
			reg, created, err := Upsert(ctx, conn, Input{
				Email:       u.Email,
				FullName:    u.FullName,
				PhoneNumber: u.PhoneNumber,
			})
			if err != nil {
				return fmt.Errorf("user %d: %w", u.ID, err)
			}
			if created {
				result.Created++
			}
			if reg.IsApproved() || !(u.IsEmailVerified || u.IsAdmin()) {
				continue
			}
			if _, changed, err := Approve(ctx, conn, u.Email, false); err != nil {
				return fmt.Errorf("user %d: %w", u.ID, err)
			} else if changed {
				result.Approved++
			}
		}
		return nil
	}).Error
	if err != nil {
		return result, err
	}
	return result, nil
}
