// SPDX-License-Identifier: GPL-3.0-only

package migrations

import (
	"testing"
	"time"

	"aventrada-server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openLegacyDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return conn
}

func TestNormalizeRegistrationEmailsWithoutTable(t *testing.T) {
	conn := openLegacyDB(t)
	assert.NoError(t, normalizeRegistrationEmails(conn))
}

func TestNormalizeRegistrationEmails(t *testing.T) {
	conn := openLegacyDB(t)
	require.NoError(t, conn.AutoMigrate(&models.Registration{}))

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := []models.Registration{
		{Email: "Fan@Example.com", FullName: "Fan One", Status: models.RegistrationPending, CreatedAt: base},
		{Email: "fan@example.com", PhoneNumber: "+16502530000", Status: models.RegistrationApproved, CreatedAt: base.Add(time.Hour)},
		{Email: " FAN@example.COM", Preferences: "concerts", Status: models.RegistrationPending, CreatedAt: base.Add(2 * time.Hour)},
		{Email: "Solo@Example.com", Status: models.RegistrationPending, CreatedAt: base},
		{Email: "old@example.com", FullName: "First", Status: models.RegistrationPending, CreatedAt: base},
		{Email: "OLD@example.com", FullName: "Second", Status: models.RegistrationPending, CreatedAt: base.Add(time.Hour)},
	}
	for i := range rows {
		require.NoError(t, conn.Create(&rows[i]).Error)
	}

	require.NoError(t, normalizeRegistrationEmails(conn))

	var got []models.Registration
	require.NoError(t, conn.Order("email ASC").Find(&got).Error)
	require.Len(t, got, 3)

	fan := got[0]
	assert.Equal(t, "fan@example.com", fan.Email)
	assert.Equal(t, rows[1].ID, fan.ID)
	assert.Equal(t, models.RegistrationApproved, fan.Status)
	assert.Equal(t, "Fan One", fan.FullName)
	assert.Equal(t, "+16502530000", fan.PhoneNumber)
	assert.Equal(t, "concerts", fan.Preferences)

	old := got[1]
	assert.Equal(t, "old@example.com", old.Email)
	assert.Equal(t, rows[4].ID, old.ID)
	assert.Equal(t, "First", old.FullName)

	assert.Equal(t, "solo@example.com", got[2].Email)
}

func TestListAppliesCleanly(t *testing.T) {
	conn := openLegacyDB(t)
	for _, m := range List() {
		require.NoError(t, m.Migrate(conn), m.ID)
	}
	for _, model := range models.AllModels {
		assert.True(t, conn.Migrator().HasTable(model))
	}
}
