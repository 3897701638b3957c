// SPDX-License-Identifier: GPL-3.0-only

// Package testutil provides an isolated, migrated in-memory database for tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"

	"aventrada-server/db"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB opens a private shared-cache SQLite database named after the test and migrates it.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Migrate(conn))
	return conn
}

// UseTestDB swaps db.Conn for a fresh test database until the test ends.
func UseTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn := NewTestDB(t)
	prev := db.Conn
	db.Conn = conn
	t.Cleanup(func() { db.Conn = prev })
	return conn
}
