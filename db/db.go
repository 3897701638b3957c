// SPDX-License-Identifier: GPL-3.0-only

package db

import (
	"fmt"
	"os"
	"strings"
	"time"

	"aventrada-server/commons"
	"aventrada-server/migrations"

	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var Conn *gorm.DB

// Open builds a gorm handle for the given dialect. Unknown dialects fall back to SQLite.
func Open(dialect string) (*gorm.DB, string, error) {
	var dialector gorm.Dialector
	var dbInfo string

	switch strings.ToLower(dialect) {
	case "postgres":
		dsn := commons.GetEnv("POSTGRES_DSN")
		if dsn == "" {
			return nil, "", fmt.Errorf("POSTGRES_DSN environment variable is required for postgres dialect")
		}
		dialector = postgres.Open(dsn)
		dbInfo = "PostgreSQL database (DSN hidden)"
	case "mysql":
		dsn := commons.GetEnv("MYSQL_DSN")
		if dsn == "" {
			return nil, "", fmt.Errorf("MYSQL_DSN environment variable is required for mysql dialect")
		}
		dialector = mysql.Open(dsn)
		dbInfo = "MySQL database (DSN hidden)"
	default:
		dbPath := commons.GetEnv("DB_PATH", "aventrada.db")
		dialector = sqlite.Open(dbPath)
		dbInfo = dbPath
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger: logger.New(commons.Logger, logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, "", err
	}
	return conn, dbInfo, nil
}

func InitDB() {
	dbDialect := strings.ToLower(commons.GetEnv("DB_DIALECT", "sqlite"))
	conn, dbInfo, err := Open(dbDialect)
	if err != nil {
		commons.Logger.Error("Failed to connect to database:", err)
		os.Exit(1)
	}
	Conn = conn
	commons.Logger.Infof("Database connection established. %s %s, %s %s",
		"dialect:", dbDialect,
		"database:", dbInfo,
	)
}

// Migrate applies every pending migration to conn.
func Migrate(conn *gorm.DB) error {
	m := gormigrate.New(conn, gormigrate.DefaultOptions, migrations.List())
	return m.Migrate()
}

func MigrateDB() {
	commons.Logger.Info("Running database migrations")
	if err := Migrate(Conn); err != nil {
		commons.Logger.Error("Database migration failed:", err)
		os.Exit(1)
	}
	commons.Logger.Info("Database migration completed")
}
