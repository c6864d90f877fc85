package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect establishes an embedded SQLite connection and runs migrations.
// The networked Postgres dialect lives in postgres.go's ConnectPostgres
// with the same signature; callers choose which one to call (cmd/ribbon
// calls Connect).
func Connect(dsn string, debug bool) (*gorm.DB, error) {
	if !isMemory(dsn) {
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("storage: create database directory: %w", err)
			}
		}
	}

	config := &gorm.Config{}
	if debug {
		config.Logger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(sqlite.Open(dsn), config)
	if err != nil {
		return nil, fmt.Errorf("storage: connect: %w", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Exec("PRAGMA foreign_keys = ON")
	}

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}
	return db, nil
}

func isMemory(dsn string) bool {
	return strings.Contains(dsn, ":memory:")
}

// Migrate creates or updates the namespace store's tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&DefinitionRow{},
		&VersionRow{},
		&TagRow{},
	)
}
