package storage

import (
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ConnectPostgres establishes a networked Postgres connection and runs
// migrations. Kept under a distinct name from sqlite.go's Connect;
// internal/config only resolves the DSN string, and cmd/ribbon opens its
// store with Connect.
func ConnectPostgres(dsn string, debug bool) (*gorm.DB, error) {
	if err := ensureDatabase(dsn, debug); err != nil && debug {
		fmt.Printf("storage: warning: could not ensure database exists: %v\n", err)
	}

	config := &gorm.Config{}
	if debug {
		config.Logger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(postgres.Open(dsn), config)
	if err != nil {
		return nil, fmt.Errorf("storage: connect: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}
	return db, nil
}

// ensureDatabase creates the target database if it does not already
// exist, by connecting to the server's default "postgres" database
// first.
func ensureDatabase(dsn string, debug bool) error {
	dbName := extractDBName(dsn)
	if dbName == "" {
		return fmt.Errorf("storage: could not extract database name from DSN")
	}

	adminDSN := strings.Replace(dsn, "/"+dbName, "/postgres", 1)
	db, err := gorm.Open(postgres.Open(adminDSN), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return fmt.Errorf("storage: connect to admin db: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	var exists bool
	db.Raw("SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = ?)", dbName).Scan(&exists)
	if !exists {
		if err := db.Exec(fmt.Sprintf("CREATE DATABASE %s", dbName)).Error; err != nil {
			return fmt.Errorf("storage: create database: %w", err)
		}
	}
	return nil
}

func extractDBName(dsn string) string {
	parts := strings.Split(dsn, "/")
	if len(parts) < 4 {
		return ""
	}
	dbPart := parts[3]
	if idx := strings.Index(dbPart, "?"); idx > 0 {
		dbPart = dbPart[:idx]
	}
	return dbPart
}
