package config

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	repository "progress-tracker.com/progress-tracker/internal/repositories"
)

func NewSQLiteDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(repository.SQLiteDialector(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dsn, err)
	}

	// SQLite allows a single writer.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	return db, nil
}
