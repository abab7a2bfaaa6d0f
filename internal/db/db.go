// Package db opens the database and keeps its schema up to date.
package db

import (
	"fmt"
	"regexp"
	"time"

	"github.com/diewo77/go-billing/internal/config"
	"github.com/diewo77/go-billing/internal/logger"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var passwordRegex = regexp.MustCompile(`(password=)([^\s]+)`)

// Open connects to the configured database, retrying while postgres starts.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	log := logger.WithComponent("db")

	logLevel := gormlogger.Silent
	if cfg.Debug {
		logLevel = gormlogger.Info
	}
	gcfg := &gorm.Config{Logger: gormlogger.Default.LogMode(logLevel)}

	if cfg.Driver == "sqlite" {
		log.Info().Str("path", cfg.Path).Msg("opening sqlite database")
		return gorm.Open(sqlite.Open(cfg.Path), gcfg)
	}

	dsn := cfg.DSN()
	log.Info().Str("dsn", passwordRegex.ReplaceAllString(dsn, `${1}***`)).Msg("connecting to database")

	var db *gorm.DB
	var err error
	for i := 0; i < 10; i++ {
		db, err = gorm.Open(postgres.Open(dsn), gcfg)
		if err == nil {
			break
		}
		log.Warn().Err(err).Int("attempt", i+1).Msg("retrying database connection")
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database after retries: %w", err)
	}
	if pingErr := db.Exec("SELECT 1").Error; pingErr != nil {
		return nil, fmt.Errorf("db ping failed: %w", pingErr)
	}
	return db, nil
}
