package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openDB(cfg DatabaseConfig, log *logrus.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unknown database driver '%s'", cfg.Driver)
	}

	logMode := logger.Warn
	if log.IsLevelEnabled(logrus.DebugLevel) {
		logMode = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.New(log, logger.Config{
			LogLevel:                  logMode,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("cannot open %s database: %w", cfg.Driver, err)
	}

	return db, nil
}

// withDB opens and migrates the database, runs fn and closes the connection
// pool on every path.
func withDB(cfg DatabaseConfig, log *logrus.Logger, fn func(db *gorm.DB) error) error {
	db, err := openDB(cfg, log)
	if err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("cannot get database handle: %w", err)
	}

	defer func() {
		if closeErr := sqlDB.Close(); closeErr != nil {
			log.WithError(closeErr).Warn("cannot close database")
		}
	}()

	if err = migrate(db); err != nil {
		return err
	}

	return fn(db)
}
