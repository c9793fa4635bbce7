// Package database opens the GORM connection backing the item and user stores.
package database

import (
	"fmt"
	"strings"

	"gudang/internal/models"

	"github.com/apex/log"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

/*
GetSqliteDialector define Sqlite GORM dialector

	@param dbFile string - Sqlite DB file
	@return GORM sqlite dialector
*/
func GetSqliteDialector(dbFile string) gorm.Dialector {
	return sqlite.Open(fmt.Sprintf("%s?_foreign_keys=on&_busy_timeout=5000", dbFile))
}

/*
GetDialector select the GORM dialector for a driver

	@param driver string - one of DriverSQLite, DriverPostgres
	@param dsn string - driver specific data source name
	@return GORM dialector
*/
func GetDialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case DriverSQLite:
		return GetSqliteDialector(dsn), nil
	case DriverPostgres:
		return postgres.Open(dsn), nil
	}
	return nil, fmt.Errorf("unsupported database driver '%s'", driver)
}

// ParseLogLevel maps a config string onto a GORM log level.
func ParseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "warn":
		return logger.Warn
	case "info":
		return logger.Info
	}
	return logger.Error
}

/*
NewConnection open a database connection and prepare the schema

	@param dbDialector gorm.Dialector - GORM dialector
	@param dbLogLevel logger.LogLevel - SQL log level
	@return the connection
*/
func NewConnection(dbDialector gorm.Dialector, dbLogLevel logger.LogLevel) (*gorm.DB, error) {
	logTags := log.Fields{"package": "gudang", "module": "database", "dialect": dbDialector.Name()}

	db, err := gorm.Open(dbDialector, &gorm.Config{
		Logger:                 logger.Default.LogMode(dbLogLevel),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect with DB [%w]", err)
	}

	if err := DefineTables(db); err != nil {
		return nil, err
	}

	log.WithFields(logTags).Info("Database ready")
	return db, nil
}

// DefineTables auto-migrates every persisted model.
func DefineTables(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.Item{}); err != nil {
		return fmt.Errorf("failed to auto-migrate database: %w", err)
	}
	return nil
}
