package database

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/decorviz/decor-serve/config"
)

var (
	instance *gorm.DB
	once     sync.Once
)

// GetDB returns the shared connection, opening it on first use.
func GetDB() *gorm.DB {
	once.Do(func() {
		db, err := open()
		if err != nil {
			logrus.Fatalf("Failed to connect to database: %v", err)
		}
		instance = db
	})

	return instance
}

func open() (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(config.Config("DATABASE_URL")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	maxOpen, err := strconv.Atoi(config.ConfigDefault("DB_MAX_OPEN_CONNS", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_OPEN_CONNS: %v", err)
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxOpen / 2)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(30 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}

	logrus.WithField("max_open_conns", maxOpen).Info("Connected to Postgres")
	return db, nil
}

// MigrateModels runs auto migration for the given models.
func MigrateModels(models ...interface{}) error {
	return GetDB().AutoMigrate(models...)
}

func CloseDB() error {
	if instance == nil {
		return nil
	}

	sqlDB, err := instance.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}
