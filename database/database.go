// Package database membuka koneksi gorm sesuai driver di config,
// menjalankan AutoMigrate dan seed data awal.
package database

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeremiapane/restaurant-pos/config"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/utils"
)

const connectRetries = 5

var passwordPattern = regexp.MustCompile(`(password=|:)([^@\s]+)(@)`)

// Open -> koneksi ke sqlite / mysql / postgres, dengan retry untuk server DB.
func Open(cfg config.Database) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	gormCfg := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	}

	var db *gorm.DB
	var err error
	attempts := 1
	if cfg.Driver != "sqlite" {
		attempts = connectRetries
	}
	for i := 0; i < attempts; i++ {
		db, err = gorm.Open(dialector, gormCfg)
		if err == nil {
			break
		}
		utils.ErrorLogger.Warnf("Retrying DB connection (%d/%d): %v", i+1, attempts, err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.Driver == "sqlite" {
		// satu koneksi saja, sqlite mengunci per file
		sqlDB.SetMaxOpenConns(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("db ping failed: %w", err)
	}

	utils.InfoLogger.Infof("[DB] Connected using %s (%s)", cfg.Driver, maskDSN(cfg.DSN))
	return db, nil
}

// OpenInMemory -> sqlite in-memory dengan nama unik, dipakai test dan mode demo.
func OpenInMemory(name string) (*gorm.DB, error) {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		}
		return '_'
	}, name)

	db, err := Open(config.Database{
		Driver: "sqlite",
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", safe),
	})
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	modelsToMigrate := []interface{}{
		&models.User{},
		&models.Table{},
		&models.MenuItem{},
		&models.Order{},
		&models.Payment{},
		&models.LifecycleStep{},
		&models.Setting{},
	}
	for _, m := range modelsToMigrate {
		if err := db.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	utils.InfoLogger.Info("AutoMigrate completed.")
	return nil
}

// Seed -> admin user (jika dikonfigurasi) dan nama restoran, hanya bila belum ada.
func Seed(db *gorm.DB, cfg config.Config) error {
	var setting models.Setting
	err := db.Where(map[string]interface{}{"key": models.SettingRestaurantName}).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		setting = models.Setting{
			Key:       models.SettingRestaurantName,
			Value:     cfg.RestaurantName,
			UpdatedAt: time.Now().UTC(),
		}
		if err := db.Create(&setting).Error; err != nil {
			return fmt.Errorf("seed restaurant name: %w", err)
		}
	} else if err != nil {
		return err
	}

	if cfg.Auth.AdminEmail == "" || cfg.Auth.AdminPassword == "" {
		return nil
	}

	var admin models.User
	err = db.Where("email = ?", strings.ToLower(cfg.Auth.AdminEmail)).First(&admin).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.Auth.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin = models.User{
		Name:     "Admin",
		Email:    strings.ToLower(cfg.Auth.AdminEmail),
		Password: string(hashed),
		Role:     "admin",
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	utils.InfoLogger.Infof("Seeded admin user %s", admin.Email)
	return nil
}

func maskDSN(dsn string) string {
	return passwordPattern.ReplaceAllString(dsn, "${1}***${3}")
}
