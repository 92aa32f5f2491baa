package database

import (
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/campus-hub/campus-events-api/internal/config"
	"github.com/campus-hub/campus-events-api/internal/models"
)

func Connect(cfg *config.Config, log *zap.Logger) *gorm.DB {
	dsn := cfg.DatabasePath
	// Serialize writers up front so capacity checks never deadlock on a
	// read-to-write lock upgrade.
	if !strings.Contains(dsn, "?") {
		dsn += "?_busy_timeout=5000&_txlock=immediate"
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	if err := Migrate(db); err != nil {
		log.Fatal("failed to auto migrate", zap.Error(err))
	}

	if err := seedSuperadmin(db, cfg); err != nil {
		log.Fatal("failed to seed superadmin", zap.Error(err))
	}

	return db
}

// Migrate creates or updates the schema for every model.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.APIKey{},
		&models.Location{},
		&models.Event{},
		&models.Registration{},
		&models.EventApprovalHistory{},
		&models.ReminderLog{},
		&models.Attachment{},
		&models.Setting{},
		&models.Message{},
	)
}

// seedSuperadmin bootstraps the first superadmin account from config when
// the users table has none.
func seedSuperadmin(db *gorm.DB, cfg *config.Config) error {
	if cfg.BootstrapAdminEmail == "" || cfg.BootstrapAdminPassword == "" {
		return nil
	}

	var count int64
	if err := db.Model(&models.User{}).Where("role = ?", models.RoleSuperadmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.BootstrapAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := models.User{
		Name:         "Superadmin",
		Email:        cfg.BootstrapAdminEmail,
		PasswordHash: string(hash),
		Role:         models.RoleSuperadmin,
		Active:       true,
	}
	return db.Create(&admin).Error
}
