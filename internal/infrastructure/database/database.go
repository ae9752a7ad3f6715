package database

import (
	"fmt"
	"strings"

	"github.com/sangkips/tillpoint-api/internal/config"
	"github.com/sangkips/tillpoint-api/internal/domain/entity"
	"github.com/sangkips/tillpoint-api/pkg/logger"
	"github.com/sangkips/tillpoint-api/pkg/utils"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewDB opens a connection for the configured driver (postgres or mysql)
func NewDB(cfg *config.DatabaseConfig, debug bool) (*gorm.DB, error) {
	logLevel := gormlogger.Warn
	if debug {
		logLevel = gormlogger.Info
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "", "postgres":
		dialector = postgres.New(postgres.Config{
			DSN:                  cfg.DSN(),
			PreferSimpleProtocol: true, // disables implicit prepared statement usage
		})
	case "mysql":
		dialector = mysql.Open(cfg.DSN())
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	logger.Get().WithField("driver", dialector.Name()).Info("connected to database")
	return db, nil
}

// AutoMigrate runs GORM auto-migration for all entities
func AutoMigrate(db *gorm.DB) error {
	logger.Get().Info("running database migrations")

	err := db.AutoMigrate(
		&entity.User{},
		&entity.Product{},
		&entity.ProductIdentifier{},
		&entity.Customer{},
		&entity.Invoice{},
		&entity.InvoiceItem{},
		&entity.CashbookEntry{},
		&entity.FinanceRecord{},
		&entity.BusinessSettings{},
		&entity.AdditionalInfo{},
		&entity.AdminOTP{},
		&entity.IdempotencyKey{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// SeedDefaultData creates the configured admin account and the initial
// business settings row when they do not exist yet.
func SeedDefaultData(db *gorm.DB, cfg *config.Config) error {
	log := logger.Get()

	var settingsCount int64
	if err := db.Model(&entity.BusinessSettings{}).Count(&settingsCount).Error; err != nil {
		return err
	}
	if settingsCount == 0 {
		if err := db.Create(&entity.BusinessSettings{
			BusinessName:  cfg.App.Name,
			Currency:      "KES",
			InvoicePrefix: "INV",
		}).Error; err != nil {
			return fmt.Errorf("seed business settings: %w", err)
		}
	}

	if cfg.Admin.Email == "" || cfg.Admin.Password == "" {
		return nil
	}

	var existing int64
	if err := db.Model(&entity.User{}).Where("email = ?", cfg.Admin.Email).Count(&existing).Error; err != nil {
		return err
	}
	if existing > 0 {
		log.WithField("email", cfg.Admin.Email).Debug("admin user already exists")
		return nil
	}

	hashed, err := utils.HashPassword(cfg.Admin.Password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	name := cfg.Admin.Name
	if name == "" {
		name = "Administrator"
	}
	first, last, _ := strings.Cut(name, " ")

	admin := entity.User{
		FirstName: first,
		LastName:  last,
		Email:     cfg.Admin.Email,
		Password:  hashed,
		Role:      entity.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}
	log.WithField("email", cfg.Admin.Email).Info("admin user created")
	return nil
}
