package db

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/diewo77/foodshare/internal/models"
	migrate "github.com/golang-migrate/migrate/v4"
	// The following blank imports register the postgres driver and file source for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const defaultSQLitePath = "foodshare.db"

// GetDSN fetches DATABASE_DSN, trimming quotes and whitespace. Empty means the
// local sqlite file database.
func GetDSN() string {
	s := strings.TrimSpace(os.Getenv("DATABASE_DSN"))
	return strings.Trim(s, "\"'")
}

// IsPostgres reports whether the DSN selects the postgres driver.
func IsPostgres(dsn string) bool {
	lower := strings.ToLower(dsn)
	return strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://")
}

// ConnectAndMigrate opens the configured database and brings the schema up to
// date. Postgres is used when DATABASE_DSN is a postgres URL (with a retry
// loop, the database may still be starting); anything else falls back to a
// sqlite file. Schema: golang-migrate SQL migrations when MIGRATIONS=1,
// AutoMigrate otherwise (dev convenience).
func ConnectAndMigrate() (*gorm.DB, error) {
	dsn := GetDSN()
	logLevel := logger.Silent
	if os.Getenv("DB_DEBUG") == "1" {
		logLevel = logger.Info
	}
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel)}

	var db *gorm.DB
	var err error
	if IsPostgres(dsn) {
		for i := 0; i < 10; i++ {
			db, err = gorm.Open(postgres.Open(dsn), cfg)
			if err == nil {
				break
			}
			fmt.Println("Retrying DB connection...", err)
			time.Sleep(2 * time.Second)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to connect database after retries: %w", err)
		}
	} else {
		path := dsn
		if path == "" {
			path = defaultSQLitePath
		}
		db, err = gorm.Open(sqlite.Open(path), cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
	}

	if pingErr := db.Exec("SELECT 1").Error; pingErr != nil {
		return nil, fmt.Errorf("db ping failed: %w", pingErr)
	}

	if IsPostgres(dsn) {
		masked := regexp.MustCompile(`://([^:]+):[^@]+@`).ReplaceAllString(dsn, "://$1:***@")
		fmt.Println("[DB] Using DSN:", masked)
	}

	useSQL := strings.ToLower(os.Getenv("MIGRATIONS"))
	if (useSQL == "1" || useSQL == "true" || useSQL == "yes") && IsPostgres(dsn) {
		if err := runSQLMigrations(dsn); err != nil {
			return nil, fmt.Errorf("sql migrations failed: %w", err)
		}
	} else {
		for _, m := range []interface{}{&models.User{}, &models.Donation{}, &models.FoodRequest{}} {
			if migErr := db.AutoMigrate(m); migErr != nil {
				return nil, fmt.Errorf("automigrate %T: %w", m, migErr)
			}
		}
	}

	// sanity check: ensure required core tables exist
	for _, table := range []string{"users", "donations", "food_requests"} {
		if !db.Migrator().HasTable(table) {
			return nil, errors.New("missing table after migration: " + table)
		}
	}

	if err := BackfillUniqueIDs(db); err != nil {
		return nil, fmt.Errorf("uid backfill: %w", err)
	}
	if err := SeedAdmin(db); err != nil {
		return nil, fmt.Errorf("seed admin: %w", err)
	}
	return db, nil
}

// SeedAdmin creates the default admin account when no admin user exists.
// Credentials come from ADMIN_PASSWORD (default admin123, dev only).
func SeedAdmin(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.User{}).Where("username = ?", "admin").Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	pass := os.Getenv("ADMIN_PASSWORD")
	if pass == "" {
		pass = "admin123"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pass), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	uid, err := UniqueLoginID(db)
	if err != nil {
		return err
	}
	admin := models.User{
		Username:     "admin",
		Email:        "admin@foodshare.org",
		Password:     string(hash),
		Role:         models.RoleAdmin,
		Organization: "Food Redistribution NGO",
		UniqueID:     uid,
	}
	return db.Create(&admin).Error
}

// BackfillUniqueIDs assigns a UID to any user created before the field existed.
func BackfillUniqueIDs(db *gorm.DB) error {
	var users []models.User
	if err := db.Where("unique_id IS NULL OR unique_id = ''").Find(&users).Error; err != nil {
		return err
	}
	for i := range users {
		uid, err := UniqueLoginID(db)
		if err != nil {
			return err
		}
		if err := db.Model(&users[i]).Update("unique_id", uid).Error; err != nil {
			return err
		}
	}
	return nil
}

// runSQLMigrations executes migrations in ./migrations using golang-migrate file source.
func runSQLMigrations(dsn string) error {
	m, err := migrate.New("file://migrations", dsn)
	if err != nil {
		return err
	}
	if err = m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}
