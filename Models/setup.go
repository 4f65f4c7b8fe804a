package Models

import (
	"fmt"
	"strings"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var DB *gorm.DB

// Connect opens the configured database, migrates it and stores it in DB.
func Connect(driver, dsn string) error {
	connection, err := Open(driver, dsn)
	if err != nil {
		return err
	}
	DB = connection
	return nil
}

// Open returns a migrated connection for one of the supported drivers:
// sqlite (default), mysql or postgres.
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(driver) {
	case "", "sqlite":
		dialector = sqlite.Open(dsn)
	case "mysql":
		dialector = mysql.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	connection, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		// Event rows outlive the tasks they mention, so no FK constraints.
		DisableForeignKeyConstraintWhenMigrating: true,
		// Unique violations surface as gorm.ErrDuplicatedKey.
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}

	if dialector.Name() == "sqlite" {
		sqlDB, err := connection.DB()
		if err != nil {
			return nil, fmt.Errorf("get sql handle: %w", err)
		}
		// One connection keeps in-process writers from tripping over sqlite locks.
		sqlDB.SetMaxOpenConns(1)
	}

	if err := Migrate(connection); err != nil {
		return nil, err
	}
	return connection, nil
}

// Migrate creates or updates every table the service uses.
func Migrate(db *gorm.DB) error {
	// Users and projects first, then everything that points at them.
	if err := db.AutoMigrate(&User{}, &Project{}, &ProjectMember{}); err != nil {
		return fmt.Errorf("migrate users and projects: %w", err)
	}
	if err := db.AutoMigrate(&Task{}); err != nil {
		return fmt.Errorf("migrate tasks: %w", err)
	}
	if err := db.AutoMigrate(&ActivityLog{}, &UserActivity{}, &ActivitySession{}); err != nil {
		return fmt.Errorf("migrate activity tables: %w", err)
	}
	return nil
}

// OpenMemory returns a migrated private in-memory sqlite database named name.
func OpenMemory(name string) (*gorm.DB, error) {
	return Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
}
