package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	// DriverMySQL selects gorm.io/driver/mysql.
	DriverMySQL = "mysql"
	// DriverSQLite selects the pure Go SQLite driver, used for local runs and tests.
	DriverSQLite = "sqlite"
)

var (
	// ErrMissingDriver indicates the driver name was omitted.
	ErrMissingDriver = errors.New("db: missing database driver name")
	// ErrUnsupportedDriver indicates the driver name is not known.
	ErrUnsupportedDriver = errors.New("db: unsupported database driver")
	// ErrMissingDSN indicates the data source name was omitted.
	ErrMissingDSN = errors.New("db: missing database data source name")
)

// Config captures database connection configuration.
type Config struct {
	Driver string
	DSN    string
	// Logger overrides the GORM logger; nil keeps GORM's default.
	Logger logger.Interface
}

var dialectors = map[string]func(dsn string) gorm.Dialector{
	DriverMySQL:  mysql.Open,
	DriverSQLite: sqlite.Open,
}

// Open returns a connected GORM DB instance for the configured driver.
func Open(cfg Config) (*gorm.DB, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" {
		return nil, ErrMissingDriver
	}
	dialector, ok := dialectors[driver]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDriver, driver)
	}
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, ErrMissingDSN
	}
	if driver == DriverSQLite {
		dsn = withForeignKeys(dsn)
	}

	// connectivity is checked by the Bootstrapper so the server can start before the database
	gormCfg := &gorm.Config{DisableAutomaticPing: true}
	if cfg.Logger != nil {
		gormCfg.Logger = cfg.Logger
	}
	db, err := gorm.Open(dialector(dsn), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}
	return db, nil
}

// withForeignKeys turns on SQLite foreign keys, which the cascade rules of the
// schema rely on. A DSN that sets the pragma itself is left alone.
func withForeignKeys(dsn string) string {
	if strings.Contains(dsn, "foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)"
}
