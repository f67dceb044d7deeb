package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	_ "github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

var ErrUnknownDriver = errors.New("database driver must be sqlite or postgres")

// Config selects and tunes a connection.
type Config struct {
	Driver string
	DSN    string
	// LogSQL echoes every statement with timings; otherwise only slow
	// queries and errors are logged.
	LogSQL bool
}

// Open connects to the configured database and pings it. The caller owns
// the connection and must Close it.
func Open(ctx context.Context, cfg Config, w io.Writer) (*gorm.DB, error) {
	if cfg.DSN == "" {
		return nil, errors.New("database dsn is empty")
	}

	level := logger.Warn
	if cfg.LogSQL {
		level = logger.Info
	}
	lg := logger.New(
		log.New(w, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	var (
		dialector gorm.Dialector
		maxOpen   = 1
	)
	switch strings.ToLower(cfg.Driver) {
	case DriverSQLite, "":
		dialector = sqlite.Open(cfg.DSN)
	case DriverPostgres:
		conn, err := sql.Open("pgx", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open pgx: %w", err)
		}
		dialector = postgres.New(postgres.Config{Conn: conn})
		maxOpen = 4
	default:
		return nil, fmt.Errorf("%w (got %q)", ErrUnknownDriver, cfg.Driver)
	}

	d, err := gorm.Open(dialector, &gorm.Config{Logger: lg})
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	sqlDB, err := d.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxOpen)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return d, nil
}

// Close releases the pool behind d.
func Close(d *gorm.DB) error {
	if d == nil {
		return nil
	}
	sqlDB, err := d.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
