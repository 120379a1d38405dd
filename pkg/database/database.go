package database

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/aldoetobex/legalflow-backend/pkg/config"
)

// Open builds the GORM handle and configures the pool. The server does not
// have to be reachable yet; callers probe through the store.
func Open(cfg config.Config) (*gorm.DB, error) {
	dsn, err := pgxDSN(cfg.DatabaseURL, cfg.DBConnectTimeout)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(postgres.New(postgres.Config{DSN: dsn}), &gorm.Config{
		DisableAutomaticPing: true,
		Logger: logger.New(log.New(os.Stdout, "\r\n", log.LstdFlags), logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetConnMaxIdleTime(cfg.DBIdleTimeout)
	sqlDB.SetConnMaxLifetime(cfg.DBMaxLifetime)
	return db, nil
}

// pgxDSN adds connect_timeout to the DSN unless it already carries one.
func pgxDSN(dsn string, timeout time.Duration) (string, error) {
	if dsn == "" {
		return "", fmt.Errorf("DATABASE_URL is empty")
	}
	secs := int(timeout / time.Second)
	if secs <= 0 {
		return dsn, nil
	}
	return withParam(dsn, "connect_timeout", strconv.Itoa(secs))
}

// withParam handles both URL DSNs and keyword/value DSNs.
func withParam(dsn, key, val string) (string, error) {
	if strings.Contains(dsn, key+"=") {
		return dsn, nil
	}
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return "", fmt.Errorf("parse DATABASE_URL: %w", err)
		}
		q := u.Query()
		q.Set(key, val)
		u.RawQuery = q.Encode()
		return u.String(), nil
	}
	return strings.TrimSpace(dsn) + " " + key + "=" + val, nil
}
