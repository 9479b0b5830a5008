package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/spec-kit/etutor-gateway/internal/config"
)

// OpenMySQL connects to the MySQL user store and verifies the connection.
// parseTime and clientFoundRows are forced on whatever the DSN says.
func OpenMySQL(ctx context.Context, cfg config.MySQLConfig, logger *zap.Logger) (*sql.DB, error) {
	dsn, err := mysql.ParseDSN(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse mysql dsn: %w", err)
	}
	dsn.ParseTime = true
	dsn.ClientFoundRows = true
	if dsn.Loc == nil || dsn.Loc == time.Local {
		dsn.Loc = time.UTC
	}

	db, err := sql.Open("mysql", dsn.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}

	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 25
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxOpen)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}

	logger.Info("connected to mysql", zap.Int("max_open_conns", maxOpen))
	return db, nil
}
