package postgres

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq"
)

func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx2, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx2); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS tactical_records (
  id              VARCHAR(64) PRIMARY KEY,
  category        VARCHAR(16) NOT NULL,
  classification  VARCHAR(32) NOT NULL DEFAULT 'CONFIDENTIAL',
  status          VARCHAR(32) NOT NULL,
  request_content TEXT        NOT NULL,
  ai_analysis     TEXT        NOT NULL,
  payload_json    JSONB       NOT NULL,
  created_at      TIMESTAMPTZ NOT NULL,
  updated_at      TIMESTAMPTZ NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_tactical_category_created ON tactical_records (category, created_at)`,
	`CREATE TABLE IF NOT EXISTS agent_status (
  id              VARCHAR(32)  PRIMARY KEY,
  name            VARCHAR(128) NOT NULL,
  position        INTEGER      NOT NULL DEFAULT 0,
  status          VARCHAR(32)  NOT NULL DEFAULT 'OFFLINE',
  current_mission VARCHAR(255),
  capabilities    JSONB,
  last_update     TIMESTAMPTZ  NOT NULL DEFAULT now()
)`,
}

// Migrate creates the tables used by RecordRepository when missing.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
