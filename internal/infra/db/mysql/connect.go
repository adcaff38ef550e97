package mysql

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	// test ping
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
  id              VARCHAR(64)  NOT NULL PRIMARY KEY,
  category        VARCHAR(16)  NOT NULL,
  classification  VARCHAR(32)  NOT NULL DEFAULT 'CONFIDENTIAL',
  status          VARCHAR(32)  NOT NULL,
  request_content TEXT         NOT NULL,
  ai_analysis     MEDIUMTEXT   NOT NULL,
  payload_json    JSON         NOT NULL,
  created_at      DATETIME(6)  NOT NULL,
  updated_at      DATETIME(6)  NOT NULL,
  KEY idx_tactical_category_created (category, created_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS agent_status (
  id              VARCHAR(32)  NOT NULL PRIMARY KEY,
  name            VARCHAR(128) NOT NULL,
  position        INT          NOT NULL DEFAULT 0,
  status          VARCHAR(32)  NOT NULL DEFAULT 'OFFLINE',
  current_mission VARCHAR(255) NULL,
  capabilities    JSON         NULL,
  last_update     TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
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
