// Package sqlite implements the usage store on a local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"dosug/internal/models"
	"dosug/internal/store"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS ai_usage_logs (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp     TIMESTAMP NOT NULL,
	provider_name TEXT NOT NULL,
	service_type  TEXT NOT NULL,
	model_name    TEXT NOT NULL DEFAULT '',
	input_tokens  INTEGER NOT NULL DEFAULT 0,
	output_tokens INTEGER NOT NULL DEFAULT 0,
	cost          REAL NOT NULL DEFAULT 0,
	request_id    TEXT
);
CREATE INDEX IF NOT EXISTS ai_usage_logs_timestamp_idx ON ai_usage_logs (timestamp DESC);
`

// Store implements store.UsageStore with database/sql and go-sqlite3.
type Store struct {
	db *sql.DB
}

var _ store.UsageStore = (*Store)(nil)

// NewStore opens (or creates) the database at dsn, e.g. "usage.db" or ":memory:".
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, errors.New("sqlite DSN cannot be empty")
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows a single writer; one connection also keeps :memory: databases shared.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create usage schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

// RecordUsage inserts a new AI usage log entry.
func (s *Store) RecordUsage(ctx context.Context, log *models.AIUsageLog) error {
	if err := log.Validate(); err != nil {
		return err
	}
	if log.Timestamp.IsZero() {
		log.Timestamp = time.Now()
	}
	log.Timestamp = log.Timestamp.UTC()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO ai_usage_logs (
			timestamp, provider_name, service_type, model_name,
			input_tokens, output_tokens, cost, request_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		log.Timestamp,
		log.ProviderName,
		log.ServiceType,
		log.ModelName,
		log.InputTokens,
		log.OutputTokens,
		log.Cost,
		log.RequestID,
	)
	if err != nil {
		return fmt.Errorf("failed to insert ai_usage_log: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read ai_usage_log id: %w", err)
	}
	log.ID = id
	return nil
}

// ListUsage returns AI usage logs, newest first.
func (s *Store) ListUsage(ctx context.Context, limit, offset int) ([]*models.AIUsageLog, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, timestamp, provider_name, service_type, model_name,
		       input_tokens, output_tokens, cost, request_id
		FROM ai_usage_logs
		ORDER BY timestamp DESC, id DESC
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query ai_usage_logs: %w", err)
	}
	defer rows.Close()

	var logs []*models.AIUsageLog
	for rows.Next() {
		var log models.AIUsageLog
		if err := rows.Scan(
			&log.ID,
			&log.Timestamp,
			&log.ProviderName,
			&log.ServiceType,
			&log.ModelName,
			&log.InputTokens,
			&log.OutputTokens,
			&log.Cost,
			&log.RequestID,
		); err != nil {
			return nil, fmt.Errorf("failed to scan ai_usage_log: %w", err)
		}
		logs = append(logs, &log)
	}
	return logs, rows.Err()
}

// GetUsageSummary returns the total cost and token usage.
func (s *Store) GetUsageSummary(ctx context.Context) (models.UsageSummary, error) {
	var sum models.UsageSummary
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(cost), 0.0),
			COALESCE(SUM(input_tokens), 0),
			COALESCE(SUM(output_tokens), 0),
			COUNT(*)
		FROM ai_usage_logs`).Scan(&sum.TotalCost, &sum.TotalInputTokens, &sum.TotalOutputTokens, &sum.Calls)
	if err != nil {
		return models.UsageSummary{}, fmt.Errorf("failed to summarize ai_usage_logs: %w", err)
	}
	return sum, nil
}
