package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/leejaedus/project-morgan/internal/core/domain"
	"github.com/leejaedus/project-morgan/internal/core/ports"
)

// PostgresStorage persists learned patterns, feedback, generated todo lists
// and usage snapshots in PostgreSQL.
type PostgresStorage struct {
	Pool *pgxpool.Pool
}

func NewPostgresStorage(ctx context.Context, connStr string) (*PostgresStorage, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	s := &PostgresStorage{Pool: pool}
	if err := s.initSchema(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

var _ ports.Storage = (*PostgresStorage)(nil)

func (s *PostgresStorage) initSchema(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS user_patterns (
			pattern_type TEXT,
			pattern_value TEXT,
			weight_adjustment DOUBLE PRECISION,
			confidence DOUBLE PRECISION,
			usage_count INT DEFAULT 0,
			last_updated TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (pattern_type, pattern_value)
		)`,
		`CREATE TABLE IF NOT EXISTS feedback (
			id SERIAL PRIMARY KEY,
			todo_id TEXT,
			predicted_priority TEXT,
			actual_priority TEXT,
			satisfaction INT,
			comment TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS todo_lists (
			id TEXT PRIMARY KEY,
			title TEXT,
			total_items INT,
			payload JSONB,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS usage_snapshots (
			id SERIAL PRIMARY KEY,
			quick_calls INT,
			deep_calls INT,
			estimated_cost DOUBLE PRECISION,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, q := range queries {
		if _, err := s.Pool.Exec(ctx, q); err != nil {
			return fmt.Errorf("failed to init schema: %w", err)
		}
	}
	return nil
}

func (s *PostgresStorage) LoadPatterns(ctx context.Context) ([]domain.LearnedPattern, error) {
	rows, err := s.Pool.Query(ctx,
		`SELECT pattern_type, pattern_value, weight_adjustment, confidence, usage_count, last_updated, created_at
		 FROM user_patterns ORDER BY confidence DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var patterns []domain.LearnedPattern
	for rows.Next() {
		var p domain.LearnedPattern
		if err := rows.Scan(&p.Type, &p.Value, &p.WeightAdjustment, &p.Confidence,
			&p.UsageCount, &p.LastUpdated, &p.CreatedAt); err != nil {
			return nil, err
		}
		patterns = append(patterns, p)
	}
	return patterns, rows.Err()
}

func (s *PostgresStorage) SaveFeedback(ctx context.Context, fb domain.Feedback) error {
	_, err := s.Pool.Exec(ctx,
		`INSERT INTO feedback (todo_id, predicted_priority, actual_priority, satisfaction, comment)
		 VALUES ($1, $2, $3, $4, $5)`,
		fb.TodoID, string(fb.PredictedPriority), string(fb.ActualPriority), fb.Satisfaction, fb.Comment)
	return err
}

func (s *PostgresStorage) SaveTodoList(ctx context.Context, list domain.TodoList) error {
	payload, err := json.Marshal(list)
	if err != nil {
		return err
	}
	_, err = s.Pool.Exec(ctx,
		`INSERT INTO todo_lists (id, title, total_items, payload) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE SET title = $2, total_items = $3, payload = $4`,
		list.ID, list.Title, list.TotalItems, payload)
	return err
}

func (s *PostgresStorage) SaveUsageSnapshot(ctx context.Context, quickCalls, deepCalls int, estimatedCost float64) error {
	_, err := s.Pool.Exec(ctx,
		`INSERT INTO usage_snapshots (quick_calls, deep_calls, estimated_cost) VALUES ($1, $2, $3)`,
		quickCalls, deepCalls, estimatedCost)
	return err
}
