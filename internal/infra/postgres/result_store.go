package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-session-service/internal/domain"
)

// ResultStore persists completed session results as JSONB rows, keyed for
// per-quiz review queries and the CSV export.
type ResultStore struct {
	pool *pgxpool.Pool
}

func NewResultStore(pool *pgxpool.Pool) *ResultStore {
	return &ResultStore{pool: pool}
}

func (s *ResultStore) SaveResult(ctx context.Context, record domain.ResultRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO results (id, quiz_id, submitted_at, data) VALUES ($1, $2, $3, $4::jsonb)`,
		record.ID, record.QuizID, record.SubmittedAt, data)
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

// ListResults returns stored results for a quiz, newest first. An empty
// quizID lists results across all quizzes.
func (s *ResultStore) ListResults(ctx context.Context, quizID string) ([]domain.ResultRecord, error) {
	query := `SELECT data FROM results ORDER BY submitted_at DESC`
	args := []interface{}{}
	if quizID != "" {
		query = `SELECT data FROM results WHERE quiz_id=$1 ORDER BY submitted_at DESC`
		args = append(args, quizID)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	var records []domain.ResultRecord
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		var record domain.ResultRecord
		if err := json.Unmarshal(raw, &record); err != nil {
			return nil, fmt.Errorf("unmarshal result: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// SubmittedBetween supports audit queries over a time window.
func (s *ResultStore) SubmittedBetween(ctx context.Context, from, to time.Time) ([]domain.ResultRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT data FROM results WHERE submitted_at >= $1 AND submitted_at < $2 ORDER BY submitted_at`,
		from, to)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	var records []domain.ResultRecord
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		var record domain.ResultRecord
		if err := json.Unmarshal(raw, &record); err != nil {
			return nil, fmt.Errorf("unmarshal result: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}
