package redis

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"quiz-session-service/internal/domain"
	"quiz-session-service/internal/session"
)

// ResultSummary is the compact per-submission view kept in the recent list.
type ResultSummary struct {
	ID           string    `json:"id"`
	StudentName  string    `json:"studentName"`
	StudentClass string    `json:"studentClass"`
	Score        float64   `json:"score"`
	SubmittedAt  time.Time `json:"submittedAt"`
}

// ResultCache decorates a ResultSink: every saved result is also pushed onto
// a capped per-quiz recent list (LPUSH quiz:{quizID}:recent) so dashboards
// can show the latest submissions without hitting the store. Cache writes are
// best-effort; the inner sink's outcome is authoritative.
type ResultCache struct {
	client *redis.Client
	inner  session.ResultSink
	keep   int64
	ttl    time.Duration
}

func NewResultCache(client *redis.Client, inner session.ResultSink, keep int64, ttl time.Duration) *ResultCache {
	if keep <= 0 {
		keep = 20
	}
	return &ResultCache{client: client, inner: inner, keep: keep, ttl: ttl}
}

func (c *ResultCache) SaveResult(ctx context.Context, record domain.ResultRecord) error {
	if err := c.inner.SaveResult(ctx, record); err != nil {
		return err
	}

	summary, err := json.Marshal(ResultSummary{
		ID:           record.ID,
		StudentName:  record.StudentName,
		StudentClass: record.StudentClass,
		Score:        record.Score,
		SubmittedAt:  record.SubmittedAt,
	})
	if err != nil {
		return nil
	}

	key := c.recentKey(record.QuizID)
	pipe := c.client.Pipeline()
	pipe.LPush(ctx, key, summary)
	pipe.LTrim(ctx, key, 0, c.keep-1)
	if c.ttl > 0 {
		pipe.Expire(ctx, key, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("cache recent result %s: %v", record.ID, err)
	}
	return nil
}

// Recent returns the newest cached submissions for a quiz, newest first.
func (c *ResultCache) Recent(ctx context.Context, quizID string) ([]ResultSummary, error) {
	raws, err := c.client.LRange(ctx, c.recentKey(quizID), 0, c.keep-1).Result()
	if err != nil {
		return nil, err
	}
	summaries := make([]ResultSummary, 0, len(raws))
	for _, raw := range raws {
		var s ResultSummary
		if err := json.Unmarshal([]byte(raw), &s); err != nil {
			continue
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}

func (c *ResultCache) recentKey(quizID string) string {
	return "quiz:" + quizID + ":recent"
}
