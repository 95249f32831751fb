package memory

import (
	"context"
	"sync"

	"quiz-session-service/internal/domain"
)

// ResultStore keeps submitted results in memory. It backs demo deployments
// and tests; production wiring uses the Postgres store instead.
type ResultStore struct {
	mu      sync.RWMutex
	results []domain.ResultRecord
}

func NewResultStore() *ResultStore {
	return &ResultStore{}
}

func (s *ResultStore) SaveResult(_ context.Context, record domain.ResultRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, record)
	return nil
}

// ListByQuiz returns the stored results for one quiz in submission order.
func (s *ResultStore) ListByQuiz(quizID string) []domain.ResultRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.ResultRecord
	for _, r := range s.results {
		if r.QuizID == quizID {
			out = append(out, r)
		}
	}
	return out
}

// All returns every stored result in submission order.
func (s *ResultStore) All() []domain.ResultRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.ResultRecord(nil), s.results...)
}
