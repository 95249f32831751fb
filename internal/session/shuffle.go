package session

import (
	"math/rand"

	"quiz-session-service/internal/domain"
)

// shuffleOrder fixes the presentation order for a session: a Fisher-Yates
// permutation of the question ids. Grading always looks questions up by id,
// so the permutation never influences scoring.
func shuffleOrder(questions []domain.Question, rnd *rand.Rand) []string {
	order := make([]string, len(questions))
	for i, q := range questions {
		order[i] = q.QuestionID()
	}
	for i := len(order) - 1; i > 0; i-- {
		j := rnd.Intn(i + 1)
		order[i], order[j] = order[j], order[i]
	}
	return order
}
