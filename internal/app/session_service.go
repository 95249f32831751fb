package app

import (
	"context"

	"quiz-session-service/internal/domain"
	"quiz-session-service/internal/session"
)

// QuizRepository loads immutable quiz definitions (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.QuizDefinition, error)
}

// SessionRegistry tracks live sessions by id so hosts can find and dispose
// them (in-memory for a single instance; swappable for a shared store).
type SessionRegistry interface {
	Add(s *session.Session)
	Get(id string) (*session.Session, bool)
	Remove(id string)
}

// SessionService creates and tracks quiz-taking sessions. Once a session is
// handed out, the host drives it directly; the service owns only the
// surrounding wiring (quiz lookup, result sink, registry lifecycle).
type SessionService struct {
	quizzes  QuizRepository
	results  session.ResultSink
	registry SessionRegistry
}

func NewSessionService(quizzes QuizRepository, results session.ResultSink, registry SessionRegistry) *SessionService {
	return &SessionService{quizzes: quizzes, results: results, registry: registry}
}

// Begin loads the quiz and creates a session for one attempt. The session
// starts in the access-code gate when the quiz requires one, otherwise in
// identity collection.
func (s *SessionService) Begin(ctx context.Context, quizID string, hooks session.Hooks) (*session.Session, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	sess := session.New(quiz, s.results, hooks)
	s.registry.Add(sess)
	return sess, nil
}

// Lookup finds a live session by id.
func (s *SessionService) Lookup(id string) (*session.Session, error) {
	sess, ok := s.registry.Get(id)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return sess, nil
}

// End drops a session from the registry. Hosts call it when the attempt's
// connection goes away; the session itself is discarded with it.
func (s *SessionService) End(id string) {
	s.registry.Remove(id)
}
