package domain

import "errors"

var (
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrSessionNotFound is returned when no session exists for an id.
	ErrSessionNotFound = errors.New("session not found")
	// ErrQuestionNotFound indicates an answer referenced a question id that is
	// not part of the quiz.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrInvalidAccessCode is the retry-able rejection of a wrong access code.
	ErrInvalidAccessCode = errors.New("invalid access code")
	// ErrIdentityRequired rejects starting a session without name and class.
	ErrIdentityRequired = errors.New("student name and class are required")
	// ErrNotActive rejects answer and submit operations outside the active state.
	ErrNotActive = errors.New("session is not active")
	// ErrInvalidTransition rejects a gate operation in the wrong state.
	ErrInvalidTransition = errors.New("operation not allowed in current state")
	// ErrUnknownQuestionKind indicates stored quiz content with an
	// unrecognized question type tag.
	ErrUnknownQuestionKind = errors.New("unknown question kind")
)
