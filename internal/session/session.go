// Package session implements the state machine that drives one student's
// attempt at one quiz: access-code gating, identity capture, the shuffled
// active phase with its countdown, and the exactly-once transition into a
// scored terminal state.
package session

import (
	"context"
	"log"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"quiz-session-service/internal/domain"
	"quiz-session-service/internal/grading"
)

// State enumerates the session lifecycle.
type State string

const (
	StateAwaitingCode       State = "AWAITING_CODE"
	StateCollectingIdentity State = "COLLECTING_IDENTITY"
	StateActive             State = "ACTIVE"
	StateFinished           State = "FINISHED"
	// StateAbandoned marks a session discarded through a confirmed leave. It
	// produces no result and exists so a torn-down session can never tick or
	// submit again.
	StateAbandoned State = "ABANDONED"
)

// ResultSink receives the completed result exactly once per finished session.
// Abandoned sessions never reach the sink.
type ResultSink interface {
	SaveResult(ctx context.Context, record domain.ResultRecord) error
}

// Hooks let the host react to terminal transitions. OnFinished fires after
// the sink call for both manual and timer-driven submits; OnExit fires on a
// confirmed leave.
type Hooks struct {
	OnFinished func(domain.ResultRecord)
	OnExit     func()
}

// Session is the mutable attempt state. All mutation is serialized through
// its mutex: the host's ticker and the client's events may race, and the
// state guard in finish paths is what keeps submission exactly-once.
type Session struct {
	id    string
	quiz  domain.QuizDefinition
	sink  ResultSink
	hooks Hooks
	now   func() time.Time
	rnd   *rand.Rand

	mu           sync.Mutex
	state        State
	studentName  string
	studentClass string
	order        []string
	sheet        *domain.AnswerSheet
	remaining    int
	startedAt    time.Time
	leavePending bool
	record       *domain.ResultRecord
	deactivated  chan struct{}
}

// New creates a session for one attempt at the given quiz.
func New(quiz domain.QuizDefinition, sink ResultSink, hooks Hooks) *Session {
	return NewWithClock(quiz, sink, hooks, time.Now, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewWithClock allows deterministic timestamps and shuffles in tests.
func NewWithClock(quiz domain.QuizDefinition, sink ResultSink, hooks Hooks, now func() time.Time, rnd *rand.Rand) *Session {
	state := StateCollectingIdentity
	if quiz.RequireCode {
		state = StateAwaitingCode
	}
	return &Session{
		id:          uuid.NewString(),
		quiz:        quiz,
		sink:        sink,
		hooks:       hooks,
		now:         now,
		rnd:         rnd,
		state:       state,
		sheet:       domain.NewAnswerSheet(),
		deactivated: make(chan struct{}),
	}
}

func (s *Session) ID() string { return s.id }

func (s *Session) Quiz() domain.QuizDefinition { return s.quiz }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// VerifyCode checks the entered access code case-insensitively. A wrong code
// leaves the session in place; retries are unlimited.
func (s *Session) VerifyCode(code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateAwaitingCode {
		return domain.ErrInvalidTransition
	}
	if !strings.EqualFold(code, s.quiz.AccessCode) {
		return domain.ErrInvalidAccessCode
	}
	s.state = StateCollectingIdentity
	return nil
}

// Start records the student's identity, fixes the presentation order, and
// activates the countdown.
func (s *Session) Start(name, class string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateCollectingIdentity {
		return domain.ErrInvalidTransition
	}
	if strings.TrimSpace(name) == "" || strings.TrimSpace(class) == "" {
		return domain.ErrIdentityRequired
	}
	s.studentName = name
	s.studentClass = class
	s.order = shuffleOrder(s.quiz.Questions, s.rnd)
	s.startedAt = s.now()
	s.remaining = s.quiz.TimeLimitMinutes * 60
	s.state = StateActive
	return nil
}

// Order returns the fixed presentation order of question ids.
func (s *Session) Order() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.order...)
}

// Remaining returns the countdown's remaining seconds.
func (s *Session) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remaining
}

// Deactivated is closed on every path out of the active state, so host
// tickers tear down deterministically whether the session finished or was
// abandoned.
func (s *Session) Deactivated() <-chan struct{} {
	return s.deactivated
}

// Tick advances the countdown by one second. Reaching zero triggers the
// automatic submit; the state guard makes it a no-op if a manual submit won
// the race. It reports whether the session is still active afterwards.
func (s *Session) Tick() bool {
	s.mu.Lock()
	if s.state != StateActive {
		s.mu.Unlock()
		return false
	}
	if s.remaining > 0 {
		s.remaining--
	}
	if s.remaining > 0 {
		s.mu.Unlock()
		return true
	}
	record := s.finishLocked()
	s.mu.Unlock()
	s.deliver(context.Background(), record)
	return false
}

// Submit grades the current sheet and finishes the session. A second call
// after the session finished is silently absorbed.
func (s *Session) Submit(ctx context.Context) error {
	s.mu.Lock()
	switch s.state {
	case StateActive:
	case StateFinished:
		s.mu.Unlock()
		return nil
	default:
		s.mu.Unlock()
		return domain.ErrNotActive
	}
	record := s.finishLocked()
	s.mu.Unlock()
	s.deliver(ctx, record)
	return nil
}

// finishLocked performs the single Active→Finished transition: it assembles
// the result record and stops the countdown. Callers must hold the mutex and
// have verified the state is Active.
func (s *Session) finishLocked() domain.ResultRecord {
	s.state = StateFinished
	s.leavePending = false
	close(s.deactivated)

	report := grading.Score(s.quiz.Questions, s.sheet)
	now := s.now()
	record := domain.ResultRecord{
		ID:               s.id,
		QuizID:           s.quiz.ID,
		QuizTitle:        s.quiz.Title,
		StudentName:      s.studentName,
		StudentClass:     s.studentClass,
		Score:            report.Score,
		CorrectCount:     report.CorrectCount,
		TotalItems:       report.TotalItems,
		Outcomes:         report.Outcomes,
		TimeTakenMinutes: int(math.Round(now.Sub(s.startedAt).Minutes())),
		SubmittedAt:      now,
		Answers:          s.sheet.Snapshot(),
	}
	s.record = &record
	return record
}

func (s *Session) deliver(ctx context.Context, record domain.ResultRecord) {
	if s.sink != nil {
		if err := s.sink.SaveResult(ctx, record); err != nil {
			log.Printf("save result %s: %v", record.ID, err)
		}
	}
	if s.hooks.OnFinished != nil {
		s.hooks.OnFinished(record)
	}
}

// Report returns the result record once the session has finished.
func (s *Session) Report() (domain.ResultRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.record == nil {
		return domain.ResultRecord{}, false
	}
	return *s.record, true
}

// LeaveIntent registers an attempt to navigate away while active. The host
// must follow up with ConfirmLeave or DeclineLeave.
func (s *Session) LeaveIntent() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive {
		return domain.ErrNotActive
	}
	s.leavePending = true
	return nil
}

// DeclineLeave cancels a pending leave; the session stays active and nothing
// else changes.
func (s *Session) DeclineLeave() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leavePending = false
}

// ConfirmLeave abandons an active session: the countdown stops, no result is
// produced, and the host's exit hook fires. Confirming after the timer
// already finished the session is a no-op.
func (s *Session) ConfirmLeave() {
	s.mu.Lock()
	if s.state != StateActive {
		s.mu.Unlock()
		return
	}
	s.state = StateAbandoned
	s.leavePending = false
	close(s.deactivated)
	s.mu.Unlock()
	if s.hooks.OnExit != nil {
		s.hooks.OnExit()
	}
}

// LeavePending reports whether a leave confirmation is outstanding.
func (s *Session) LeavePending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.leavePending
}

// SetAnswer overwrites the answer for a single-valued question. Answer
// mutation of any shape is legal only while the session is active.
func (s *Session) SetAnswer(questionID string, ans domain.Answer) error {
	return s.mutateSheet(questionID, func() {
		s.sheet.Set(questionID, ans)
	})
}

// SetTruth records one statement's mark for a TrueFalseGroup.
func (s *Session) SetTruth(questionID, itemKey string, value bool) error {
	return s.mutateSheet(questionID, func() {
		s.sheet.SetTruth(questionID, itemKey, value)
	})
}

// SetBlank records one slot's word for a FillBlank.
func (s *Session) SetBlank(questionID string, slot int, word string) error {
	return s.mutateSheet(questionID, func() {
		s.sheet.SetBlank(questionID, slot, word)
	})
}

// SetDropdown records one dropdown choice for a DropdownFill.
func (s *Session) SetDropdown(questionID, blankID, option string) error {
	return s.mutateSheet(questionID, func() {
		s.sheet.SetDropdown(questionID, blankID, option)
	})
}

// SetPosition records one item's assigned position for an Ordering question.
func (s *Session) SetPosition(questionID string, itemIndex, position int) error {
	return s.mutateSheet(questionID, func() {
		s.sheet.SetPosition(questionID, itemIndex, position)
	})
}

// TapMatching applies one tap of the matching interaction.
func (s *Session) TapMatching(questionID, item string, side domain.MatchSide) error {
	return s.mutateSheet(questionID, func() {
		s.sheet.TapMatching(questionID, item, side)
	})
}

func (s *Session) mutateSheet(questionID string, apply func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive {
		return domain.ErrNotActive
	}
	if _, ok := s.quiz.QuestionByID(questionID); !ok {
		return domain.ErrQuestionNotFound
	}
	apply()
	return nil
}

// Progress reports the answered state of every question for the progress
// sidebar. It never influences grading.
func (s *Session) Progress() map[string]bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	progress := make(map[string]bool, len(s.quiz.Questions))
	for _, q := range s.quiz.Questions {
		progress[q.QuestionID()] = s.sheet.Answered(q)
	}
	return progress
}
