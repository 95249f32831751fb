package domain

// Answer is the closed set of variant-shaped answer values. Values are stored
// per question id in an AnswerSheet and consumed by the grading engine.
type Answer interface{ isAnswer() }

// ChoiceAnswer is the selected option label for MCQ and ImageChoice.
type ChoiceAnswer string

// TextAnswer is the free text entered for ShortAnswer.
type TextAnswer string

// SelectionAnswer is the set of selected option labels for MultipleSelect.
type SelectionAnswer []string

// UnderlineAnswer is the set of marked word indexes for Underline.
type UnderlineAnswer []int

// TruthAnswer maps a TrueFalseGroup item key to the student's true/false mark.
type TruthAnswer map[string]bool

// BlankAnswer maps a FillBlank slot key to the word placed there.
type BlankAnswer map[int]string

// DropdownAnswer maps a DropdownFill blank id to the chosen option.
type DropdownAnswer map[string]string

// OrderAnswer maps an Ordering item index to its assigned 1-based position.
type OrderAnswer map[int]int

// MatchingAnswer holds the committed left→right pairs separately from the
// transient left-column selection. Only Committed is ever graded or
// serialized; PendingLeft exists purely to drive the pairing interaction.
type MatchingAnswer struct {
	Committed   map[string]string `json:"pairs"`
	PendingLeft string            `json:"-"`
}

func (ChoiceAnswer) isAnswer()    {}
func (TextAnswer) isAnswer()      {}
func (SelectionAnswer) isAnswer() {}
func (UnderlineAnswer) isAnswer() {}
func (TruthAnswer) isAnswer()     {}
func (BlankAnswer) isAnswer()     {}
func (DropdownAnswer) isAnswer()  {}
func (OrderAnswer) isAnswer()     {}
func (*MatchingAnswer) isAnswer() {}

// MatchSide distinguishes which column a matching tap landed on.
type MatchSide string

const (
	MatchLeft  MatchSide = "left"
	MatchRight MatchSide = "right"
)

// AnswerSnapshot is the point-in-time copy of a sheet persisted with the
// result for audit and review rendering.
type AnswerSnapshot map[string]any

// AnswerSheet collects a student's answers for one session, keyed by question
// id. It is owned and mutated exclusively by the session while active.
type AnswerSheet struct {
	answers map[string]Answer
}

func NewAnswerSheet() *AnswerSheet {
	return &AnswerSheet{answers: make(map[string]Answer)}
}

// Set overwrites the answer for a single-valued question.
func (s *AnswerSheet) Set(questionID string, ans Answer) {
	s.answers[questionID] = ans
}

// Get returns the current answer for a question, if any.
func (s *AnswerSheet) Get(questionID string) (Answer, bool) {
	ans, ok := s.answers[questionID]
	return ans, ok
}

// SetTruth merges one statement's mark into a TrueFalseGroup answer.
func (s *AnswerSheet) SetTruth(questionID, itemKey string, value bool) {
	truth, _ := s.answers[questionID].(TruthAnswer)
	if truth == nil {
		truth = make(TruthAnswer)
		s.answers[questionID] = truth
	}
	truth[itemKey] = value
}

// SetBlank merges one slot's word into a FillBlank answer.
func (s *AnswerSheet) SetBlank(questionID string, slot int, word string) {
	blanks, _ := s.answers[questionID].(BlankAnswer)
	if blanks == nil {
		blanks = make(BlankAnswer)
		s.answers[questionID] = blanks
	}
	blanks[slot] = word
}

// SetDropdown merges one dropdown choice into a DropdownFill answer.
func (s *AnswerSheet) SetDropdown(questionID, blankID, option string) {
	dd, _ := s.answers[questionID].(DropdownAnswer)
	if dd == nil {
		dd = make(DropdownAnswer)
		s.answers[questionID] = dd
	}
	dd[blankID] = option
}

// SetPosition merges one item's assigned position into an Ordering answer.
func (s *AnswerSheet) SetPosition(questionID string, itemIndex, position int) {
	order, _ := s.answers[questionID].(OrderAnswer)
	if order == nil {
		order = make(OrderAnswer)
		s.answers[questionID] = order
	}
	order[itemIndex] = position
}

// TapMatching applies one tap of the two-step pairing interaction. Tapping a
// left item selects it (tapping it again deselects); tapping a right item
// while a left is selected commits the pair and clears the selection.
func (s *AnswerSheet) TapMatching(questionID, item string, side MatchSide) {
	match, _ := s.answers[questionID].(*MatchingAnswer)
	if match == nil {
		match = &MatchingAnswer{Committed: make(map[string]string)}
		s.answers[questionID] = match
	}
	switch side {
	case MatchLeft:
		if match.PendingLeft == item {
			match.PendingLeft = ""
		} else {
			match.PendingLeft = item
		}
	case MatchRight:
		if match.PendingLeft != "" {
			match.Committed[match.PendingLeft] = item
			match.PendingLeft = ""
		}
	}
}

// Answered reports whether a question counts as answered for progress
// display. This is deliberately looser than grading: it tracks interaction
// completeness, not correctness.
func (s *AnswerSheet) Answered(q Question) bool {
	switch q := q.(type) {
	case MCQ:
		choice, _ := s.answers[q.ID].(ChoiceAnswer)
		return choice != ""
	case ImageChoice:
		choice, _ := s.answers[q.ID].(ChoiceAnswer)
		return choice != ""
	case ShortAnswer:
		text, _ := s.answers[q.ID].(TextAnswer)
		return text != ""
	case TrueFalseGroup:
		truth, _ := s.answers[q.ID].(TruthAnswer)
		for i := range q.Items {
			if _, ok := truth[q.ItemKey(i)]; !ok {
				return false
			}
		}
		return true
	case Matching:
		committed := 0
		if match, _ := s.answers[q.ID].(*MatchingAnswer); match != nil {
			committed = len(match.Committed)
		}
		return committed == len(q.Pairs)
	case MultipleSelect:
		sel, _ := s.answers[q.ID].(SelectionAnswer)
		return len(sel) > 0
	case FillBlank:
		slots := q.BlankSlots()
		if len(slots) == 0 {
			return false
		}
		blanks, _ := s.answers[q.ID].(BlankAnswer)
		for _, slot := range slots {
			if _, ok := blanks[slot]; !ok {
				return false
			}
		}
		return true
	case DropdownFill:
		_, ok := s.answers[q.ID]
		return ok
	case Ordering:
		_, ok := s.answers[q.ID]
		return ok
	case Underline:
		_, ok := s.answers[q.ID]
		return ok
	default:
		_, ok := s.answers[q.QuestionID()]
		return ok
	}
}

// Snapshot deep-copies the sheet into the serializable form persisted with a
// result. The matching pending selection never leaves the sheet.
func (s *AnswerSheet) Snapshot() AnswerSnapshot {
	snap := make(AnswerSnapshot, len(s.answers))
	for id, ans := range s.answers {
		switch v := ans.(type) {
		case ChoiceAnswer, TextAnswer:
			snap[id] = v
		case SelectionAnswer:
			snap[id] = append(SelectionAnswer(nil), v...)
		case UnderlineAnswer:
			snap[id] = append(UnderlineAnswer(nil), v...)
		case TruthAnswer:
			snap[id] = copyMap(v)
		case BlankAnswer:
			snap[id] = copyMap(v)
		case DropdownAnswer:
			snap[id] = copyMap(v)
		case OrderAnswer:
			snap[id] = copyMap(v)
		case *MatchingAnswer:
			snap[id] = &MatchingAnswer{Committed: copyMap(v.Committed)}
		}
	}
	return snap
}

func copyMap[M ~map[K]V, K comparable, V any](m M) M {
	out := make(M, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
