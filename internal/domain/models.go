package domain

import (
	"encoding/json"
	"fmt"
	"regexp"
	"time"
)

// Kind discriminates the question variants in stored/transported JSON.
type Kind string

const (
	KindMCQ            Kind = "MCQ"
	KindTrueFalseGroup Kind = "TRUE_FALSE"
	KindShortAnswer    Kind = "SHORT_ANSWER"
	KindMatching       Kind = "MATCHING"
	KindMultipleSelect Kind = "MULTIPLE_SELECT"
	KindFillBlank      Kind = "FILL_BLANK"
	KindOrdering       Kind = "ORDERING"
	KindImageChoice    Kind = "IMAGE_CHOICE"
	KindDropdownFill   Kind = "DROPDOWN"
	KindUnderline      Kind = "UNDERLINE"
)

// Question is the closed set of question variants. The grading engine and the
// answer sheet switch exhaustively over the concrete types; adding a variant
// means touching both.
type Question interface {
	QuestionID() string
	Kind() Kind
	isQuestion()
}

// MCQ is a single-choice question; the expected answer is one option label ("A".."F").
type MCQ struct {
	ID       string   `json:"id"`
	Prompt   string   `json:"question"`
	Options  []string `json:"options"`
	Expected string   `json:"correctAnswer"`
	Image    string   `json:"image,omitempty"`
}

func (q MCQ) QuestionID() string { return q.ID }
func (q MCQ) Kind() Kind         { return KindMCQ }
func (MCQ) isQuestion()          {}

// TrueFalseItem is one statement inside a TrueFalseGroup.
type TrueFalseItem struct {
	ID        string `json:"id"`
	Statement string `json:"statement"`
	Expected  bool   `json:"isCorrect"`
}

// TrueFalseGroup asks true/false for each of several statements under a main
// prompt. The whole group contributes a single point and only when every
// statement is marked correctly.
type TrueFalseGroup struct {
	ID         string          `json:"id"`
	MainPrompt string          `json:"mainQuestion"`
	Items      []TrueFalseItem `json:"items"`
	Image      string          `json:"image,omitempty"`
}

func (q TrueFalseGroup) QuestionID() string { return q.ID }
func (q TrueFalseGroup) Kind() Kind         { return KindTrueFalseGroup }
func (TrueFalseGroup) isQuestion()          {}

// ItemKey returns the stable sub-answer key for the i-th statement. Authored
// items usually carry their own id; the index form covers legacy content.
func (q TrueFalseGroup) ItemKey(i int) string {
	if q.Items[i].ID != "" {
		return q.Items[i].ID
	}
	return fmt.Sprintf("item-%d", i)
}

// ShortAnswer expects a short free-text answer compared trimmed and
// case-insensitively.
type ShortAnswer struct {
	ID       string `json:"id"`
	Prompt   string `json:"question"`
	Expected string `json:"correctAnswer"`
	Image    string `json:"image,omitempty"`
}

func (q ShortAnswer) QuestionID() string { return q.ID }
func (q ShortAnswer) Kind() Kind         { return KindShortAnswer }
func (ShortAnswer) isQuestion()          {}

// MatchPair is one expected left/right association. Lefts are unique within a
// question; rights may repeat when the author wants a many-to-one mapping.
type MatchPair struct {
	Left  string `json:"left"`
	Right string `json:"right"`
}

// Matching asks the student to pair items from two columns.
type Matching struct {
	ID     string      `json:"id"`
	Prompt string      `json:"question"`
	Pairs  []MatchPair `json:"pairs"`
	Image  string      `json:"image,omitempty"`
}

func (q Matching) QuestionID() string { return q.ID }
func (q Matching) Kind() Kind         { return KindMatching }
func (Matching) isQuestion()          {}

// MultipleSelect expects every correct option label and nothing else.
type MultipleSelect struct {
	ID       string   `json:"id"`
	Prompt   string   `json:"question"`
	Options  []string `json:"options"`
	Expected []string `json:"correctAnswers"`
	Image    string   `json:"image,omitempty"`
}

func (q MultipleSelect) QuestionID() string { return q.ID }
func (q MultipleSelect) Kind() Kind         { return KindMultipleSelect }
func (MultipleSelect) isQuestion()          {}

var blankMarker = regexp.MustCompile(`\[[^\[\]]*\]`)

// FillBlank presents template text with bracketed blanks the student fills
// from a word bank. Blanks holds the expected word per blank in template
// order; Distractors are extra bank words that are never scored.
type FillBlank struct {
	ID          string   `json:"id"`
	Prompt      string   `json:"question"`
	Text        string   `json:"text"`
	Blanks      []string `json:"blanks"`
	Distractors []string `json:"distractors,omitempty"`
	Image       string   `json:"image,omitempty"`
}

func (q FillBlank) QuestionID() string { return q.ID }
func (q FillBlank) Kind() Kind         { return KindFillBlank }
func (FillBlank) isQuestion()          {}

// BlankSlots returns the slot keys for the template's blanks in order. A slot
// key is the index of the blank's fragment within the split template, which
// is how clients key their fills.
func (q FillBlank) BlankSlots() []int {
	parts := SplitOnBlanks(q.Text)
	var slots []int
	for i, part := range parts {
		if blankMarker.FindString(part) == part && part != "" {
			slots = append(slots, i)
		}
	}
	return slots
}

// SplitOnBlanks splits template text so that each bracketed blank becomes its
// own fragment, with prose fragments in between.
func SplitOnBlanks(text string) []string {
	var parts []string
	rest := text
	for {
		loc := blankMarker.FindStringIndex(rest)
		if loc == nil {
			parts = append(parts, rest)
			return parts
		}
		parts = append(parts, rest[:loc[0]], rest[loc[0]:loc[1]])
		rest = rest[loc[1]:]
	}
}

// Ordering presents pre-shuffled items; CorrectOrder[i] is the index in Items
// of the entry that belongs at position i+1.
type Ordering struct {
	ID           string   `json:"id"`
	Prompt       string   `json:"question"`
	Items        []string `json:"items"`
	CorrectOrder []int    `json:"correctOrder"`
	Image        string   `json:"image,omitempty"`
}

func (q Ordering) QuestionID() string { return q.ID }
func (q Ordering) Kind() Kind         { return KindOrdering }
func (Ordering) isQuestion()          {}

// ImageChoice is a single-choice question anchored on an illustration; it
// grades exactly like MCQ.
type ImageChoice struct {
	ID       string   `json:"id"`
	Prompt   string   `json:"question"`
	Image    string   `json:"image"`
	Options  []string `json:"options"`
	Expected string   `json:"correctAnswer"`
}

func (q ImageChoice) QuestionID() string { return q.ID }
func (q ImageChoice) Kind() Kind         { return KindImageChoice }
func (ImageChoice) isQuestion()          {}

// DropdownBlank is one dropdown in a DropdownFill template.
type DropdownBlank struct {
	ID       string   `json:"id"`
	Options  []string `json:"options"`
	Expected string   `json:"correctAnswer"`
}

// DropdownFill fills template blanks from per-blank dropdowns; it grades like
// FillBlank with selections keyed by blank id instead of slot position.
type DropdownFill struct {
	ID     string          `json:"id"`
	Prompt string          `json:"question"`
	Text   string          `json:"text"`
	Blanks []DropdownBlank `json:"blanks"`
	Image  string          `json:"image,omitempty"`
}

func (q DropdownFill) QuestionID() string { return q.ID }
func (q DropdownFill) Kind() Kind         { return KindDropdownFill }
func (DropdownFill) isQuestion()          {}

// Underline asks the student to mark words in a sentence; Expected holds the
// 0-based indexes of the words that must be marked. It grades like
// MultipleSelect over index sets.
type Underline struct {
	ID       string   `json:"id"`
	Prompt   string   `json:"question"`
	Sentence string   `json:"sentence"`
	Words    []string `json:"words"`
	Expected []int    `json:"correctWordIndexes"`
	Image    string   `json:"image,omitempty"`
}

func (q Underline) QuestionID() string { return q.ID }
func (q Underline) Kind() Kind         { return KindUnderline }
func (Underline) isQuestion()          {}

// QuestionList marshals questions with a type tag so quizzes survive JSONB
// storage and the wire.
type QuestionList []Question

func (l QuestionList) MarshalJSON() ([]byte, error) {
	out := make([]json.RawMessage, 0, len(l))
	for _, q := range l {
		raw, err := MarshalQuestion(q)
		if err != nil {
			return nil, err
		}
		out = append(out, raw)
	}
	return json.Marshal(out)
}

func (l *QuestionList) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}
	questions := make(QuestionList, 0, len(raws))
	for _, raw := range raws {
		q, err := UnmarshalQuestion(raw)
		if err != nil {
			return err
		}
		questions = append(questions, q)
	}
	*l = questions
	return nil
}

// MarshalQuestion encodes a question with its type tag injected.
func MarshalQuestion(q Question) ([]byte, error) {
	body, err := json.Marshal(q)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	tag, err := json.Marshal(q.Kind())
	if err != nil {
		return nil, err
	}
	fields["type"] = tag
	return json.Marshal(fields)
}

// UnmarshalQuestion decodes a tagged question object into its concrete variant.
func UnmarshalQuestion(data []byte) (Question, error) {
	var envelope struct {
		Type Kind `json:"type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, err
	}

	var q Question
	var err error
	switch envelope.Type {
	case KindMCQ:
		var v MCQ
		err = json.Unmarshal(data, &v)
		q = v
	case KindTrueFalseGroup:
		var v TrueFalseGroup
		err = json.Unmarshal(data, &v)
		q = v
	case KindShortAnswer:
		var v ShortAnswer
		err = json.Unmarshal(data, &v)
		q = v
	case KindMatching:
		var v Matching
		err = json.Unmarshal(data, &v)
		q = v
	case KindMultipleSelect:
		var v MultipleSelect
		err = json.Unmarshal(data, &v)
		q = v
	case KindFillBlank:
		var v FillBlank
		err = json.Unmarshal(data, &v)
		q = v
	case KindOrdering:
		var v Ordering
		err = json.Unmarshal(data, &v)
		q = v
	case KindImageChoice:
		var v ImageChoice
		err = json.Unmarshal(data, &v)
		q = v
	case KindDropdownFill:
		var v DropdownFill
		err = json.Unmarshal(data, &v)
		q = v
	case KindUnderline:
		var v Underline
		err = json.Unmarshal(data, &v)
		q = v
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownQuestionKind, envelope.Type)
	}
	if err != nil {
		return nil, err
	}
	return q, nil
}

// QuizDefinition is the immutable content of one quiz. The engine only reads
// it; authoring and storage live behind the QuizRepository.
type QuizDefinition struct {
	ID               string       `json:"id"`
	Title            string       `json:"title"`
	ClassLevel       string       `json:"classLevel"`
	TimeLimitMinutes int          `json:"timeLimit"`
	AccessCode       string       `json:"accessCode,omitempty"`
	RequireCode      bool         `json:"requireCode,omitempty"`
	Questions        QuestionList `json:"questions"`
	CreatedAt        time.Time    `json:"createdAt,omitempty"`
}

// QuestionByID locates a question by its stable id.
func (d QuizDefinition) QuestionByID(id string) (Question, bool) {
	for _, q := range d.Questions {
		if q.QuestionID() == id {
			return q, true
		}
	}
	return nil, false
}

// QuestionOutcome records whether one question was answered correctly.
type QuestionOutcome struct {
	QuestionID string `json:"questionId"`
	Correct    bool   `json:"correct"`
}

// ScoreReport is the immutable output of grading a completed session.
type ScoreReport struct {
	Score        float64           `json:"score"`
	CorrectCount int               `json:"correctCount"`
	TotalItems   int               `json:"totalItems"`
	Outcomes     []QuestionOutcome `json:"outcomes"`
}

// ResultRecord is the persisted record of one completed session: the score
// report plus session metadata and the raw answer snapshot for review.
type ResultRecord struct {
	ID               string            `json:"id"`
	QuizID           string            `json:"quizId"`
	QuizTitle        string            `json:"quizTitle"`
	StudentName      string            `json:"studentName"`
	StudentClass     string            `json:"studentClass"`
	Score            float64           `json:"score"`
	CorrectCount     int               `json:"correctCount"`
	TotalItems       int               `json:"totalQuestions"`
	Outcomes         []QuestionOutcome `json:"outcomes"`
	TimeTakenMinutes int               `json:"timeTaken"`
	SubmittedAt      time.Time         `json:"submittedAt"`
	Answers          AnswerSnapshot    `json:"answers"`
}
