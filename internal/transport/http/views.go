package http

import (
	"sort"
	"strings"

	"quiz-session-service/internal/domain"
)

// QuestionView is the student-facing shape of a question: everything needed
// to render and answer it, with every expected-answer field stripped. Only
// the fields for the question's variant are populated.
type QuestionView struct {
	ID     string      `json:"id"`
	Type   domain.Kind `json:"type"`
	Prompt string      `json:"question"`
	Image  string      `json:"image,omitempty"`

	Options []string `json:"options,omitempty"`

	Statements []StatementView `json:"statements,omitempty"`

	Lefts  []string `json:"lefts,omitempty"`
	Rights []string `json:"rights,omitempty"`

	Text     string         `json:"text,omitempty"`
	Slots    []int          `json:"slots,omitempty"`
	WordBank []string       `json:"wordBank,omitempty"`
	Blanks   []DropdownView `json:"dropdownBlanks,omitempty"`

	Items []string `json:"items,omitempty"`

	Sentence string   `json:"sentence,omitempty"`
	Words    []string `json:"words,omitempty"`
}

// StatementView is one TrueFalseGroup statement with its sub-answer key.
type StatementView struct {
	Key       string `json:"key"`
	Statement string `json:"statement"`
}

// DropdownView is one DropdownFill blank with its selectable options.
type DropdownView struct {
	ID      string   `json:"id"`
	Options []string `json:"options"`
}

// buildViews renders the quiz's questions in presentation order.
func buildViews(quiz domain.QuizDefinition, order []string) []QuestionView {
	views := make([]QuestionView, 0, len(order))
	for _, id := range order {
		q, ok := quiz.QuestionByID(id)
		if !ok {
			continue
		}
		views = append(views, buildView(q))
	}
	return views
}

func buildView(q domain.Question) QuestionView {
	switch q := q.(type) {
	case domain.MCQ:
		return QuestionView{ID: q.ID, Type: q.Kind(), Prompt: q.Prompt, Image: q.Image, Options: append([]string(nil), q.Options...)}
	case domain.ImageChoice:
		return QuestionView{ID: q.ID, Type: q.Kind(), Prompt: q.Prompt, Image: q.Image, Options: append([]string(nil), q.Options...)}
	case domain.MultipleSelect:
		return QuestionView{ID: q.ID, Type: q.Kind(), Prompt: q.Prompt, Image: q.Image, Options: append([]string(nil), q.Options...)}
	case domain.ShortAnswer:
		return QuestionView{ID: q.ID, Type: q.Kind(), Prompt: q.Prompt, Image: q.Image}
	case domain.TrueFalseGroup:
		statements := make([]StatementView, len(q.Items))
		for i, item := range q.Items {
			statements[i] = StatementView{Key: q.ItemKey(i), Statement: item.Statement}
		}
		return QuestionView{ID: q.ID, Type: q.Kind(), Prompt: q.MainPrompt, Image: q.Image, Statements: statements}
	case domain.Matching:
		lefts := make([]string, len(q.Pairs))
		rights := make([]string, len(q.Pairs))
		for i, pair := range q.Pairs {
			lefts[i] = pair.Left
			rights[i] = pair.Right
		}
		// Sorting the right column breaks the positional alignment with the
		// left column so the view doesn't give the pairing away.
		sort.Strings(rights)
		return QuestionView{ID: q.ID, Type: q.Kind(), Prompt: q.Prompt, Image: q.Image, Lefts: lefts, Rights: rights}
	case domain.FillBlank:
		bank := append(append([]string(nil), q.Blanks...), q.Distractors...)
		sort.Strings(bank)
		return QuestionView{
			ID:       q.ID,
			Type:     q.Kind(),
			Prompt:   q.Prompt,
			Image:    q.Image,
			Text:     maskBlanks(q.Text),
			Slots:    q.BlankSlots(),
			WordBank: bank,
		}
	case domain.DropdownFill:
		blanks := make([]DropdownView, len(q.Blanks))
		for i, blank := range q.Blanks {
			blanks[i] = DropdownView{ID: blank.ID, Options: append([]string(nil), blank.Options...)}
		}
		return QuestionView{ID: q.ID, Type: q.Kind(), Prompt: q.Prompt, Image: q.Image, Text: q.Text, Blanks: blanks}
	case domain.Ordering:
		return QuestionView{ID: q.ID, Type: q.Kind(), Prompt: q.Prompt, Image: q.Image, Items: append([]string(nil), q.Items...)}
	case domain.Underline:
		return QuestionView{ID: q.ID, Type: q.Kind(), Prompt: q.Prompt, Image: q.Image, Sentence: q.Sentence, Words: append([]string(nil), q.Words...)}
	}
	return QuestionView{ID: q.QuestionID(), Type: q.Kind()}
}

// maskBlanks replaces each bracketed expected word with an empty marker; the
// template's correct words never reach the client.
func maskBlanks(text string) string {
	parts := domain.SplitOnBlanks(text)
	masked := make([]string, len(parts))
	for i, part := range parts {
		if strings.HasPrefix(part, "[") && strings.HasSuffix(part, "]") && len(part) >= 2 {
			masked[i] = "[___]"
		} else {
			masked[i] = part
		}
	}
	return strings.Join(masked, "")
}
