// Package grading turns a question list and an answer sheet into a score
// report. Grading is pure and total: missing, partial, or mis-shaped answers
// grade as incorrect, never as an error.
package grading

import (
	"math"
	"strings"

	"quiz-session-service/internal/domain"
)

// Score grades every question against the sheet and aggregates the 0-10
// score. Each question contributes exactly one point to the total regardless
// of how many sub-items it carries.
func Score(questions []domain.Question, sheet *domain.AnswerSheet) domain.ScoreReport {
	report := domain.ScoreReport{
		TotalItems: len(questions),
		Outcomes:   make([]domain.QuestionOutcome, 0, len(questions)),
	}
	for _, q := range questions {
		correct := gradeOne(q, sheet)
		if correct {
			report.CorrectCount++
		}
		report.Outcomes = append(report.Outcomes, domain.QuestionOutcome{
			QuestionID: q.QuestionID(),
			Correct:    correct,
		})
	}
	if report.TotalItems > 0 {
		report.Score = round1(float64(report.CorrectCount) / float64(report.TotalItems) * 10)
	}
	return report
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

func gradeOne(q domain.Question, sheet *domain.AnswerSheet) bool {
	ans, _ := sheet.Get(q.QuestionID())

	switch q := q.(type) {
	case domain.MCQ:
		return gradeChoice(q.Expected, ans)
	case domain.ImageChoice:
		return gradeChoice(q.Expected, ans)
	case domain.ShortAnswer:
		if q.Expected == "" {
			return false
		}
		text, _ := ans.(domain.TextAnswer)
		return equalTrimmedFold(string(text), q.Expected)
	case domain.TrueFalseGroup:
		if len(q.Items) == 0 {
			return false
		}
		truth, _ := ans.(domain.TruthAnswer)
		for i, item := range q.Items {
			mark, ok := truth[q.ItemKey(i)]
			if !ok || mark != item.Expected {
				return false
			}
		}
		return true
	case domain.Matching:
		if len(q.Pairs) == 0 {
			return false
		}
		match, _ := ans.(*domain.MatchingAnswer)
		if match == nil || len(match.Committed) != len(q.Pairs) {
			return false
		}
		for _, pair := range q.Pairs {
			if match.Committed[pair.Left] != pair.Right {
				return false
			}
		}
		return true
	case domain.MultipleSelect:
		sel, _ := ans.(domain.SelectionAnswer)
		return equalSets(sel, q.Expected)
	case domain.Underline:
		sel, _ := ans.(domain.UnderlineAnswer)
		return equalSets(sel, q.Expected)
	case domain.FillBlank:
		slots := q.BlankSlots()
		if len(slots) == 0 {
			return false
		}
		blanks, _ := ans.(domain.BlankAnswer)
		for i, slot := range slots {
			if i >= len(q.Blanks) || blanks[slot] != q.Blanks[i] {
				return false
			}
		}
		return true
	case domain.DropdownFill:
		if len(q.Blanks) == 0 {
			return false
		}
		dd, _ := ans.(domain.DropdownAnswer)
		for _, blank := range q.Blanks {
			if dd[blank.ID] != blank.Expected {
				return false
			}
		}
		return true
	case domain.Ordering:
		if len(q.Items) == 0 || len(q.CorrectOrder) == 0 {
			return false
		}
		order, _ := ans.(domain.OrderAnswer)
		for pos, itemIndex := range q.CorrectOrder {
			if itemIndex < 0 || itemIndex >= len(q.Items) {
				return false
			}
			if order[itemIndex] != pos+1 {
				return false
			}
		}
		return true
	}
	return false
}

func gradeChoice(expected string, ans domain.Answer) bool {
	if expected == "" {
		return false
	}
	choice, _ := ans.(domain.ChoiceAnswer)
	return string(choice) == expected
}

func equalTrimmedFold(got, expected string) bool {
	return strings.EqualFold(strings.TrimSpace(got), strings.TrimSpace(expected))
}

// equalSets reports whether got and expected contain the same elements,
// order-irrelevant. Empty expected sets never match: an authoring gap grades
// as never correct.
func equalSets[T comparable](got, expected []T) bool {
	if len(expected) == 0 || len(got) != len(expected) {
		return false
	}
	want := make(map[T]struct{}, len(expected))
	for _, v := range expected {
		want[v] = struct{}{}
	}
	for _, v := range got {
		if _, ok := want[v]; !ok {
			return false
		}
	}
	return true
}
