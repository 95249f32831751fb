package grading_test

import (
	"testing"

	"quiz-session-service/internal/domain"
	"quiz-session-service/internal/grading"
)

func TestMCQExactMatch(t *testing.T) {
	q := domain.MCQ{ID: "q1", Prompt: "pick one", Options: []string{"3", "4", "5", "6"}, Expected: "A"}
	sheet := domain.NewAnswerSheet()
	sheet.Set("q1", domain.ChoiceAnswer("A"))

	report := grading.Score([]domain.Question{q}, sheet)
	if report.CorrectCount != 1 || report.TotalItems != 1 {
		t.Fatalf("expected 1/1, got %d/%d", report.CorrectCount, report.TotalItems)
	}
	if report.Score != 10.0 {
		t.Fatalf("expected score 10.0, got %v", report.Score)
	}
}

func TestMCQWrongOrMissingScoresZero(t *testing.T) {
	q := domain.MCQ{ID: "q1", Expected: "A"}

	sheet := domain.NewAnswerSheet()
	sheet.Set("q1", domain.ChoiceAnswer("B"))
	if report := grading.Score([]domain.Question{q}, sheet); report.CorrectCount != 0 {
		t.Fatalf("wrong label should not score, got %d", report.CorrectCount)
	}

	empty := domain.NewAnswerSheet()
	if report := grading.Score([]domain.Question{q}, empty); report.CorrectCount != 0 {
		t.Fatalf("missing answer should not score, got %d", report.CorrectCount)
	}
}

func TestTrueFalseGroupNoPartialCredit(t *testing.T) {
	q := domain.TrueFalseGroup{
		ID:         "q1",
		MainPrompt: "about water:",
		Items: []domain.TrueFalseItem{
			{ID: "a", Statement: "s1", Expected: true},
			{ID: "b", Statement: "s2", Expected: true},
		},
	}
	sheet := domain.NewAnswerSheet()
	sheet.SetTruth("q1", "a", true)
	sheet.SetTruth("q1", "b", false)

	report := grading.Score([]domain.Question{q}, sheet)
	if report.CorrectCount != 0 {
		t.Fatalf("one wrong sub-item must zero the question, got %d", report.CorrectCount)
	}
	if report.Score != 0.0 {
		t.Fatalf("expected score 0.0, got %v", report.Score)
	}
}

func TestTrueFalseGroupAllCorrect(t *testing.T) {
	q := domain.TrueFalseGroup{
		ID: "q1",
		Items: []domain.TrueFalseItem{
			{ID: "a", Expected: true},
			{ID: "b", Expected: false},
		},
	}
	sheet := domain.NewAnswerSheet()
	sheet.SetTruth("q1", "a", true)
	sheet.SetTruth("q1", "b", false)

	if report := grading.Score([]domain.Question{q}, sheet); report.CorrectCount != 1 {
		t.Fatalf("expected correct, got %d", report.CorrectCount)
	}
}

func TestShortAnswerTrimsAndFoldsCase(t *testing.T) {
	q := domain.ShortAnswer{ID: "q1", Expected: "100"}
	sheet := domain.NewAnswerSheet()
	sheet.Set("q1", domain.TextAnswer(" 100 "))

	if report := grading.Score([]domain.Question{q}, sheet); report.CorrectCount != 1 {
		t.Fatalf("whitespace should be tolerated, got %d", report.CorrectCount)
	}

	q2 := domain.ShortAnswer{ID: "q2", Expected: "Hanoi"}
	sheet2 := domain.NewAnswerSheet()
	sheet2.Set("q2", domain.TextAnswer("hanoi"))
	if report := grading.Score([]domain.Question{q2}, sheet2); report.CorrectCount != 1 {
		t.Fatalf("case should be folded, got %d", report.CorrectCount)
	}
}

func TestMatchingRequiresAllPairsCommitted(t *testing.T) {
	q := domain.Matching{
		ID: "q1",
		Pairs: []domain.MatchPair{
			{Left: "Solid", Right: "Ice"},
			{Left: "Liquid", Right: "Rain"},
			{Left: "Gas", Right: "Steam"},
		},
	}
	sheet := domain.NewAnswerSheet()
	sheet.TapMatching("q1", "Solid", domain.MatchLeft)
	sheet.TapMatching("q1", "Ice", domain.MatchRight)
	sheet.TapMatching("q1", "Liquid", domain.MatchLeft)
	sheet.TapMatching("q1", "Rain", domain.MatchRight)

	// Two of three pairs committed, both correct: still zero.
	if report := grading.Score([]domain.Question{q}, sheet); report.CorrectCount != 0 {
		t.Fatalf("incomplete matching must not score, got %d", report.CorrectCount)
	}

	sheet.TapMatching("q1", "Gas", domain.MatchLeft)
	sheet.TapMatching("q1", "Steam", domain.MatchRight)
	if report := grading.Score([]domain.Question{q}, sheet); report.CorrectCount != 1 {
		t.Fatalf("complete correct matching should score, got %d", report.CorrectCount)
	}
}

func TestMatchingPendingSelectionNeverGraded(t *testing.T) {
	q := domain.Matching{
		ID:    "q1",
		Pairs: []domain.MatchPair{{Left: "Solid", Right: "Ice"}},
	}
	sheet := domain.NewAnswerSheet()
	sheet.TapMatching("q1", "Solid", domain.MatchLeft)
	sheet.TapMatching("q1", "Ice", domain.MatchRight)
	// A dangling left selection must not count as a committed pair.
	sheet.TapMatching("q1", "Solid", domain.MatchLeft)

	if report := grading.Score([]domain.Question{q}, sheet); report.CorrectCount != 1 {
		t.Fatalf("pending selection changed the grade, got %d", report.CorrectCount)
	}
}

func TestMultipleSelectSetEquality(t *testing.T) {
	q := domain.MultipleSelect{ID: "q1", Expected: []string{"A", "C"}}

	cases := []struct {
		name    string
		picked  []string
		correct bool
	}{
		{"exact", []string{"C", "A"}, true},
		{"subset", []string{"A"}, false},
		{"superset", []string{"A", "C", "B"}, false},
		{"disjoint", []string{"B", "D"}, false},
		{"empty", nil, false},
	}
	for _, tc := range cases {
		sheet := domain.NewAnswerSheet()
		if tc.picked != nil {
			sheet.Set("q1", domain.SelectionAnswer(tc.picked))
		}
		report := grading.Score([]domain.Question{q}, sheet)
		if got := report.CorrectCount == 1; got != tc.correct {
			t.Fatalf("%s: expected correct=%v, got %v", tc.name, tc.correct, got)
		}
	}
}

func TestFillBlankPositional(t *testing.T) {
	q := domain.FillBlank{
		ID:     "q1",
		Text:   "Clouds hold [vapor] and drop [rain].",
		Blanks: []string{"vapor", "rain"},
	}
	slots := q.BlankSlots()
	if len(slots) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(slots))
	}

	sheet := domain.NewAnswerSheet()
	sheet.SetBlank("q1", slots[0], "vapor")
	sheet.SetBlank("q1", slots[1], "rain")
	if report := grading.Score([]domain.Question{q}, sheet); report.CorrectCount != 1 {
		t.Fatalf("all blanks correct should score, got %d", report.CorrectCount)
	}

	// Swapped words fail positionally.
	swapped := domain.NewAnswerSheet()
	swapped.SetBlank("q1", slots[0], "rain")
	swapped.SetBlank("q1", slots[1], "vapor")
	if report := grading.Score([]domain.Question{q}, swapped); report.CorrectCount != 0 {
		t.Fatalf("swapped blanks must not score, got %d", report.CorrectCount)
	}
}

func TestFillBlankWithoutBlanksNeverCorrect(t *testing.T) {
	q := domain.FillBlank{ID: "q1", Text: "no blanks here"}
	sheet := domain.NewAnswerSheet()
	if report := grading.Score([]domain.Question{q}, sheet); report.CorrectCount != 0 {
		t.Fatalf("zero-blank template must never score, got %d", report.CorrectCount)
	}
}

func TestOrderingPositions(t *testing.T) {
	// Items shuffled by the author; CorrectOrder says items[1] is first,
	// items[2] second, items[0] third.
	q := domain.Ordering{
		ID:           "q1",
		Items:        []string{"Rain falls", "Water evaporates", "Clouds form"},
		CorrectOrder: []int{1, 2, 0},
	}

	sheet := domain.NewAnswerSheet()
	sheet.SetPosition("q1", 1, 1)
	sheet.SetPosition("q1", 2, 2)
	sheet.SetPosition("q1", 0, 3)
	if report := grading.Score([]domain.Question{q}, sheet); report.CorrectCount != 1 {
		t.Fatalf("correct ordering should score, got %d", report.CorrectCount)
	}

	wrong := domain.NewAnswerSheet()
	wrong.SetPosition("q1", 0, 1)
	wrong.SetPosition("q1", 1, 2)
	wrong.SetPosition("q1", 2, 3)
	if report := grading.Score([]domain.Question{q}, wrong); report.CorrectCount != 0 {
		t.Fatalf("wrong ordering must not score, got %d", report.CorrectCount)
	}
}

func TestImageChoiceGradesLikeMCQ(t *testing.T) {
	q := domain.ImageChoice{ID: "q1", Image: "img-7", Options: []string{"2", "3", "4"}, Expected: "C"}
	sheet := domain.NewAnswerSheet()
	sheet.Set("q1", domain.ChoiceAnswer("C"))
	if report := grading.Score([]domain.Question{q}, sheet); report.CorrectCount != 1 {
		t.Fatalf("expected correct, got %d", report.CorrectCount)
	}
}

func TestDropdownFillAllBlanksMustMatch(t *testing.T) {
	q := domain.DropdownFill{
		ID:   "q1",
		Text: "The capital is [1]; the population is about [2] million.",
		Blanks: []domain.DropdownBlank{
			{ID: "blank-1", Options: []string{"Hanoi", "Hue"}, Expected: "Hanoi"},
			{ID: "blank-2", Options: []string{"90", "100"}, Expected: "100"},
		},
	}
	sheet := domain.NewAnswerSheet()
	sheet.SetDropdown("q1", "blank-1", "Hanoi")
	sheet.SetDropdown("q1", "blank-2", "90")
	if report := grading.Score([]domain.Question{q}, sheet); report.CorrectCount != 0 {
		t.Fatalf("one wrong dropdown must zero the question, got %d", report.CorrectCount)
	}

	sheet.SetDropdown("q1", "blank-2", "100")
	if report := grading.Score([]domain.Question{q}, sheet); report.CorrectCount != 1 {
		t.Fatalf("expected correct, got %d", report.CorrectCount)
	}
}

func TestUnderlineGradesAsIndexSet(t *testing.T) {
	q := domain.Underline{
		ID:       "q1",
		Sentence: "The sun sets in the west",
		Words:    []string{"The sun", "sets", "in the west"},
		Expected: []int{1},
	}
	sheet := domain.NewAnswerSheet()
	sheet.Set("q1", domain.UnderlineAnswer{1})
	if report := grading.Score([]domain.Question{q}, sheet); report.CorrectCount != 1 {
		t.Fatalf("expected correct, got %d", report.CorrectCount)
	}

	extra := domain.NewAnswerSheet()
	extra.Set("q1", domain.UnderlineAnswer{0, 1})
	if report := grading.Score([]domain.Question{q}, extra); report.CorrectCount != 0 {
		t.Fatalf("extra marks must not score, got %d", report.CorrectCount)
	}
}

func TestEmptyQuizScoresZero(t *testing.T) {
	report := grading.Score(nil, domain.NewAnswerSheet())
	if report.Score != 0 || report.TotalItems != 0 {
		t.Fatalf("empty quiz should score 0, got %+v", report)
	}
}

func TestDegenerateExpectedDataNeverCorrect(t *testing.T) {
	questions := []domain.Question{
		domain.MCQ{ID: "q1"},
		domain.ShortAnswer{ID: "q2"},
		domain.TrueFalseGroup{ID: "q3"},
		domain.Matching{ID: "q4"},
		domain.MultipleSelect{ID: "q5"},
		domain.Ordering{ID: "q6"},
		domain.DropdownFill{ID: "q7"},
		domain.Underline{ID: "q8"},
	}
	sheet := domain.NewAnswerSheet()
	sheet.Set("q2", domain.TextAnswer(""))

	report := grading.Score(questions, sheet)
	if report.CorrectCount != 0 {
		t.Fatalf("questions without expected data must never score, got %d", report.CorrectCount)
	}
	if report.TotalItems != len(questions) {
		t.Fatalf("every question still counts toward the total, got %d", report.TotalItems)
	}
}

func TestScoreRoundsToOneDecimal(t *testing.T) {
	questions := []domain.Question{
		domain.MCQ{ID: "q1", Expected: "A"},
		domain.MCQ{ID: "q2", Expected: "A"},
		domain.MCQ{ID: "q3", Expected: "A"},
	}
	sheet := domain.NewAnswerSheet()
	sheet.Set("q1", domain.ChoiceAnswer("A"))

	report := grading.Score(questions, sheet)
	// 1/3 * 10 = 3.333... rounds to 3.3
	if report.Score != 3.3 {
		t.Fatalf("expected 3.3, got %v", report.Score)
	}

	sheet.Set("q2", domain.ChoiceAnswer("A"))
	report = grading.Score(questions, sheet)
	// 2/3 * 10 = 6.666... rounds to 6.7
	if report.Score != 6.7 {
		t.Fatalf("expected 6.7, got %v", report.Score)
	}
}

func TestOutcomesFollowQuestionOrder(t *testing.T) {
	questions := []domain.Question{
		domain.MCQ{ID: "q1", Expected: "A"},
		domain.MCQ{ID: "q2", Expected: "B"},
	}
	sheet := domain.NewAnswerSheet()
	sheet.Set("q2", domain.ChoiceAnswer("B"))

	report := grading.Score(questions, sheet)
	if len(report.Outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(report.Outcomes))
	}
	if report.Outcomes[0].QuestionID != "q1" || report.Outcomes[0].Correct {
		t.Fatalf("unexpected first outcome: %+v", report.Outcomes[0])
	}
	if report.Outcomes[1].QuestionID != "q2" || !report.Outcomes[1].Correct {
		t.Fatalf("unexpected second outcome: %+v", report.Outcomes[1])
	}
}
