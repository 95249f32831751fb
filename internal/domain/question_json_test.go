package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestQuestionListRoundTrip(t *testing.T) {
	original := QuestionList{
		MCQ{ID: "q1", Prompt: "pick", Options: []string{"a", "b"}, Expected: "A"},
		TrueFalseGroup{ID: "q2", MainPrompt: "judge", Items: []TrueFalseItem{
			{ID: "q2-a", Statement: "s", Expected: true},
		}},
		ShortAnswer{ID: "q3", Prompt: "write", Expected: "0"},
		Matching{ID: "q4", Pairs: []MatchPair{{Left: "l", Right: "r"}}},
		MultipleSelect{ID: "q5", Options: []string{"a", "b"}, Expected: []string{"A"}},
		FillBlank{ID: "q6", Text: "a [b] c", Blanks: []string{"b"}},
		Ordering{ID: "q7", Items: []string{"x", "y"}, CorrectOrder: []int{1, 0}},
		ImageChoice{ID: "q8", Image: "img", Options: []string{"a"}, Expected: "A"},
		DropdownFill{ID: "q9", Text: "pick [1]", Blanks: []DropdownBlank{
			{ID: "blank-1", Options: []string{"a", "b"}, Expected: "a"},
		}},
		Underline{ID: "q10", Sentence: "a b c", Words: []string{"a", "b", "c"}, Expected: []int{2}},
	}

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded QuestionList
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(decoded) != len(original) {
		t.Fatalf("expected %d questions, got %d", len(original), len(decoded))
	}
	for i := range original {
		if decoded[i].Kind() != original[i].Kind() {
			t.Fatalf("question %d: kind %q became %q", i, original[i].Kind(), decoded[i].Kind())
		}
		if decoded[i].QuestionID() != original[i].QuestionID() {
			t.Fatalf("question %d: id %q became %q", i, original[i].QuestionID(), decoded[i].QuestionID())
		}
	}

	mcq, ok := decoded[0].(MCQ)
	if !ok {
		t.Fatalf("expected MCQ, got %T", decoded[0])
	}
	if mcq.Expected != "A" || len(mcq.Options) != 2 {
		t.Fatalf("MCQ fields lost in round trip: %+v", mcq)
	}
}

func TestMarshalQuestionInjectsTypeTag(t *testing.T) {
	data, err := MarshalQuestion(ShortAnswer{ID: "q1", Expected: "x"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"type":"SHORT_ANSWER"`) {
		t.Fatalf("type tag missing: %s", data)
	}
}

func TestUnmarshalQuestionRejectsUnknownKind(t *testing.T) {
	_, err := UnmarshalQuestion([]byte(`{"type":"ESSAY","id":"q1"}`))
	if !errors.Is(err, ErrUnknownQuestionKind) {
		t.Fatalf("expected ErrUnknownQuestionKind, got %v", err)
	}
}

func TestSplitOnBlanksKeepsFragmentIndexes(t *testing.T) {
	parts := SplitOnBlanks("[a] and [b]")
	want := []string{"", "[a]", " and ", "[b]", ""}
	if len(parts) != len(want) {
		t.Fatalf("expected %d parts, got %d: %q", len(want), len(parts), parts)
	}
	for i := range want {
		if parts[i] != want[i] {
			t.Fatalf("part %d: expected %q, got %q", i, want[i], parts[i])
		}
	}
}

func TestBlankSlotsMatchSplitIndexes(t *testing.T) {
	q := FillBlank{Text: "Clouds hold [vapor] and drop [rain].", Blanks: []string{"vapor", "rain"}}
	slots := q.BlankSlots()
	if len(slots) != 2 {
		t.Fatalf("expected 2 slots, got %v", slots)
	}
	parts := SplitOnBlanks(q.Text)
	if parts[slots[0]] != "[vapor]" || parts[slots[1]] != "[rain]" {
		t.Fatalf("slots point at wrong fragments: %v in %q", slots, parts)
	}
}

func TestTrueFalseGroupItemKeyFallsBackToIndex(t *testing.T) {
	q := TrueFalseGroup{Items: []TrueFalseItem{{Statement: "no id"}, {ID: "real", Statement: "has id"}}}
	if key := q.ItemKey(0); key != "item-0" {
		t.Fatalf("expected item-0, got %q", key)
	}
	if key := q.ItemKey(1); key != "real" {
		t.Fatalf("expected real, got %q", key)
	}
}

func TestQuestionByID(t *testing.T) {
	quiz := QuizDefinition{Questions: QuestionList{
		MCQ{ID: "q1"},
		ShortAnswer{ID: "q2"},
	}}
	if q, ok := quiz.QuestionByID("q2"); !ok || q.QuestionID() != "q2" {
		t.Fatalf("expected q2, got %v %v", q, ok)
	}
	if _, ok := quiz.QuestionByID("missing"); ok {
		t.Fatal("expected lookup miss")
	}
}
