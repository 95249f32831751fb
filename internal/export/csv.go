// Package export renders stored results as CSV for teachers' spreadsheets.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"quiz-session-service/internal/domain"
)

var header = []string{
	"result_id", "quiz_id", "quiz_title", "student_name", "student_class",
	"score", "correct_count", "total_questions", "time_taken_minutes", "submitted_at",
}

// WriteCSV streams results as CSV rows, one per submission.
func WriteCSV(w io.Writer, records []domain.ResultRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range records {
		row := []string{
			r.ID,
			r.QuizID,
			r.QuizTitle,
			r.StudentName,
			r.StudentClass,
			strconv.FormatFloat(r.Score, 'f', 1, 64),
			strconv.Itoa(r.CorrectCount),
			strconv.Itoa(r.TotalItems),
			strconv.Itoa(r.TimeTakenMinutes),
			r.SubmittedAt.Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
