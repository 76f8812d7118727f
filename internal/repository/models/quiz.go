package models

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// StringSlice stores a []string as a JSON document in a text column.
type StringSlice []string

// Value implements the driver.Valuer interface
func (s StringSlice) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	jsonData, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(jsonData), nil
}

// Scan implements the sql.Scanner interface
func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = StringSlice{}
		return nil
	}

	var bytesToParse []byte

	switch v := value.(type) {
	case []byte:
		bytesToParse = v
	case string:
		bytesToParse = []byte(v)
	default:
		return errors.New("StringSlice Scan: unsupported type " + fmt.Sprintf("%T", value))
	}

	if len(bytesToParse) == 0 || string(bytesToParse) == "null" {
		*s = StringSlice{}
		return nil
	}

	return json.Unmarshal(bytesToParse, s)
}

// Quiz is the database row for a generated quiz. FullQuizData holds the
// serialized QuizPayload document.
type Quiz struct {
	ID             int64          `db:"id"`
	URL            string         `db:"url"`
	Title          string         `db:"title"`
	DateGenerated  time.Time      `db:"date_generated"`
	ScrapedContent sql.NullString `db:"scraped_content"`
	FullQuizData   sql.NullString `db:"full_quiz_data"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

// QuizAttempt is the database row for one graded attempt.
type QuizAttempt struct {
	ID             int64       `db:"id"`
	QuizID         int64       `db:"quiz_id"`
	UserSession    string      `db:"user_session"`
	Score          float64     `db:"score"`
	CorrectAnswers int         `db:"correct_answers"`
	TotalQuestions int         `db:"total_questions"`
	UserAnswers    StringSlice `db:"user_answers"`
	TimeTaken      int         `db:"time_taken"`
	DateAttempted  time.Time   `db:"date_attempted"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}
