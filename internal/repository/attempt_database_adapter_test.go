package repository

import (
	"context"
	"database/sql/driver"
	"testing"
	"time"

	"wikiquiz/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttemptAdapter_CreateAttempt(t *testing.T) {
	db, mock := newMockDB(t)
	adapter := NewAttemptDatabaseAdapter(db)

	mock.ExpectQuery(`INSERT INTO quiz_attempts`).
		WithArgs(int64(42), "sess", 66.67, 2, 3, `["A) foo","x","C"]`, 95, sqlmockAnyTime{}).
		WillReturnRows(mock.NewRows([]string{"id"}).AddRow(int64(7)))

	created, err := adapter.CreateAttempt(context.Background(), &domain.QuizAttempt{
		QuizID:         42,
		UserSession:    "sess",
		Score:          66.67,
		CorrectAnswers: 2,
		TotalQuestions: 3,
		UserAnswers:    []string{"A) foo", "x", "C"},
		TimeTaken:      95,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(7), created.ID)
	assert.False(t, created.DateAttempted.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttemptAdapter_GetAttempts(t *testing.T) {
	db, mock := newMockDB(t)
	adapter := NewAttemptDatabaseAdapter(db)

	newer := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	older := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	rows := mock.NewRows([]string{"id", "quiz_id", "user_session", "score", "correct_answers", "total_questions", "user_answers", "time_taken", "date_attempted"}).
		AddRow(2, 42, "sess", 100.0, 3, 3, `["A","B","C"]`, 60, newer).
		AddRow(1, 42, "sess", 0.0, 0, 3, `[]`, 30, older)
	mock.ExpectQuery(`FROM quiz_attempts\s+WHERE quiz_id = \$1 AND user_session = \$2`).
		WithArgs(int64(42), "sess").
		WillReturnRows(rows)

	attempts, err := adapter.GetAttempts(context.Background(), 42, "sess")

	require.NoError(t, err)
	require.Len(t, attempts, 2)
	assert.Equal(t, int64(2), attempts[0].ID)
	assert.Equal(t, []string{"A", "B", "C"}, attempts[0].UserAnswers)
	assert.Equal(t, []string{}, attempts[1].UserAnswers)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttemptAdapter_GetAttempts_Empty(t *testing.T) {
	db, mock := newMockDB(t)
	adapter := NewAttemptDatabaseAdapter(db)

	mock.ExpectQuery(`FROM quiz_attempts`).
		WithArgs(int64(42), "other-session").
		WillReturnRows(mock.NewRows([]string{"id", "quiz_id", "user_session", "score", "correct_answers", "total_questions", "user_answers", "time_taken", "date_attempted"}))

	attempts, err := adapter.GetAttempts(context.Background(), 42, "other-session")

	require.NoError(t, err)
	assert.Empty(t, attempts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// sqlmockAnyTime matches any time.Time argument.
type sqlmockAnyTime struct{}

func (sqlmockAnyTime) Match(v driver.Value) bool {
	_, ok := v.(time.Time)
	return ok
}
