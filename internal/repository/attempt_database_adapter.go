package repository

import (
	"context"
	"fmt"
	"time"

	"wikiquiz/internal/domain"
	"wikiquiz/internal/repository/models"

	"github.com/jmoiron/sqlx"
)

// AttemptDatabaseAdapter implements domain.AttemptRepository using sqlx.
type AttemptDatabaseAdapter struct {
	db *sqlx.DB
}

// NewAttemptDatabaseAdapter creates a new instance of AttemptDatabaseAdapter
func NewAttemptDatabaseAdapter(db *sqlx.DB) domain.AttemptRepository {
	return &AttemptDatabaseAdapter{db: db}
}

func toDomainAttempt(modelAttempt *models.QuizAttempt) *domain.QuizAttempt {
	if modelAttempt == nil {
		return nil
	}
	userAnswers := []string(modelAttempt.UserAnswers)
	if userAnswers == nil {
		userAnswers = []string{}
	}
	return &domain.QuizAttempt{
		ID:             modelAttempt.ID,
		QuizID:         modelAttempt.QuizID,
		UserSession:    modelAttempt.UserSession,
		Score:          modelAttempt.Score,
		CorrectAnswers: modelAttempt.CorrectAnswers,
		TotalQuestions: modelAttempt.TotalQuestions,
		UserAnswers:    userAnswers,
		TimeTaken:      modelAttempt.TimeTaken,
		DateAttempted:  modelAttempt.DateAttempted,
	}
}

// CreateAttempt inserts one immutable attempt row and returns it with its
// generated id.
func (r *AttemptDatabaseAdapter) CreateAttempt(ctx context.Context, attempt *domain.QuizAttempt) (*domain.QuizAttempt, error) {
	if attempt == nil {
		return nil, fmt.Errorf("cannot create nil attempt")
	}

	dateAttempted := attempt.DateAttempted
	if dateAttempted.IsZero() {
		dateAttempted = time.Now().UTC()
	}

	query := `INSERT INTO quiz_attempts (quiz_id, user_session, score, correct_answers, total_questions, user_answers, time_taken, date_attempted)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING id`

	var id int64
	err := r.db.QueryRowxContext(ctx, query,
		attempt.QuizID,
		attempt.UserSession,
		attempt.Score,
		attempt.CorrectAnswers,
		attempt.TotalQuestions,
		models.StringSlice(attempt.UserAnswers),
		attempt.TimeTaken,
		dateAttempted,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to create quiz attempt: %w", err)
	}

	created := *attempt
	created.ID = id
	created.DateAttempted = dateAttempted
	return &created, nil
}

// GetAttempts returns attempts for one (quiz, session) pair, newest first.
// Session scoping happens here: rows belonging to other sessions are never
// selected.
func (r *AttemptDatabaseAdapter) GetAttempts(ctx context.Context, quizID int64, userSession string) ([]domain.QuizAttempt, error) {
	query := `SELECT id, quiz_id, user_session, score, correct_answers, total_questions, user_answers, time_taken, date_attempted
	          FROM quiz_attempts
	          WHERE quiz_id = $1 AND user_session = $2
	          ORDER BY date_attempted DESC`

	var modelAttempts []models.QuizAttempt
	if err := r.db.SelectContext(ctx, &modelAttempts, query, quizID, userSession); err != nil {
		return nil, fmt.Errorf("failed to get attempts for quiz %d: %w", quizID, err)
	}

	attempts := make([]domain.QuizAttempt, 0, len(modelAttempts))
	for i := range modelAttempts {
		attempts = append(attempts, *toDomainAttempt(&modelAttempts[i]))
	}
	return attempts, nil
}
