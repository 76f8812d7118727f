package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"wikiquiz/internal/domain"
	"wikiquiz/internal/repository/models"
	"wikiquiz/internal/util"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
)

const quizColumns = `id, url, title, date_generated, scraped_content, full_quiz_data`

// QuizDatabaseAdapter implements domain.QuizRepository using sqlx over Postgres.
type QuizDatabaseAdapter struct {
	db *sqlx.DB
}

// NewQuizDatabaseAdapter creates a new instance of QuizDatabaseAdapter
func NewQuizDatabaseAdapter(db *sqlx.DB) domain.QuizRepository {
	return &QuizDatabaseAdapter{db: db}
}

func toDomainQuiz(modelQuiz *models.Quiz) (*domain.Quiz, error) {
	if modelQuiz == nil {
		return nil, nil
	}

	payload := &domain.QuizPayload{}
	if modelQuiz.FullQuizData.Valid && modelQuiz.FullQuizData.String != "" {
		if err := json.Unmarshal([]byte(modelQuiz.FullQuizData.String), payload); err != nil {
			return nil, fmt.Errorf("failed to unmarshal quiz payload for quiz %d: %w", modelQuiz.ID, err)
		}
	}
	payload.Normalize()

	return &domain.Quiz{
		ID:             modelQuiz.ID,
		URL:            modelQuiz.URL,
		Title:          modelQuiz.Title,
		DateGenerated:  modelQuiz.DateGenerated,
		ScrapedContent: modelQuiz.ScrapedContent.String,
		Payload:        payload,
	}, nil
}

// GetByURL implements domain.QuizRepository. Returns (nil, nil) when no
// quiz exists for the URL.
func (a *QuizDatabaseAdapter) GetByURL(ctx context.Context, url string) (*domain.Quiz, error) {
	var modelQuiz models.Quiz
	query := fmt.Sprintf(`SELECT %s FROM quizzes WHERE url = $1`, quizColumns)

	err := a.db.GetContext(ctx, &modelQuiz, query, url)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get quiz by URL %s: %w", url, err)
	}
	return toDomainQuiz(&modelQuiz)
}

// GetByID implements domain.QuizRepository.
func (a *QuizDatabaseAdapter) GetByID(ctx context.Context, id int64) (*domain.Quiz, error) {
	var modelQuiz models.Quiz
	query := fmt.Sprintf(`SELECT %s FROM quizzes WHERE id = $1`, quizColumns)

	err := a.db.GetContext(ctx, &modelQuiz, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get quiz by ID %d: %w", id, err)
	}
	return toDomainQuiz(&modelQuiz)
}

// Save implements domain.QuizRepository. The quizzes.url column carries a
// unique constraint; losing the insert race is not an error, the winner's
// row is fetched and returned instead.
func (a *QuizDatabaseAdapter) Save(ctx context.Context, quiz *domain.Quiz) (*domain.Quiz, error) {
	if quiz == nil {
		return nil, fmt.Errorf("cannot save nil quiz")
	}

	payloadJSON, err := json.Marshal(quiz.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal quiz payload: %w", err)
	}

	dateGenerated := quiz.DateGenerated
	if dateGenerated.IsZero() {
		dateGenerated = time.Now().UTC()
	}

	query := `INSERT INTO quizzes (url, title, date_generated, scraped_content, full_quiz_data)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING id`

	var id int64
	err = a.db.QueryRowxContext(ctx, query,
		quiz.URL,
		quiz.Title,
		dateGenerated,
		util.StringToNullString(quiz.ScrapedContent),
		string(payloadJSON),
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			existing, fetchErr := a.GetByURL(ctx, quiz.URL)
			if fetchErr != nil {
				return nil, fetchErr
			}
			if existing != nil {
				return existing, nil
			}
		}
		return nil, fmt.Errorf("failed to save quiz: %w", err)
	}

	saved := *quiz
	saved.ID = id
	saved.DateGenerated = dateGenerated
	return &saved, nil
}

// List implements domain.QuizRepository, newest first with attempt counts.
func (a *QuizDatabaseAdapter) List(ctx context.Context) ([]domain.QuizSummary, error) {
	query := `SELECT q.id, q.url, q.title, q.date_generated, COUNT(a.id) AS attempts_count
	          FROM quizzes q
	          LEFT JOIN quiz_attempts a ON a.quiz_id = q.id
	          GROUP BY q.id, q.url, q.title, q.date_generated
	          ORDER BY q.date_generated DESC`

	rows, err := a.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list quizzes: %w", err)
	}
	defer rows.Close()

	summaries := []domain.QuizSummary{}
	for rows.Next() {
		var s domain.QuizSummary
		if err := rows.Scan(&s.ID, &s.URL, &s.Title, &s.DateGenerated, &s.AttemptsCount); err != nil {
			return nil, fmt.Errorf("failed to scan quiz summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate quiz summaries: %w", err)
	}
	return summaries, nil
}
