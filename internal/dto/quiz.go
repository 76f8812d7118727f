package dto

import (
	"time"

	"wikiquiz/internal/domain"
)

// GenerateQuizRequest is the request body for generating a quiz from a URL
// @Description Request body for quiz generation
type GenerateQuizRequest struct {
	URL string `json:"url"`
}

// QuizResponse represents a quiz with its full payload in the API response
// @Description Quiz with generated content
type QuizResponse struct {
	ID            int64                 `json:"id"`
	URL           string                `json:"url"`
	Title         string                `json:"title"`
	Summary       string                `json:"summary"`
	KeyEntities   map[string][]string   `json:"key_entities"`
	Sections      []string              `json:"sections"`
	Quiz          []domain.QuizQuestion `json:"quiz"`
	RelatedTopics []string              `json:"related_topics"`
}

// NewQuizResponse flattens a quiz and its payload into the response shape.
func NewQuizResponse(quiz *domain.Quiz) *QuizResponse {
	return &QuizResponse{
		ID:            quiz.ID,
		URL:           quiz.URL,
		Title:         quiz.Title,
		Summary:       quiz.Payload.Summary,
		KeyEntities:   quiz.Payload.KeyEntities,
		Sections:      quiz.Payload.Sections,
		Quiz:          quiz.Payload.Quiz,
		RelatedTopics: quiz.Payload.RelatedTopics,
	}
}

// QuizHistoryItem represents one quiz in the listing
type QuizHistoryItem struct {
	ID            int64     `json:"id"`
	URL           string    `json:"url"`
	Title         string    `json:"title"`
	DateGenerated time.Time `json:"date_generated"`
	AttemptsCount int       `json:"attempts_count"`
}

// SubmitAttemptRequest is the request body for submitting quiz answers
// @Description Request body for attempt submission
type SubmitAttemptRequest struct {
	Answers   []string `json:"answers"`
	TimeTaken int      `json:"time_taken"`
}

// AttemptResponse represents a graded attempt in the API response
type AttemptResponse struct {
	ID             int64     `json:"id"`
	Score          float64   `json:"score"`
	CorrectAnswers int       `json:"correct_answers"`
	TotalQuestions int       `json:"total_questions"`
	TimeTaken      int       `json:"time_taken"`
	DateAttempted  time.Time `json:"date_attempted"`
	Answers        []string  `json:"answers"`
}

// NewAttemptResponse maps a stored attempt to the response shape.
func NewAttemptResponse(attempt *domain.QuizAttempt) *AttemptResponse {
	return &AttemptResponse{
		ID:             attempt.ID,
		Score:          attempt.Score,
		CorrectAnswers: attempt.CorrectAnswers,
		TotalQuestions: attempt.TotalQuestions,
		TimeTaken:      attempt.TimeTaken,
		DateAttempted:  attempt.DateAttempted,
		Answers:        attempt.UserAnswers,
	}
}

// HealthResponse reports service and dependency liveness
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Redis    string `json:"redis,omitempty"`
}

// ErrorResponse represents an error in the API response
type ErrorResponse struct {
	Error string `json:"error"`
}
