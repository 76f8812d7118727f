package domain

import (
	"context"
	"time"
)

// QuizQuestion is a single multiple-choice question. Options carry their
// letter label in the text ("A) ..."). Answer is either a bare letter in
// A-D or the full option text; both conventions occur and the scorer must
// handle them at grading time.
type QuizQuestion struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Answer      string   `json:"answer"`
	Difficulty  string   `json:"difficulty"`
	Explanation string   `json:"explanation"`
}

// QuizPayload is the structured output of quiz generation. It is persisted
// as a single serialized document on the Quiz row, not as normalized rows.
type QuizPayload struct {
	Summary       string              `json:"summary"`
	KeyEntities   map[string][]string `json:"key_entities"`
	Sections      []string            `json:"sections"`
	Quiz          []QuizQuestion      `json:"quiz"`
	RelatedTopics []string            `json:"related_topics"`
}

// Validate checks the payload against the expected shape. A mismatch is a
// ParseFailure, never a partial result.
func (p *QuizPayload) Validate() error {
	if p.Summary == "" {
		return NewParseFailureError("quiz payload is missing summary", nil)
	}
	for _, q := range p.Quiz {
		if q.Question == "" {
			return NewParseFailureError("quiz question is missing question text", nil)
		}
		if len(q.Options) == 0 {
			return NewParseFailureError("quiz question has no options", nil)
		}
		if q.Answer == "" {
			return NewParseFailureError("quiz question is missing answer", nil)
		}
		if q.Difficulty == "" {
			return NewParseFailureError("quiz question is missing difficulty", nil)
		}
		if q.Explanation == "" {
			return NewParseFailureError("quiz question is missing explanation", nil)
		}
	}
	return nil
}

// Normalize replaces nil containers with empty ones so serialized payloads
// are stable regardless of what the LLM omitted.
func (p *QuizPayload) Normalize() {
	if p.KeyEntities == nil {
		p.KeyEntities = map[string][]string{}
	}
	if p.Sections == nil {
		p.Sections = []string{}
	}
	if p.Quiz == nil {
		p.Quiz = []QuizQuestion{}
	}
	if p.RelatedTopics == nil {
		p.RelatedTopics = []string{}
	}
}

// Quiz is a persisted quiz generated from one Wikipedia article. Rows are
// write-once; there is no update path.
type Quiz struct {
	ID             int64
	URL            string
	Title          string
	DateGenerated  time.Time
	ScrapedContent string
	Payload        *QuizPayload
}

// QuizSummary is the listing projection of a Quiz.
type QuizSummary struct {
	ID            int64
	URL           string
	Title         string
	DateGenerated time.Time
	AttemptsCount int
}

// QuizAttempt is one graded submission of answers against a Quiz. Attempts
// are immutable after creation and scoped by an opaque user session.
type QuizAttempt struct {
	ID             int64
	QuizID         int64
	UserSession    string
	Score          float64
	CorrectAnswers int
	TotalQuestions int
	UserAnswers    []string
	TimeTaken      int
	DateAttempted  time.Time
}

// ScoreResult is the outcome of grading one answer set.
type ScoreResult struct {
	Score          float64
	CorrectAnswers int
	TotalQuestions int
}

// QuizRepository defines the persistence port for quizzes. GetByURL and
// GetByID return (nil, nil) when no row exists.
type QuizRepository interface {
	GetByURL(ctx context.Context, url string) (*Quiz, error)
	GetByID(ctx context.Context, id int64) (*Quiz, error)
	// Save inserts a write-once quiz row. When a concurrent request already
	// inserted a row for the same URL, Save returns that existing row.
	Save(ctx context.Context, quiz *Quiz) (*Quiz, error)
	List(ctx context.Context) ([]QuizSummary, error)
}

// AttemptRepository defines the persistence port for quiz attempts.
type AttemptRepository interface {
	CreateAttempt(ctx context.Context, attempt *QuizAttempt) (*QuizAttempt, error)
	// GetAttempts returns the attempts for one (quiz, session) pair, newest first.
	GetAttempts(ctx context.Context, quizID int64, userSession string) ([]QuizAttempt, error)
}

// ArticleFetcher is the scraping boundary: given a Wikipedia article URL it
// returns plain article text and a title.
type ArticleFetcher interface {
	Scrape(ctx context.Context, url string) (articleText string, title string, err error)
}

// TextCompleter is the text-completion boundary. Implementations wrap a
// long-lived LLM client constructed once at startup.
type TextCompleter interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
