package service

import (
	"context"

	"wikiquiz/internal/domain"
	"wikiquiz/internal/dto"
	"wikiquiz/internal/logger"
	"wikiquiz/internal/scraper"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// QuizService defines the interface for quiz-related operations
type QuizService interface {
	GenerateQuiz(ctx context.Context, url string) (*dto.QuizResponse, error)
	GetQuiz(ctx context.Context, id int64) (*dto.QuizResponse, error)
	ListQuizzes(ctx context.Context) ([]dto.QuizHistoryItem, error)
	SubmitAttempt(ctx context.Context, quizID int64, userSession string, req *dto.SubmitAttemptRequest) (*dto.AttemptResponse, error)
	ListAttempts(ctx context.Context, quizID int64, userSession string) ([]dto.AttemptResponse, error)
}

// quizService implements QuizService
type quizService struct {
	quizRepo    domain.QuizRepository
	attemptRepo domain.AttemptRepository
	fetcher     domain.ArticleFetcher
	generator   *GenerationService
	quizCache   *QuizCacheService
	group       singleflight.Group
}

// NewQuizService creates a new instance of quizService. quizCache may be
// nil to run without Redis.
func NewQuizService(
	quizRepo domain.QuizRepository,
	attemptRepo domain.AttemptRepository,
	fetcher domain.ArticleFetcher,
	generator *GenerationService,
	quizCache *QuizCacheService,
) QuizService {
	return &quizService{
		quizRepo:    quizRepo,
		attemptRepo: attemptRepo,
		fetcher:     fetcher,
		generator:   generator,
		quizCache:   quizCache,
	}
}

// GenerateQuiz implements QuizService. A URL that already has a stored
// quiz returns it verbatim without another LLM call. Concurrent first-time
// requests for one URL are collapsed by singleflight, and the unique
// constraint on quizzes.url closes the remaining cross-process race.
func (s *quizService) GenerateQuiz(ctx context.Context, url string) (*dto.QuizResponse, error) {
	if !scraper.ValidateWikipediaURL(url) {
		return nil, domain.NewInvalidURLError(url)
	}

	if cached := s.quizCache.GetByURL(ctx, url); cached != nil {
		return dto.NewQuizResponse(cached), nil
	}

	existing, err := s.quizRepo.GetByURL(ctx, url)
	if err != nil {
		return nil, domain.NewPersistenceError("Failed to look up quiz by URL", err)
	}
	if existing != nil {
		s.quizCache.Put(ctx, existing)
		return dto.NewQuizResponse(existing), nil
	}

	result, err, _ := s.group.Do(url, func() (interface{}, error) {
		return s.generateAndStore(ctx, url)
	})
	if err != nil {
		return nil, err
	}

	quiz := result.(*domain.Quiz)
	s.quizCache.Put(ctx, quiz)
	return dto.NewQuizResponse(quiz), nil
}

func (s *quizService) generateAndStore(ctx context.Context, url string) (*domain.Quiz, error) {
	// Re-check under singleflight: a collapsed caller may have stored the
	// quiz between our first lookup and now.
	existing, err := s.quizRepo.GetByURL(ctx, url)
	if err != nil {
		return nil, domain.NewPersistenceError("Failed to look up quiz by URL", err)
	}
	if existing != nil {
		return existing, nil
	}

	articleText, title, err := s.fetcher.Scrape(ctx, url)
	if err != nil {
		return nil, domain.NewScrapeFailedError(url, err)
	}
	if title == "" {
		title = "Unknown Title"
	}

	payload := s.generator.Generate(ctx, articleText)

	quiz := &domain.Quiz{
		URL:            url,
		Title:          title,
		ScrapedContent: articleText,
		Payload:        payload,
	}
	saved, err := s.quizRepo.Save(ctx, quiz)
	if err != nil {
		return nil, domain.NewPersistenceError("Failed to save quiz", err)
	}

	logger.Get().Info("Generated quiz",
		zap.Int64("quiz_id", saved.ID),
		zap.String("url", url),
		zap.Int("questions", len(saved.Payload.Quiz)))
	return saved, nil
}

// GetQuiz implements QuizService
func (s *quizService) GetQuiz(ctx context.Context, id int64) (*dto.QuizResponse, error) {
	if cached := s.quizCache.GetByID(ctx, id); cached != nil {
		return dto.NewQuizResponse(cached), nil
	}

	quiz, err := s.quizRepo.GetByID(ctx, id)
	if err != nil {
		return nil, domain.NewPersistenceError("Failed to get quiz", err)
	}
	if quiz == nil {
		return nil, domain.NewQuizNotFoundError(id)
	}

	s.quizCache.Put(ctx, quiz)
	return dto.NewQuizResponse(quiz), nil
}

// ListQuizzes implements QuizService
func (s *quizService) ListQuizzes(ctx context.Context) ([]dto.QuizHistoryItem, error) {
	summaries, err := s.quizRepo.List(ctx)
	if err != nil {
		return nil, domain.NewPersistenceError("Failed to list quizzes", err)
	}

	items := make([]dto.QuizHistoryItem, 0, len(summaries))
	for _, summary := range summaries {
		items = append(items, dto.QuizHistoryItem{
			ID:            summary.ID,
			URL:           summary.URL,
			Title:         summary.Title,
			DateGenerated: summary.DateGenerated,
			AttemptsCount: summary.AttemptsCount,
		})
	}
	return items, nil
}

// SubmitAttempt implements QuizService. The attempt is graded against the
// stored quiz and persisted immutably under the caller's session.
func (s *quizService) SubmitAttempt(ctx context.Context, quizID int64, userSession string, req *dto.SubmitAttemptRequest) (*dto.AttemptResponse, error) {
	quiz := s.quizCache.GetByID(ctx, quizID)
	if quiz == nil {
		var err error
		quiz, err = s.quizRepo.GetByID(ctx, quizID)
		if err != nil {
			return nil, domain.NewPersistenceError("Failed to get quiz", err)
		}
		if quiz == nil {
			return nil, domain.NewQuizNotFoundError(quizID)
		}
	}

	result := ScoreAttempt(quiz.Payload, req.Answers)

	attempt := &domain.QuizAttempt{
		QuizID:         quizID,
		UserSession:    userSession,
		Score:          result.Score,
		CorrectAnswers: result.CorrectAnswers,
		TotalQuestions: result.TotalQuestions,
		UserAnswers:    req.Answers,
		TimeTaken:      req.TimeTaken,
	}
	created, err := s.attemptRepo.CreateAttempt(ctx, attempt)
	if err != nil {
		return nil, domain.NewPersistenceError("Failed to save attempt", err)
	}

	logger.Get().Info("Recorded quiz attempt",
		zap.Int64("quiz_id", quizID),
		zap.Float64("score", created.Score),
		zap.Int("correct", created.CorrectAnswers),
		zap.Int("total", created.TotalQuestions))
	return dto.NewAttemptResponse(created), nil
}

// ListAttempts implements QuizService, scoped strictly to the caller's
// session.
func (s *quizService) ListAttempts(ctx context.Context, quizID int64, userSession string) ([]dto.AttemptResponse, error) {
	attempts, err := s.attemptRepo.GetAttempts(ctx, quizID, userSession)
	if err != nil {
		return nil, domain.NewPersistenceError("Failed to list attempts", err)
	}

	responses := make([]dto.AttemptResponse, 0, len(attempts))
	for i := range attempts {
		responses = append(responses, *dto.NewAttemptResponse(&attempts[i]))
	}
	return responses, nil
}
