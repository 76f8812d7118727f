package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"wikiquiz/internal/domain"
	"wikiquiz/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- MockQuizRepository ---

type MockQuizRepository struct {
	mock.Mock
}

func (m *MockQuizRepository) GetByURL(ctx context.Context, url string) (*domain.Quiz, error) {
	args := m.Called(ctx, url)
	quiz, _ := args.Get(0).(*domain.Quiz)
	return quiz, args.Error(1)
}

func (m *MockQuizRepository) GetByID(ctx context.Context, id int64) (*domain.Quiz, error) {
	args := m.Called(ctx, id)
	quiz, _ := args.Get(0).(*domain.Quiz)
	return quiz, args.Error(1)
}

func (m *MockQuizRepository) Save(ctx context.Context, quiz *domain.Quiz) (*domain.Quiz, error) {
	args := m.Called(ctx, quiz)
	saved, _ := args.Get(0).(*domain.Quiz)
	return saved, args.Error(1)
}

func (m *MockQuizRepository) List(ctx context.Context) ([]domain.QuizSummary, error) {
	args := m.Called(ctx)
	summaries, _ := args.Get(0).([]domain.QuizSummary)
	return summaries, args.Error(1)
}

// --- MockAttemptRepository ---

type MockAttemptRepository struct {
	mock.Mock
}

func (m *MockAttemptRepository) CreateAttempt(ctx context.Context, attempt *domain.QuizAttempt) (*domain.QuizAttempt, error) {
	args := m.Called(ctx, attempt)
	created, _ := args.Get(0).(*domain.QuizAttempt)
	return created, args.Error(1)
}

func (m *MockAttemptRepository) GetAttempts(ctx context.Context, quizID int64, userSession string) ([]domain.QuizAttempt, error) {
	args := m.Called(ctx, quizID, userSession)
	attempts, _ := args.Get(0).([]domain.QuizAttempt)
	return attempts, args.Error(1)
}

// --- MockArticleFetcher ---

type MockArticleFetcher struct {
	mock.Mock
}

func (m *MockArticleFetcher) Scrape(ctx context.Context, url string) (string, string, error) {
	args := m.Called(ctx, url)
	return args.String(0), args.String(1), args.Error(2)
}

const testArticleURL = "https://en.wikipedia.org/wiki/Ada_Lovelace"

const threeQuestionCompletion = `{
  "summary": "s",
  "key_entities": {},
  "sections": [],
  "quiz": [
    {"question": "q1", "options": ["A) foo", "B) bar", "C) baz", "D) qux"], "answer": "A", "difficulty": "easy", "explanation": "e"},
    {"question": "q2", "options": ["A) foo", "B) bar", "C) baz", "D) qux"], "answer": "B", "difficulty": "medium", "explanation": "e"},
    {"question": "q3", "options": ["A) foo", "B) bar", "C) baz", "D) qux"], "answer": "C", "difficulty": "hard", "explanation": "e"}
  ],
  "related_topics": []
}`

type quizServiceMocks struct {
	quizRepo    *MockQuizRepository
	attemptRepo *MockAttemptRepository
	fetcher     *MockArticleFetcher
	completer   *MockTextCompleter
}

func newTestQuizService() (QuizService, *quizServiceMocks) {
	mocks := &quizServiceMocks{
		quizRepo:    new(MockQuizRepository),
		attemptRepo: new(MockAttemptRepository),
		fetcher:     new(MockArticleFetcher),
		completer:   new(MockTextCompleter),
	}
	generator := NewGenerationService(mocks.completer, NewQuizParser(), 8000)
	svc := NewQuizService(mocks.quizRepo, mocks.attemptRepo, mocks.fetcher, generator, nil)
	return svc, mocks
}

func storedQuiz() *domain.Quiz {
	return &domain.Quiz{
		ID:            42,
		URL:           testArticleURL,
		Title:         "Ada Lovelace",
		DateGenerated: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Payload: &domain.QuizPayload{
			Summary:     "s",
			KeyEntities: map[string][]string{},
			Sections:    []string{},
			Quiz: []domain.QuizQuestion{
				{Question: "q1", Options: []string{"A) foo", "B) bar"}, Answer: "A", Difficulty: "easy", Explanation: "e"},
				{Question: "q2", Options: []string{"A) foo", "B) bar"}, Answer: "B", Difficulty: "easy", Explanation: "e"},
				{Question: "q3", Options: []string{"A) foo", "B) bar"}, Answer: "C", Difficulty: "easy", Explanation: "e"},
			},
			RelatedTopics: []string{},
		},
	}
}

func TestGenerateQuiz_InvalidURL(t *testing.T) {
	svc, mocks := newTestQuizService()

	_, err := svc.GenerateQuiz(context.Background(), "https://example.com/wiki/Nope")

	require.Error(t, err)
	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrInvalidURL, domainErr.Code)
	mocks.quizRepo.AssertNotCalled(t, "GetByURL")
	mocks.fetcher.AssertNotCalled(t, "Scrape")
}

func TestGenerateQuiz_ExistingURLSkipsGeneration(t *testing.T) {
	svc, mocks := newTestQuizService()
	mocks.quizRepo.On("GetByURL", mock.Anything, testArticleURL).Return(storedQuiz(), nil)

	resp, err := svc.GenerateQuiz(context.Background(), testArticleURL)

	require.NoError(t, err)
	assert.Equal(t, int64(42), resp.ID)
	assert.Equal(t, "Ada Lovelace", resp.Title)
	mocks.quizRepo.AssertNumberOfCalls(t, "GetByURL", 1)
	mocks.fetcher.AssertNotCalled(t, "Scrape")
	mocks.completer.AssertNotCalled(t, "Complete")
	mocks.quizRepo.AssertNotCalled(t, "Save")
}

func TestGenerateQuiz_FirstRequestScrapesAndStores(t *testing.T) {
	svc, mocks := newTestQuizService()
	mocks.quizRepo.On("GetByURL", mock.Anything, testArticleURL).Return(nil, nil)
	mocks.fetcher.On("Scrape", mock.Anything, testArticleURL).Return("article body", "Ada Lovelace", nil)
	mocks.completer.On("Complete", mock.Anything, mock.Anything).Return(threeQuestionCompletion, nil)
	mocks.quizRepo.On("Save", mock.Anything, mock.Anything).Return(storedQuiz(), nil)

	resp, err := svc.GenerateQuiz(context.Background(), testArticleURL)

	require.NoError(t, err)
	assert.Equal(t, int64(42), resp.ID)
	assert.Len(t, resp.Quiz, 3)
	mocks.completer.AssertNumberOfCalls(t, "Complete", 1)
	mocks.quizRepo.AssertNumberOfCalls(t, "Save", 1)
	// lookup before and inside the collapsed section
	mocks.quizRepo.AssertNumberOfCalls(t, "GetByURL", 2)
}

func TestGenerateQuiz_ScrapeFailure(t *testing.T) {
	svc, mocks := newTestQuizService()
	mocks.quizRepo.On("GetByURL", mock.Anything, testArticleURL).Return(nil, nil)
	mocks.fetcher.On("Scrape", mock.Anything, testArticleURL).Return("", "", errors.New("article not found"))

	_, err := svc.GenerateQuiz(context.Background(), testArticleURL)

	require.Error(t, err)
	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrScrapeFailed, domainErr.Code)
	mocks.completer.AssertNotCalled(t, "Complete")
	mocks.quizRepo.AssertNotCalled(t, "Save")
}

func TestGetQuiz_NotFound(t *testing.T) {
	svc, mocks := newTestQuizService()
	mocks.quizRepo.On("GetByID", mock.Anything, int64(99)).Return(nil, nil)

	_, err := svc.GetQuiz(context.Background(), 99)

	require.Error(t, err)
	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrQuizNotFound, domainErr.Code)
}

func TestSubmitAttempt_GradesAndPersists(t *testing.T) {
	svc, mocks := newTestQuizService()
	mocks.quizRepo.On("GetByID", mock.Anything, int64(42)).Return(storedQuiz(), nil)
	mocks.attemptRepo.On("CreateAttempt", mock.Anything, mock.Anything).
		Return(&domain.QuizAttempt{
			ID:             7,
			QuizID:         42,
			UserSession:    "sess",
			Score:          66.67,
			CorrectAnswers: 2,
			TotalQuestions: 3,
			UserAnswers:    []string{"A) foo", "x", "C"},
			DateAttempted:  time.Now().UTC(),
		}, nil)

	resp, err := svc.SubmitAttempt(context.Background(), 42, "sess", &dto.SubmitAttemptRequest{
		Answers: []string{"A) foo", "x", "C"},
	})

	require.NoError(t, err)
	assert.Equal(t, int64(7), resp.ID)
	assert.InDelta(t, 66.67, resp.Score, 0.001)
	assert.Equal(t, 2, resp.CorrectAnswers)
	assert.Equal(t, 3, resp.TotalQuestions)

	// the graded values were computed before persisting, not echoed back
	createdArg := mocks.attemptRepo.Calls[0].Arguments.Get(1).(*domain.QuizAttempt)
	assert.Equal(t, 2, createdArg.CorrectAnswers)
	assert.Equal(t, 3, createdArg.TotalQuestions)
	assert.InDelta(t, 66.67, createdArg.Score, 0.001)
	assert.Equal(t, "sess", createdArg.UserSession)
}

func TestSubmitAttempt_UnknownQuiz(t *testing.T) {
	svc, mocks := newTestQuizService()
	mocks.quizRepo.On("GetByID", mock.Anything, int64(1)).Return(nil, nil)

	_, err := svc.SubmitAttempt(context.Background(), 1, "sess", &dto.SubmitAttemptRequest{Answers: []string{"A"}})

	require.Error(t, err)
	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrQuizNotFound, domainErr.Code)
	mocks.attemptRepo.AssertNotCalled(t, "CreateAttempt")
}

func TestListAttempts_ScopedToSession(t *testing.T) {
	svc, mocks := newTestQuizService()
	mocks.attemptRepo.On("GetAttempts", mock.Anything, int64(42), "sess").
		Return([]domain.QuizAttempt{
			{ID: 2, QuizID: 42, UserSession: "sess", Score: 100, CorrectAnswers: 3, TotalQuestions: 3},
			{ID: 1, QuizID: 42, UserSession: "sess", Score: 0, CorrectAnswers: 0, TotalQuestions: 3},
		}, nil)

	attempts, err := svc.ListAttempts(context.Background(), 42, "sess")

	require.NoError(t, err)
	require.Len(t, attempts, 2)
	assert.Equal(t, int64(2), attempts[0].ID)
	assert.Equal(t, int64(1), attempts[1].ID)
}

func TestListQuizzes_MapsSummaries(t *testing.T) {
	svc, mocks := newTestQuizService()
	mocks.quizRepo.On("List", mock.Anything).Return([]domain.QuizSummary{
		{ID: 2, URL: "u2", Title: "t2", AttemptsCount: 5},
		{ID: 1, URL: "u1", Title: "t1", AttemptsCount: 0},
	}, nil)

	items, err := svc.ListQuizzes(context.Background())

	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "t2", items[0].Title)
	assert.Equal(t, 5, items[0].AttemptsCount)
}
