package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"wikiquiz/internal/config"
	"wikiquiz/internal/domain"
	"wikiquiz/internal/dto"
	"wikiquiz/internal/logger"
	"wikiquiz/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(config.LoggerConfig{}); err != nil {
		panic("Failed to initialize logger for tests: " + err.Error())
	}
	exitVal := m.Run()
	_ = logger.Sync()
	os.Exit(exitVal)
}

// mockQuizService implements service.QuizService with overridable funcs.
type mockQuizService struct {
	generateFunc     func(ctx context.Context, url string) (*dto.QuizResponse, error)
	getFunc          func(ctx context.Context, id int64) (*dto.QuizResponse, error)
	listFunc         func(ctx context.Context) ([]dto.QuizHistoryItem, error)
	submitFunc       func(ctx context.Context, quizID int64, userSession string, req *dto.SubmitAttemptRequest) (*dto.AttemptResponse, error)
	listAttemptsFunc func(ctx context.Context, quizID int64, userSession string) ([]dto.AttemptResponse, error)
}

func (m *mockQuizService) GenerateQuiz(ctx context.Context, url string) (*dto.QuizResponse, error) {
	return m.generateFunc(ctx, url)
}

func (m *mockQuizService) GetQuiz(ctx context.Context, id int64) (*dto.QuizResponse, error) {
	return m.getFunc(ctx, id)
}

func (m *mockQuizService) ListQuizzes(ctx context.Context) ([]dto.QuizHistoryItem, error) {
	return m.listFunc(ctx)
}

func (m *mockQuizService) SubmitAttempt(ctx context.Context, quizID int64, userSession string, req *dto.SubmitAttemptRequest) (*dto.AttemptResponse, error) {
	return m.submitFunc(ctx, quizID, userSession, req)
}

func (m *mockQuizService) ListAttempts(ctx context.Context, quizID int64, userSession string) ([]dto.AttemptResponse, error) {
	return m.listAttemptsFunc(ctx, quizID, userSession)
}

func newTestApp(svc *mockQuizService) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(),
	})
	app.Use(middleware.Session())

	h := NewQuizHandler(svc)
	app.Post("/generate-quiz", h.GenerateQuiz)
	app.Get("/quizzes", h.ListQuizzes)
	app.Get("/quizzes/:id", h.GetQuiz)
	app.Post("/quizzes/:id/attempt", h.SubmitAttempt)
	app.Get("/quizzes/:id/attempts", h.ListAttempts)
	return app
}

func jsonRequest(method, target string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeError(t *testing.T, resp *http.Response) middleware.ErrorResponse {
	t.Helper()
	var errResp middleware.ErrorResponse
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, &errResp))
	return errResp
}

func TestGenerateQuiz_ReturnsQuiz(t *testing.T) {
	svc := &mockQuizService{
		generateFunc: func(ctx context.Context, url string) (*dto.QuizResponse, error) {
			return &dto.QuizResponse{ID: 42, URL: url, Title: "Ada Lovelace"}, nil
		},
	}
	app := newTestApp(svc)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/generate-quiz",
		dto.GenerateQuizRequest{URL: "https://en.wikipedia.org/wiki/Ada_Lovelace"}))

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var quiz dto.QuizResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&quiz))
	assert.Equal(t, int64(42), quiz.ID)
	assert.Equal(t, "Ada Lovelace", quiz.Title)
}

func TestGenerateQuiz_SetsSessionCookieOnFirstContact(t *testing.T) {
	svc := &mockQuizService{
		generateFunc: func(ctx context.Context, url string) (*dto.QuizResponse, error) {
			return &dto.QuizResponse{ID: 1, URL: url}, nil
		},
	}
	app := newTestApp(svc)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/generate-quiz",
		dto.GenerateQuizRequest{URL: "https://en.wikipedia.org/wiki/Ada_Lovelace"}))
	require.NoError(t, err)

	var sessionCookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == middleware.SessionCookieName {
			sessionCookie = c
		}
	}
	require.NotNil(t, sessionCookie, "expected a session cookie to be minted")
	assert.NotEmpty(t, sessionCookie.Value)
	assert.True(t, sessionCookie.HttpOnly)
}

func TestGenerateQuiz_MissingURL(t *testing.T) {
	app := newTestApp(&mockQuizService{})

	resp, err := app.Test(jsonRequest(http.MethodPost, "/generate-quiz", dto.GenerateQuizRequest{}))

	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	errResp := decodeError(t, resp)
	assert.Equal(t, string(domain.ErrInvalidInput), errResp.Code)
}

func TestGenerateQuiz_InvalidURLError(t *testing.T) {
	svc := &mockQuizService{
		generateFunc: func(ctx context.Context, url string) (*dto.QuizResponse, error) {
			return nil, domain.NewInvalidURLError(url)
		},
	}
	app := newTestApp(svc)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/generate-quiz",
		dto.GenerateQuizRequest{URL: "https://example.com/nope"}))

	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	errResp := decodeError(t, resp)
	assert.Equal(t, string(domain.ErrInvalidURL), errResp.Code)
	assert.Equal(t, http.StatusBadRequest, errResp.Status)
}

func TestGetQuiz_NotFoundMapsTo404(t *testing.T) {
	svc := &mockQuizService{
		getFunc: func(ctx context.Context, id int64) (*dto.QuizResponse, error) {
			return nil, domain.NewQuizNotFoundError(id)
		},
	}
	app := newTestApp(svc)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/quizzes/99", nil))

	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	errResp := decodeError(t, resp)
	assert.Equal(t, string(domain.ErrQuizNotFound), errResp.Code)
}

func TestGetQuiz_NonNumericID(t *testing.T) {
	app := newTestApp(&mockQuizService{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/quizzes/abc", nil))

	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSubmitAttempt_PassesSessionFromCookie(t *testing.T) {
	var gotSession string
	svc := &mockQuizService{
		submitFunc: func(ctx context.Context, quizID int64, userSession string, req *dto.SubmitAttemptRequest) (*dto.AttemptResponse, error) {
			gotSession = userSession
			return &dto.AttemptResponse{ID: 7, Score: 66.67, CorrectAnswers: 2, TotalQuestions: 3}, nil
		},
	}
	app := newTestApp(svc)

	req := jsonRequest(http.MethodPost, "/quizzes/42/attempt",
		dto.SubmitAttemptRequest{Answers: []string{"A", "x", "C"}, TimeTaken: 95})
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "existing-session"})

	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "existing-session", gotSession)

	var attempt dto.AttemptResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&attempt))
	assert.InDelta(t, 66.67, attempt.Score, 0.001)
}

func TestListAttempts_ScopedToCookieSession(t *testing.T) {
	var gotSession string
	svc := &mockQuizService{
		listAttemptsFunc: func(ctx context.Context, quizID int64, userSession string) ([]dto.AttemptResponse, error) {
			gotSession = userSession
			return []dto.AttemptResponse{{ID: 2}, {ID: 1}}, nil
		},
	}
	app := newTestApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/quizzes/42/attempts", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "sess-a"})

	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "sess-a", gotSession)

	var attempts []dto.AttemptResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&attempts))
	assert.Len(t, attempts, 2)
}

func TestListQuizzes_ReturnsHistory(t *testing.T) {
	svc := &mockQuizService{
		listFunc: func(ctx context.Context) ([]dto.QuizHistoryItem, error) {
			return []dto.QuizHistoryItem{
				{ID: 2, Title: "t2", AttemptsCount: 3},
				{ID: 1, Title: "t1", AttemptsCount: 0},
			}, nil
		},
	}
	app := newTestApp(svc)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/quizzes", nil))

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var items []dto.QuizHistoryItem
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&items))
	require.Len(t, items, 2)
	assert.Equal(t, int64(2), items[0].ID)
}
