package handler

import (
	"strconv"

	"wikiquiz/internal/domain"
	"wikiquiz/internal/dto"
	"wikiquiz/internal/middleware"
	"wikiquiz/internal/service"

	"github.com/gofiber/fiber/v2"
)

// QuizHandler handles quiz-related HTTP requests
type QuizHandler struct {
	service service.QuizService
}

// NewQuizHandler creates a new QuizHandler instance
func NewQuizHandler(service service.QuizService) *QuizHandler {
	return &QuizHandler{
		service: service,
	}
}

// GenerateQuiz godoc
// @Summary Generate a quiz from a Wikipedia article
// @Description Scrapes the article and derives a multiple-choice quiz. Repeated requests for the same URL return the stored quiz.
// @Tags quiz
// @Accept json
// @Produce json
// @Param request body dto.GenerateQuizRequest true "Article URL"
// @Success 200 {object} dto.QuizResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Router /generate-quiz [post]
func (h *QuizHandler) GenerateQuiz(c *fiber.Ctx) error {
	var req dto.GenerateQuizRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("request body must be JSON with a url field")
	}
	if req.URL == "" {
		return domain.NewInvalidInputError("url is required")
	}

	resp, err := h.service.GenerateQuiz(c.Context(), req.URL)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// ListQuizzes godoc
// @Summary List generated quizzes
// @Description Returns all quizzes newest first with attempt counts
// @Tags quiz
// @Produce json
// @Success 200 {array} dto.QuizHistoryItem
// @Router /quizzes [get]
func (h *QuizHandler) ListQuizzes(c *fiber.Ctx) error {
	items, err := h.service.ListQuizzes(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(items)
}

// GetQuiz godoc
// @Summary Get one quiz
// @Tags quiz
// @Produce json
// @Param id path int true "Quiz ID"
// @Success 200 {object} dto.QuizResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /quizzes/{id} [get]
func (h *QuizHandler) GetQuiz(c *fiber.Ctx) error {
	id, err := parseQuizID(c)
	if err != nil {
		return err
	}

	resp, err := h.service.GetQuiz(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// SubmitAttempt godoc
// @Summary Submit answers for a quiz
// @Description Grades the submitted answers against the stored answer key and records the attempt under the caller's session
// @Tags attempts
// @Accept json
// @Produce json
// @Param id path int true "Quiz ID"
// @Param request body dto.SubmitAttemptRequest true "Answers"
// @Success 200 {object} dto.AttemptResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /quizzes/{id}/attempt [post]
func (h *QuizHandler) SubmitAttempt(c *fiber.Ctx) error {
	id, err := parseQuizID(c)
	if err != nil {
		return err
	}

	var req dto.SubmitAttemptRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("request body must be JSON with answers and time_taken")
	}

	resp, err := h.service.SubmitAttempt(c.Context(), id, middleware.SessionID(c), &req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// ListAttempts godoc
// @Summary List the caller's attempts for a quiz
// @Description Returns attempts newest first, scoped to the caller's session cookie
// @Tags attempts
// @Produce json
// @Param id path int true "Quiz ID"
// @Success 200 {array} dto.AttemptResponse
// @Router /quizzes/{id}/attempts [get]
func (h *QuizHandler) ListAttempts(c *fiber.Ctx) error {
	id, err := parseQuizID(c)
	if err != nil {
		return err
	}

	resp, err := h.service.ListAttempts(c.Context(), id, middleware.SessionID(c))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

func parseQuizID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewInvalidInputError("quiz id must be a positive integer")
	}
	return id, nil
}
