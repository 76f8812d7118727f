package quizgen

import (
	"context"
	"fmt"
	"time"

	"wikiquiz/internal/config"
	"wikiquiz/internal/domain"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"go.uber.org/zap"
)

// GeminiCompleter implements domain.TextCompleter over the Gemini API via
// langchaingo. One instance is constructed at startup and shared across
// requests.
type GeminiCompleter struct {
	llm         *googleai.GoogleAI
	temperature float64
	timeout     time.Duration
	logger      *zap.Logger
}

// NewGeminiCompleter creates the long-lived Gemini client.
func NewGeminiCompleter(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger) (*GeminiCompleter, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key cannot be empty")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("gemini model name cannot be empty")
	}

	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(cfg.APIKey),
		googleai.WithDefaultModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	logger.Info("Initialized Gemini completer",
		zap.String("model", cfg.Model),
		zap.Float64("temperature", cfg.Temperature),
		zap.Duration("timeout", cfg.Timeout))

	return &GeminiCompleter{
		llm:         llm,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
		logger:      logger,
	}, nil
}

// Complete sends one prompt to the model. A single blocking call with a
// fixed timeout and no retry.
func (g *GeminiCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	completion, err := llms.GenerateFromSinglePrompt(ctx, g.llm, prompt,
		llms.WithTemperature(g.temperature))
	if err != nil {
		g.logger.Error("Gemini completion failed", zap.Error(err))
		return "", domain.NewLLMServiceError(err)
	}
	return completion, nil
}

var _ domain.TextCompleter = (*GeminiCompleter)(nil)
