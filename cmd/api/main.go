// @title AI Wiki Quiz Generator API
// @version 1.0
// @description Generates multiple-choice quizzes from Wikipedia articles and scores user attempts.
// @host localhost:8000
// @BasePath /
// @schemes http https
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"wikiquiz/internal/adapter"
	"wikiquiz/internal/adapter/quizgen"
	"wikiquiz/internal/cache"
	"wikiquiz/internal/config"
	"wikiquiz/internal/database"
	"wikiquiz/internal/domain"
	"wikiquiz/internal/handler"
	"wikiquiz/internal/logger"
	"wikiquiz/internal/middleware"
	"wikiquiz/internal/repository"
	"wikiquiz/internal/scraper"
	"wikiquiz/internal/service"

	_ "wikiquiz/cmd/api/docs"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

const quizCacheTTL = 24 * time.Hour

// requestLogger is a middleware that logs HTTP requests
func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		path := c.Path()
		method := c.Method()

		err := c.Next()

		duration := time.Since(start)
		status := c.Response().StatusCode()

		logger.Get().Info("HTTP Request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("duration", duration),
			zap.String("ip", c.IP()),
		)

		return err
	}
}

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	// Long-lived Gemini client, constructed once and injected
	completer, err := quizgen.NewGeminiCompleter(context.Background(), cfg.LLM, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to create Gemini completer", zap.Error(err))
	}

	// Connect to database
	db, err := database.NewSQLXPostgresDB(cfg.GetDSN())
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	appLogger.Info("Successfully connected to Postgres")

	// Redis is optional: without it the service runs straight off Postgres
	var cacheAdapter domain.Cache
	if cfg.Redis.Address != "" {
		redisClient, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		appLogger.Info("Successfully connected to Redis")
		cacheAdapter = adapter.NewRedisCacheAdapter(redisClient)
	} else {
		appLogger.Warn("Redis address not configured, quiz cache disabled")
	}

	// Initialize repositories
	quizRepository := repository.NewQuizDatabaseAdapter(db)
	attemptRepository := repository.NewAttemptDatabaseAdapter(db)

	// Initialize services
	fetcher := scraper.NewWikipediaFetcher(20 * time.Second)
	generationService := service.NewGenerationService(completer, service.NewQuizParser(), cfg.LLM.MaxArticleChars)

	var quizCache *service.QuizCacheService
	if cacheAdapter != nil {
		quizCache = service.NewQuizCacheService(cacheAdapter, quizCacheTTL)
	}
	quizService := service.NewQuizService(quizRepository, attemptRepository, fetcher, generationService, quizCache)

	// Initialize handlers
	quizHandler := handler.NewQuizHandler(quizService)
	healthHandler := handler.NewHealthHandler(db, cacheAdapter)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  20 * time.Second,
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(requestLogger())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowOrigins,
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept",
		AllowCredentials: true,
		MaxAge:           300,
	}))
	app.Use(recover.New())
	app.Use(middleware.Session())

	// Swagger handler
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.Health)
	app.Post("/generate-quiz", quizHandler.GenerateQuiz)
	app.Get("/quizzes", quizHandler.ListQuizzes)
	app.Get("/quizzes/:id", quizHandler.GetQuiz)
	app.Post("/quizzes/:id/attempt", quizHandler.SubmitAttempt)
	app.Get("/quizzes/:id/attempts", quizHandler.ListAttempts)

	// Start server
	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", os.Getenv("ENV")))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		appLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}
