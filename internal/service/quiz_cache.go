package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"wikiquiz/internal/cache"
	"wikiquiz/internal/domain"
	"wikiquiz/internal/logger"

	"go.uber.org/zap"
)

// QuizCacheService is a read-through cache for stored quizzes in front of
// the database. The database stays the source of truth; the cache only
// short-circuits repeat reads. Misses and cache errors are silent; the
// caller falls back to the repository.
type QuizCacheService struct {
	cache domain.Cache
	ttl   time.Duration
}

// NewQuizCacheService creates a QuizCacheService. A nil domain.Cache
// disables caching entirely.
func NewQuizCacheService(c domain.Cache, ttl time.Duration) *QuizCacheService {
	return &QuizCacheService{cache: c, ttl: ttl}
}

type cachedQuiz struct {
	ID             int64               `json:"id"`
	URL            string              `json:"url"`
	Title          string              `json:"title"`
	DateGenerated  time.Time           `json:"date_generated"`
	ScrapedContent string              `json:"scraped_content"`
	Payload        *domain.QuizPayload `json:"payload"`
}

func quizIDKey(id int64) string {
	return cache.GenerateCacheKey("quiz", "id", strconv.FormatInt(id, 10))
}

func quizURLKey(url string) string {
	sum := sha256.Sum256([]byte(url))
	return cache.GenerateCacheKey("quiz", "url", hex.EncodeToString(sum[:]))
}

// GetByID returns a cached quiz or nil on miss.
func (s *QuizCacheService) GetByID(ctx context.Context, id int64) *domain.Quiz {
	return s.get(ctx, quizIDKey(id))
}

// GetByURL returns a cached quiz or nil on miss.
func (s *QuizCacheService) GetByURL(ctx context.Context, url string) *domain.Quiz {
	return s.get(ctx, quizURLKey(url))
}

// Put stores a quiz under both its id and URL keys.
func (s *QuizCacheService) Put(ctx context.Context, quiz *domain.Quiz) {
	if s == nil || s.cache == nil || quiz == nil {
		return
	}
	entry := cachedQuiz{
		ID:             quiz.ID,
		URL:            quiz.URL,
		Title:          quiz.Title,
		DateGenerated:  quiz.DateGenerated,
		ScrapedContent: quiz.ScrapedContent,
		Payload:        quiz.Payload,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		logger.Get().Warn("QuizCacheService: failed to marshal quiz for cache", zap.Error(err))
		return
	}
	for _, key := range []string{quizIDKey(quiz.ID), quizURLKey(quiz.URL)} {
		if err := s.cache.Set(ctx, key, string(data), s.ttl); err != nil {
			logger.Get().Warn("QuizCacheService: failed to write cache entry",
				zap.String("key", key), zap.Error(err))
		}
	}
}

func (s *QuizCacheService) get(ctx context.Context, key string) *domain.Quiz {
	if s == nil || s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			logger.Get().Warn("QuizCacheService: cache read failed",
				zap.String("key", key), zap.Error(err))
		}
		return nil
	}
	var entry cachedQuiz
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		logger.Get().Warn("QuizCacheService: corrupt cache entry",
			zap.String("key", key), zap.Error(err))
		return nil
	}
	return &domain.Quiz{
		ID:             entry.ID,
		URL:            entry.URL,
		Title:          entry.Title,
		DateGenerated:  entry.DateGenerated,
		ScrapedContent: entry.ScrapedContent,
		Payload:        entry.Payload,
	}
}
