package service

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"wikiquiz/internal/domain"
	"wikiquiz/internal/logger"

	"go.uber.org/zap"
)

const quizPromptTemplate = `You are an expert educational content creator. Your task is to generate a quiz from a Wikipedia article.

ARTICLE CONTENT:
%s

Follow these exact steps:
1. Write a 3-5 sentence summary of the article.
2. Extract key entities (people, organizations, locations).
3. Identify main sections of the article.
4. Create 5-10 quiz questions, each with 4 options (A, B, C, D) and one correct answer.
5. Suggest 3-5 related Wikipedia topics for further reading.
6. Difficulty levels: easy, medium, hard.
7. All output MUST be in valid JSON only - no Markdown, no text outside JSON.

Output Format (a single JSON object):
{
  "summary": "string",
  "key_entities": {"people": ["string"], "organizations": ["string"], "locations": ["string"]},
  "sections": ["string"],
  "quiz": [
    {
      "question": "string",
      "options": ["A) ...", "B) ...", "C) ...", "D) ..."],
      "answer": "A",
      "difficulty": "easy",
      "explanation": "string"
    }
  ],
  "related_topics": ["string"]
}`

// GenerationService owns the prompt contract with the LLM. Generate never
// fails past its boundary: any network, parse or validation failure yields
// the deterministic fallback payload instead.
type GenerationService struct {
	completer       domain.TextCompleter
	parser          *QuizParser
	maxArticleChars int
}

// NewGenerationService creates a GenerationService around a long-lived
// text-completion client.
func NewGenerationService(completer domain.TextCompleter, parser *QuizParser, maxArticleChars int) *GenerationService {
	return &GenerationService{
		completer:       completer,
		parser:          parser,
		maxArticleChars: maxArticleChars,
	}
}

// Generate derives a quiz payload from article text. One outbound LLM call,
// no retry: a failed attempt falls through to the fallback payload.
func (s *GenerationService) Generate(ctx context.Context, articleText string) *domain.QuizPayload {
	prompt := fmt.Sprintf(quizPromptTemplate, truncateText(articleText, s.maxArticleChars))

	completion, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		logger.Get().Warn("LLM completion failed, using fallback payload", zap.Error(err))
		return FallbackPayload()
	}

	payload, err := s.parser.Parse(completion)
	if err != nil {
		logger.Get().Warn("Failed to parse LLM completion, using fallback payload", zap.Error(err))
		return FallbackPayload()
	}

	for i := range payload.Quiz {
		payload.Quiz[i].Answer = canonicalizeAnswer(payload.Quiz[i].Answer)
	}
	return payload
}

// canonicalizeAnswer uppercases bare letter answers and reduces
// letter-prefixed answers ("b) Paris") to the bare letter. Anything else is
// left untouched as the full-text convention; the scorer disambiguates.
func canonicalizeAnswer(answer string) string {
	trimmed := strings.TrimSpace(answer)
	if trimmed == "" {
		return answer
	}

	first := unicode.ToUpper(rune(trimmed[0]))
	if first < 'A' || first > 'D' {
		return answer
	}
	if len(trimmed) == 1 {
		return string(first)
	}
	next, _ := utf8.DecodeRuneInString(trimmed[1:])
	if !unicode.IsLetter(next) {
		return string(first)
	}
	return answer
}

// truncateText caps article text fed to the model, cutting at a rune
// boundary and silently dropping the remainder.
func truncateText(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// FallbackPayload is the fixed, always-valid payload returned when
// generation fails for any reason. Byte-for-byte stable across runs.
func FallbackPayload() *domain.QuizPayload {
	return &domain.QuizPayload{
		Summary:     "Quiz generation failed for this article.",
		KeyEntities: map[string][]string{},
		Sections:    []string{},
		Quiz: []domain.QuizQuestion{
			{
				Question: "The quiz for this article could not be generated. What should you do?",
				Options: []string{
					"A) Give up",
					"B) Try generating the quiz again",
					"C) Ignore the problem",
					"D) Clear your cookies",
				},
				Answer:      "B",
				Difficulty:  "easy",
				Explanation: "There was an issue generating the quiz. Please try again.",
			},
		},
		RelatedTopics: []string{},
	}
}
