package service

import (
	"strings"
	"unicode"

	"wikiquiz/internal/domain"
	"wikiquiz/internal/util"
)

// ScoreAttempt grades user answers against a quiz's answer key. It is pure
// and deterministic. userAnswers is parallel-indexed to the question list;
// missing trailing answers count as not-correct, never as an error.
//
// Two answer-key conventions coexist: a bare letter in A-D is graded by the
// first character of the user's answer (case-insensitive), anything else
// requires an exact trimmed, case-sensitive match on the full text.
func ScoreAttempt(payload *domain.QuizPayload, userAnswers []string) domain.ScoreResult {
	total := len(payload.Quiz)
	correct := 0

	for i, question := range payload.Quiz {
		if i >= len(userAnswers) {
			continue
		}
		if isAnswerCorrect(question.Answer, userAnswers[i]) {
			correct++
		}
	}

	score := 0.0
	if total > 0 {
		score = util.RoundTo2(100 * float64(correct) / float64(total))
	}
	return domain.ScoreResult{
		Score:          score,
		CorrectAnswers: correct,
		TotalQuestions: total,
	}
}

func isAnswerCorrect(storedAnswer, userAnswer string) bool {
	key := strings.TrimSpace(storedAnswer)
	answer := strings.TrimSpace(userAnswer)

	if isLetterKey(key) {
		if answer == "" {
			return false
		}
		return unicode.ToUpper(rune(answer[0])) == unicode.ToUpper(rune(key[0]))
	}
	return answer == key
}

func isLetterKey(key string) bool {
	if len(key) != 1 {
		return false
	}
	upper := unicode.ToUpper(rune(key[0]))
	return upper >= 'A' && upper <= 'D'
}
