package service

import (
	"encoding/json"
	"strings"

	"wikiquiz/internal/domain"
)

// QuizParser turns a raw LLM completion into a validated QuizPayload.
// It is a pure transform: no side effects, and every failure is a
// recoverable ParseFailure for the generation service to absorb.
type QuizParser struct{}

// NewQuizParser creates a new QuizParser.
func NewQuizParser() *QuizParser {
	return &QuizParser{}
}

// Parse strips markdown fencing, normalizes quotes and newlines, then
// attempts a strict JSON parse with one repair pass before giving up.
func (p *QuizParser) Parse(raw string) (*domain.QuizPayload, error) {
	text := stripCodeFence(raw)
	text = normalizeText(text)

	payload, err := decodePayload(text)
	if err != nil {
		// One repair pass: escape stray quotes inside string spans, then retry.
		repaired := repairUnescapedQuotes(text)
		payload, err = decodePayload(repaired)
		if err != nil {
			return nil, domain.NewParseFailureError("failed to parse LLM response as quiz payload", err)
		}
	}

	if err := payload.Validate(); err != nil {
		return nil, err
	}
	payload.Normalize()
	return payload, nil
}

func decodePayload(text string) (*domain.QuizPayload, error) {
	var payload domain.QuizPayload
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// stripCodeFence removes a leading/trailing markdown code fence with an
// optional "json" language tag.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// normalizeText replaces smart quotes with straight quotes and flattens
// newlines to spaces. Lossy: string values lose their original line
// breaks.
func normalizeText(s string) string {
	replacer := strings.NewReplacer(
		"“", `"`,
		"”", `"`,
		"\r\n", " ",
		"\n", " ",
		"\r", " ",
	)
	return replacer.Replace(s)
}

// repairUnescapedQuotes escapes double quotes that appear inside a quoted
// string span but do not terminate it. A quote inside a span is treated as
// a terminator only when the next non-space byte is JSON structure (":",
// ",", "}" or "]") or the end of input.
func repairUnescapedQuotes(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inString := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\\' && i+1 < len(s) {
			b.WriteByte(c)
			i++
			b.WriteByte(s[i])
			continue
		}
		if c != '"' {
			b.WriteByte(c)
			continue
		}
		if !inString {
			inString = true
			b.WriteByte(c)
			continue
		}
		j := i + 1
		for j < len(s) && (s[j] == ' ' || s[j] == '\t') {
			j++
		}
		if j >= len(s) || s[j] == ':' || s[j] == ',' || s[j] == '}' || s[j] == ']' {
			inString = false
			b.WriteByte(c)
		} else {
			b.WriteString(`\"`)
		}
	}
	return b.String()
}
