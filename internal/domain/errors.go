package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	ErrInternal     ErrorCode = "INTERNAL_ERROR"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"

	// Quiz pipeline errors
	ErrQuizNotFound    ErrorCode = "QUIZ_NOT_FOUND"
	ErrInvalidURL      ErrorCode = "INVALID_URL"
	ErrScrapeFailed    ErrorCode = "SCRAPE_FAILED"
	ErrParseFailure    ErrorCode = "PARSE_FAILURE"
	ErrLLMServiceError ErrorCode = "LLM_SERVICE_ERROR"
	ErrPersistence     ErrorCode = "PERSISTENCE_ERROR"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
	})
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Helper functions for common errors
func NewNotFoundError(message string) *DomainError {
	return NewError(ErrNotFound, message, nil)
}

func NewInvalidInputError(message string) *DomainError {
	return NewError(ErrInvalidInput, message, nil)
}

func NewInternalError(message string, err error) *DomainError {
	return NewError(ErrInternal, message, err)
}

func NewQuizNotFoundError(quizID int64) *DomainError {
	return NewError(ErrQuizNotFound, fmt.Sprintf("Quiz not found with ID: %d", quizID), nil)
}

func NewInvalidURLError(url string) *DomainError {
	return NewError(ErrInvalidURL, fmt.Sprintf("Invalid Wikipedia URL: %s", url), nil)
}

func NewScrapeFailedError(url string, err error) *DomainError {
	return NewError(ErrScrapeFailed, fmt.Sprintf("Failed to scrape Wikipedia article: %s", url), err)
}

func NewParseFailureError(message string, err error) *DomainError {
	return NewError(ErrParseFailure, message, err)
}

func NewLLMServiceError(err error) *DomainError {
	return NewError(ErrLLMServiceError, "Failed to process with LLM service", err)
}

func NewPersistenceError(message string, err error) *DomainError {
	return NewError(ErrPersistence, message, err)
}

// IsParseFailure reports whether err is a parser-boundary failure. The
// generation service uses this to fall through to the fallback payload.
func IsParseFailure(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == ErrParseFailure
	}
	return false
}
