package api

import (
	"errors"
	"strings"
)

// ClassifiedError is a user-facing rendering of a backend or local failure.
// Retryable tells the frontend whether offering a retry action makes sense.
type ClassifiedError struct {
	Title     string
	Message   string
	Retryable bool
}

type errorRule struct {
	substring string
	title     string
	message   string
	retryable bool
}

// Known backend message fragments, checked in order.
var errorRules = []errorRule{
	{"no route found", "Route unavailable", "No route exists for this asset pair right now.", false},
	{"insufficient balance", "Insufficient balance", "Your balance does not cover this amount.", false},
	{"unsupported", "Unsupported request", "The backend does not support this request.", false},
	{"expired", "Quote expired", "The quote expired before it could be executed. Request a new one.", true},
	{"rate limit", "Too many requests", "The backend is rate limiting requests. Wait a moment and retry.", true},
}

// Classify maps an error to a {title, message, retryable} tuple. Server-side
// (5xx) and unrecognized errors default to a generic retryable message.
func Classify(err error) ClassifiedError {
	if err == nil {
		return ClassifiedError{}
	}

	message := err.Error()
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		message = apiErr.Message
	}

	lower := strings.ToLower(message)
	for _, rule := range errorRules {
		if strings.Contains(lower, rule.substring) {
			return ClassifiedError{Title: rule.title, Message: rule.message, Retryable: rule.retryable}
		}
	}

	if errors.As(err, &apiErr) && apiErr.StatusCode >= 500 {
		return ClassifiedError{
			Title:     "Service unavailable",
			Message:   "The swap service hit a temporary problem. Try again.",
			Retryable: true,
		}
	}

	return ClassifiedError{
		Title:     "Something went wrong",
		Message:   message,
		Retryable: true,
	}
}
