package api

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyKnownRules(t *testing.T) {
	tests := []struct {
		err       error
		title     string
		retryable bool
	}{
		{&APIError{StatusCode: 400, Message: "No route found for USDC -> ETH"}, "Route unavailable", false},
		{&APIError{StatusCode: 400, Message: "insufficient balance for account"}, "Insufficient balance", false},
		{&APIError{StatusCode: 400, Message: "unsupported asset pair"}, "Unsupported request", false},
		{&APIError{StatusCode: 410, Message: "quote expired"}, "Quote expired", true},
		{&APIError{StatusCode: 429, Message: "rate limit exceeded"}, "Too many requests", true},
	}

	for _, tt := range tests {
		got := Classify(tt.err)
		assert.Equal(t, tt.title, got.Title, "error: %v", tt.err)
		assert.Equal(t, tt.retryable, got.Retryable, "error: %v", tt.err)
	}
}

func TestClassifyMatchesWrappedErrors(t *testing.T) {
	err := fmt.Errorf("failed to get quote: %w", &APIError{StatusCode: 400, Message: "No route found"})
	got := Classify(err)
	assert.Equal(t, "Route unavailable", got.Title)
}

func TestClassifyServerError(t *testing.T) {
	got := Classify(&APIError{StatusCode: 503})
	assert.Equal(t, "Service unavailable", got.Title)
	assert.True(t, got.Retryable)
}

func TestClassifyFallback(t *testing.T) {
	got := Classify(errors.New("connection refused"))
	assert.Equal(t, "Something went wrong", got.Title)
	assert.Equal(t, "connection refused", got.Message)
	assert.True(t, got.Retryable)
}

func TestClassifyNil(t *testing.T) {
	assert.Equal(t, ClassifiedError{}, Classify(nil))
}
