// Package errors defines the structured error taxonomy for chat and
// escalation operations.
package errors

import (
	"fmt"
)

// ErrorCode identifies a failure class across the chat pipeline.
type ErrorCode string

const (
	// ErrCodeInvalidArgument indicates invalid input parameters.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// ErrCodeRateLimitExceeded indicates the per-user rate limit was hit.
	ErrCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"
	// ErrCodeProviderFailed indicates one completion provider failed.
	ErrCodeProviderFailed ErrorCode = "PROVIDER_FAILED"
	// ErrCodeProvidersExhausted indicates every completion provider failed.
	ErrCodeProvidersExhausted ErrorCode = "PROVIDERS_EXHAUSTED"
	// ErrCodeClassificationAmbiguous indicates intent classification could
	// not produce a confident label.
	ErrCodeClassificationAmbiguous ErrorCode = "CLASSIFICATION_AMBIGUOUS"
	// ErrCodeStateUnavailable indicates the session store could not be read.
	ErrCodeStateUnavailable ErrorCode = "STATE_UNAVAILABLE"
	// ErrCodeDispatchFailed indicates the escalation could not be handed off.
	ErrCodeDispatchFailed ErrorCode = "DISPATCH_FAILED"
	// ErrCodeTimeout indicates the operation timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
)

// ChatError is a structured error carrying its failure class.
type ChatError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ChatError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *ChatError) Unwrap() error {
	return e.Cause
}

// GetCode returns the error code.
func (e *ChatError) GetCode() ErrorCode {
	return e.Code
}

// InvalidArgument creates an invalid argument error.
func InvalidArgument(msg string) *ChatError {
	return &ChatError{Code: ErrCodeInvalidArgument, Message: msg}
}

// RateLimitExceeded creates a rate limit exceeded error.
func RateLimitExceeded(msg string) *ChatError {
	return &ChatError{Code: ErrCodeRateLimitExceeded, Message: msg}
}

// ProvidersExhausted creates a providers exhausted error.
func ProvidersExhausted(cause error) *ChatError {
	return &ChatError{Code: ErrCodeProvidersExhausted, Message: "all completion providers failed", Cause: cause}
}

// StateUnavailable creates a state unavailable error.
func StateUnavailable(cause error) *ChatError {
	return &ChatError{Code: ErrCodeStateUnavailable, Message: "session state unavailable", Cause: cause}
}

// DispatchFailed creates a dispatch failed error.
func DispatchFailed(cause error) *ChatError {
	return &ChatError{Code: ErrCodeDispatchFailed, Message: "escalation dispatch failed", Cause: cause}
}
