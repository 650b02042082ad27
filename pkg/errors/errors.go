package errors

import (
	stderrors "errors"
	"fmt"
)

// Error codes
const (
	CodeAPIError        = "API_ERROR"
	CodeValidation      = "VALIDATION_ERROR"
	CodeCache           = "CACHE_ERROR"
	CodeService         = "SERVICE_ERROR"
	CodeChannelNotFound = "CHANNEL_NOT_FOUND"
	CodeStorage         = "STORAGE_ERROR"
)

// ErrChannelNotFound matches any *ChannelNotFoundError via errors.Is.
var ErrChannelNotFound = stderrors.New("channel not found")

type AppError struct {
	Message    string
	Code       string
	StatusCode int
	Context    map[string]any
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

type APIError struct {
	*AppError
}

func NewAPIError(message string, statusCode int, context map[string]any) *APIError {
	return &APIError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeAPIError,
			StatusCode: statusCode,
			Context:    context,
		},
	}
}

type ValidationError struct {
	*AppError
	Field string
	Value any
}

func NewValidationError(message, field string, value any) *ValidationError {
	return &ValidationError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeValidation,
			StatusCode: 400,
			Context: map[string]any{
				"field": field,
				"value": value,
			},
		},
		Field: field,
		Value: value,
	}
}

type CacheError struct {
	*AppError
	Operation string
	Key       string
}

func NewCacheError(message, operation, key string, cause error) *CacheError {
	return &CacheError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeCache,
			StatusCode: 500,
			Context: map[string]any{
				"operation": operation,
				"key":       key,
			},
			Cause: cause,
		},
		Operation: operation,
		Key:       key,
	}
}

type ServiceError struct {
	*AppError
	Service   string
	Operation string
}

func NewServiceError(message, service, operation string, cause error) *ServiceError {
	return &ServiceError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeService,
			StatusCode: 500,
			Context: map[string]any{
				"service":   service,
				"operation": operation,
			},
			Cause: cause,
		},
		Service:   service,
		Operation: operation,
	}
}

// StorageError reports a failed statement against a named table.
type StorageError struct {
	*AppError
	Table     string
	Operation string
}

func NewStorageError(message, table, operation string, cause error) *StorageError {
	return &StorageError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeStorage,
			StatusCode: 500,
			Context: map[string]any{
				"table":     table,
				"operation": operation,
			},
			Cause: cause,
		},
		Table:     table,
		Operation: operation,
	}
}

// ChannelNotFoundError is returned when a channel URL cannot be resolved to an id.
type ChannelNotFoundError struct {
	*AppError
	URL    string
	Handle string
}

func NewChannelNotFoundError(url, handle string, cause error) *ChannelNotFoundError {
	return &ChannelNotFoundError{
		AppError: &AppError{
			Message:    fmt.Sprintf("channel not found for %q", url),
			Code:       CodeChannelNotFound,
			StatusCode: 404,
			Context: map[string]any{
				"url":    url,
				"handle": handle,
			},
			Cause: cause,
		},
		URL:    url,
		Handle: handle,
	}
}

func (e *ChannelNotFoundError) Is(target error) bool {
	return target == ErrChannelNotFound
}
