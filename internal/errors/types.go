package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeToolchain  ErrorType = "toolchain"
	ErrorTypeWatch      ErrorType = "watch"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeInternal   ErrorType = "internal"
)

// Error codes shared across packages.
const (
	CodeRegistryMissing   = "REGISTRY_MISSING"
	CodeRegistryMalformed = "REGISTRY_MALFORMED"
	CodeStatusRead        = "STATUS_READ"
	CodeStatusWrite       = "STATUS_WRITE"
	CodeFileMissing       = "VERIFY_FILE_MISSING"
	CodeInvalidPath       = "VERIFY_PATH_INVALID"
	CodeToolchainSpawn    = "TOOLCHAIN_SPAWN"
	CodeToolchainTimeout  = "TOOLCHAIN_TIMEOUT"
	CodeWatchSetup        = "WATCH_SETUP"
	CodeWatchDisconnected = "WATCH_DISCONNECTED"
	CodeWatchQueueFull    = "WATCH_QUEUE_FULL"
	CodeExerciseUnknown   = "EXERCISE_UNKNOWN"
	CodeInvalidConfig     = "CONFIG_INVALID"
	CodeInputClosed       = "INPUT_CLOSED"
)

// JourneyError is a structured error type with context.
type JourneyError struct {
	Type        ErrorType
	Code        string
	Message     string
	Cause       error
	Context     map[string]interface{}
	Exercise    string
	Path        string
	Recoverable bool
}

// Error implements the error interface.
func (e *JourneyError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.Exercise != "" {
		parts = append(parts, "exercise:"+e.Exercise)
	}

	if e.Path != "" {
		parts = append(parts, e.Path)
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *JourneyError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison.
func (e *JourneyError) Is(target error) bool {
	var t *JourneyError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *JourneyError) WithContext(key string, value interface{}) *JourneyError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithPath records the file or directory the failing operation touched.
func (e *JourneyError) WithPath(path string) *JourneyError {
	e.Path = path

	return e
}

// WithExercise adds exercise context.
func (e *JourneyError) WithExercise(name string) *JourneyError {
	e.Exercise = name

	return e
}

// Error creation functions

// NewValidationError creates a validation error.
func NewValidationError(code, message string) *JourneyError {
	return &JourneyError{
		Type:        ErrorTypeValidation,
		Code:        code,
		Message:     message,
		Recoverable: true,
	}
}

// NewToolchainError creates an error for a toolchain that could not be run.
// A toolchain that ran and rejected the exercise is not an error.
func NewToolchainError(code, message string, cause error) *JourneyError {
	return &JourneyError{
		Type:        ErrorTypeToolchain,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: false,
	}
}

// NewIOError creates an I/O error.
func NewIOError(code, message string, cause error) *JourneyError {
	return &JourneyError{
		Type:        ErrorTypeIO,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: false,
	}
}

// NewWatchError creates a file watching error.
func NewWatchError(code, message string, cause error) *JourneyError {
	return &JourneyError{
		Type:        ErrorTypeWatch,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: false,
	}
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string, cause error) *JourneyError {
	return &JourneyError{
		Type:        ErrorTypeConfig,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: false,
	}
}

// NewInternalError creates an internal error.
func NewInternalError(code, message string, cause error) *JourneyError {
	return &JourneyError{
		Type:        ErrorTypeInternal,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: false,
	}
}

// Error recovery and handling utilities

// IsRecoverable checks if an error is recoverable.
func IsRecoverable(err error) bool {
	var je *JourneyError
	if errors.As(err, &je) {
		return je.Recoverable
	}

	return false
}

// IsConfigError checks if an error is configuration-related.
func IsConfigError(err error) bool {
	return isType(err, ErrorTypeConfig)
}

// IsToolchainError checks if an error came from spawning the toolchain.
func IsToolchainError(err error) bool {
	return isType(err, ErrorTypeToolchain)
}

// IsWatchError checks if an error came from the file watcher.
func IsWatchError(err error) bool {
	return isType(err, ErrorTypeWatch)
}

// IsIOError checks if an error is I/O related.
func IsIOError(err error) bool {
	return isType(err, ErrorTypeIO)
}

func isType(err error, t ErrorType) bool {
	var je *JourneyError
	if errors.As(err, &je) {
		return je.Type == t
	}

	return false
}

// ErrorHandler provides centralized error handling.
type ErrorHandler struct {
	logger Logger
}

// Logger interface for error logging.
type Logger interface {
	Error(ctx context.Context, err error, msg string, fields ...interface{})
	Warn(ctx context.Context, err error, msg string, fields ...interface{})
}

// NewErrorHandler creates a new error handler.
func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Handle logs an error with fields derived from its structure.
func (h *ErrorHandler) Handle(ctx context.Context, err error) {
	if err == nil || h.logger == nil {
		return
	}

	var je *JourneyError
	if !errors.As(err, &je) {
		h.logger.Error(ctx, err, "unhandled error")
		return
	}

	fields := []interface{}{"type", string(je.Type), "code", je.Code}
	if je.Path != "" {
		fields = append(fields, "path", je.Path)
	}
	if je.Exercise != "" {
		fields = append(fields, "exercise", je.Exercise)
	}
	for k, v := range je.Context {
		fields = append(fields, k, v)
	}

	if je.Recoverable {
		h.logger.Warn(ctx, je.Cause, je.Message, fields...)
		return
	}
	h.logger.Error(ctx, je.Cause, je.Message, fields...)
}
