package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJourneyError(t *testing.T) {
	t.Run("message includes code, exercise and path", func(t *testing.T) {
		cause := stderrors.New("permission denied")
		err := NewIOError(CodeStatusRead, "failed to read status file", cause).
			WithPath("/tmp/.rust-journey-status").
			WithExercise("variables1")

		msg := err.Error()
		assert.Contains(t, msg, "[STATUS_READ]")
		assert.Contains(t, msg, "exercise:variables1")
		assert.Contains(t, msg, "/tmp/.rust-journey-status")
		assert.Contains(t, msg, "failed to read status file")
		assert.Contains(t, msg, "permission denied")
	})

	t.Run("unwrap exposes the cause", func(t *testing.T) {
		cause := stderrors.New("boom")
		err := NewToolchainError(CodeToolchainSpawn, "failed to run rustc", cause)

		assert.Equal(t, cause, err.Unwrap())
		assert.True(t, stderrors.Is(err, cause))
	})

	t.Run("is compares type and code", func(t *testing.T) {
		a := NewWatchError(CodeWatchSetup, "a", nil)
		b := NewWatchError(CodeWatchSetup, "b", nil)
		c := NewWatchError(CodeWatchDisconnected, "c", nil)

		assert.True(t, stderrors.Is(a, b))
		assert.False(t, stderrors.Is(a, c))
	})

	t.Run("context map is created lazily", func(t *testing.T) {
		err := NewValidationError("X", "bad").WithContext("key", 1)
		require.NotNil(t, err.Context)
		assert.Equal(t, 1, err.Context["key"])
	})
}

func TestErrorPredicates(t *testing.T) {
	wrapped := fmt.Errorf("loading: %w", NewConfigError(CodeRegistryMissing, "missing", nil))

	assert.True(t, IsConfigError(wrapped))
	assert.False(t, IsToolchainError(wrapped))
	assert.False(t, IsWatchError(wrapped))
	assert.False(t, IsIOError(wrapped))
	assert.False(t, IsRecoverable(wrapped))

	assert.True(t, IsRecoverable(NewValidationError("X", "y")))
	assert.True(t, IsToolchainError(NewToolchainError(CodeToolchainSpawn, "x", nil)))
	assert.True(t, IsWatchError(NewWatchError(CodeWatchSetup, "x", nil)))
	assert.True(t, IsIOError(NewIOError(CodeStatusWrite, "x", nil)))
	assert.False(t, IsConfigError(stderrors.New("plain")))
}

type recordingLogger struct {
	errors []string
	warns  []string
	fields []interface{}
}

func (r *recordingLogger) Error(ctx context.Context, err error, msg string, fields ...interface{}) {
	r.errors = append(r.errors, msg)
	r.fields = fields
}

func (r *recordingLogger) Warn(ctx context.Context, err error, msg string, fields ...interface{}) {
	r.warns = append(r.warns, msg)
	r.fields = fields
}

func TestErrorHandler(t *testing.T) {
	logger := &recordingLogger{}
	handler := NewErrorHandler(logger)

	handler.Handle(context.Background(), nil)
	assert.Empty(t, logger.errors)

	handler.Handle(context.Background(), NewIOError(CodeStatusWrite, "write failed", nil).WithPath("status"))
	require.Len(t, logger.errors, 1)
	assert.Equal(t, "write failed", logger.errors[0])
	assert.Contains(t, logger.fields, "path")
	assert.Contains(t, logger.fields, "status")

	handler.Handle(context.Background(), NewValidationError("X", "soft"))
	assert.Equal(t, []string{"soft"}, logger.warns)

	handler.Handle(context.Background(), stderrors.New("plain"))
	assert.Len(t, logger.errors, 2)
}
