package errors

import (
	stderrors "errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError(t *testing.T) {
	err := Validation("cantidad", "debe estar entre %d y %d", 1, 100)

	assert.True(t, IsValidation(err))
	assert.False(t, IsTransient(err))
	assert.Equal(t, "cantidad: debe estar entre 1 y 100", err.Error())
	assert.Equal(t, "debe estar entre 1 y 100", UserMessage(err))

	wrapped := fmt.Errorf("purge: %w", err)
	assert.True(t, IsValidation(wrapped))
	assert.Equal(t, "debe estar entre 1 y 100", UserMessage(wrapped))
}

func TestTransientActionError(t *testing.T) {
	cause := stderrors.New("missing permissions")
	err := Transient("ban", cause)

	require.Error(t, err)
	assert.True(t, IsTransient(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "ban")

	assert.NoError(t, Transient("ban", nil))
	assert.NotEmpty(t, UserMessage(err))
}

func TestRecoverMiddleware(t *testing.T) {
	handler = nil

	assert.NotPanics(t, func() {
		defer RecoverMiddleware()()
		panic("boom")
	})
}

func TestRecoverWith(t *testing.T) {
	handler = nil
	var seen interface{}

	assert.NotPanics(t, func() {
		defer RecoverWith(func(r interface{}) { seen = r })()
		panic("boom")
	})
	assert.Equal(t, "boom", seen)
}

func TestErrorHandlerShutdown(t *testing.T) {
	var shutdowns int32
	exitCode := make(chan int, 1)

	h := NewErrorHandler(Options{
		MaxErrors:  2,
		Window:     time.Hour,
		OnShutdown: func() { atomic.AddInt32(&shutdowns, 1) },
	})
	h.exit = func(code int) { exitCode <- code }
	defer h.Stop()

	for i := 0; i < 4; i++ {
		h.IncrementError()
	}
	assert.Equal(t, int32(4), h.Count())

	select {
	case code := <-exitCode:
		assert.Equal(t, 1, code)
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not shut down")
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&shutdowns), "only the first error over budget shuts down")
}

func TestErrorHandlerWindowResets(t *testing.T) {
	h := NewErrorHandler(Options{MaxErrors: 100, Window: 20 * time.Millisecond})
	defer h.Stop()

	h.IncrementError()
	h.IncrementError()
	assert.Eventually(t, func() bool { return h.Count() == 0 }, time.Second, 5*time.Millisecond)
}

func TestErrorHandlerStopTwice(t *testing.T) {
	h := NewErrorHandler(Options{})
	h.Stop()
	assert.NotPanics(t, h.Stop)
}
