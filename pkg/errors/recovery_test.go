package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecover_WithPanic(t *testing.T) {
	testFunc := func() (err error) {
		defer Recover(&err, "TestOperation")
		panic("test panic message")
	}

	err := testFunc()
	require.Error(t, err)

	var panicErr *PanicError
	require.True(t, errors.As(err, &panicErr))
	assert.Equal(t, "TestOperation", panicErr.Operation)
	assert.Equal(t, "test panic message", panicErr.PanicValue)
	assert.NotEmpty(t, panicErr.StackTrace)
	assert.Equal(t, "panic in TestOperation: test panic message", panicErr.Error())
}

func TestRecover_WithoutPanic(t *testing.T) {
	testFunc := func() (err error) {
		defer Recover(&err, "TestOperation")
		return nil
	}

	assert.NoError(t, testFunc())
}

func TestRecover_WithExistingError(t *testing.T) {
	originalErr := fmt.Errorf("original error")

	testFunc := func() (err error) {
		defer Recover(&err, "TestOperation")
		err = originalErr
		panic("panic after error")
	}

	err := testFunc()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic in TestOperation")
	assert.ErrorIs(t, err, originalErr)
}

func TestSafeExecute(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		assert.NoError(t, SafeExecute("fold", func() error { return nil }))
	})

	t.Run("function error", func(t *testing.T) {
		want := fmt.Errorf("function error")
		assert.Same(t, want, SafeExecute("fold", func() error { return want }))
	})

	t.Run("panic", func(t *testing.T) {
		err := SafeExecute("fold", func() error {
			var m map[string]int
			m["boom"]++
			return nil
		})
		var panicErr *PanicError
		require.True(t, errors.As(err, &panicErr))
		assert.Equal(t, "fold", panicErr.Operation)
	})

	t.Run("error panic unwraps", func(t *testing.T) {
		err := SafeExecute("fold", func() error { panic(ErrSingularMatrix) })
		assert.True(t, Is(err, ErrSingularMatrix))
	})
}

func TestPanicError_String(t *testing.T) {
	panicErr := NewPanicError("TestOp", "test value")

	assert.Contains(t, panicErr.String(), "Stack trace:")
	assert.Contains(t, panicErr.String(), "panic in TestOp: test value")
	assert.Nil(t, panicErr.Unwrap())
}

func BenchmarkSafeExecute_NoPanic(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = SafeExecute("BenchmarkOp", func() error { return nil })
	}
}
