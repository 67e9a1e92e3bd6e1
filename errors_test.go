package arbor_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/syssam/arbor"
)

func TestNotFoundError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := arbor.NewNotFoundError("example")
		assert.Equal(t, "arbor: example not found", err.Error())
	})

	t.Run("ErrorWithID", func(t *testing.T) {
		err := arbor.NewNotFoundErrorWithID("example", int64(7))
		assert.Equal(t, "arbor: example not found (id=7)", err.Error())
		assert.Equal(t, int64(7), err.ID())
	})

	t.Run("Is", func(t *testing.T) {
		err := arbor.NewNotFoundError("example")
		assert.True(t, errors.Is(err, arbor.ErrNotFound))
	})

	t.Run("IsNotFound", func(t *testing.T) {
		err := arbor.NewNotFoundError("example")
		assert.True(t, arbor.IsNotFound(err))

		// Wrapped error
		wrapped := fmt.Errorf("wrapper: %w", err)
		assert.True(t, arbor.IsNotFound(wrapped))

		// Sentinel error
		assert.True(t, arbor.IsNotFound(arbor.ErrNotFound))

		// Non-matching error
		assert.False(t, arbor.IsNotFound(errors.New("other error")))
		assert.False(t, arbor.IsNotFound(nil))
	})
}

func TestNotSingularError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := arbor.NewNotSingularError("example")
		assert.Equal(t, "arbor: example not singular", err.Error())
	})

	t.Run("ErrorWithCount", func(t *testing.T) {
		err := arbor.NewNotSingularErrorWithCount("example", 3)
		assert.Equal(t, "arbor: example not singular (got 3 results, expected 1)", err.Error())
		assert.Equal(t, 3, err.Count())
	})

	t.Run("Is", func(t *testing.T) {
		err := arbor.NewNotSingularError("example")
		assert.True(t, errors.Is(err, arbor.ErrNotSingular))
	})

	t.Run("IsNotSingular", func(t *testing.T) {
		err := arbor.NewNotSingularError("example")
		assert.True(t, arbor.IsNotSingular(err))

		wrapped := fmt.Errorf("wrapper: %w", err)
		assert.True(t, arbor.IsNotSingular(wrapped))

		assert.False(t, arbor.IsNotSingular(errors.New("other error")))
		assert.False(t, arbor.IsNotSingular(nil))
	})
}

func TestNotLoadedError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := arbor.NewNotLoadedError("parent")
		assert.Equal(t, `arbor: edge "parent" was not loaded`, err.Error())
		assert.Equal(t, "parent", err.Edge())
	})

	t.Run("IsNotLoaded", func(t *testing.T) {
		err := arbor.NewNotLoadedError("children")
		assert.True(t, arbor.IsNotLoaded(err))

		wrapped := fmt.Errorf("wrapper: %w", err)
		assert.True(t, arbor.IsNotLoaded(wrapped))

		assert.False(t, arbor.IsNotLoaded(errors.New("other error")))
		assert.False(t, arbor.IsNotLoaded(nil))
	})
}

func TestConstraintError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := arbor.NewConstraintError("UNIQUE constraint failed", nil)
		assert.Equal(t, "arbor: constraint failed: UNIQUE constraint failed", err.Error())
	})

	t.Run("Unwrap", func(t *testing.T) {
		underlying := errors.New("db error")
		err := arbor.NewConstraintError("constraint violated", underlying)
		assert.True(t, errors.Is(err, underlying))
	})

	t.Run("IsConstraintError", func(t *testing.T) {
		err := arbor.NewConstraintError("fk violated", nil)
		assert.True(t, arbor.IsConstraintError(err))
		assert.False(t, arbor.IsConstraintError(errors.New("other error")))
		assert.False(t, arbor.IsConstraintError(nil))
	})
}

func TestQueryError(t *testing.T) {
	underlying := errors.New("timeout")
	err := arbor.NewQueryError("example", "find", underlying)
	assert.Equal(t, "arbor: querying example (find): timeout", err.Error())
	assert.True(t, errors.Is(err, underlying))
	assert.True(t, arbor.IsQueryError(err))
	assert.False(t, arbor.IsQueryError(underlying))
}

func TestMutationError(t *testing.T) {
	underlying := errors.New("disk full")
	err := arbor.NewMutationError("example", "save", underlying)
	assert.Equal(t, "arbor: save example: disk full", err.Error())
	assert.True(t, errors.Is(err, underlying))
	assert.True(t, arbor.IsMutationError(err))
	assert.False(t, arbor.IsMutationError(nil))
}

func TestValidationError(t *testing.T) {
	underlying := errors.New("too long")
	err := arbor.NewValidationError("name", underlying)
	assert.Equal(t, `arbor: validator failed for field "name": too long`, err.Error())
	assert.True(t, errors.Is(err, underlying))
	assert.True(t, arbor.IsValidationError(err))
}

func TestCacheKey(t *testing.T) {
	k := arbor.CacheKey{
		Table:      "self_ref_examples",
		Operation:  "find",
		Predicates: "name = ?|[test1]",
		OrderBy:    "id ASC",
	}
	assert.Equal(t, "self_ref_examples:find:name = ?|[test1]:id ASC", k.String())
	assert.Equal(t, "self_ref_examples:", k.TablePrefix())

	k.Limit = 10
	assert.Equal(t, "self_ref_examples:find:name = ?|[test1]:id ASC:10", k.String())
}
