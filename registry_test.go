package fanout

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(name string) *Function {
	return NewAction(name, func(ctx context.Context) error { return nil })
}

func TestRegistry(t *testing.T) {
	t.Run("single function needs no export", func(t *testing.T) {
		r, err := NewRegistry(noop("only"))
		require.NoError(t, err)

		fn, err := r.Choose("")

		require.NoError(t, err)
		assert.Equal(t, "only", fn.Name())
	})

	t.Run("export selects by name", func(t *testing.T) {
		r, err := NewRegistry(noop("a"), noop("b"), noop("c"))
		require.NoError(t, err)

		fn, err := r.Choose("b")

		require.NoError(t, err)
		assert.Equal(t, "b", fn.Name())
		assert.Equal(t, 3, r.Len())
	})

	t.Run("no functions", func(t *testing.T) {
		r, err := NewRegistry()
		require.NoError(t, err)

		_, err = r.Choose("")

		assert.ErrorIs(t, err, ErrNoFunctions)
	})

	t.Run("too many functions", func(t *testing.T) {
		r, err := NewRegistry(noop("a"), noop("b"))
		require.NoError(t, err)

		_, err = r.Choose("")

		assert.ErrorIs(t, err, ErrTooManyFunctions)
	})

	t.Run("export not found", func(t *testing.T) {
		r, err := NewRegistry(noop("a"))
		require.NoError(t, err)

		_, err = r.Choose("z")

		assert.ErrorIs(t, err, ErrExportNotFound)
		assert.Contains(t, err.Error(), "z")
	})

	t.Run("duplicate names", func(t *testing.T) {
		_, err := NewRegistry(noop("a"), noop("a"))

		assert.ErrorIs(t, err, ErrDuplicateFunction)
	})

	t.Run("nil function", func(t *testing.T) {
		r, err := NewRegistry()
		require.NoError(t, err)

		assert.Error(t, r.Add(nil))
	})
}
