package veloxext_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/syssam/veloxext"
)

func TestNotFoundError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := veloxext.NewNotFoundError("Customer")
		assert.Equal(t, "veloxext: Customer not found", err.Error())
	})

	t.Run("ErrorWithID", func(t *testing.T) {
		err := veloxext.NewNotFoundErrorWithID("Customer", 7)
		assert.Equal(t, "veloxext: Customer not found (id=7)", err.Error())
		assert.Equal(t, 7, err.ID())
		assert.Equal(t, "Customer", err.Label())
	})

	t.Run("IsNotFound", func(t *testing.T) {
		err := veloxext.NewNotFoundError("Order")
		assert.True(t, errors.Is(err, veloxext.ErrNotFound))
		assert.True(t, veloxext.IsNotFound(fmt.Errorf("wrapper: %w", err)))
		assert.True(t, veloxext.IsNotFound(veloxext.ErrNotFound))
		assert.False(t, veloxext.IsNotFound(errors.New("other error")))
		assert.False(t, veloxext.IsNotFound(nil))
	})
}

func TestNotSingularError(t *testing.T) {
	err := veloxext.NewNotSingularError("Customer")
	assert.Equal(t, "veloxext: Customer not singular", err.Error())
	assert.True(t, errors.Is(err, veloxext.ErrNotSingular))
	assert.True(t, veloxext.IsNotSingular(fmt.Errorf("wrapper: %w", err)))
	assert.False(t, veloxext.IsNotSingular(veloxext.NewNotFoundError("Customer")))
	assert.False(t, veloxext.IsNotSingular(nil))
}

func TestConfigError(t *testing.T) {
	err := veloxext.NewConfigError("Unknown database %s", "replica")
	assert.Equal(t, "Unknown database replica", err.Error())
	assert.True(t, errors.Is(err, veloxext.ErrConfig))
	assert.True(t, veloxext.IsConfigError(fmt.Errorf("sqlcreate: %w", err)))
	assert.False(t, veloxext.IsConfigError(errors.New("other")))
	assert.False(t, veloxext.IsConfigError(nil))
}
