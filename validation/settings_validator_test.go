package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spindle-dev/spindle-host-sdk/validation"
)

type mockLookup struct {
	schemas map[string]string
}

func (m *mockLookup) GetSchema(name string) (string, bool) {
	s, ok := m.schemas[name]
	return s, ok
}

func TestSchemaValidator(t *testing.T) {
	lookup := &mockLookup{
		schemas: map[string]string{
			"thumbnail": `{
				"type": "object",
				"required": ["max_width"],
				"properties": {
					"max_width":  {"type": "integer", "minimum": 1},
					"max_height": {"type": "integer", "minimum": 1}
				}
			}`,
		},
	}
	v := validation.NewSchemaValidator(lookup)

	t.Run("ValidSettings", func(t *testing.T) {
		res, err := v.Validate("thumbnail", map[string]any{
			"max_width":  256,
			"max_height": 256,
		})
		require.NoError(t, err)
		assert.True(t, res.Valid)
		assert.Empty(t, res.Errors)
	})

	t.Run("MissingRequiredField", func(t *testing.T) {
		res, err := v.Validate("thumbnail", map[string]any{
			"max_height": 256,
		})
		require.NoError(t, err)
		assert.False(t, res.Valid)
		assert.NotEmpty(t, res.Errors)
	})

	t.Run("WrongType", func(t *testing.T) {
		res, err := v.Validate("thumbnail", map[string]any{
			"max_width": "wide",
		})
		require.NoError(t, err)
		assert.False(t, res.Valid)
	})

	t.Run("NoSchemaRegisteredIsValid", func(t *testing.T) {
		res, err := v.Validate("archive", map[string]any{"anything": true})
		require.NoError(t, err)
		assert.True(t, res.Valid)
	})

	t.Run("NilSettings", func(t *testing.T) {
		res, err := v.Validate("thumbnail", nil)
		require.NoError(t, err)
		assert.False(t, res.Valid, "nil settings miss the required field")
	})
}

func TestSchemaValidatorBadSchema(t *testing.T) {
	lookup := &mockLookup{schemas: map[string]string{"broken": `{"type": 42}`}}
	v := validation.NewSchemaValidator(lookup)

	_, err := v.Validate("broken", map[string]any{})
	assert.Error(t, err)
}
