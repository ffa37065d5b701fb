package schema_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spindle-dev/spindle-host-sdk/capability"
	"github.com/spindle-dev/spindle-host-sdk/schema"
)

type thumbnailSettings struct {
	MaxWidth  int    `json:"max_width"`
	MaxHeight int    `json:"max_height"`
	Quality   string `json:"quality,omitempty"`
}

func TestRegisterModelStruct(t *testing.T) {
	reg := schema.NewRegistry()
	require.NoError(t, reg.Register("thumbnail", thumbnailSettings{}))

	raw, ok := reg.GetSchema("thumbnail")
	require.True(t, ok)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &parsed))
	props, ok := parsed["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "max_width")
	assert.Contains(t, props, "max_height")
}

func TestRegisterRawSchema(t *testing.T) {
	reg := schema.NewRegistry()
	raw := `{"type": "object", "required": ["path"]}`
	require.NoError(t, reg.Register("archive", raw))

	got, ok := reg.GetSchema("archive")
	require.True(t, ok)
	assert.JSONEq(t, raw, got)
}

func TestRegisterSchemaMap(t *testing.T) {
	reg := schema.NewRegistry()
	require.NoError(t, reg.Register("preview", map[string]any{"type": "object"}))

	got, ok := reg.GetSchema("preview")
	require.True(t, ok)
	assert.JSONEq(t, `{"type":"object"}`, got)
}

func TestDuplicateRegistrationRejected(t *testing.T) {
	reg := schema.NewRegistry()
	require.NoError(t, reg.Register("thumbnail", thumbnailSettings{}))
	assert.Error(t, reg.Register("thumbnail", thumbnailSettings{}))
}

func TestRegisterInterface(t *testing.T) {
	reg := schema.NewRegistry()

	require.NoError(t, reg.RegisterInterface(capability.Interface{
		Name:        "thumbnail",
		ConfigModel: thumbnailSettings{},
	}))
	_, ok := reg.GetSchema("thumbnail")
	assert.True(t, ok)

	// No config model means no schema, not an error.
	require.NoError(t, reg.RegisterInterface(capability.Interface{Name: "archive"}))
	_, ok = reg.GetSchema("archive")
	assert.False(t, ok)

	assert.ElementsMatch(t, []string{"thumbnail"}, reg.List())
}
