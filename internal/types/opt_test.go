package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptPresenceTracking(t *testing.T) {
	type payload struct {
		Name  Opt[string] `json:"name"`
		Count Opt[int]    `json:"count"`
	}

	t.Run("omitted key stays unset", func(t *testing.T) {
		var p payload
		require.NoError(t, json.Unmarshal([]byte(`{"name":"deep work"}`), &p))

		assert.True(t, p.Name.Set)
		assert.Equal(t, "deep work", p.Name.Value)
		assert.False(t, p.Count.Set)
	})

	t.Run("explicit null is present but null", func(t *testing.T) {
		var p payload
		require.NoError(t, json.Unmarshal([]byte(`{"name":null}`), &p))

		assert.True(t, p.Name.Set)
		assert.True(t, p.Name.Null)
		assert.Nil(t, p.Name.Ptr())
	})

	t.Run("value round-trips through Ptr", func(t *testing.T) {
		var p payload
		require.NoError(t, json.Unmarshal([]byte(`{"count":25}`), &p))

		require.True(t, p.Count.Set)
		require.NotNil(t, p.Count.Ptr())
		assert.Equal(t, 25, *p.Count.Ptr())
	})
}

func TestBoxPatchEmpty(t *testing.T) {
	var p BoxPatch
	require.NoError(t, json.Unmarshal([]byte(`{}`), &p))
	assert.True(t, p.Empty())

	require.NoError(t, json.Unmarshal([]byte(`{"notes":null}`), &p))
	assert.False(t, p.Empty())
	assert.True(t, p.Notes.Null)
}

func TestStatusValidation(t *testing.T) {
	assert.True(t, StatusScheduled.Valid())
	assert.True(t, StatusPaused.Valid())
	assert.False(t, BoxStatus("archived").Valid())

	assert.True(t, QualityGreat.Valid())
	assert.False(t, FocusQuality("amazing").Valid())

	assert.True(t, CompletionPartial.Valid())
	assert.False(t, CompletionStatus("abandoned").Valid())
}
