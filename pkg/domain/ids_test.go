package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "statusreg/pkg/domain-errors"
)

// Owner IDs are parsed from bearer token claims, so every malformed value must
// be rejected with an invalid_input code.
func TestParseOwnerID(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseOwnerID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseOwnerID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseOwnerID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		raw := uuid.New()
		id, err := ParseOwnerID(raw.String())
		require.NoError(t, err)
		assert.Equal(t, OwnerID(raw), id)
		assert.Equal(t, raw.String(), id.String())
		assert.False(t, id.IsNil())
	})
}

func TestOwnerIDJSON(t *testing.T) {
	owner := NewOwnerID()

	data, err := json.Marshal(map[string]OwnerID{"owner_id": owner})
	require.NoError(t, err)
	assert.JSONEq(t, `{"owner_id":"`+owner.String()+`"}`, string(data))

	var decoded map[string]OwnerID
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, owner, decoded["owner_id"])

	assert.Error(t, json.Unmarshal([]byte(`{"owner_id":"nope"}`), &decoded))
}
