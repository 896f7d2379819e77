package oauth

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedactedToken_Formatting(t *testing.T) {
	token := NewRedactedToken("super-secret")

	assert.Equal(t, "[REDACTED]", token.String())
	assert.Equal(t, "[REDACTED]", fmt.Sprintf("%v", token))
	assert.Equal(t, "[REDACTED]", fmt.Sprintf("%s", token))
	assert.Equal(t, "oauth.RedactedToken{[REDACTED]}", fmt.Sprintf("%#v", token))
	assert.Equal(t, "super-secret", token.Value())
}

func TestRedactedToken_IsEmpty(t *testing.T) {
	assert.True(t, NewRedactedToken("").IsEmpty())
	assert.True(t, RedactedToken{}.IsEmpty())
	assert.False(t, NewRedactedToken("x").IsEmpty())
}

func TestRedactedToken_JSON(t *testing.T) {
	var identity ClientIdentity
	require.NoError(t, json.Unmarshal([]byte(`{"client_id":"abc","client_secret":"xyz"}`), &identity))
	assert.Equal(t, "xyz", identity.ClientSecret.Value())

	out, err := json.Marshal(identity)
	require.NoError(t, err)
	assert.JSONEq(t, `{"client_id":"abc","client_secret":"[REDACTED]"}`, string(out))
	assert.NotContains(t, fmt.Sprintf("%+v", identity), "xyz")

	assert.Error(t, json.Unmarshal([]byte(`{"client_secret":42}`), &identity))
}

func TestRedactedToken_InError(t *testing.T) {
	err := fmt.Errorf("exchange for %v failed: %w", NewRedactedToken("super-secret"), errors.New("boom"))
	assert.NotContains(t, err.Error(), "super-secret")
}
