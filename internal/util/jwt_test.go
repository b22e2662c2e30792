package util

import (
	"ethics_eval_backend/internal/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestJWTRoundTrip(t *testing.T) {
	token, err := GenerateJWT("u1", model.LegalExpert, testSecret, time.Hour)
	require.NoError(t, err)

	claims, err := ParseJWT(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, model.LegalExpert, claims.Role)
}

func TestParseJWT_Rejects(t *testing.T) {
	token, err := GenerateJWT("u1", model.LegalExpert, testSecret, time.Hour)
	require.NoError(t, err)
	_, err = ParseJWT(token, "another-secret-another-secret-xx")
	assert.Error(t, err)

	expired, err := GenerateJWT("u1", model.LegalExpert, testSecret, -time.Minute)
	require.NoError(t, err)
	_, err = ParseJWT(expired, testSecret)
	assert.Error(t, err)

	anonymous, err := GenerateJWT("", model.Viewer, testSecret, time.Hour)
	require.NoError(t, err)
	_, err = ParseJWT(anonymous, testSecret)
	assert.Error(t, err)
}

func TestParseBoolDefault(t *testing.T) {
	assert.True(t, ParseBoolDefault("true", false))
	assert.True(t, ParseBoolDefault("1", false))
	assert.False(t, ParseBoolDefault("false", true))
	assert.True(t, ParseBoolDefault("", true))
	assert.False(t, ParseBoolDefault("nope", false))
}
