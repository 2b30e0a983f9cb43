package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "unit-test-secret"
	testIssuer = "famtree-backend"
)

func TestValidateToken_RoundTrip(t *testing.T) {
	validator, err := NewJWTValidator(testSecret, testIssuer)
	require.NoError(t, err)

	token, err := GenerateToken(testSecret, testIssuer, "user-1", "user-1@example.com", time.Hour)
	require.NoError(t, err)

	claims, err := validator.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "user-1@example.com", claims.Email)
}

func TestValidateToken_StripsBearerPrefix(t *testing.T) {
	validator, err := NewJWTValidator(testSecret, testIssuer)
	require.NoError(t, err)

	token, err := GenerateToken(testSecret, testIssuer, "user-1", "", time.Hour)
	require.NoError(t, err)

	claims, err := validator.ValidateToken("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
}

func TestValidateToken_RejectsExpired(t *testing.T) {
	validator, err := NewJWTValidator(testSecret, testIssuer)
	require.NoError(t, err)

	token, err := GenerateToken(testSecret, testIssuer, "user-1", "", -time.Minute)
	require.NoError(t, err)

	_, err = validator.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateToken_RejectsWrongSecret(t *testing.T) {
	validator, err := NewJWTValidator(testSecret, testIssuer)
	require.NoError(t, err)

	token, err := GenerateToken("some-other-secret", testIssuer, "user-1", "", time.Hour)
	require.NoError(t, err)

	_, err = validator.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_RejectsWrongIssuer(t *testing.T) {
	validator, err := NewJWTValidator(testSecret, testIssuer)
	require.NoError(t, err)

	token, err := GenerateToken(testSecret, "other-service", "user-1", "", time.Hour)
	require.NoError(t, err)

	_, err = validator.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidClaims)
}

func TestValidateToken_RejectsEmpty(t *testing.T) {
	validator, err := NewJWTValidator(testSecret, testIssuer)
	require.NoError(t, err)

	_, err = validator.ValidateToken("")
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestNewJWTValidator_RequiresSecret(t *testing.T) {
	_, err := NewJWTValidator("", testIssuer)
	assert.Error(t, err)
}

func TestUserContextRoundTrip(t *testing.T) {
	ctx := SetUserInContext(context.Background(), &UserContext{UserID: "user-1", Email: "a@b.c"})

	user, err := GetUserFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.UserID)

	_, err = GetUserFromContext(context.Background())
	assert.Error(t, err)
}
