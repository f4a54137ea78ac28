package util

import (
	"smartgrade_backend/internal/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	user := &model.User{
		BaseModel: model.BaseModel{ID: 42},
		Name:      "Alice Johnson",
		Email:     "alice@example.com",
		Role:      model.Student,
	}

	token, err := GenerateJWT(user, "unit-test-secret", time.Hour)
	require.NoError(t, err)

	claims, err := ParseJWT(token, "unit-test-secret")
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, model.Student, claims.Role)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "Alice Johnson", claims.Name)
}

func TestJWTWrongSecret(t *testing.T) {
	user := &model.User{BaseModel: model.BaseModel{ID: 1}, Role: model.Proctor}

	token, err := GenerateJWT(user, "secret-a", time.Hour)
	require.NoError(t, err)

	_, err = ParseJWT(token, "secret-b")
	assert.Error(t, err)
}

func TestJWTExpired(t *testing.T) {
	user := &model.User{BaseModel: model.BaseModel{ID: 1}, Role: model.Student}

	token, err := GenerateJWT(user, "unit-test-secret", -time.Minute)
	require.NoError(t, err)

	_, err = ParseJWT(token, "unit-test-secret")
	assert.Error(t, err)
}
