package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

func TestNewAccessToken_Claims(t *testing.T) {
	tok, err := NewAccessToken("secret", 42, RoleUser, time.Hour)
	assert.NoError(t, err)
	assert.NotEmpty(t, tok.Token)
	assert.WithinDuration(t, time.Now().UTC().Add(time.Hour), tok.Exp, 5*time.Second)

	parsed, err := jwt.Parse(tok.Token, func(t *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	assert.NoError(t, err)
	assert.True(t, parsed.Valid)

	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, float64(42), claims["sub"])
	assert.Equal(t, RoleUser, claims["role"])
}

func TestNewAccessToken_WrongSecretFailsParse(t *testing.T) {
	tok, err := NewAccessToken("secret", 42, RoleAdmin, time.Hour)
	assert.NoError(t, err)

	_, err = jwt.Parse(tok.Token, func(t *jwt.Token) (interface{}, error) {
		return []byte("other"), nil
	})
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter2", 4) // low cost keeps the test fast
	assert.NoError(t, err)
	assert.NotEqual(t, "hunter2", hash)

	assert.True(t, VerifyPassword(hash, "hunter2"))
	assert.False(t, VerifyPassword(hash, "hunter3"))
}

func TestHashPassword_ClampsInvalidCost(t *testing.T) {
	// an unset or out-of-range configured cost must not break hashing
	hash, err := HashPassword("hunter2", 0)
	assert.NoError(t, err)
	assert.True(t, VerifyPassword(hash, "hunter2"))

	hash, err = HashPassword("hunter2", 99)
	assert.NoError(t, err)
	assert.True(t, VerifyPassword(hash, "hunter2"))
}
