package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	manager := NewJWTManager("secret", 1)

	token, err := manager.GenerateToken("user-1")
	require.NoError(t, err)

	claims, err := manager.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, tokenIssuer, claims.Issuer)
}

func TestParseTokenRejectsForeignSecret(t *testing.T) {
	token, err := NewJWTManager("other", 1).GenerateToken("user-1")
	require.NoError(t, err)

	_, err = NewJWTManager("secret", 1).ParseToken(token)
	assert.Error(t, err)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	manager := NewJWTManager("secret", 1)
	claims := Claims{
		UserID: "user-1",
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(-time.Minute).Unix(),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = manager.ParseToken(token)
	assert.Error(t, err)
}

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		username string
		valid    bool
	}{
		{"dana", true},
		{"dana-k-42", true},
		{"ab", false},
		{"Dana", false},
		{"-dana", false},
		{"dana-", false},
		{"dana_k", false},
		{"abcdefghijabcdefghijabcdefghijk", false},
	}

	for _, tt := range tests {
		t.Run(tt.username, func(t *testing.T) {
			assert.Equal(t, tt.valid, ValidateUsername(tt.username) == "")
		})
	}
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "dana-scully", Slugify("  Dana   Scully "))
	assert.Equal(t, "hello-world", Slugify("Hello,  World!"))
	assert.Equal(t, "al0", Slugify("Al"))
	assert.Equal(t, "000", Slugify("!!!"))

	long := Slugify("a very long founder name that keeps on going")
	assert.LessOrEqual(t, len(long), UsernameMaxLength-5)
	assert.Empty(t, ValidateUsername(long))
}
