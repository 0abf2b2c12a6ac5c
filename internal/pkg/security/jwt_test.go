package security

import (
	"testing"

	"Plume/internal/api/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	InitJWT(config.JWTConfig{Secret: "s3cret", Issuer: "plume-test"})

	token, err := GenerateToken(42, []string{"ADMIN"})
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), claims.UserID)
	assert.Equal(t, []string{"ADMIN"}, claims.Roles)
	assert.Equal(t, "plume-test", claims.Issuer)

	sig, err := ExtractSignature(token)
	require.NoError(t, err)
	assert.NotEmpty(t, sig)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	InitJWT(config.JWTConfig{Secret: "one", Issuer: "plume-test"})
	token, err := GenerateToken(1, nil)
	require.NoError(t, err)

	InitJWT(config.JWTConfig{Secret: "two"})
	_, err = ValidateToken(token)
	assert.Error(t, err)
}

func TestExtractSignature_Malformed(t *testing.T) {
	_, err := ExtractSignature("not-a-token")
	assert.Error(t, err)
}
