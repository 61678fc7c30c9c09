package cli

import (
	"bytes"
	"testing"
	"time"

	"mindbloom-backend/pkg/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueToken(t *testing.T) {
	token, err := issueToken("cli-secret", "mindbloom", []string{"api"}, tokenOptions{
		userID: "u-1",
		email:  "ana@example.com",
		name:   "Ana",
		roles:  []string{"caregiver"},
		expiry: time.Hour,
	})
	require.NoError(t, err)

	validator, err := auth.NewJWTValidator(auth.JWTConfig{
		SigningMethod: "HS256",
		SecretKey:     "cli-secret",
		Issuer:        "mindbloom",
		Audience:      []string{"api"},
	})
	require.NoError(t, err)

	claims, err := validator.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.Subject)
	assert.Equal(t, "ana@example.com", claims.Email)
	assert.Contains(t, claims.AllRoles(), "caregiver")
}

func TestIssueToken_Errors(t *testing.T) {
	_, err := issueToken("secret", "", nil, tokenOptions{expiry: time.Hour})
	assert.ErrorContains(t, err, "--user")

	_, err = issueToken("", "", nil, tokenOptions{userID: "u-1", expiry: time.Hour})
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestVersionCommand(t *testing.T) {
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.Equal(t, "mindbloomctl dev\n", out.String())
}
