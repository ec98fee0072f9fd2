package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIssueAndVerifyToken(t *testing.T) {
	svc, err := New(Config{Secret: "test-secret", ExpiryHour: 1}, nil)
	require.NoError(t, err)

	token, err := svc.IssueToken("42", "admin")
	require.NoError(t, err)

	claims, err := svc.VerifyToken(token)
	require.NoError(t, err)
	require.Equal(t, "42", claims.Subject)
	require.Equal(t, "admin", claims.Role)
}

func TestVerifyTokenRejectsWrongSecret(t *testing.T) {
	svc, err := New(Config{Secret: "test-secret"}, nil)
	require.NoError(t, err)
	token, err := svc.IssueToken("1", "user")
	require.NoError(t, err)

	other, err := New(Config{Secret: "other-secret"}, nil)
	require.NoError(t, err)
	_, err = other.VerifyToken(token)
	require.Error(t, err)
}

func TestNewRequiresSecret(t *testing.T) {
	_, err := New(Config{}, nil)
	require.Error(t, err)
}

func TestToSubject(t *testing.T) {
	require.Equal(t, "7", toSubject(int64(7)))
	require.Equal(t, "abc", toSubject("abc"))
	require.Equal(t, "", toSubject(3.14))
}
