package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIssueAndValidate(t *testing.T) {
	issuer := NewIssuer([]byte("test-secret"), time.Hour)

	signed, err := issuer.Issue("user-1")
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	subject, err := issuer.Validate(signed)
	require.NoError(t, err)
	require.Equal(t, "user-1", subject)
}

func TestValidateExpired(t *testing.T) {
	issuer := NewIssuer([]byte("test-secret"), -time.Minute)

	signed, err := issuer.Issue("user-1")
	require.NoError(t, err)

	_, err = issuer.Validate(signed)
	require.ErrorIs(t, err, ErrExpired)
}

func TestValidateWrongSecret(t *testing.T) {
	issuer := NewIssuer([]byte("test-secret"), time.Hour)
	other := NewIssuer([]byte("another-secret"), time.Hour)

	signed, err := issuer.Issue("user-1")
	require.NoError(t, err)

	_, err = other.Validate(signed)
	require.ErrorIs(t, err, ErrSignatureInvalid)
}

func TestValidateTampered(t *testing.T) {
	issuer := NewIssuer([]byte("test-secret"), time.Hour)

	signed, err := issuer.Issue("user-1")
	require.NoError(t, err)

	tampered := signed[:len(signed)-2] + "xx"
	_, err = issuer.Validate(tampered)
	require.Error(t, err)
}

func TestValidateMalformed(t *testing.T) {
	issuer := NewIssuer([]byte("test-secret"), time.Hour)

	for _, input := range []string{"", "not-a-token", "a.b.c"} {
		_, err := issuer.Validate(input)
		require.ErrorIs(t, err, ErrMalformed, "input %q", input)
	}
}
