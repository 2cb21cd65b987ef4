package validate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/frankcoz86/printora-backend/internal/relay"
)

func TestNonEmpty(t *testing.T) {
	require.NoError(t, NonEmpty("name", "Ada"))
	require.Error(t, NonEmpty("name", ""))
	require.Error(t, NonEmpty("name", "   "))
}

func TestMaxLen(t *testing.T) {
	require.NoError(t, MaxLen("subject", "hello", 300))
	long := make([]byte, 301)
	for i := range long {
		long[i] = 'a'
	}
	err := MaxLen("subject", string(long), 300)
	require.Error(t, err)
	require.Equal(t, relay.KindValidation, relay.KindOf(err))
}

func TestEmail(t *testing.T) {
	valid := []string{
		"ada@example.com",
		"first.last@sub.domain.org",
		"x@y.io",
	}
	for _, addr := range valid {
		require.NoError(t, Email(addr), addr)
	}

	invalid := []string{
		"",
		"no-at-sign.com",
		"two@@example.com",
		"a@b@c.com",
		"@example.com",
		"ada@",
		"ada@nodot",
		"ada@trailing.",
		"ada@.leading",
		"has space@example.com",
		"ada@doma in.com",
	}
	for _, addr := range invalid {
		require.Error(t, Email(addr), addr)
	}
}

func TestAmount(t *testing.T) {
	amount, err := Amount(float64(49.99))
	require.NoError(t, err)
	require.InDelta(t, 49.99, amount, 0.0001)

	_, err = Amount(float64(-5))
	require.Error(t, err)

	_, err = Amount(float64(0))
	require.Error(t, err)

	_, err = Amount("100")
	require.Error(t, err)

	_, err = Amount(nil)
	require.Error(t, err)
}

func TestExtension(t *testing.T) {
	allowed := []string{"pdf", "png", "jpg"}
	require.NoError(t, Extension("logo.PNG", allowed))
	require.NoError(t, Extension("flyer.pdf", allowed))
	require.Error(t, Extension("malware.exe", allowed))
	require.Error(t, Extension("noextension", allowed))
}

func TestFileSize(t *testing.T) {
	require.NoError(t, FileSize(10<<20, 25))
	require.Error(t, FileSize(26<<20, 25))
}

func TestFirstErrorShortCircuits(t *testing.T) {
	ran := 0
	err := FirstError(
		func() error { ran++; return nil },
		func() error { ran++; return NonEmpty("email", "") },
		func() error { ran++; return nil },
	)
	require.Error(t, err)
	require.Equal(t, 2, ran)
}
