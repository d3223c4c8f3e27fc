package security

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOriginCheckerResolvesRelativeTargets(t *testing.T) {
	checker, err := NewOriginChecker("https://app.example.com/api", nil)
	require.NoError(t, err)

	resolved, err := checker.Resolve("/welcome")
	require.NoError(t, err)
	require.Equal(t, "https://app.example.com/welcome", resolved.String())
}

func TestOriginCheckerAllowsBaseOrigin(t *testing.T) {
	checker, err := NewOriginChecker("https://app.example.com", nil)
	require.NoError(t, err)

	resolved, err := checker.Resolve("https://app.example.com/signup?x=1")
	require.NoError(t, err)
	require.Equal(t, "https://app.example.com/signup?x=1", resolved.String())
}

func TestOriginCheckerRejectsForeignOrigin(t *testing.T) {
	checker, err := NewOriginChecker("https://app.example.com", nil)
	require.NoError(t, err)

	_, err = checker.Resolve("https://evil.example.net/phish")
	require.ErrorIs(t, err, ErrUntrustedOrigin)
}

func TestOriginCheckerTrustsConfiguredOrigins(t *testing.T) {
	checker, err := NewOriginChecker("https://app.example.com", []string{"https://www.example.com"})
	require.NoError(t, err)

	resolved, err := checker.Resolve("https://www.example.com/signup")
	require.NoError(t, err)
	require.Equal(t, "www.example.com", resolved.Host)
}

func TestOriginCheckerWildcardTrustsEverything(t *testing.T) {
	checker, err := NewOriginChecker("https://app.example.com", []string{"*"})
	require.NoError(t, err)

	_, err = checker.Resolve("https://anything.example.org/cb")
	require.NoError(t, err)
}

func TestOriginCheckerRejectsNonHTTPSchemes(t *testing.T) {
	checker, err := NewOriginChecker("https://app.example.com", []string{"*"})
	require.NoError(t, err)

	_, err = checker.Resolve("javascript:alert(1)")
	require.ErrorIs(t, err, ErrUntrustedOrigin)
}

func TestNewOriginCheckerRequiresAbsoluteBase(t *testing.T) {
	_, err := NewOriginChecker("/relative", nil)
	require.Error(t, err)
}
