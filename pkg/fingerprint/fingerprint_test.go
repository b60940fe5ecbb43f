package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeriveDeterministic(t *testing.T) {
	t.Parallel()

	attrs := Attributes{
		UserAgent:      "Mozilla/5.0",
		AcceptLanguage: "en-AU",
		AcceptEncoding: "gzip",
		IP:             "203.0.113.7",
	}
	require.Equal(t, Derive(attrs), Derive(attrs))
}

func TestDeriveSensitiveToEachField(t *testing.T) {
	t.Parallel()

	base := Attributes{
		UserAgent:      "Mozilla/5.0",
		AcceptLanguage: "en-AU",
		AcceptEncoding: "gzip",
		IP:             "203.0.113.7",
	}

	changed := base
	changed.UserAgent = "curl/8.0"
	require.NotEqual(t, Derive(base), Derive(changed))

	changed = base
	changed.IP = "198.51.100.1"
	require.NotEqual(t, Derive(base), Derive(changed))
}

func TestDeriveSkipsEmptyFields(t *testing.T) {
	t.Parallel()

	// A missing middle field must not collapse onto its neighbor.
	a := Derive(Attributes{UserAgent: "x", AcceptEncoding: "y"})
	b := Derive(Attributes{UserAgent: "x", AcceptLanguage: "y"})
	require.NotEqual(t, "", a)
	require.Equal(t, a, b)
}

func TestDeriveTrimsWhitespace(t *testing.T) {
	t.Parallel()

	require.Equal(t,
		Derive(Attributes{UserAgent: " agent "}),
		Derive(Attributes{UserAgent: "agent"}),
	)
}
