// Package fingerprint derives a stable, opaque identifier for a client device
// from request attributes. The fingerprint is a soft signal used for
// device-change detection during token refresh. It is never a security
// boundary on its own: headers are trivially forgeable.
package fingerprint

import (
	"crypto/sha256"
	"encoding/base64"
	"strings"
)

// Attributes are the request properties the fingerprint is derived from.
// Empty fields are skipped so a missing header does not shift the others.
type Attributes struct {
	UserAgent      string
	AcceptLanguage string
	AcceptEncoding string
	IP             string
}

const delimiter = "\n"

// Derive returns a deterministic fingerprint for the given attributes:
// SHA-256 over the non-empty fields joined by a fixed delimiter,
// base64url-encoded. Same inputs always produce the same fingerprint.
func Derive(attrs Attributes) string {
	parts := make([]string, 0, 4)
	for _, field := range []string{
		attrs.UserAgent,
		attrs.AcceptLanguage,
		attrs.AcceptEncoding,
		attrs.IP,
	} {
		if field = strings.TrimSpace(field); field != "" {
			parts = append(parts, field)
		}
	}

	sum := sha256.Sum256([]byte(strings.Join(parts, delimiter)))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
