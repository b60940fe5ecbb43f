package http

import (
	"context"
	"net/http"

	"github.com/lumamart/auth/internal/auth/domain"
	"github.com/lumamart/auth/internal/auth/service"
	"github.com/lumamart/auth/pkg/fingerprint"
	"github.com/lumamart/auth/pkg/httpx"
)

// identityVerifier adapts ValidationService to httpx.BearerVerifier.
type identityVerifier struct {
	svc *service.ValidationService
}

func (v identityVerifier) VerifyBearer(ctx context.Context, secret, clientIP string) (httpx.Identity, error) {
	id, err := v.svc.Authorize(ctx, secret, "", clientIP)
	if err != nil {
		return httpx.Identity{}, err
	}
	return httpx.Identity{
		PrincipalID: id.PrincipalID,
		Role:        string(id.Role),
		TokenID:     id.TokenID,
		DeviceType:  id.DeviceType,
		Scopes:      id.Scopes,
	}, nil
}

// callerIdentity recovers the domain identity that BearerAuth stashed.
func callerIdentity(r *http.Request) (domain.Identity, bool) {
	id, ok := httpx.IdentityFromContext(r.Context())
	if !ok {
		return domain.Identity{}, false
	}
	return domain.Identity{
		PrincipalID: id.PrincipalID,
		Role:        domain.Role(id.Role),
		TokenID:     id.TokenID,
		DeviceType:  id.DeviceType,
		Scopes:      id.Scopes,
	}, true
}

// requestFingerprint derives the device fingerprint from request attributes.
func requestFingerprint(r *http.Request) string {
	return fingerprint.Derive(fingerprint.Attributes{
		UserAgent:      r.Header.Get("User-Agent"),
		AcceptLanguage: r.Header.Get("Accept-Language"),
		AcceptEncoding: r.Header.Get("Accept-Encoding"),
		IP:             httpx.IPKeyExtractor(r),
	})
}
