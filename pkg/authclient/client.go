package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client is a typed client for the auth service. Zero-value HTTPClient gets
// a sane default; Token, when set, is sent as a bearer on every request.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Token      string
}

// New returns a client for the service at baseURL.
func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// WithToken returns a copy of the client authenticating as the given bearer.
func (c *Client) WithToken(token string) *Client {
	dup := *c
	dup.Token = token
	return &dup
}

// Login authenticates and returns the minted token. On success the returned
// client copy is already authenticated with it.
func (c *Client) Login(ctx context.Context, req LoginRequest) (TokenResponse, *Client, error) {
	var resp TokenResponse
	if err := c.do(ctx, http.MethodPost, "/v1/auth/login", req, &resp); err != nil {
		return TokenResponse{}, nil, err
	}
	return resp, c.WithToken(resp.Token), nil
}

// Refresh rotates the client's current token and returns the successor. The
// client keeps using its old token until the caller switches. Set verifyDevice
// to have the server match the request's fingerprint against the login one.
func (c *Client) Refresh(ctx context.Context, verifyDevice bool) (TokenResponse, error) {
	var resp TokenResponse
	req := RefreshRequest{DeviceVerification: verifyDevice}
	err := c.do(ctx, http.MethodPost, "/v1/auth/refresh", req, &resp)
	return resp, err
}

// Logout revokes the current token, or every token when allDevices is set.
func (c *Client) Logout(ctx context.Context, allDevices bool) (LogoutResponse, error) {
	var resp LogoutResponse
	err := c.do(ctx, http.MethodPost, "/v1/auth/logout", LogoutRequest{AllDevices: allDevices}, &resp)
	return resp, err
}

// ListTokens returns the caller's live sessions.
func (c *Client) ListTokens(ctx context.Context) (TokenListResponse, error) {
	var resp TokenListResponse
	err := c.do(ctx, http.MethodGet, "/v1/auth/tokens", nil, &resp)
	return resp, err
}

// RevokeToken revokes one token by id. Set confirmCurrent when the target is
// the token this client authenticates with.
func (c *Client) RevokeToken(ctx context.Context, tokenID string, confirmCurrent bool) error {
	path := "/v1/auth/tokens/" + url.PathEscape(tokenID)
	if confirmCurrent {
		path += "?confirm_current=true"
	}
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// Me returns the caller's identity as resolved from the bearer token.
func (c *Client) Me(ctx context.Context) (MeResponse, error) {
	var resp MeResponse
	err := c.do(ctx, http.MethodGet, "/v1/me", nil, &resp)
	return resp, err
}

// Livez hits the liveness probe.
func (c *Client) Livez(ctx context.Context) (HealthResponse, error) {
	var resp HealthResponse
	err := c.do(ctx, http.MethodGet, "/livez", nil, &resp)
	return resp, err
}

// Readyz hits the readiness probe.
func (c *Client) Readyz(ctx context.Context) (HealthResponse, error) {
	var resp HealthResponse
	err := c.do(ctx, http.MethodGet, "/readyz", nil, &resp)
	return resp, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeError converts a non-2xx response into an *APIError so callers can
// match on Code.
func decodeError(resp *http.Response) error {
	apiErr := &APIError{
		StatusCode:  resp.StatusCode,
		Code:        ErrorCodeServerError,
		Description: resp.Status,
	}

	var body ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		apiErr.Code = body.Error
		apiErr.Description = body.ErrorDescription
	}

	if ra := resp.Header.Get("Retry-After"); ra != "" {
		if secs, err := strconv.Atoi(ra); err == nil {
			apiErr.RetryAfter = time.Duration(secs) * time.Second
		}
	}
	return apiErr
}
