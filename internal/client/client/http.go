package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/saherflow/flowportal/internal/client/models"
	"github.com/saherflow/flowportal/internal/common"
	"github.com/saherflow/flowportal/internal/logging"
)

const (
	DefaultBaseURL   = "http://localhost:5000/api"
	DefaultUserAgent = "flowportal-cli"

	// maxBodySize caps how much of a response body is read.
	maxBodySize = 1 << 20
)

// HTTPClient talks to the identity service over JSON/HTTP.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	log        logging.Logger
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.httpClient = hc }
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.log = l }
}

func WithUserAgent(ua string) Option {
	return func(c *HTTPClient) { c.userAgent = ua }
}

// NewHTTPClient returns a gateway rooted at baseURL (e.g.
// "https://portal.example.com/api"). The default *http.Client has no
// timeout; deadlines come from the caller's context.
func NewHTTPClient(baseURL string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		userAgent:  DefaultUserAgent,
		log:        logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *HTTPClient) Login(ctx context.Context, req models.LoginRequest) models.Envelope[models.LoginData] {
	return call[models.LoginData](ctx, c, http.MethodPost, "/auth/login", "", req)
}

// Signup registers a new account. The request type carries no confirmation
// or terms fields, so they cannot be transmitted.
func (c *HTTPClient) Signup(ctx context.Context, req models.SignupRequest) models.Envelope[models.UserData] {
	return call[models.UserData](ctx, c, http.MethodPost, "/auth/register", "", req)
}

func (c *HTTPClient) ForgotPassword(ctx context.Context, email string) models.Envelope[models.Empty] {
	return call[models.Empty](ctx, c, http.MethodPost, "/auth/forgot-password", "", models.EmailRequest{Email: email})
}

func (c *HTTPClient) ResendVerification(ctx context.Context, email string) models.Envelope[models.Empty] {
	return call[models.Empty](ctx, c, http.MethodPost, "/auth/resend-verification", "", models.EmailRequest{Email: email})
}

func (c *HTTPClient) CurrentUser(ctx context.Context, token string) models.Envelope[models.UserData] {
	return call[models.UserData](ctx, c, http.MethodGet, "/auth/me", token, nil)
}

func (c *HTTPClient) Logout(ctx context.Context, token string) models.Envelope[models.Empty] {
	return call[models.Empty](ctx, c, http.MethodPost, "/auth/logout", token, nil)
}

func (c *HTTPClient) CheckDomain(ctx context.Context, domain string) models.Envelope[models.DomainCheck] {
	return call[models.DomainCheck](ctx, c, http.MethodGet, "/company/check-domain/"+url.PathEscape(domain), "", nil)
}

// call performs one request and folds every failure into an envelope.
func call[T any](ctx context.Context, c *HTTPClient, method, path, token string, body any) models.Envelope[T] {
	requestID := uuid.NewString()
	log := c.log.With("request_id", requestID, "method", method, "path", path)

	status, raw, err := c.roundTrip(ctx, requestID, method, path, token, body)
	if err != nil {
		log.Warn(ctx, "api request failed", "error", err)
		return models.Fail[T](NetworkErrorMessage)
	}

	env, err := decodeEnvelope[T](status, raw)
	if err != nil {
		log.Warn(ctx, "api response rejected", "status", status, "error", err)
		return models.Fail[T](NetworkErrorMessage)
	}

	log.Debug(ctx, "api request completed", "status", status, "success", env.Success)
	return env
}

func (c *HTTPClient) roundTrip(ctx context.Context, requestID, method, path, token string, body any) (int, []byte, error) {
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("%w: marshal request: %v", ErrTransport, err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: build request: %v", ErrTransport, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(common.RequestIDHeaderName, requestID)
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("%w: read body: %v", ErrTransport, err)
	}

	return resp.StatusCode, raw, nil
}

// decodeEnvelope accepts any status code as long as the body is an envelope.
// A 2xx response with an empty body counts as a payload-less success.
func decodeEnvelope[T any](status int, raw []byte) (models.Envelope[T], error) {
	var env models.Envelope[T]

	if len(bytes.TrimSpace(raw)) == 0 {
		if status >= 200 && status < 300 {
			env.Success = true
			return env, nil
		}
		return env, fmt.Errorf("%w: empty body with status %d", ErrMalformedResponse, status)
	}

	var probe struct {
		Success *bool `json:"success"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return env, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if probe.Success == nil {
		return env, fmt.Errorf("%w: missing success flag", ErrMalformedResponse)
	}

	if err := json.Unmarshal(raw, &env); err != nil {
		return env, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return env, nil
}
