package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/saherflow/flowportal/internal/client/models"
	"github.com/saherflow/flowportal/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordedRequest is what the fake backend saw.
type recordedRequest struct {
	Method    string
	Path      string
	Auth      string
	RequestID string
	Body      map[string]any
}

type fakeBackend struct {
	mu     sync.Mutex
	last   recordedRequest
	status int
	body   string
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	rec := recordedRequest{
		Method:    r.Method,
		Path:      r.URL.EscapedPath(),
		Auth:      r.Header.Get("Authorization"),
		RequestID: r.Header.Get("X-Request-ID"),
	}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &rec.Body)
	}

	f.mu.Lock()
	f.last = rec
	status, body := f.status, f.body
	f.mu.Unlock()

	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func (f *fakeBackend) lastRequest() recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

func newTestClient(t *testing.T, status int, body string) (*HTTPClient, *fakeBackend) {
	t.Helper()
	fb := &fakeBackend{status: status, body: body}
	srv := httptest.NewServer(fb)
	t.Cleanup(srv.Close)
	return NewHTTPClient(srv.URL + "/api/"), fb
}

const userJSON = `{"id":"u1","firstName":"Ada","lastName":"Lovelace","email":"a@b.com","company":"Acme","role":"operator","isEmailVerified":true,"lastLogin":"2024-05-01T10:00:00Z","lastLoginIP":"10.0.0.1"}`

func TestLogin_SendsCredentialsAndDecodesPayload(t *testing.T) {
	c, fb := newTestClient(t, http.StatusOK,
		`{"success":true,"message":"Login successful","data":{"token":"tok-1","user":`+userJSON+`}}`)

	env := c.Login(context.Background(), models.LoginRequest{Email: "a@b.com", Password: "pw123", RememberMe: true})

	require.True(t, env.HasData())
	assert.Equal(t, "Login successful", env.Message)
	assert.Equal(t, "tok-1", env.Data.Token)
	assert.Equal(t, "Ada", env.Data.User.FirstName)
	require.NotNil(t, env.Data.User.LastLogin)
	assert.Equal(t, "10.0.0.1", env.Data.User.LastLoginIP)

	req := fb.lastRequest()
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/api/auth/login", req.Path)
	assert.Empty(t, req.Auth)
	assert.Equal(t, map[string]any{"email": "a@b.com", "password": "pw123", "rememberMe": true}, req.Body)

	_, err := uuid.Parse(req.RequestID)
	assert.NoError(t, err, "request id must be a uuid")
}

func TestSignup_TransmitsOnlyWireFields(t *testing.T) {
	c, fb := newTestClient(t, http.StatusCreated,
		`{"success":true,"message":"Registered. Please verify your email.","data":{"user":`+userJSON+`}}`)

	form := models.SignupForm{
		FirstName:       "Ada",
		LastName:        "Lovelace",
		Email:           "a@b.com",
		Company:         "Acme",
		Password:        "pw123",
		ConfirmPassword: "pw123",
		AcceptTerms:     true,
	}
	env := c.Signup(context.Background(), form.Request())
	require.True(t, env.HasData())

	req := fb.lastRequest()
	assert.Equal(t, "/api/auth/register", req.Path)
	assert.NotContains(t, req.Body, "confirmPassword")
	assert.NotContains(t, req.Body, "acceptTerms")
	assert.Equal(t, map[string]any{
		"firstName": "Ada",
		"lastName":  "Lovelace",
		"email":     "a@b.com",
		"company":   "Acme",
		"password":  "pw123",
	}, req.Body)
}

func TestEmailOperations_SendEmailBody(t *testing.T) {
	c, fb := newTestClient(t, http.StatusOK, `{"success":true,"message":"Sent"}`)
	ctx := context.Background()

	env := c.ForgotPassword(ctx, "a@b.com")
	assert.True(t, env.Success)
	assert.Nil(t, env.Data)
	assert.Equal(t, "/api/auth/forgot-password", fb.lastRequest().Path)
	assert.Equal(t, map[string]any{"email": "a@b.com"}, fb.lastRequest().Body)

	env = c.ResendVerification(ctx, "a@b.com")
	assert.True(t, env.Success)
	assert.Equal(t, "/api/auth/resend-verification", fb.lastRequest().Path)
	assert.Equal(t, map[string]any{"email": "a@b.com"}, fb.lastRequest().Body)
}

func TestTokenOperations_SendBearer(t *testing.T) {
	c, fb := newTestClient(t, http.StatusOK, `{"success":true,"message":"ok","data":{"user":`+userJSON+`}}`)
	ctx := context.Background()

	env := c.CurrentUser(ctx, "tok-1")
	require.True(t, env.HasData())
	assert.Equal(t, "u1", env.Data.User.ID)

	req := fb.lastRequest()
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/api/auth/me", req.Path)
	assert.Equal(t, "Bearer tok-1", req.Auth)
	assert.Nil(t, req.Body)

	c.Logout(ctx, "tok-2")
	req = fb.lastRequest()
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/api/auth/logout", req.Path)
	assert.Equal(t, "Bearer tok-2", req.Auth)
}

func TestCheckDomain_EscapesPathSegment(t *testing.T) {
	c, fb := newTestClient(t, http.StatusOK,
		`{"success":true,"message":"ok","data":{"isAllowed":true,"company":{"name":"Acme"}}}`)

	env := c.CheckDomain(context.Background(), "acme corp.com")
	require.True(t, env.HasData())
	assert.True(t, env.Data.IsAllowed)
	assert.JSONEq(t, `{"name":"Acme"}`, string(env.Data.Company))
	assert.Equal(t, "/api/company/check-domain/acme%20corp.com", fb.lastRequest().Path)
}

func TestNon2xxEnvelope_PassedThrough(t *testing.T) {
	c, _ := newTestClient(t, http.StatusUnprocessableEntity,
		`{"success":false,"message":"Validation failed","errors":[{"msg":"Email already registered","param":"email","value":"a@b.com"}]}`)

	env := c.Signup(context.Background(), models.SignupRequest{Email: "a@b.com"})

	assert.False(t, env.Success)
	assert.Equal(t, "Validation failed", env.Message)
	require.Len(t, env.Errors, 1)
	assert.Equal(t, "email", env.Errors[0].Param)
}

func TestNon2xxSuccessEnvelope_BackendDecides(t *testing.T) {
	c, _ := newTestClient(t, http.StatusConflict, `{"success":true,"message":"odd but fine"}`)

	env := c.ForgotPassword(context.Background(), "a@b.com")
	assert.True(t, env.Success)
	assert.Equal(t, "odd but fine", env.Message)
}

func TestMalformedBodies_BecomeNetworkError(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"html error page", http.StatusBadGateway, "<html>bad gateway</html>"},
		{"truncated json", http.StatusOK, `{"success":tr`},
		{"json without envelope", http.StatusOK, `{"token":"x"}`},
		{"payload of wrong type", http.StatusOK, `{"success":true,"message":"ok","data":"nope"}`},
		{"empty body on error", http.StatusInternalServerError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, tt.status, tt.body)
			env := c.Login(context.Background(), models.LoginRequest{Email: "a@b.com", Password: "pw"})
			assert.False(t, env.Success)
			assert.Equal(t, NetworkErrorMessage, env.Message)
			assert.Nil(t, env.Data)
		})
	}
}

func TestNoContent_IsSuccessWithoutPayload(t *testing.T) {
	c, _ := newTestClient(t, http.StatusNoContent, "")

	env := c.Logout(context.Background(), "tok")
	assert.True(t, env.Success)
	assert.Nil(t, env.Data)
}

func TestTransportFailure_EveryOperationReturnsEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	var buf bytes.Buffer
	log, err := logging.New(&buf, "debug", "text")
	require.NoError(t, err)

	c := NewHTTPClient(base, WithLogger(log))
	ctx := context.Background()

	type outcome struct {
		success bool
		message string
	}
	ops := map[string]func() outcome{
		"login": func() outcome {
			e := c.Login(ctx, models.LoginRequest{Email: "a@b.com", Password: "pw123"})
			return outcome{e.Success, e.Message}
		},
		"signup": func() outcome {
			e := c.Signup(ctx, models.SignupRequest{Email: "a@b.com"})
			return outcome{e.Success, e.Message}
		},
		"forgot": func() outcome {
			e := c.ForgotPassword(ctx, "a@b.com")
			return outcome{e.Success, e.Message}
		},
		"resend": func() outcome {
			e := c.ResendVerification(ctx, "a@b.com")
			return outcome{e.Success, e.Message}
		},
		"me": func() outcome {
			e := c.CurrentUser(ctx, "tok")
			return outcome{e.Success, e.Message}
		},
		"logout": func() outcome {
			e := c.Logout(ctx, "tok")
			return outcome{e.Success, e.Message}
		},
		"domain": func() outcome {
			e := c.CheckDomain(ctx, "acme.com")
			return outcome{e.Success, e.Message}
		},
	}

	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			var got outcome
			require.NotPanics(t, func() { got = op() })
			assert.False(t, got.success)
			assert.NotEmpty(t, got.message)
		})
	}

	assert.Contains(t, buf.String(), "api request failed")
	assert.Contains(t, buf.String(), "request_id=")
	assert.NotContains(t, buf.String(), "pw123")
}

func TestCancelledContext_ReturnsNetworkError(t *testing.T) {
	c, _ := newTestClient(t, http.StatusOK, `{"success":true,"message":"ok"}`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	env := c.ForgotPassword(ctx, "a@b.com")
	assert.False(t, env.Success)
	assert.Equal(t, NetworkErrorMessage, env.Message)
}

func TestInvalidBaseURL_ReturnsNetworkError(t *testing.T) {
	c := NewHTTPClient("://not a url")

	env := c.CurrentUser(context.Background(), "tok")
	assert.False(t, env.Success)
	assert.Equal(t, NetworkErrorMessage, env.Message)
}

func TestDecodeEnvelope_ErrorsAreTyped(t *testing.T) {
	_, err := decodeEnvelope[models.Empty](http.StatusOK, []byte(`[]`))
	require.ErrorIs(t, err, ErrMalformedResponse)

	env, err := decodeEnvelope[models.Empty](http.StatusOK, []byte("  "))
	require.NoError(t, err)
	assert.True(t, env.Success)
}
