package client

import (
	"context"

	"github.com/saherflow/flowportal/internal/client/models"
)

// Client is the backend gateway contract. Every operation returns an
// envelope; transport and decoding failures are folded into an unsuccessful
// envelope instead of an error.
type Client interface {
	Login(ctx context.Context, req models.LoginRequest) models.Envelope[models.LoginData]
	Signup(ctx context.Context, req models.SignupRequest) models.Envelope[models.UserData]
	ForgotPassword(ctx context.Context, email string) models.Envelope[models.Empty]
	ResendVerification(ctx context.Context, email string) models.Envelope[models.Empty]
	CurrentUser(ctx context.Context, token string) models.Envelope[models.UserData]
	Logout(ctx context.Context, token string) models.Envelope[models.Empty]
	CheckDomain(ctx context.Context, domain string) models.Envelope[models.DomainCheck]
}
