package models

import (
	"errors"
	"strings"
)

// LoginRequest is the wire body of POST /auth/login.
//
// RememberMe is advisory and only forwarded to the backend.
type LoginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

// EmailRequest is the wire body of forgot-password and resend-verification.
type EmailRequest struct {
	Email string `json:"email"`
}

// SignupRequest is the wire body of POST /auth/register. It intentionally has
// no confirmation or terms fields; see SignupForm.
type SignupRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Company   string `json:"company"`
	Password  string `json:"password"`
}

// SignupForm is what the user fills in. ConfirmPassword and AcceptTerms are
// client-side only and never leave the process.
type SignupForm struct {
	FirstName       string
	LastName        string
	Email           string
	Company         string
	Password        string
	ConfirmPassword string
	AcceptTerms     bool
}

var (
	ErrMissingField     = errors.New("all fields are required")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrTermsNotAccepted = errors.New("you must accept the terms and conditions")
)

// Validate performs the form checks the views run before submitting.
func (f SignupForm) Validate() error {
	for _, v := range []string{f.FirstName, f.LastName, f.Email, f.Company, f.Password} {
		if strings.TrimSpace(v) == "" {
			return ErrMissingField
		}
	}
	if f.Password != f.ConfirmPassword {
		return ErrPasswordMismatch
	}
	if !f.AcceptTerms {
		return ErrTermsNotAccepted
	}
	return nil
}

// Request maps the form onto the wire type.
func (f SignupForm) Request() SignupRequest {
	return SignupRequest{
		FirstName: strings.TrimSpace(f.FirstName),
		LastName:  strings.TrimSpace(f.LastName),
		Email:     strings.TrimSpace(f.Email),
		Company:   strings.TrimSpace(f.Company),
		Password:  f.Password,
	}
}
