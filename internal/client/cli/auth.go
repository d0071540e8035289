package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/saherflow/flowportal/internal/client/models"
	"github.com/saherflow/flowportal/internal/common"
)

// getSimpleText, getPassword and getConfirm are indirections used to
// facilitate testing. They point to line-oriented input helpers and can be
// swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	getConfirm    = GetConfirm
)

// LoginInput carries the credentials a login command already has; empty
// fields are prompted for.
type LoginInput struct {
	Email    string
	Password string
	Remember bool
}

// Login signs the user in. Missing credentials are prompted for with a form
// on a terminal and line by line otherwise.
func (a *App) Login(ctx context.Context, in LoginInput) error {
	if in.Email == "" || in.Password == "" {
		if err := a.promptLogin(&in); err != nil {
			return err
		}
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	res := a.session.Login(ctx, strings.TrimSpace(in.Email), in.Password, in.Remember)
	if err := a.report(res); err != nil {
		return err
	}

	if snap := a.session.Snapshot(); snap.User != nil {
		a.printf("Signed in as %s <%s>\n", snap.User.FullName(), snap.User.Email)
	}
	return nil
}

func (a *App) promptLogin(in *LoginInput) error {
	if a.interactive {
		return runForm(loginForm(in))
	}

	if in.Email == "" {
		email, err := getSimpleText(a.reader, "Enter email", a.out)
		if err != nil {
			return err
		}
		in.Email = email
	}
	if in.Password == "" {
		pw, err := getPassword(a.reader, a.inFd, "Enter password", a.out)
		if err != nil {
			return err
		}
		defer common.WipeByteArray(pw)
		in.Password = string(pw)
	}
	return nil
}

// Signup registers a new account. The form is validated locally first; an
// invalid form never reaches the backend. Signing up does not sign in.
func (a *App) Signup(ctx context.Context, form models.SignupForm) error {
	if signupIncomplete(form) {
		if err := a.promptSignup(&form); err != nil {
			return err
		}
	}

	if err := form.Validate(); err != nil {
		a.println(capitalize(err.Error()) + ".")
		return fmt.Errorf("%w: %w", ErrFailed, err)
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if err := a.report(a.session.Signup(ctx, form)); err != nil {
		return err
	}
	a.printf("Check %s for a verification link, then run 'login'.\n", strings.TrimSpace(form.Email))
	return nil
}

func signupIncomplete(f models.SignupForm) bool {
	for _, v := range []string{f.FirstName, f.LastName, f.Email, f.Company, f.Password, f.ConfirmPassword} {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return !f.AcceptTerms
}

func (a *App) promptSignup(f *models.SignupForm) error {
	if a.interactive {
		return runForm(signupForm(f))
	}

	for _, field := range []struct {
		prompt string
		value  *string
	}{
		{"Enter first name", &f.FirstName},
		{"Enter last name", &f.LastName},
		{"Enter work email", &f.Email},
		{"Enter company", &f.Company},
	} {
		if *field.value != "" {
			continue
		}
		v, err := getSimpleText(a.reader, field.prompt, a.out)
		if err != nil {
			return err
		}
		*field.value = v
	}

	for _, field := range []struct {
		prompt string
		value  *string
	}{
		{"Enter password", &f.Password},
		{"Confirm password", &f.ConfirmPassword},
	} {
		if *field.value != "" {
			continue
		}
		pw, err := getPassword(a.reader, a.inFd, field.prompt, a.out)
		if err != nil {
			return err
		}
		*field.value = string(pw)
		common.WipeByteArray(pw)
	}

	if !f.AcceptTerms {
		ok, err := getConfirm(a.reader, "Do you accept the terms and conditions?", a.out)
		if err != nil {
			return err
		}
		f.AcceptTerms = ok
	}
	return nil
}

// ForgotPassword requests a password-reset email.
func (a *App) ForgotPassword(ctx context.Context, email string) error {
	email, err := a.promptEmail("Reset your password", email)
	if err != nil {
		return err
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	return a.report(a.session.ForgotPassword(ctx, email))
}

// ResendVerification requests a new verification email.
func (a *App) ResendVerification(ctx context.Context, email string) error {
	if email == "" {
		if snap := a.session.Snapshot(); snap.User != nil {
			email = snap.User.Email
		}
	}
	email, err := a.promptEmail("Resend verification email", email)
	if err != nil {
		return err
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	return a.report(a.session.ResendVerification(ctx, email))
}

func (a *App) promptEmail(title, email string) (string, error) {
	if email != "" {
		return strings.TrimSpace(email), nil
	}
	if a.interactive {
		if err := runForm(emailForm(title, &email)); err != nil {
			return "", err
		}
		return strings.TrimSpace(email), nil
	}
	return getSimpleText(a.reader, "Enter email", a.out)
}

// Logout ends the session. The local session is always cleared, even when
// the backend cannot be reached.
func (a *App) Logout(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	return a.report(a.session.Logout(ctx))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
