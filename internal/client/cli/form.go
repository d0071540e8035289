package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/saherflow/flowportal/internal/client/models"
)

// runForm is a test seam for (*huh.Form).Run.
var runForm = func(f *huh.Form) error { return f.Run() }

func required(label string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", label)
		}
		return nil
	}
}

func loginForm(in *LoginInput) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Placeholder("you@company.com").
				Value(&in.Email).
				Validate(required("email")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&in.Password).
				Validate(required("password")),
			huh.NewConfirm().
				Title("Remember me").
				Value(&in.Remember),
		).Title("Sign in to Saher Flow"),
	)
}

func signupForm(f *models.SignupForm) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("First name").Value(&f.FirstName).Validate(required("first name")),
			huh.NewInput().Title("Last name").Value(&f.LastName).Validate(required("last name")),
			huh.NewInput().Title("Work email").Placeholder("you@company.com").Value(&f.Email).Validate(required("email")),
			huh.NewInput().Title("Company").Value(&f.Company).Validate(required("company")),
		).Title("Create your account"),
		huh.NewGroup(
			huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&f.Password).Validate(required("password")),
			huh.NewInput().Title("Confirm password").EchoMode(huh.EchoModePassword).Value(&f.ConfirmPassword),
			huh.NewConfirm().
				Title("I accept the terms and conditions").
				Affirmative("Accept").
				Negative("Decline").
				Value(&f.AcceptTerms),
		),
	)
}

func emailForm(title string, email *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Placeholder("you@company.com").
				Value(email).
				Validate(required("email")),
		).Title(title),
	)
}

func domainForm(domain *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Company domain").
				Placeholder("saherflow.com").
				Value(domain).
				Validate(required("domain")),
		),
	)
}
