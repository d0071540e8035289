package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// CheckDomain reports whether a company email domain is on the allow-list.
// It does not need a session.
func (a *App) CheckDomain(ctx context.Context, domain string) error {
	domain = strings.TrimPrefix(strings.TrimSpace(domain), "@")
	if domain == "" {
		var err error
		if domain, err = a.promptDomain(); err != nil {
			return err
		}
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	env := a.domains.CheckDomain(ctx, domain)
	if !env.Success {
		a.println(env.Message)
		return fmt.Errorf("%w: %s", ErrFailed, env.Message)
	}
	if env.Data == nil || !env.Data.IsAllowed {
		a.printf("%s is not a registered company domain.\n", domain)
		return nil
	}

	a.printf("%s is a registered company domain.\n", domain)
	if name := companyName(env.Data.Company); name != "" {
		a.printf("Company: %s\n", name)
	}
	return nil
}

func (a *App) promptDomain() (string, error) {
	var domain string
	if a.interactive {
		if err := runForm(domainForm(&domain)); err != nil {
			return "", err
		}
		return strings.TrimSpace(domain), nil
	}
	return getSimpleText(a.reader, "Enter company domain", a.out)
}

// companyName extracts a display name from the backend's company object.
func companyName(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var c struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &c); err != nil {
		return ""
	}
	return c.Name
}
