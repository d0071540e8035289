package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/saherflow/flowportal/internal/client/models"
)

const msgLoginRequired = "You are not logged in. Run 'flowportal login' to sign in."

const lastLoginLayout = "Jan 2, 2006 15:04 MST"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))
	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")).
			Width(12)
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39")).
			Padding(0, 1)
	verifiedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("2"))
	pendingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))
	noticeStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("214")).
			Padding(0, 1)
	placeholderStyle = lipgloss.NewStyle().
				Border(lipgloss.DoubleBorder()).
				BorderForeground(lipgloss.Color("8")).
				Padding(1, 2).
				Align(lipgloss.Center)
)

// requireUser returns the signed-in user or tells the user to log in.
func (a *App) requireUser() (*models.User, error) {
	snap := a.session.Snapshot()
	if !snap.IsAuthenticated() {
		a.println(msgLoginRequired)
		return nil, fmt.Errorf("%w: not logged in", ErrFailed)
	}
	return snap.User, nil
}

// Dashboard renders the signed-in user's landing view.
func (a *App) Dashboard(_ context.Context) error {
	u, err := a.requireUser()
	if err != nil {
		return err
	}
	a.println(renderDashboard(*u))
	return nil
}

// Whoami prints a short account summary.
func (a *App) Whoami(_ context.Context) error {
	u, err := a.requireUser()
	if err != nil {
		return err
	}
	a.printf("%s <%s>\n", u.FullName(), u.Email)
	if u.Company != "" || u.Role != "" {
		a.printf("%s\n", strings.Trim(u.Company+" / "+u.Role, " /"))
	}
	return nil
}

func renderDashboard(u models.User) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("Welcome back, %s!", u.FirstName)))
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render("Saher Flow measurement portal"))
	b.WriteString("\n\n")

	b.WriteString(renderAccountCard(u))
	b.WriteString("\n")

	if !u.IsEmailVerified {
		b.WriteString("\n")
		b.WriteString(noticeStyle.Render(
			pendingStyle.Render("Email verification required") + "\n" +
				"Some features are unavailable until you verify " + u.Email + ".\n" +
				"Run 'resend-verification' to get a new verification link.",
		))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(placeholderStyle.Render(
		titleStyle.Render("Monitoring Dashboard") + "\n\n" +
			"Dashboard Coming Soon\n" +
			subtitleStyle.Render("Your flow measurement monitoring tools will be available here."),
	))

	return b.String()
}

func renderAccountCard(u models.User) string {
	badge := pendingStyle.Render("Pending Verification")
	if u.IsEmailVerified {
		badge = verifiedStyle.Render("Verified")
	}

	rows := []string{
		row("Name", u.FullName()),
		row("Email", u.Email+"  "+badge),
		row("Company", u.Company),
		row("Role", u.Role),
	}
	if u.LastLogin != nil {
		last := u.LastLogin.Local().Format(lastLoginLayout)
		if u.LastLoginIP != "" {
			last += " from " + u.LastLoginIP
		}
		rows = append(rows, row("Last login", last))
	}

	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func row(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), value)
}
