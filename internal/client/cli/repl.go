package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/saherflow/flowportal/internal/client/models"
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context, in LoginInput) error
	Signup(ctx context.Context, form models.SignupForm) error
	ForgotPassword(ctx context.Context, email string) error
	ResendVerification(ctx context.Context, email string) error
	Logout(ctx context.Context) error
	Whoami(ctx context.Context) error
	Dashboard(ctx context.Context) error
	CheckDomain(ctx context.Context, domain string) error
}

// runREPL starts a simple read–eval–print loop for the flowportal CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. The same reader serves the prompts of the
// commands themselves. The loop exits on EOF, when ctx is done, or when the
// user types "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help             show available commands
//	  - login            sign in
//	  - signup           create an account
//	  - forgot [email]   request a password reset (alias forgot-password)
//	  - resend [email]   resend the verification email (alias resend-verification)
//	  - domain <domain>  check a company domain
//	  - exit | quit      leave the program
//
//	Logged in:
//	  - dashboard        show the dashboard
//	  - whoami           show the signed-in account
//	  - resend           resend the verification email
//	  - domain <domain>  check a company domain
//	  - logout           sign out
//	  - exit | quit      leave the program
//
// Errors returned by command handlers are not printed here; handlers report
// their own failures. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, w io.Writer) {
	for {
		if ctx.Err() != nil {
			return
		}
		fmt.Fprintf(w, "flowportal %s> ", statusFn())

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			fmt.Fprintln(w)
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		arg := ""
		if len(parts) > 1 {
			arg = parts[1]
		}

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Fprintln(w, "Available commands: dashboard, whoami, resend, domain, logout, exit")
			} else {
				fmt.Fprintln(w, "Available commands: login, signup, forgot, resend, domain, exit")
			}

		case "login":
			_ = a.Login(ctx, LoginInput{})

		case "signup", "register":
			_ = a.Signup(ctx, models.SignupForm{})

		case "forgot", "forgot-password":
			_ = a.ForgotPassword(ctx, arg)

		case "resend", "resend-verification":
			_ = a.ResendVerification(ctx, arg)

		case "logout":
			_ = a.Logout(ctx)

		case "whoami":
			_ = a.Whoami(ctx)

		case "dashboard":
			_ = a.Dashboard(ctx)

		case "domain":
			_ = a.CheckDomain(ctx, arg)

		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return

		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
		}
	}
}

// Shell runs the interactive session until the user exits.
func (a *App) Shell(ctx context.Context) error {
	a.println("Saher Flow portal (type 'help' for commands)")

	watchCtx, stop := context.WithCancel(ctx)
	defer stop()
	go a.watchSession(watchCtx)

	runREPL(ctx, a, a.status, a.reader, a.out)
	return nil
}

func (a *App) status() string {
	if snap := a.session.Snapshot(); snap.IsAuthenticated() {
		return "(" + snap.Email() + ") "
	}
	return ""
}

// watchSession prints a notice whenever an authenticated session ends.
func (a *App) watchSession(ctx context.Context) {
	ch, cancel := a.session.Subscribe()
	defer cancel()

	was := a.isLoggedIn()
	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-ch:
			if !ok {
				return
			}
			now := snap.IsAuthenticated()
			if was && !now {
				a.println("Session ended. Log in again to continue.")
			}
			was = now
		}
	}
}
