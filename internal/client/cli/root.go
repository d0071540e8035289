package cli

import (
	"context"

	"github.com/saherflow/flowportal/internal/client/config"
	"github.com/saherflow/flowportal/internal/client/models"
	"github.com/saherflow/flowportal/internal/logging"
	"github.com/spf13/cobra"
)

// appFactory builds the App for the command being executed.
type appFactory func(cmd *cobra.Command) (*App, error)

// commandSet owns the App shared by the command tree for one execution.
type commandSet struct {
	factory appFactory
	app     *App
}

// Execute runs the flowportal command line until the command completes.
func Execute(ctx context.Context) error {
	cs := &commandSet{factory: defaultApp}
	defer cs.close()
	return cs.root().ExecuteContext(ctx)
}

func defaultApp(cmd *cobra.Command) (*App, error) {
	cfg, err := config.Load(cmd)
	if err != nil {
		return nil, err
	}
	log, err := logging.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}
	return NewApp(cmd.Context(), cfg, log, cmd.InOrStdin(), cmd.OutOrStdout())
}

func (cs *commandSet) close() {
	if cs.app != nil {
		_ = cs.app.Close()
	}
}

// prepare builds the App and restores any saved session before a command runs.
func (cs *commandSet) prepare(cmd *cobra.Command, _ []string) error {
	app, err := cs.factory(cmd)
	if err != nil {
		return err
	}
	cs.app = app
	cs.app.Initialize(cmd.Context())
	return nil
}

func (cs *commandSet) root() *cobra.Command {
	root := &cobra.Command{
		Use:   "flowportal",
		Short: "Saher Flow measurement portal client",
		Long: `flowportal signs you in to the Saher Flow measurement portal.

Run without a subcommand to start an interactive shell. The session is
remembered between runs unless --ephemeral is given.`,
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: cs.prepare,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cs.app.Shell(cmd.Context())
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	config.RegisterFlags(root)

	root.AddCommand(
		cs.loginCmd(),
		cs.signupCmd(),
		cs.forgotPasswordCmd(),
		cs.resendVerificationCmd(),
		cs.logoutCmd(),
		cs.whoamiCmd(),
		cs.dashboardCmd(),
		cs.checkDomainCmd(),
	)
	return root
}

func (cs *commandSet) loginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with your email and password",
		Long: `Sign in to the portal. Missing credentials are prompted for.

Examples:
  flowportal login
  flowportal login --email you@company.com --remember`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			remember, _ := cmd.Flags().GetBool("remember")
			return cs.app.Login(cmd.Context(), LoginInput{Email: email, Password: password, Remember: remember})
		},
	}
	cmd.Flags().String("email", "", "account email")
	cmd.Flags().String("password", "", "account password (prompted when omitted)")
	cmd.Flags().Bool("remember", false, "ask the server for a longer-lived session")
	return cmd
}

func (cs *commandSet) signupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "signup",
		Aliases: []string{"register"},
		Short:   "Create a portal account",
		Long: `Create a portal account. A verification email is sent to the address
given; signing up does not sign you in.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fs := cmd.Flags()
			var form models.SignupForm
			form.FirstName, _ = fs.GetString("first-name")
			form.LastName, _ = fs.GetString("last-name")
			form.Email, _ = fs.GetString("email")
			form.Company, _ = fs.GetString("company")
			form.Password, _ = fs.GetString("password")
			form.ConfirmPassword, _ = fs.GetString("confirm-password")
			form.AcceptTerms, _ = fs.GetBool("accept-terms")
			return cs.app.Signup(cmd.Context(), form)
		},
	}
	fs := cmd.Flags()
	fs.String("first-name", "", "first name")
	fs.String("last-name", "", "last name")
	fs.String("email", "", "work email")
	fs.String("company", "", "company name")
	fs.String("password", "", "password (prompted when omitted)")
	fs.String("confirm-password", "", "password confirmation")
	fs.Bool("accept-terms", false, "accept the terms and conditions")
	return cmd
}

func (cs *commandSet) forgotPasswordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forgot-password",
		Short: "Email a password-reset link",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			email, _ := cmd.Flags().GetString("email")
			return cs.app.ForgotPassword(cmd.Context(), email)
		},
	}
	cmd.Flags().String("email", "", "account email")
	return cmd
}

func (cs *commandSet) resendVerificationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resend-verification",
		Short: "Resend the email verification link",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			email, _ := cmd.Flags().GetString("email")
			return cs.app.ResendVerification(cmd.Context(), email)
		},
	}
	cmd.Flags().String("email", "", "account email (defaults to the signed-in account)")
	return cmd
}

func (cs *commandSet) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cs.app.Logout(cmd.Context())
		},
	}
}

func (cs *commandSet) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cs.app.Whoami(cmd.Context())
		},
	}
}

func (cs *commandSet) dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show your account dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cs.app.Dashboard(cmd.Context())
		},
	}
}

func (cs *commandSet) checkDomainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-domain [domain]",
		Short: "Check whether a company email domain is registered",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			domain := ""
			if len(args) == 1 {
				domain = args[0]
			}
			return cs.app.CheckDomain(cmd.Context(), domain)
		},
	}
}
