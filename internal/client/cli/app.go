package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/saherflow/flowportal/internal/client/client"
	"github.com/saherflow/flowportal/internal/client/config"
	"github.com/saherflow/flowportal/internal/client/models"
	"github.com/saherflow/flowportal/internal/client/repositories/metadata"
	"github.com/saherflow/flowportal/internal/client/services"
	"github.com/saherflow/flowportal/internal/client/storage"
	"github.com/saherflow/flowportal/internal/filex"
	"github.com/saherflow/flowportal/internal/logging"
)

// ErrFailed marks a command failure whose message was already shown to the
// user.
var ErrFailed = errors.New("command failed")

// sessionService is the part of services.SessionStore the views use.
type sessionService interface {
	Initialize(ctx context.Context) models.Result
	Login(ctx context.Context, email, password string, remember bool) models.Result
	Signup(ctx context.Context, form models.SignupForm) models.Result
	ForgotPassword(ctx context.Context, email string) models.Result
	ResendVerification(ctx context.Context, email string) models.Result
	Logout(ctx context.Context) models.Result
	Snapshot() services.Snapshot
	Subscribe() (<-chan services.Snapshot, func())
}

type domainChecker interface {
	CheckDomain(ctx context.Context, domain string) models.Envelope[models.DomainCheck]
}

// App holds everything a command needs: the session, the gateway for
// session-less lookups, and the terminal it talks to.
type App struct {
	config      *config.Config
	session     sessionService
	domains     domainChecker
	log         logging.Logger
	reader      *bufio.Reader
	inFd        int
	out         io.Writer
	interactive bool
	db          *sql.DB
}

// NewApp wires the gateway, the token storage and the session store from cfg.
// With PersistSession the token lives in a SQLite database under cfg.DataDir;
// otherwise it lives in memory only.
func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger, in io.Reader, out io.Writer) (*App, error) {
	var (
		tokens storage.TokenStore
		db     *sql.DB
	)

	if cfg.PersistSession {
		if _, err := filex.EnsureDir(cfg.DataDir); err != nil {
			return nil, fmt.Errorf("data dir: %w", err)
		}
		var err error
		db, err = client.InitDatabase(ctx, cfg.DatabasePath())
		if err != nil {
			log.Error(ctx, "error initializing database", "path", cfg.DatabasePath(), "error", err)
			return nil, err
		}
		tokens = storage.NewSQLiteTokenStore(metadata.NewSQLiteRepository(db))
	} else {
		tokens = storage.NewMemoryTokenStore()
	}

	api := client.NewHTTPClient(cfg.APIBaseURL, client.WithLogger(log))

	return &App{
		config:      cfg,
		session:     services.NewSessionStore(api, tokens, log),
		domains:     api,
		log:         log,
		reader:      bufio.NewReader(in),
		inFd:        inputFd(in),
		out:         &syncWriter{w: out},
		interactive: stdinIsTerminal(in),
		db:          db,
	}, nil
}

// Close releases the local database, if any.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	return err
}

// Initialize restores the saved session. Failures to restore are silent; the
// user simply starts signed out.
func (a *App) Initialize(ctx context.Context) {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	res := a.session.Initialize(ctx)
	a.log.Debug(ctx, "session initialized", "message", res.Message, "authenticated", a.isLoggedIn())
}

func (a *App) isLoggedIn() bool {
	return a.session.Snapshot().IsAuthenticated()
}

// withTimeout bounds a single command's backend calls.
func (a *App) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.config == nil || a.config.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.config.RequestTimeout)
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// report prints a Result and converts failure into ErrFailed.
func (a *App) report(res models.Result) error {
	if res.Message != "" {
		a.println(res.Message)
	}
	for _, fe := range res.FieldErrors {
		if fe.Param != "" {
			a.printf("  - %s: %s\n", fe.Param, fe.Msg)
		} else {
			a.printf("  - %s\n", fe.Msg)
		}
	}
	if !res.Success {
		return fmt.Errorf("%w: %s", ErrFailed, res.Message)
	}
	return nil
}

// syncWriter serializes writes from the REPL and the session watcher.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
