package cli

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/saherflow/flowportal/internal/client/models"
	"github.com/saherflow/flowportal/internal/client/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExec struct {
	loggedIn bool

	calls []string
	args  []string
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }

func (f *fakeExec) Login(context.Context, LoginInput) error {
	f.calls = append(f.calls, "login")
	f.loggedIn = true
	return nil
}

func (f *fakeExec) Signup(context.Context, models.SignupForm) error {
	f.calls = append(f.calls, "signup")
	return nil
}

func (f *fakeExec) ForgotPassword(_ context.Context, email string) error {
	f.calls = append(f.calls, "forgot")
	f.args = append(f.args, email)
	return nil
}

func (f *fakeExec) ResendVerification(_ context.Context, email string) error {
	f.calls = append(f.calls, "resend")
	f.args = append(f.args, email)
	return nil
}

func (f *fakeExec) Logout(context.Context) error {
	f.calls = append(f.calls, "logout")
	f.loggedIn = false
	return nil
}

func (f *fakeExec) Whoami(context.Context) error {
	f.calls = append(f.calls, "whoami")
	return nil
}

func (f *fakeExec) Dashboard(context.Context) error {
	f.calls = append(f.calls, "dashboard")
	return nil
}

func (f *fakeExec) CheckDomain(_ context.Context, domain string) error {
	f.calls = append(f.calls, "domain")
	f.args = append(f.args, domain)
	return nil
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	input := strings.Join([]string{
		"help",
		"",
		"signup",
		"forgot a@b.com",
		"login",
		"help",
		"dashboard",
		"whoami",
		"resend",
		"resend-verification b@c.com",
		"forgot-password",
		"domain saherflow.com",
		"logout",
		"foobar",
		"exit",
		"login",
	}, "\n")

	exec := &fakeExec{}
	var out bytes.Buffer
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewReader(strings.NewReader(input)), &out)

	assert.Equal(t, []string{"signup", "forgot", "login", "dashboard", "whoami", "resend", "resend", "forgot", "domain", "logout"}, exec.calls)
	assert.Equal(t, []string{"a@b.com", "", "b@c.com", "", "saherflow.com"}, exec.args)

	got := out.String()
	assert.Contains(t, got, "Available commands: login, signup, forgot, resend, domain, exit")
	assert.Contains(t, got, "Available commands: dashboard, whoami, resend, domain, logout, exit")
	assert.Contains(t, got, "Unknown command: foobar")
	assert.Contains(t, got, "Bye!")
}

func TestRunREPL_StopsOnEOF(t *testing.T) {
	exec := &fakeExec{}
	var out bytes.Buffer
	runREPL(context.Background(), exec, func() string { return "(s) " }, bufio.NewReader(strings.NewReader("whoami")), &out)

	assert.Equal(t, []string{"whoami"}, exec.calls)
	assert.Contains(t, out.String(), "flowportal (s) > ")
}

func TestRunREPL_StopsWhenContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	exec := &fakeExec{}
	var out bytes.Buffer
	runREPL(ctx, exec, func() string { return "" }, bufio.NewReader(strings.NewReader("login\n")), &out)

	assert.Empty(t, exec.calls)
}

func TestStatus(t *testing.T) {
	a, _ := newTestApp(&fakeSession{}, "")
	assert.Equal(t, "", a.status())

	a, _ = newTestApp(&fakeSession{snap: signedIn(models.User{Email: "ada@saherflow.com"})}, "")
	assert.Equal(t, "(ada@saherflow.com) ", a.status())
}

func TestShell_LoginDashboardLogout(t *testing.T) {
	s := &fakeSession{
		loginRes:  models.Result{Success: true, Message: "Login successful"},
		logoutRes: models.Result{Success: true, Message: "You have been logged out."},
	}
	stubInputs(t, []string{"ada@saherflow.com"}, []string{"pw"})
	a, out := newTestApp(s, "login\ndashboard\nexit\n")

	require.NoError(t, a.Shell(context.Background()))

	got := out.String()
	assert.Contains(t, got, "Saher Flow portal")
	assert.Contains(t, got, "Signed in as Ada Lovelace <ada@saherflow.com>")
	assert.Contains(t, got, "flowportal (ada@saherflow.com) > ")
	assert.Contains(t, got, "Monitoring Dashboard")
	assert.Contains(t, got, "Bye!")
}

func TestWatchSession_NotifiesWhenSessionEnds(t *testing.T) {
	s := &fakeSession{snap: signedIn(models.User{Email: "ada@saherflow.com"})}
	sub := make(chan services.Snapshot, 1)
	a, _ := newTestApp(s, "")
	a.session = &subscribeOverride{fakeSession: s, ch: sub}
	var out lockedBuffer
	a.out = &out

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		a.watchSession(ctx)
		close(done)
	}()

	sub <- services.Snapshot{State: services.StateAuthenticated, User: &models.User{Email: "ada@saherflow.com"}, Token: "t"}
	sub <- services.Snapshot{State: services.StateUnauthenticated}
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Session ended")
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done
}

func TestWatchSession_StopsWhenChannelCloses(t *testing.T) {
	sub := make(chan services.Snapshot)
	a, out := newTestApp(&fakeSession{}, "")
	a.session = &subscribeOverride{fakeSession: &fakeSession{}, ch: sub}

	done := make(chan struct{})
	go func() {
		a.watchSession(context.Background())
		close(done)
	}()
	close(sub)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
	assert.Empty(t, out.String())
}

// subscribeOverride hands out a fixed subscription channel.
type subscribeOverride struct {
	*fakeSession
	ch chan services.Snapshot
}

func (s *subscribeOverride) Subscribe() (<-chan services.Snapshot, func()) {
	return s.ch, func() {}
}

type lockedBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (l *lockedBuffer) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

func (l *lockedBuffer) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.String()
}
