package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/timesheet/internal/client/client"
	"github.com/dmitrijs2005/timesheet/internal/client/config"
	pb "github.com/dmitrijs2005/timesheet/internal/proto"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// api is the server surface the commands use; *client.GRPCClient
// implements it.
type api interface {
	LoggedIn() bool
	Ping(ctx context.Context) error
	Login(ctx context.Context, username, password string) (*pb.SessionInfo, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*pb.SessionInfo, error)
	ChangePassword(ctx context.Context, oldPassword, newPassword, confirmPassword string) (string, error)
	GetPreferences(ctx context.Context) (*pb.Preferences, error)
	SetPreferredAreas(ctx context.Context, areas []string) (*pb.Preferences, error)
	SetPreferredShift(ctx context.Context, shift string) (*pb.Preferences, error)
	SetAreaColumnCount(ctx context.Context, n int) (*pb.Preferences, error)
	ChangeUsername(ctx context.Context, username string) (*pb.ChangeUsernameResponse, error)
	Draft(ctx context.Context, from, to string) (*pb.DraftResponse, error)
	Submit(ctx context.Context, drafts []pb.Draft) (*pb.EntryList, error)
	ActivityLog(ctx context.Context, req pb.ActivityLogRequest) ([]pb.Entry, error)
	AuditLog(ctx context.Context, username string) ([]pb.AuditEvent, error)
	Close() error
}

type App struct {
	config *config.Config
	api    api
	reader *bufio.Reader
	out    io.Writer

	mu       sync.Mutex
	userName string
	Mode     Mode
}

func NewApp(c *config.Config) (*App, error) {

	apiClient, err := client.NewTimesheetClientService(c.ServerEndpointAddr)
	if err != nil {
		return nil, err
	}

	return &App{config: c, api: apiClient, reader: bufio.NewReader(os.Stdin), out: os.Stdout}, nil
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.Mode != mode
	a.Mode = mode
	a.mu.Unlock()

	if changed {
		fmt.Fprintf(a.out, "\nSwitched to %s mode\n", mode)
	}
}

func (a *App) setUserName(name string) {
	a.mu.Lock()
	a.userName = name
	a.mu.Unlock()
}

func (a *App) Run(ctx context.Context) {
	defer a.api.Close()
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.api.LoggedIn()
}

// requestContext bounds a single call by the configured timeout.
func (a *App) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.config == nil || a.config.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.config.RequestTimeout)
}

func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)

		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := a.api.Ping(ctx); err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}

func (a *App) getStatus() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := ""
	if a.userName != "" && a.api.LoggedIn() {
		s = a.userName + " "
	}
	if a.Mode != "" {
		s = s + string(a.Mode)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// Root greets the user, tries to log in and hands over to the REPL.
func (a *App) Root(ctx context.Context) {

	fmt.Fprintln(a.out, "Welcome to the timesheet CLI (type 'help' for commands)")

	a.checkOnline(ctx)
	if err := a.Login(ctx); err != nil {
		fmt.Fprintln(a.out, err)
	}

	if a.config != nil && a.config.OnlineCheckInterval > 0 {
		go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)
	}

	runREPL(ctx, a, a.getStatus, a.reader)
}
