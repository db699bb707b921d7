package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/timesheet/internal/common"
	"github.com/dmitrijs2005/timesheet/internal/logging"
	"github.com/dmitrijs2005/timesheet/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/timesheet/internal/server/sessions"
	"github.com/dmitrijs2005/timesheet/internal/server/tabular"
)

type logLine struct {
	level string
	msg   string
}

// recLogger records messages so tests can assert on warnings.
type recLogger struct {
	mu    *sync.Mutex
	lines *[]logLine
}

func newRecLogger() *recLogger {
	return &recLogger{mu: &sync.Mutex{}, lines: &[]logLine{}}
}

func (l *recLogger) add(level, msg string) {
	l.mu.Lock()
	*l.lines = append(*l.lines, logLine{level, msg})
	l.mu.Unlock()
}

func (l *recLogger) Debug(_ context.Context, msg string, _ ...any) { l.add("debug", msg) }
func (l *recLogger) Info(_ context.Context, msg string, _ ...any)  { l.add("info", msg) }
func (l *recLogger) Warn(_ context.Context, msg string, _ ...any)  { l.add("warn", msg) }
func (l *recLogger) Error(_ context.Context, msg string, _ ...any) { l.add("error", msg) }
func (l *recLogger) With(...any) logging.Logger                    { return l }

func (l *recLogger) count(level string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, line := range *l.lines {
		if line.level == level {
			n++
		}
	}
	return n
}

type fixture struct {
	store       *tabular.Memory
	cached      *tabular.Cached
	rm          *repomanager.TabularRepositoryManager
	sessions    *sessions.Manager
	audit       *AuditRecorder
	credentials *CredentialService
	preferences *PreferenceService
	timesheets  *TimesheetService
	logger      *recLogger
}

var fixedNow = time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()

	m := tabular.NewMemory()
	m.Seed(common.TableUsers, common.UserHeader,
		[]string{"001", "alice", "wonderland", "Engineer", "B", "ER, GCP", "", ""},
		[]string{"002", "Bob", "builder", "Operator", "C", "", "Night Shift", "2"},
		[]string{"", "carol", "$2a$04$placeholder", "", "", "", "", ""},
	)
	m.Seed(common.TableAttendance, common.AttendanceHeader)

	// A long TTL makes stale reads visible if a write forgets to invalidate.
	cached := tabular.NewCached(m, time.Hour)
	rm := repomanager.NewTabularRepositoryManager(cached)
	logger := newRecLogger()
	sm := sessions.NewManager("test-secret", time.Hour)

	audit := NewAuditRecorder(rm, logger)
	tick := fixedNow
	audit.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}

	ts := NewTimesheetService(rm, audit, logger)
	ts.now = func() time.Time { return fixedNow }

	return &fixture{
		store:       m,
		cached:      cached,
		rm:          rm,
		sessions:    sm,
		audit:       audit,
		credentials: NewCredentialService(rm, sm, audit, logger, bcrypt.MinCost),
		preferences: NewPreferenceService(rm, sm, audit, logger),
		timesheets:  ts,
		logger:      logger,
	}
}

func (f *fixture) login(t *testing.T, username, password string) *sessions.Session {
	t.Helper()
	_, s, err := f.credentials.Login(context.Background(), username, password)
	if err != nil {
		t.Fatalf("login %s: %v", username, err)
	}
	return s
}

func (f *fixture) userRow(t *testing.T, index int) tabular.Row {
	t.Helper()
	tbl, err := f.store.ReadAll(context.Background(), common.TableUsers)
	if err != nil {
		t.Fatalf("read users: %v", err)
	}
	for _, r := range tbl.Rows {
		if r.Index == index {
			return r
		}
	}
	t.Fatalf("no user row %d", index)
	return tabular.Row{}
}
