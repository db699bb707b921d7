package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/timesheet/internal/client/client"
	"github.com/dmitrijs2005/timesheet/internal/client/config"
	"github.com/dmitrijs2005/timesheet/internal/common"
	pb "github.com/dmitrijs2005/timesheet/internal/proto"
)

type fakeAPI struct {
	loggedIn bool
	pingErr  error

	loginUser, loginPass string
	passwords            []string
	areas                []string
	shift                string
	columns              int
	rename               string
	draftFrom, draftTo   string
	draft                *pb.DraftResponse
	submitted            []pb.Draft
	submitErr            error
	activityReq          pb.ActivityLogRequest
	entries              []pb.Entry
	auditUser            string
	events               []pb.AuditEvent
}

func (f *fakeAPI) LoggedIn() bool                 { return f.loggedIn }
func (f *fakeAPI) Ping(ctx context.Context) error { return f.pingErr }
func (f *fakeAPI) Close() error                   { return nil }

func (f *fakeAPI) Login(ctx context.Context, username, password string) (*pb.SessionInfo, error) {
	f.loginUser, f.loginPass = username, password
	if password != "wonderland" {
		return nil, client.ErrUnauthorized
	}
	f.loggedIn = true
	return &pb.SessionInfo{UserID: "001", Username: username, Role: "Engineer", Grade: "B"}, nil
}

func (f *fakeAPI) Logout(ctx context.Context) error {
	f.loggedIn = false
	return nil
}

func (f *fakeAPI) Me(ctx context.Context) (*pb.SessionInfo, error) {
	return &pb.SessionInfo{Username: "alice", Role: "Engineer", Grade: "B", ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (f *fakeAPI) ChangePassword(ctx context.Context, oldPassword, newPassword, confirmPassword string) (string, error) {
	f.passwords = []string{oldPassword, newPassword, confirmPassword}
	f.loggedIn = false
	return "Password changed. Please log in again.", nil
}

func (f *fakeAPI) GetPreferences(ctx context.Context) (*pb.Preferences, error) {
	return &pb.Preferences{PreferredAreas: f.areas, PreferredShift: f.shift, AreaColumnCount: f.columns}, nil
}

func (f *fakeAPI) SetPreferredAreas(ctx context.Context, areas []string) (*pb.Preferences, error) {
	f.areas = areas
	return f.GetPreferences(ctx)
}

func (f *fakeAPI) SetPreferredShift(ctx context.Context, shift string) (*pb.Preferences, error) {
	f.shift = shift
	return f.GetPreferences(ctx)
}

func (f *fakeAPI) SetAreaColumnCount(ctx context.Context, n int) (*pb.Preferences, error) {
	f.columns = n
	return f.GetPreferences(ctx)
}

func (f *fakeAPI) ChangeUsername(ctx context.Context, username string) (*pb.ChangeUsernameResponse, error) {
	f.rename = username
	return &pb.ChangeUsernameResponse{Username: username, Message: "Username changed."}, nil
}

func (f *fakeAPI) Draft(ctx context.Context, from, to string) (*pb.DraftResponse, error) {
	f.draftFrom, f.draftTo = from, to
	return f.draft, nil
}

func (f *fakeAPI) Submit(ctx context.Context, drafts []pb.Draft) (*pb.EntryList, error) {
	f.submitted = drafts
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return &pb.EntryList{Message: "Submitted 1 entries."}, nil
}

func (f *fakeAPI) ActivityLog(ctx context.Context, req pb.ActivityLogRequest) ([]pb.Entry, error) {
	f.activityReq = req
	return f.entries, nil
}

func (f *fakeAPI) AuditLog(ctx context.Context, username string) ([]pb.AuditEvent, error) {
	f.auditUser = username
	return f.events, nil
}

func newTestApp(t *testing.T, input string) (*App, *fakeAPI, *bytes.Buffer) {
	t.Helper()
	api := &fakeAPI{}
	out := &bytes.Buffer{}
	c := &config.Config{}
	c.LoadDefaults()
	return &App{config: c, api: api, reader: rdr(input), out: out}, api, out
}

// stubPasswords makes GetPassword return the given answers in order.
func stubPasswords(t *testing.T, answers ...string) {
	t.Helper()
	old := readPassword
	t.Cleanup(func() { readPassword = old })
	readPassword = func(int) ([]byte, error) {
		if len(answers) == 0 {
			return nil, errors.New("no more input")
		}
		pw := answers[0]
		answers = answers[1:]
		return []byte(pw), nil
	}
}

func TestLogin(t *testing.T) {
	app, api, out := newTestApp(t, "alice\n")
	stubPasswords(t, "wonderland")

	require.NoError(t, app.Login(context.Background()))
	assert.Equal(t, "alice", api.loginUser)
	assert.Equal(t, "(alice )", app.getStatus())
	assert.Contains(t, out.String(), "Welcome, alice!")
	assert.Contains(t, out.String(), "Role: Engineer")
}

func TestLogin_Failure(t *testing.T) {
	app, _, _ := newTestApp(t, "alice\n")
	stubPasswords(t, "wrong")

	err := app.Login(context.Background())
	assert.ErrorIs(t, err, client.ErrUnauthorized)
	assert.False(t, app.isLoggedIn())
}

func TestLogin_EmptyUsername(t *testing.T) {
	app, api, _ := newTestApp(t, "\n")

	assert.Error(t, app.Login(context.Background()))
	assert.Empty(t, api.loginUser)
}

func TestChangePassword_LogsOut(t *testing.T) {
	app, api, out := newTestApp(t, "")
	api.loggedIn = true
	app.setUserName("alice")
	stubPasswords(t, "old", "new-secret", "new-secret")

	require.NoError(t, app.ChangePassword(context.Background()))
	assert.Equal(t, []string{"old", "new-secret", "new-secret"}, api.passwords)
	assert.Equal(t, "", app.getStatus())
	assert.Contains(t, out.String(), "log in again")
}

func TestSetAreas(t *testing.T) {
	app, api, out := newTestApp(t, "")

	require.NoError(t, app.SetAreas(context.Background(), []string{"er,gcp", "SC"}))
	assert.Equal(t, []string{"ER", "GCP", "SC"}, api.areas)
	assert.Contains(t, out.String(), "Preferred areas: ER, GCP, SC")
}

func TestSetAreas_Prompts(t *testing.T) {
	app, api, _ := newTestApp(t, "sm sap\n")

	require.NoError(t, app.SetAreas(context.Background(), nil))
	assert.Equal(t, []string{"SM", "SAP"}, api.areas)
}

func TestSetShift(t *testing.T) {
	for _, tt := range []struct {
		args []string
		want string
	}{
		{[]string{"2"}, common.ShiftNight},
		{[]string{"noon"}, common.ShiftNoon},
		{[]string{"Day", "Shift"}, common.ShiftDay},
	} {
		app, api, _ := newTestApp(t, "")
		require.NoError(t, app.SetShift(context.Background(), tt.args))
		assert.Equal(t, tt.want, api.shift)
	}

	app, api, _ := newTestApp(t, "")
	assert.Error(t, app.SetShift(context.Background(), []string{"4"}))
	assert.Empty(t, api.shift)
}

func TestSetColumns(t *testing.T) {
	app, api, _ := newTestApp(t, "")

	require.NoError(t, app.SetColumns(context.Background(), []string{"3"}))
	assert.Equal(t, 3, api.columns)

	assert.Error(t, app.SetColumns(context.Background(), []string{"5"}))
	assert.Error(t, app.SetColumns(context.Background(), []string{"x"}))
	assert.Error(t, app.SetColumns(context.Background(), nil))
	assert.Equal(t, 3, api.columns)
}

func TestRename(t *testing.T) {
	app, api, out := newTestApp(t, "")
	api.loggedIn = true

	require.NoError(t, app.Rename(context.Background(), []string{"alicia"}))
	assert.Equal(t, "alicia", api.rename)
	assert.Equal(t, "(alicia )", app.getStatus())
	assert.Contains(t, out.String(), "Username changed.")
}

func twoDayDraft() *pb.DraftResponse {
	return &pb.DraftResponse{
		From: "2024-03-04",
		To:   "2024-03-05",
		Drafts: []pb.Draft{
			{Date: "2024-03-04", Day: "Monday", Hours: "0", Overtime: "0", Areas: []string{"ER"}, Shift: common.ShiftDay},
			{Date: "2024-03-05", Day: "Tuesday", Hours: "0", Overtime: "0", Areas: []string{"ER"}, Shift: common.ShiftDay},
		},
		AreaOptions:     []string{"ER", "GCP"},
		AreaColumnCount: 2,
	}
}

func TestTimesheet_FillsAndSubmits(t *testing.T) {
	// Day one: 8h, 1h overtime, areas ER and gcp, night shift, a remark.
	// Day two is skipped. Then confirm.
	input := "8\n1\n\ngcp\n2\nvalve check\n-\ny\n"
	app, api, out := newTestApp(t, input)
	api.draft = twoDayDraft()

	require.NoError(t, app.Timesheet(context.Background(), []string{"2024-03-04", "2024-03-05"}))

	assert.Equal(t, "2024-03-04", api.draftFrom)
	assert.Equal(t, "2024-03-05", api.draftTo)
	require.Len(t, api.submitted, 1)
	got := api.submitted[0]
	assert.Equal(t, "8", got.Hours)
	assert.Equal(t, "1", got.Overtime)
	assert.Equal(t, []string{"ER", "GCP"}, got.Areas)
	assert.Equal(t, common.ShiftNight, got.Shift)
	assert.Equal(t, "valve check", got.Remark)
	assert.Contains(t, out.String(), "Submitted 1 entries.")
}

func TestTimesheet_DeclineSubmits(t *testing.T) {
	app, api, out := newTestApp(t, "8\n\n\n\n\n\n-\nn\n")
	api.draft = twoDayDraft()

	require.NoError(t, app.Timesheet(context.Background(), nil))
	assert.Nil(t, api.submitted)
	assert.Contains(t, out.String(), "Nothing submitted.")
}

func TestTimesheet_AllSkipped(t *testing.T) {
	app, api, out := newTestApp(t, "-\n-\n")
	api.draft = twoDayDraft()

	require.NoError(t, app.Timesheet(context.Background(), nil))
	assert.Nil(t, api.submitted)
	assert.Contains(t, out.String(), "No entries to submit.")
}

func TestTimesheet_PrintsRejection(t *testing.T) {
	app, api, out := newTestApp(t, "30\n\n\n\n\n\n-\ny\n")
	api.draft = twoDayDraft()
	api.submitErr = &client.RejectedError{
		Message: "validation error",
		Rejection: &pb.Rejection{
			Problems:   []pb.Problem{{Date: "2024-03-04", Field: "Hours", Message: "cannot exceed 24"}},
			Duplicates: []string{"2024-03-01"},
		},
	}

	require.NoError(t, app.Timesheet(context.Background(), nil))
	assert.Contains(t, out.String(), "Nothing was saved.")
	assert.Contains(t, out.String(), "2024-03-04 Hours: cannot exceed 24")
	assert.Contains(t, out.String(), "already submitted: 2024-03-01")
}

func TestActivity(t *testing.T) {
	app, api, out := newTestApp(t, "")
	api.entries = []pb.Entry{{Date: "2024-03-04", Day: "Monday", Username: "alice", Hours: 7.5, Areas: []string{"ER", ""}, Shift: common.ShiftDay}}

	require.NoError(t, app.Activity(context.Background(), []string{"2024-03-01", "user=alice", "shift=night", "area=er"}))
	assert.Equal(t, pb.ActivityLogRequest{
		DateRange: pb.DateRange{From: "2024-03-01"},
		Username:  "alice",
		Shift:     common.ShiftNight,
		Area:      "ER",
	}, api.activityReq)
	assert.Contains(t, out.String(), "7.5")
	assert.Contains(t, out.String(), "alice")
}

func TestAudit(t *testing.T) {
	app, api, out := newTestApp(t, "")
	require.NoError(t, app.Audit(context.Background(), nil))
	assert.Contains(t, out.String(), "No audit events.")

	api.events = []pb.AuditEvent{{Timestamp: "2024-03-04T10:00:00Z", Username: "alice", Action: "LOGIN", Status: "SUCCESS"}}
	require.NoError(t, app.Audit(context.Background(), []string{"alice"}))
	assert.Equal(t, "alice", api.auditUser)
	assert.Contains(t, out.String(), "LOGIN")
}

func TestCheckOnline_SwitchesMode(t *testing.T) {
	app, api, out := newTestApp(t, "")

	app.checkOnline(context.Background())
	assert.Equal(t, ModeOnline, app.Mode)

	api.pingErr = client.ErrUnavailable
	app.checkOnline(context.Background())
	assert.Equal(t, ModeOffline, app.Mode)
	assert.Contains(t, out.String(), "Switched to offline mode")
}
