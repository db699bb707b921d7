package grpc

import (
	"context"
	"net"
	"time"

	"google.golang.org/grpc"

	"github.com/dmitrijs2005/timesheet/internal/logging"
	pb "github.com/dmitrijs2005/timesheet/internal/proto"
	"github.com/dmitrijs2005/timesheet/internal/server/models"
	"github.com/dmitrijs2005/timesheet/internal/server/services"
	"github.com/dmitrijs2005/timesheet/internal/server/sessions"
	"github.com/dmitrijs2005/timesheet/internal/server/timesheet"
)

type credentialService interface {
	Login(ctx context.Context, username, password string) (string, *sessions.Session, error)
	Logout(ctx context.Context, session *sessions.Session)
	ChangePassword(ctx context.Context, session *sessions.Session, oldPassword, newPassword, confirmPassword string) error
}

type preferenceService interface {
	GetPreferences(ctx context.Context, session *sessions.Session) (*services.Preferences, error)
	SetPreferredAreas(ctx context.Context, session *sessions.Session, areas []string) ([]string, error)
	SetPreferredShift(ctx context.Context, session *sessions.Session, shift string) error
	SetAreaColumnCount(ctx context.Context, session *sessions.Session, n int) (int, error)
	ChangeUsername(ctx context.Context, session *sessions.Session, newUsername string) (*models.User, error)
}

type timesheetService interface {
	Draft(ctx context.Context, session *sessions.Session, from, to time.Time) (*services.DraftSheet, error)
	Submit(ctx context.Context, session *sessions.Session, drafts []timesheet.Draft) ([]models.AttendanceEntry, error)
	ActivityLog(ctx context.Context, f timesheet.ActivityFilter) ([]models.AttendanceEntry, error)
}

type auditLog interface {
	List(ctx context.Context, username string) ([]models.AuditEvent, error)
}

type sessionResolver interface {
	Resolve(token string) (*sessions.Session, error)
}

// Services bundles what the handlers call into.
type Services struct {
	Credentials credentialService
	Preferences preferenceService
	Timesheets  timesheetService
	Audit       auditLog
	Sessions    sessionResolver
}

type GRPCServer struct {
	address     string
	credentials credentialService
	preferences preferenceService
	timesheets  timesheetService
	audit       auditLog
	sessions    sessionResolver
	logger      logging.Logger
}

var _ pb.TimesheetServer = (*GRPCServer)(nil)

func NewGRPCServer(a string, l logging.Logger, svc Services) (*GRPCServer, error) {
	return &GRPCServer{
		address:     a,
		logger:      l.With("module", "grpc_server"),
		credentials: svc.Credentials,
		preferences: svc.Preferences,
		timesheets:  svc.Timesheets,
		audit:       svc.Audit,
		sessions:    svc.Sessions,
	}, nil
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor))
	pb.RegisterTimesheetServer(srv, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve accepts connections on listen until ctx is cancelled.
func (s *GRPCServer) Serve(ctx context.Context, listen net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
