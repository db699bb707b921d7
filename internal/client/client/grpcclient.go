package client

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dmitrijs2005/timesheet/internal/common"
	pb "github.com/dmitrijs2005/timesheet/internal/proto"
)

// caller is the part of pb.TimesheetClient the client uses.
type caller interface {
	Call(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      caller

	mu          sync.RWMutex
	accessToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

func (s *GRPCClient) setToken(token string) {
	s.mu.Lock()
	s.accessToken = token
	s.mu.Unlock()
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if token := s.token(); token != "" {
		ctx = withAccessToken(ctx, token)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

func NewTimesheetClientService(endpointURL string) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}
	err := c.InitGRPCClient()
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient() error {

	conn, err := grpc.NewClient(s.endpointURL, grpc.WithTransportCredentials(insecure.NewCredentials()), grpc.WithUnaryInterceptor(s.accessTokenInterceptor))
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = pb.NewTimesheetClient(conn)
	return nil
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

// LoggedIn reports whether a token is held.
func (s *GRPCClient) LoggedIn() bool {
	return s.token() != ""
}

func (s *GRPCClient) call(ctx context.Context, method string, in *structpb.Struct) (*structpb.Struct, error) {
	out, err := s.client.Call(ctx, method, in)
	if err != nil {
		if status.Code(err) == codes.Unauthenticated && method != pb.MethodLogin {
			// The session is gone server-side; forget the token.
			s.setToken("")
		}
		return nil, s.mapError(err)
	}
	return out, nil
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	out, err := s.call(ctx, pb.MethodPing, nil)
	if err != nil {
		return err
	}
	if st := pb.PingResponseFrom(out).Status; st != "OK" {
		return fmt.Errorf("%w: ping status %q", ErrUnavailable, st)
	}
	return nil
}

func (s *GRPCClient) Login(ctx context.Context, username, password string) (*pb.SessionInfo, error) {
	out, err := s.call(ctx, pb.MethodLogin, pb.LoginRequest{Username: username, Password: password}.Struct())
	if err != nil {
		return nil, err
	}
	resp := pb.LoginResponseFrom(out)
	s.setToken(resp.AccessToken)
	return &resp.SessionInfo, nil
}

// Logout ends the session. The token is dropped even if the call fails.
func (s *GRPCClient) Logout(ctx context.Context) error {
	defer s.setToken("")
	_, err := s.call(ctx, pb.MethodLogout, nil)
	return err
}

func (s *GRPCClient) Me(ctx context.Context) (*pb.SessionInfo, error) {
	out, err := s.call(ctx, pb.MethodMe, nil)
	if err != nil {
		return nil, err
	}
	info := pb.SessionInfoFrom(out)
	return &info, nil
}

// ChangePassword returns the server's message. Every session of the user,
// this one included, ends on success.
func (s *GRPCClient) ChangePassword(ctx context.Context, oldPassword, newPassword, confirmPassword string) (string, error) {
	out, err := s.call(ctx, pb.MethodChangePassword, pb.ChangePasswordRequest{
		OldPassword:     oldPassword,
		NewPassword:     newPassword,
		ConfirmPassword: confirmPassword,
	}.Struct())
	if err != nil {
		return "", err
	}
	s.setToken("")
	return pb.MessageResponseFrom(out).Message, nil
}

func (s *GRPCClient) GetPreferences(ctx context.Context) (*pb.Preferences, error) {
	return s.preferences(ctx, pb.MethodGetPreferences, nil)
}

func (s *GRPCClient) SetPreferredAreas(ctx context.Context, areas []string) (*pb.Preferences, error) {
	return s.preferences(ctx, pb.MethodSetPreferredAreas, pb.SetPreferredAreasRequest{Areas: areas}.Struct())
}

func (s *GRPCClient) SetPreferredShift(ctx context.Context, shift string) (*pb.Preferences, error) {
	return s.preferences(ctx, pb.MethodSetPreferredShift, pb.SetPreferredShiftRequest{Shift: shift}.Struct())
}

func (s *GRPCClient) SetAreaColumnCount(ctx context.Context, n int) (*pb.Preferences, error) {
	return s.preferences(ctx, pb.MethodSetAreaColumnCount, pb.SetAreaColumnCountRequest{Count: n}.Struct())
}

func (s *GRPCClient) preferences(ctx context.Context, method string, in *structpb.Struct) (*pb.Preferences, error) {
	out, err := s.call(ctx, method, in)
	if err != nil {
		return nil, err
	}
	p := pb.PreferencesFrom(out)
	return &p, nil
}

func (s *GRPCClient) ChangeUsername(ctx context.Context, username string) (*pb.ChangeUsernameResponse, error) {
	out, err := s.call(ctx, pb.MethodChangeUsername, pb.ChangeUsernameRequest{Username: username}.Struct())
	if err != nil {
		return nil, err
	}
	resp := pb.ChangeUsernameResponseFrom(out)
	return &resp, nil
}

// Draft asks for blank rows between from and to (YYYY-MM-DD, either may be
// empty for the server default).
func (s *GRPCClient) Draft(ctx context.Context, from, to string) (*pb.DraftResponse, error) {
	out, err := s.call(ctx, pb.MethodDraftTimesheet, pb.DateRange{From: from, To: to}.Struct())
	if err != nil {
		return nil, err
	}
	resp := pb.DraftResponseFrom(out)
	return &resp, nil
}

// Submit sends drafts as one batch. A refused batch returns a
// *RejectedError carrying the per-row reasons.
func (s *GRPCClient) Submit(ctx context.Context, drafts []pb.Draft) (*pb.EntryList, error) {
	out, err := s.call(ctx, pb.MethodSubmitTimesheet, pb.SubmitRequest{Drafts: drafts}.Struct())
	if err != nil {
		return nil, err
	}
	resp := pb.EntryListFrom(out)
	return &resp, nil
}

func (s *GRPCClient) ActivityLog(ctx context.Context, req pb.ActivityLogRequest) ([]pb.Entry, error) {
	out, err := s.call(ctx, pb.MethodActivityLog, req.Struct())
	if err != nil {
		return nil, err
	}
	return pb.EntryListFrom(out).Entries, nil
}

func (s *GRPCClient) AuditLog(ctx context.Context, username string) ([]pb.AuditEvent, error) {
	out, err := s.call(ctx, pb.MethodAuditLog, pb.AuditLogRequest{Username: username}.Struct())
	if err != nil {
		return nil, err
	}
	return pb.AuditLogResponseFrom(out).Events, nil
}

// RejectedError keeps the server's reasons for a refused request.
type RejectedError struct {
	Message   string
	Rejection *pb.Rejection
}

func (e *RejectedError) Error() string { return e.Message }

func (e *RejectedError) Unwrap() error { return ErrRejected }

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return fmt.Errorf("%w: %s", ErrUnavailable, st.Message())
	case codes.InvalidArgument, codes.AlreadyExists, codes.NotFound:
		rej := &RejectedError{Message: st.Message()}
		for _, d := range st.Details() {
			if detail, ok := d.(*structpb.Struct); ok {
				r := pb.RejectionFrom(detail)
				rej.Rejection = &r
				break
			}
		}
		return rej
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
