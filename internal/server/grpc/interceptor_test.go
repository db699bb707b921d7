package grpc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/timesheet/internal/common"
	"github.com/dmitrijs2005/timesheet/internal/logging"
	pb "github.com/dmitrijs2005/timesheet/internal/proto"
	"github.com/dmitrijs2005/timesheet/internal/server/models"
	"github.com/dmitrijs2005/timesheet/internal/server/sessions"
)

// helper to build server
func newTestServer(sm *sessions.Manager) *GRPCServer {
	return &GRPCServer{
		logger:   logging.Nop{},
		sessions: sm,
	}
}

func withToken(token string) context.Context {
	md := metadata.New(map[string]string{common.AccessTokenHeaderName: token})
	return metadata.NewIncomingContext(context.Background(), md)
}

func TestInterceptor_PublicMethodsSkipToken(t *testing.T) {
	s := newTestServer(sessions.NewManager("secret", time.Hour))

	for _, method := range []string{pb.MethodLogin, pb.MethodPing} {
		info := &grpc.UnaryServerInfo{FullMethod: pb.FullMethod(method)}
		handlerCalled := false
		h := func(ctx context.Context, req interface{}) (interface{}, error) {
			handlerCalled = true
			return "ok", nil
		}

		resp, err := s.accessTokenInterceptor(context.Background(), nil, info, h)
		require.NoError(t, err)
		assert.True(t, handlerCalled, method)
		assert.Equal(t, "ok", resp)
	}
}

func TestInterceptor_MissingToken(t *testing.T) {
	s := newTestServer(sessions.NewManager("secret", time.Hour))
	info := &grpc.UnaryServerInfo{FullMethod: pb.FullMethod(pb.MethodSubmitTimesheet)}

	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		t.Fatal("handler should not be called when token missing")
		return nil, nil
	}

	_, err := s.accessTokenInterceptor(context.Background(), nil, info, h)
	require.Error(t, err)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
	assert.Equal(t, "missing token", status.Convert(err).Message())
}

func TestInterceptor_InvalidToken(t *testing.T) {
	s := newTestServer(sessions.NewManager("secret", time.Hour))
	info := &grpc.UnaryServerInfo{FullMethod: pb.FullMethod(pb.MethodMe)}

	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		t.Fatal("handler should not be called for invalid token")
		return nil, nil
	}

	_, err := s.accessTokenInterceptor(withToken("not-a-valid-jwt"), nil, info, h)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestInterceptor_RevokedSession(t *testing.T) {
	sm := sessions.NewManager("secret", time.Hour)
	s := newTestServer(sm)
	token, session, err := sm.Issue(&models.User{ID: "001", Username: "alice"})
	require.NoError(t, err)
	sm.Revoke(session.ID)

	info := &grpc.UnaryServerInfo{FullMethod: pb.FullMethod(pb.MethodMe)}
	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		t.Fatal("handler should not be called for a revoked session")
		return nil, nil
	}

	_, err = s.accessTokenInterceptor(withToken(token), nil, info, h)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestInterceptor_ValidToken_SetsSession(t *testing.T) {
	sm := sessions.NewManager("super-secret", time.Hour)
	s := newTestServer(sm)
	token, _, err := sm.Issue(&models.User{ID: "001", Username: "alice", Role: "Engineer"})
	require.NoError(t, err)

	info := &grpc.UnaryServerInfo{FullMethod: pb.FullMethod(pb.MethodMe)}

	var got *sessions.Session
	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		got, _ = sessions.FromContext(ctx)
		return "ok", nil
	}

	resp, err := s.accessTokenInterceptor(withToken(token), nil, info, h)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp)
	require.NotNil(t, got)
	assert.Equal(t, "001", got.UserID)
	assert.Equal(t, "alice", got.Username)
}

func TestLoggingInterceptor_PassesThrough(t *testing.T) {
	s := newTestServer(nil)
	info := &grpc.UnaryServerInfo{FullMethod: pb.FullMethod(pb.MethodPing)}
	wantErr := status.Error(codes.Unavailable, "down")

	_, err := s.loggingInterceptor(context.Background(), nil, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		return nil, wantErr
	})
	assert.Equal(t, wantErr, err)
}
