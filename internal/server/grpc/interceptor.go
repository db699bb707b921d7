package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/timesheet/internal/common"
	pb "github.com/dmitrijs2005/timesheet/internal/proto"
	"github.com/dmitrijs2005/timesheet/internal/server/sessions"
)

// publicMethods may be called without a session.
var publicMethods = map[string]bool{
	pb.FullMethod(pb.MethodLogin): true,
	pb.FullMethod(pb.MethodPing):  true,
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {

	if publicMethods[info.FullMethod] {
		return handler(ctx, req)
	}

	var accessToken string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		values := md.Get(common.AccessTokenHeaderName)
		if len(values) > 0 {
			accessToken = values[0]
		}
	}
	if len(accessToken) == 0 {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	session, err := s.sessions.Resolve(accessToken)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, "session expired or invalid")
	}

	return handler(sessions.NewContext(ctx, session), req)
}

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	code := status.Code(err)
	args := []any{"method", info.FullMethod, "code", code.String(), "elapsed", time.Since(start)}
	switch code {
	case codes.OK:
		s.logger.Debug(ctx, "request", args...)
	case codes.Internal, codes.Unavailable, codes.Unknown:
		s.logger.Error(ctx, "request failed", append(args, "error", err)...)
	default:
		s.logger.Info(ctx, "request rejected", args...)
	}
	return resp, err
}
