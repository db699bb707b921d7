// Package proto describes the timesheet.v1.Timesheet gRPC service.
//
// Every method takes and returns a google.protobuf.Struct; the typed
// messages in messages.go convert to and from that form, so server and
// client agree on field names without generated code.
package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "timesheet.v1.Timesheet"

// Method names.
const (
	MethodLogin              = "Login"
	MethodLogout             = "Logout"
	MethodMe                 = "Me"
	MethodChangePassword     = "ChangePassword"
	MethodGetPreferences     = "GetPreferences"
	MethodSetPreferredAreas  = "SetPreferredAreas"
	MethodSetPreferredShift  = "SetPreferredShift"
	MethodSetAreaColumnCount = "SetAreaColumnCount"
	MethodChangeUsername     = "ChangeUsername"
	MethodDraftTimesheet     = "DraftTimesheet"
	MethodSubmitTimesheet    = "SubmitTimesheet"
	MethodActivityLog        = "ActivityLog"
	MethodAuditLog           = "AuditLog"
	MethodPing               = "Ping"
)

// FullMethod returns the "/service/method" path used in interceptors.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// TimesheetServer is implemented by the server side of the service.
type TimesheetServer interface {
	Login(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Logout(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Me(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ChangePassword(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetPreferences(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SetPreferredAreas(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SetPreferredShift(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SetAreaColumnCount(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ChangeUsername(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DraftTimesheet(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SubmitTimesheet(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ActivityLog(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AuditLog(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Ping(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type serverMethod func(TimesheetServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(method string, call serverMethod) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(TimesheetServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: FullMethod(method),
			}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(TimesheetServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// Timesheet_ServiceDesc is the grpc.ServiceDesc for the timesheet service.
var Timesheet_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*TimesheetServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryHandler(MethodLogin, TimesheetServer.Login),
		unaryHandler(MethodLogout, TimesheetServer.Logout),
		unaryHandler(MethodMe, TimesheetServer.Me),
		unaryHandler(MethodChangePassword, TimesheetServer.ChangePassword),
		unaryHandler(MethodGetPreferences, TimesheetServer.GetPreferences),
		unaryHandler(MethodSetPreferredAreas, TimesheetServer.SetPreferredAreas),
		unaryHandler(MethodSetPreferredShift, TimesheetServer.SetPreferredShift),
		unaryHandler(MethodSetAreaColumnCount, TimesheetServer.SetAreaColumnCount),
		unaryHandler(MethodChangeUsername, TimesheetServer.ChangeUsername),
		unaryHandler(MethodDraftTimesheet, TimesheetServer.DraftTimesheet),
		unaryHandler(MethodSubmitTimesheet, TimesheetServer.SubmitTimesheet),
		unaryHandler(MethodActivityLog, TimesheetServer.ActivityLog),
		unaryHandler(MethodAuditLog, TimesheetServer.AuditLog),
		unaryHandler(MethodPing, TimesheetServer.Ping),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "timesheet/v1/timesheet.proto",
}

func RegisterTimesheetServer(s grpc.ServiceRegistrar, srv TimesheetServer) {
	s.RegisterService(&Timesheet_ServiceDesc, srv)
}

// TimesheetClient calls the service by method name.
type TimesheetClient struct {
	cc grpc.ClientConnInterface
}

func NewTimesheetClient(cc grpc.ClientConnInterface) *TimesheetClient {
	return &TimesheetClient{cc: cc}
}

// Call invokes method with in. A nil in sends an empty struct.
func (c *TimesheetClient) Call(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	if in == nil {
		in = &structpb.Struct{}
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
