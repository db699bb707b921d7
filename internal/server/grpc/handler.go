package grpc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dmitrijs2005/timesheet/internal/common"
	pb "github.com/dmitrijs2005/timesheet/internal/proto"
	"github.com/dmitrijs2005/timesheet/internal/server/models"
	"github.com/dmitrijs2005/timesheet/internal/server/sessions"
	"github.com/dmitrijs2005/timesheet/internal/server/timesheet"
)

// adminRole may read every user's audit trail.
const adminRole = "admin"

func (s *GRPCServer) Ping(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {

	return pb.PingResponse{Status: "OK"}.Struct(), nil

}

func (s *GRPCServer) Login(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	in := pb.LoginRequestFrom(req)

	token, session, err := s.credentials.Login(ctx, in.Username, in.Password)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return pb.LoginResponse{AccessToken: token, SessionInfo: sessionInfo(session)}.Struct(), nil
}

func (s *GRPCServer) Logout(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	session, err := sessionFrom(ctx)
	if err != nil {
		return nil, err
	}

	s.credentials.Logout(ctx, session)
	return pb.MessageResponse{Message: "Logged out"}.Struct(), nil
}

func (s *GRPCServer) Me(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	session, err := sessionFrom(ctx)
	if err != nil {
		return nil, err
	}
	return sessionInfo(session).Struct(), nil
}

func (s *GRPCServer) ChangePassword(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	session, err := sessionFrom(ctx)
	if err != nil {
		return nil, err
	}
	in := pb.ChangePasswordRequestFrom(req)

	if err := s.credentials.ChangePassword(ctx, session, in.OldPassword, in.NewPassword, in.ConfirmPassword); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return pb.MessageResponse{Message: "Password changed successfully. Please log in again."}.Struct(), nil
}

func (s *GRPCServer) GetPreferences(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	session, err := sessionFrom(ctx)
	if err != nil {
		return nil, err
	}
	return s.preferencesOf(ctx, session)
}

func (s *GRPCServer) SetPreferredAreas(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	session, err := sessionFrom(ctx)
	if err != nil {
		return nil, err
	}
	in := pb.SetPreferredAreasRequestFrom(req)

	if _, err := s.preferences.SetPreferredAreas(ctx, session, in.Areas); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return s.preferencesOf(ctx, session)
}

func (s *GRPCServer) SetPreferredShift(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	session, err := sessionFrom(ctx)
	if err != nil {
		return nil, err
	}
	in := pb.SetPreferredShiftRequestFrom(req)

	if err := s.preferences.SetPreferredShift(ctx, session, in.Shift); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return s.preferencesOf(ctx, session)
}

func (s *GRPCServer) SetAreaColumnCount(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	session, err := sessionFrom(ctx)
	if err != nil {
		return nil, err
	}
	in := pb.SetAreaColumnCountRequestFrom(req)

	if _, err := s.preferences.SetAreaColumnCount(ctx, session, in.Count); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return s.preferencesOf(ctx, session)
}

func (s *GRPCServer) preferencesOf(ctx context.Context, session *sessions.Session) (*structpb.Struct, error) {
	p, err := s.preferences.GetPreferences(ctx, session)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return pb.Preferences{
		PreferredAreas:  p.PreferredAreas,
		PreferredShift:  p.PreferredShift,
		AreaColumnCount: p.AreaColumnCount,
	}.Struct(), nil
}

func (s *GRPCServer) ChangeUsername(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	session, err := sessionFrom(ctx)
	if err != nil {
		return nil, err
	}
	in := pb.ChangeUsernameRequestFrom(req)

	user, err := s.preferences.ChangeUsername(ctx, session, in.Username)
	switch {
	case errors.Is(err, common.ErrUsernameUnchanged):
		return pb.ChangeUsernameResponse{
			Username: session.Username,
			Message:  "Username is already the same.",
		}.Struct(), nil
	case err != nil:
		return nil, s.toStatus(ctx, err)
	}

	return pb.ChangeUsernameResponse{
		Username: user.Username,
		Message:  fmt.Sprintf("Username changed to %s.", user.Username),
	}.Struct(), nil
}

func (s *GRPCServer) DraftTimesheet(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	session, err := sessionFrom(ctx)
	if err != nil {
		return nil, err
	}
	from, to, err := parseRange(pb.DateRangeFrom(req))
	if err != nil {
		return nil, err
	}

	sheet, err := s.timesheets.Draft(ctx, session, from, to)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	out := pb.DraftResponse{
		From:            sheet.From.Format(models.DateLayout),
		To:              sheet.To.Format(models.DateLayout),
		Drafts:          make([]pb.Draft, 0, len(sheet.Drafts)),
		AreaOptions:     sheet.AreaOptions,
		AreaColumnCount: sheet.AreaColumnCount,
	}
	for _, d := range sheet.Drafts {
		out.Drafts = append(out.Drafts, toDraft(d))
	}
	return out.Struct(), nil
}

func (s *GRPCServer) SubmitTimesheet(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	session, err := sessionFrom(ctx)
	if err != nil {
		return nil, err
	}
	in := pb.SubmitRequestFrom(req)

	drafts := make([]timesheet.Draft, 0, len(in.Drafts))
	for _, d := range in.Drafts {
		if len(d.Areas) > common.MaxAreaSlots {
			return nil, status.Errorf(codes.InvalidArgument, "%s: at most %d areas", d.Date, common.MaxAreaSlots)
		}
		drafts = append(drafts, fromDraft(d))
	}

	entries, err := s.timesheets.Submit(ctx, session, drafts)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	msg := "No entries to submit."
	if len(entries) > 0 {
		msg = fmt.Sprintf("Submitted %d entries.", len(entries))
	}
	return pb.EntryList{Entries: toEntries(entries), Message: msg}.Struct(), nil
}

func (s *GRPCServer) ActivityLog(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	in := pb.ActivityLogRequestFrom(req)
	from, to, err := parseRange(in.DateRange)
	if err != nil {
		return nil, err
	}

	entries, err := s.timesheets.ActivityLog(ctx, timesheet.ActivityFilter{
		From:     from,
		To:       to,
		Username: in.Username,
		Shift:    in.Shift,
		Area:     in.Area,
	})
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return pb.EntryList{Entries: toEntries(entries)}.Struct(), nil
}

// AuditLog lists audit events, newest first. Only admins may look past
// their own events.
func (s *GRPCServer) AuditLog(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	session, err := sessionFrom(ctx)
	if err != nil {
		return nil, err
	}
	username := pb.AuditLogRequestFrom(req).Username
	if !strings.EqualFold(session.Role, adminRole) {
		username = session.Username
	}

	events, err := s.audit.List(ctx, username)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	out := pb.AuditLogResponse{Events: make([]pb.AuditEvent, 0, len(events))}
	for _, e := range events {
		var ts string
		if !e.Timestamp.IsZero() {
			ts = e.Timestamp.Format(models.TimestampLayout)
		}
		out.Events = append(out.Events, pb.AuditEvent{
			Timestamp:   ts,
			UserID:      e.UserID,
			Username:    e.Username,
			Action:      e.Action,
			Description: e.Description,
			Status:      string(e.Status),
		})
	}
	return out.Struct(), nil
}

// toStatus maps service errors onto gRPC codes. Authentication failures keep
// a generic message; unexpected errors are logged and hidden.
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	var rejection *timesheet.Rejection
	if errors.As(err, &rejection) {
		return rejectionStatus(rejection)
	}

	switch {
	case errors.Is(err, common.ErrAuthFailure):
		return status.Error(codes.Unauthenticated, "Invalid username or password")
	case errors.Is(err, common.ErrSessionInvalid):
		return status.Error(codes.Unauthenticated, "session expired or invalid")
	case errors.Is(err, common.ErrIncorrectPassword),
		errors.Is(err, common.ErrPasswordMismatch),
		errors.Is(err, common.ErrEmptyPassword),
		errors.Is(err, common.ErrSamePassword),
		errors.Is(err, common.ErrEmptyUsername),
		errors.Is(err, common.ErrInvalidShift),
		errors.Is(err, common.ErrInvalidArea),
		errors.Is(err, common.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrUsernameExists):
		return status.Error(codes.AlreadyExists, "Username already exists")
	case errors.Is(err, common.ErrDuplicate):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, common.ErrStoreUnavailable):
		s.logger.Error(ctx, "store unavailable", "error", err)
		return status.Error(codes.Unavailable, "store unavailable, try again later")
	case errors.Is(err, common.ErrNotFound):
		s.logger.Error(ctx, "store schema", "error", err)
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}

	s.logger.Error(ctx, "internal error", "error", err)
	return status.Error(codes.Internal, "internal error")
}

// rejectionStatus carries every problem of a refused batch as a status
// detail. Field problems win over duplicates for the code.
func rejectionStatus(r *timesheet.Rejection) error {
	code := codes.InvalidArgument
	if len(r.Problems) == 0 {
		code = codes.AlreadyExists
	}

	detail := pb.Rejection{Duplicates: r.Duplicates}
	for _, p := range r.Problems {
		detail.Problems = append(detail.Problems, pb.Problem{Date: p.Date, Field: p.Field, Message: p.Message})
	}

	st := status.New(code, r.Error())
	if withDetail, err := st.WithDetails(detail.Struct()); err == nil {
		st = withDetail
	}
	return st.Err()
}

func sessionFrom(ctx context.Context) (*sessions.Session, error) {
	session, ok := sessions.FromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing session")
	}
	return session, nil
}

func sessionInfo(s *sessions.Session) pb.SessionInfo {
	return pb.SessionInfo{
		UserID:    s.UserID,
		Username:  s.Username,
		Role:      s.Role,
		Grade:     s.Grade,
		ExpiresAt: s.ExpiresAt,
	}
}

// parseRange reads optional YYYY-MM-DD bounds in local time.
func parseRange(r pb.DateRange) (time.Time, time.Time, error) {
	from, err := parseDate(r.From)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := parseDate(r.To)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return from, to, nil
}

func parseDate(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(models.DateLayout, v, time.Local)
	if err != nil {
		return time.Time{}, status.Errorf(codes.InvalidArgument, "%q is not a YYYY-MM-DD date", v)
	}
	return t, nil
}

func toDraft(d timesheet.Draft) pb.Draft {
	var day string
	if t, err := time.Parse(models.DateLayout, d.Date); err == nil {
		day = timesheet.DayName(t)
	}
	return pb.Draft{
		Date:     d.Date,
		Day:      day,
		Hours:    d.Hours,
		Overtime: d.Overtime,
		Areas:    append([]string(nil), d.Areas[:]...),
		Shift:    d.Shift,
		Remark:   d.Remark,
	}
}

func fromDraft(d pb.Draft) timesheet.Draft {
	out := timesheet.Draft{
		Date:     d.Date,
		Hours:    d.Hours,
		Overtime: d.Overtime,
		Shift:    d.Shift,
		Remark:   d.Remark,
	}
	copy(out.Areas[:], d.Areas)
	return out
}

func toEntries(entries []models.AttendanceEntry) []pb.Entry {
	out := make([]pb.Entry, 0, len(entries))
	for _, e := range entries {
		out = append(out, pb.Entry{
			UserID:   e.UserID,
			Username: e.Username,
			Date:     e.Date,
			Day:      e.Day,
			Hours:    e.Hours,
			Overtime: e.Overtime,
			Areas:    append([]string(nil), e.Areas[:]...),
			Shift:    e.Shift,
			Remark:   e.Remark,
		})
	}
	return out
}
