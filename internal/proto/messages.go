package proto

import (
	"time"

	"google.golang.org/protobuf/types/known/structpb"
)

// Field names shared by several messages.
const (
	fAccessToken     = "access_token"
	fUserID          = "user_id"
	fUsername        = "username"
	fPassword        = "password"
	fRole            = "role"
	fGrade           = "grade"
	fExpiresAt       = "expires_at"
	fOldPassword     = "old_password"
	fNewPassword     = "new_password"
	fConfirmPassword = "confirm_password"
	fMessage         = "message"
	fPreferredAreas  = "preferred_areas"
	fPreferredShift  = "preferred_shift"
	fAreaColumnCount = "area_column_count"
	fAreas           = "areas"
	fShift           = "shift"
	fCount           = "count"
	fFrom            = "from"
	fTo              = "to"
	fDate            = "date"
	fDay             = "day"
	fHours           = "hours"
	fOvertime        = "overtime"
	fRemark          = "remark"
	fDrafts          = "drafts"
	fAreaOptions     = "area_options"
	fEntries         = "entries"
	fArea            = "area"
	fTimestamp       = "timestamp"
	fAction          = "action"
	fDescription     = "description"
	fStatus          = "status"
	fEvents          = "events"
	fField           = "field"
	fProblems        = "problems"
	fDuplicates      = "duplicates"
)

type LoginRequest struct {
	Username string
	Password string
}

func (m LoginRequest) Struct() *structpb.Struct {
	return fields{fUsername: str(m.Username), fPassword: str(m.Password)}.build()
}

func LoginRequestFrom(s *structpb.Struct) LoginRequest {
	return LoginRequest{Username: getString(s, fUsername), Password: getString(s, fPassword)}
}

// SessionInfo describes the caller's session; Me returns it on its own.
type SessionInfo struct {
	UserID    string
	Username  string
	Role      string
	Grade     string
	ExpiresAt time.Time
}

func (m SessionInfo) Struct() *structpb.Struct {
	return m.fields().build()
}

func (m SessionInfo) fields() fields {
	return fields{
		fUserID:    str(m.UserID),
		fUsername:  str(m.Username),
		fRole:      str(m.Role),
		fGrade:     str(m.Grade),
		fExpiresAt: str(m.ExpiresAt.UTC().Format(time.RFC3339)),
	}
}

func SessionInfoFrom(s *structpb.Struct) SessionInfo {
	exp, _ := time.Parse(time.RFC3339, getString(s, fExpiresAt))
	return SessionInfo{
		UserID:    getString(s, fUserID),
		Username:  getString(s, fUsername),
		Role:      getString(s, fRole),
		Grade:     getString(s, fGrade),
		ExpiresAt: exp,
	}
}

type LoginResponse struct {
	AccessToken string
	SessionInfo
}

func (m LoginResponse) Struct() *structpb.Struct {
	f := m.SessionInfo.fields()
	f[fAccessToken] = str(m.AccessToken)
	return f.build()
}

func LoginResponseFrom(s *structpb.Struct) LoginResponse {
	return LoginResponse{AccessToken: getString(s, fAccessToken), SessionInfo: SessionInfoFrom(s)}
}

type ChangePasswordRequest struct {
	OldPassword     string
	NewPassword     string
	ConfirmPassword string
}

func (m ChangePasswordRequest) Struct() *structpb.Struct {
	return fields{
		fOldPassword:     str(m.OldPassword),
		fNewPassword:     str(m.NewPassword),
		fConfirmPassword: str(m.ConfirmPassword),
	}.build()
}

func ChangePasswordRequestFrom(s *structpb.Struct) ChangePasswordRequest {
	return ChangePasswordRequest{
		OldPassword:     getString(s, fOldPassword),
		NewPassword:     getString(s, fNewPassword),
		ConfirmPassword: getString(s, fConfirmPassword),
	}
}

// MessageResponse carries a human-readable outcome.
type MessageResponse struct {
	Message string
}

func (m MessageResponse) Struct() *structpb.Struct {
	return fields{fMessage: str(m.Message)}.build()
}

func MessageResponseFrom(s *structpb.Struct) MessageResponse {
	return MessageResponse{Message: getString(s, fMessage)}
}

type Preferences struct {
	PreferredAreas  []string
	PreferredShift  string
	AreaColumnCount int
}

func (m Preferences) Struct() *structpb.Struct {
	return fields{
		fPreferredAreas:  strs(m.PreferredAreas),
		fPreferredShift:  str(m.PreferredShift),
		fAreaColumnCount: num(float64(m.AreaColumnCount)),
	}.build()
}

func PreferencesFrom(s *structpb.Struct) Preferences {
	return Preferences{
		PreferredAreas:  getStrings(s, fPreferredAreas),
		PreferredShift:  getString(s, fPreferredShift),
		AreaColumnCount: int(getNumber(s, fAreaColumnCount)),
	}
}

type SetPreferredAreasRequest struct {
	Areas []string
}

func (m SetPreferredAreasRequest) Struct() *structpb.Struct {
	return fields{fAreas: strs(m.Areas)}.build()
}

func SetPreferredAreasRequestFrom(s *structpb.Struct) SetPreferredAreasRequest {
	return SetPreferredAreasRequest{Areas: getStrings(s, fAreas)}
}

type SetPreferredShiftRequest struct {
	Shift string
}

func (m SetPreferredShiftRequest) Struct() *structpb.Struct {
	return fields{fShift: str(m.Shift)}.build()
}

func SetPreferredShiftRequestFrom(s *structpb.Struct) SetPreferredShiftRequest {
	return SetPreferredShiftRequest{Shift: getString(s, fShift)}
}

type SetAreaColumnCountRequest struct {
	Count int
}

func (m SetAreaColumnCountRequest) Struct() *structpb.Struct {
	return fields{fCount: num(float64(m.Count))}.build()
}

func SetAreaColumnCountRequestFrom(s *structpb.Struct) SetAreaColumnCountRequest {
	return SetAreaColumnCountRequest{Count: int(getNumber(s, fCount))}
}

type ChangeUsernameRequest struct {
	Username string
}

func (m ChangeUsernameRequest) Struct() *structpb.Struct {
	return fields{fUsername: str(m.Username)}.build()
}

func ChangeUsernameRequestFrom(s *structpb.Struct) ChangeUsernameRequest {
	return ChangeUsernameRequest{Username: getString(s, fUsername)}
}

type ChangeUsernameResponse struct {
	Username string
	Message  string
}

func (m ChangeUsernameResponse) Struct() *structpb.Struct {
	return fields{fUsername: str(m.Username), fMessage: str(m.Message)}.build()
}

func ChangeUsernameResponseFrom(s *structpb.Struct) ChangeUsernameResponse {
	return ChangeUsernameResponse{Username: getString(s, fUsername), Message: getString(s, fMessage)}
}

// DateRange bounds are YYYY-MM-DD; empty means the server default.
type DateRange struct {
	From string
	To   string
}

func (m DateRange) Struct() *structpb.Struct {
	return fields{fFrom: str(m.From), fTo: str(m.To)}.build()
}

func DateRangeFrom(s *structpb.Struct) DateRange {
	return DateRange{From: getString(s, fFrom), To: getString(s, fTo)}
}

// Draft is one editable timesheet row. Hours and Overtime stay text so the
// server can report what the user typed.
type Draft struct {
	Date     string
	Day      string
	Hours    string
	Overtime string
	Areas    []string
	Shift    string
	Remark   string
}

func (m Draft) value() *structpb.Value {
	return structpb.NewStructValue(fields{
		fDate:     str(m.Date),
		fDay:      str(m.Day),
		fHours:    str(m.Hours),
		fOvertime: str(m.Overtime),
		fAreas:    strs(m.Areas),
		fShift:    str(m.Shift),
		fRemark:   str(m.Remark),
	}.build())
}

func draftFrom(s *structpb.Struct) Draft {
	return Draft{
		Date:     getString(s, fDate),
		Day:      getString(s, fDay),
		Hours:    getString(s, fHours),
		Overtime: getString(s, fOvertime),
		Areas:    getStrings(s, fAreas),
		Shift:    getString(s, fShift),
		Remark:   getString(s, fRemark),
	}
}

type DraftResponse struct {
	From            string
	To              string
	Drafts          []Draft
	AreaOptions     []string
	AreaColumnCount int
}

func (m DraftResponse) Struct() *structpb.Struct {
	drafts := make([]*structpb.Value, 0, len(m.Drafts))
	for _, d := range m.Drafts {
		drafts = append(drafts, d.value())
	}
	return fields{
		fFrom:            str(m.From),
		fTo:              str(m.To),
		fDrafts:          list(drafts),
		fAreaOptions:     strs(m.AreaOptions),
		fAreaColumnCount: num(float64(m.AreaColumnCount)),
	}.build()
}

func DraftResponseFrom(s *structpb.Struct) DraftResponse {
	r := DraftResponse{
		From:            getString(s, fFrom),
		To:              getString(s, fTo),
		AreaOptions:     getStrings(s, fAreaOptions),
		AreaColumnCount: int(getNumber(s, fAreaColumnCount)),
	}
	for _, d := range getStructs(s, fDrafts) {
		r.Drafts = append(r.Drafts, draftFrom(d))
	}
	return r
}

type SubmitRequest struct {
	Drafts []Draft
}

func (m SubmitRequest) Struct() *structpb.Struct {
	drafts := make([]*structpb.Value, 0, len(m.Drafts))
	for _, d := range m.Drafts {
		drafts = append(drafts, d.value())
	}
	return fields{fDrafts: list(drafts)}.build()
}

func SubmitRequestFrom(s *structpb.Struct) SubmitRequest {
	var r SubmitRequest
	for _, d := range getStructs(s, fDrafts) {
		r.Drafts = append(r.Drafts, draftFrom(d))
	}
	return r
}

// Entry is a stored attendance row.
type Entry struct {
	UserID   string
	Username string
	Date     string
	Day      string
	Hours    float64
	Overtime float64
	Areas    []string
	Shift    string
	Remark   string
}

func (m Entry) value() *structpb.Value {
	return structpb.NewStructValue(fields{
		fUserID:   str(m.UserID),
		fUsername: str(m.Username),
		fDate:     str(m.Date),
		fDay:      str(m.Day),
		fHours:    num(m.Hours),
		fOvertime: num(m.Overtime),
		fAreas:    strs(m.Areas),
		fShift:    str(m.Shift),
		fRemark:   str(m.Remark),
	}.build())
}

func entryFrom(s *structpb.Struct) Entry {
	return Entry{
		UserID:   getString(s, fUserID),
		Username: getString(s, fUsername),
		Date:     getString(s, fDate),
		Day:      getString(s, fDay),
		Hours:    getNumber(s, fHours),
		Overtime: getNumber(s, fOvertime),
		Areas:    getStrings(s, fAreas),
		Shift:    getString(s, fShift),
		Remark:   getString(s, fRemark),
	}
}

// EntryList answers SubmitTimesheet and ActivityLog.
type EntryList struct {
	Entries []Entry
	Message string
}

func (m EntryList) Struct() *structpb.Struct {
	entries := make([]*structpb.Value, 0, len(m.Entries))
	for _, e := range m.Entries {
		entries = append(entries, e.value())
	}
	return fields{fEntries: list(entries), fMessage: str(m.Message)}.build()
}

func EntryListFrom(s *structpb.Struct) EntryList {
	r := EntryList{Message: getString(s, fMessage)}
	for _, e := range getStructs(s, fEntries) {
		r.Entries = append(r.Entries, entryFrom(e))
	}
	return r
}

type ActivityLogRequest struct {
	DateRange
	Username string
	Shift    string
	Area     string
}

func (m ActivityLogRequest) Struct() *structpb.Struct {
	return fields{
		fFrom:     str(m.From),
		fTo:       str(m.To),
		fUsername: str(m.Username),
		fShift:    str(m.Shift),
		fArea:     str(m.Area),
	}.build()
}

func ActivityLogRequestFrom(s *structpb.Struct) ActivityLogRequest {
	return ActivityLogRequest{
		DateRange: DateRangeFrom(s),
		Username:  getString(s, fUsername),
		Shift:     getString(s, fShift),
		Area:      getString(s, fArea),
	}
}

type AuditLogRequest struct {
	Username string
}

func (m AuditLogRequest) Struct() *structpb.Struct {
	return fields{fUsername: str(m.Username)}.build()
}

func AuditLogRequestFrom(s *structpb.Struct) AuditLogRequest {
	return AuditLogRequest{Username: getString(s, fUsername)}
}

type AuditEvent struct {
	Timestamp   string
	UserID      string
	Username    string
	Action      string
	Description string
	Status      string
}

type AuditLogResponse struct {
	Events []AuditEvent
}

func (m AuditLogResponse) Struct() *structpb.Struct {
	events := make([]*structpb.Value, 0, len(m.Events))
	for _, e := range m.Events {
		events = append(events, structpb.NewStructValue(fields{
			fTimestamp:   str(e.Timestamp),
			fUserID:      str(e.UserID),
			fUsername:    str(e.Username),
			fAction:      str(e.Action),
			fDescription: str(e.Description),
			fStatus:      str(e.Status),
		}.build()))
	}
	return fields{fEvents: list(events)}.build()
}

func AuditLogResponseFrom(s *structpb.Struct) AuditLogResponse {
	var r AuditLogResponse
	for _, e := range getStructs(s, fEvents) {
		r.Events = append(r.Events, AuditEvent{
			Timestamp:   getString(e, fTimestamp),
			UserID:      getString(e, fUserID),
			Username:    getString(e, fUsername),
			Action:      getString(e, fAction),
			Description: getString(e, fDescription),
			Status:      getString(e, fStatus),
		})
	}
	return r
}

// Problem is a rejected draft field.
type Problem struct {
	Date    string
	Field   string
	Message string
}

// Rejection is attached as a status detail when a submission is refused.
type Rejection struct {
	Problems   []Problem
	Duplicates []string
}

func (m Rejection) Struct() *structpb.Struct {
	problems := make([]*structpb.Value, 0, len(m.Problems))
	for _, p := range m.Problems {
		problems = append(problems, structpb.NewStructValue(fields{
			fDate:    str(p.Date),
			fField:   str(p.Field),
			fMessage: str(p.Message),
		}.build()))
	}
	return fields{fProblems: list(problems), fDuplicates: strs(m.Duplicates)}.build()
}

func RejectionFrom(s *structpb.Struct) Rejection {
	r := Rejection{Duplicates: getStrings(s, fDuplicates)}
	for _, p := range getStructs(s, fProblems) {
		r.Problems = append(r.Problems, Problem{
			Date:    getString(p, fDate),
			Field:   getString(p, fField),
			Message: getString(p, fMessage),
		})
	}
	return r
}

type PingResponse struct {
	Status string
}

func (m PingResponse) Struct() *structpb.Struct {
	return fields{fStatus: str(m.Status)}.build()
}

func PingResponseFrom(s *structpb.Struct) PingResponse {
	return PingResponse{Status: getString(s, fStatus)}
}
