package models

import (
	"strconv"
	"strings"

	"github.com/dmitrijs2005/timesheet/internal/common"
	"github.com/dmitrijs2005/timesheet/internal/server/tabular"
)

// User is one row of the "user" table.
type User struct {
	// Row is the 1-based data index of the record, used to address updates.
	Row int

	ID       string
	Username string
	// Password is either a bcrypt hash or a legacy plaintext value.
	Password string
	Role     string
	Grade    string

	PreferredAreas  []string
	PreferredShift  string
	AreaColumnCount int
}

// Key is the stable identifier attendance entries are attributed to: the Id
// column when set, the username otherwise.
func (u *User) Key() string {
	if u.ID != "" {
		return u.ID
	}
	return u.Username
}

var userRequired = []string{common.ColUsername, common.ColPassword}

// UsersFromTable maps the rows of the "user" table.
func UsersFromTable(t *tabular.Table) ([]User, error) {
	if err := t.Require(userRequired...); err != nil {
		return nil, err
	}

	users := make([]User, 0, len(t.Rows))
	for _, r := range t.Rows {
		users = append(users, User{
			Row:             r.Index,
			ID:              r.Get(common.ColUserID),
			Username:        r.Get(common.ColUsername),
			Password:        r.Get(common.ColPassword),
			Role:            r.Get(common.ColRole),
			Grade:           r.Get(common.ColGrade),
			PreferredAreas:  ParseAreas(r.Get(common.ColPreferredAreas)),
			PreferredShift:  ParseShift(r.Get(common.ColPreferredShift)),
			AreaColumnCount: ParseAreaColumnCount(r.Get(common.ColAreaColumnCount)),
		})
	}
	return users, nil
}

// ParseAreas splits a comma-joined list, keeping known area codes in their
// stored order. Unknown and repeated codes are dropped.
func ParseAreas(s string) []string {
	areas := []string{}
	for _, a := range strings.Split(s, ",") {
		a = strings.TrimSpace(a)
		if !common.IsAreaCode(a) || contains(areas, a) {
			continue
		}
		areas = append(areas, a)
	}
	return areas
}

// FormatAreas is the inverse of ParseAreas.
func FormatAreas(areas []string) string {
	return strings.Join(areas, ", ")
}

// ParseShift returns s if it names a shift and common.DefaultShift otherwise.
func ParseShift(s string) string {
	s = strings.TrimSpace(s)
	if common.IsShift(s) {
		return s
	}
	return common.DefaultShift
}

// ParseAreaColumnCount reads the "Number of Areas" column. Values outside
// [MinAreaColumns, MaxAreaColumns], and anything unparsable, become
// DefaultAreaColumns.
func ParseAreaColumnCount(s string) int {
	s = strings.TrimSpace(s)
	n, err := strconv.Atoi(s)
	if err != nil {
		// Spreadsheets hand integers back as "2.0" now and then.
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != float64(int(f)) {
			return common.DefaultAreaColumns
		}
		n = int(f)
	}
	return ClampAreaColumnCount(n)
}

// ClampAreaColumnCount returns n when it is within bounds and
// DefaultAreaColumns otherwise.
func ClampAreaColumnCount(n int) int {
	if n < common.MinAreaColumns || n > common.MaxAreaColumns {
		return common.DefaultAreaColumns
	}
	return n
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
