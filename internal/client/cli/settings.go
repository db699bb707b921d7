package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/timesheet/internal/common"
	pb "github.com/dmitrijs2005/timesheet/internal/proto"
)

func (a *App) Preferences(ctx context.Context) error {
	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	p, err := a.api.GetPreferences(ctx)
	if err != nil {
		return err
	}
	a.printPreferences(p)
	return nil
}

func (a *App) printPreferences(p *pb.Preferences) {
	areas := strings.Join(p.PreferredAreas, ", ")
	if areas == "" {
		areas = "(none)"
	}
	fmt.Fprintf(a.out, "Preferred areas: %s\nPreferred shift: %s\nArea columns:    %d\n",
		areas, p.PreferredShift, p.AreaColumnCount)
}

// SetAreas stores the preferred areas in the order given. With no
// arguments it prompts, listing the known codes.
func (a *App) SetAreas(ctx context.Context, args []string) error {
	if len(args) == 0 {
		line, err := GetSimpleText(a.reader,
			"Preferred areas, in order ("+strings.Join(common.AreaCodes, ", ")+")", a.out)
		if err != nil {
			return err
		}
		args = []string{line}
	}

	var areas []string
	for _, arg := range args {
		for _, code := range splitList(arg) {
			areas = append(areas, strings.ToUpper(code))
		}
	}

	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	p, err := a.api.SetPreferredAreas(ctx, areas)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Priority areas saved.")
	a.printPreferences(p)
	return nil
}

// SetShift accepts a shift name, its first word ("night") or its number in
// the list.
func (a *App) SetShift(ctx context.Context, args []string) error {
	choice := strings.Join(args, " ")
	if choice == "" {
		var err error
		choice, err = GetSimpleText(a.reader, "Preferred shift: "+numberedShifts(), a.out)
		if err != nil {
			return err
		}
	}
	shift, ok := resolveShift(choice)
	if !ok {
		return fmt.Errorf("unknown shift %q, choose one of %s", choice, numberedShifts())
	}

	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	p, err := a.api.SetPreferredShift(ctx, shift)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Preferred shift saved.")
	a.printPreferences(p)
	return nil
}

func (a *App) SetColumns(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: columns N (%d-%d)", common.MinAreaColumns, common.MaxAreaColumns)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < common.MinAreaColumns || n > common.MaxAreaColumns {
		return fmt.Errorf("columns must be a number from %d to %d", common.MinAreaColumns, common.MaxAreaColumns)
	}

	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	p, err := a.api.SetAreaColumnCount(ctx, n)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Number of areas saved.")
	a.printPreferences(p)
	return nil
}

func (a *App) Rename(ctx context.Context, args []string) error {
	name := strings.Join(args, " ")
	if name == "" {
		var err error
		name, err = GetSimpleText(a.reader, "New username", a.out)
		if err != nil {
			return err
		}
	}

	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	resp, err := a.api.ChangeUsername(ctx, name)
	if err != nil {
		return err
	}
	a.setUserName(resp.Username)
	fmt.Fprintln(a.out, resp.Message)
	return nil
}

func numberedShifts() string {
	parts := make([]string, len(common.Shifts))
	for i, s := range common.Shifts {
		parts[i] = fmt.Sprintf("%d) %s", i+1, s)
	}
	return strings.Join(parts, "  ")
}

// resolveShift maps user input onto a shift name.
func resolveShift(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n >= 1 && n <= len(common.Shifts) {
			return common.Shifts[n-1], true
		}
		return "", false
	}
	for _, shift := range common.Shifts {
		first, _, _ := strings.Cut(shift, " ")
		if strings.EqualFold(shift, s) || strings.EqualFold(first, s) {
			return shift, true
		}
	}
	return "", false
}
