package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/timesheet/internal/client/client"
	pb "github.com/dmitrijs2005/timesheet/internal/proto"
)

// skipRow is typed at the hours prompt to leave a day out of the batch.
const skipRow = "-"

// Timesheet fetches blank rows for the range, walks the user through each
// day and submits the filled rows as one batch.
func (a *App) Timesheet(ctx context.Context, args []string) error {
	var from, to string
	if len(args) > 0 {
		from = args[0]
	}
	if len(args) > 1 {
		to = args[1]
	}

	rctx, cancel := a.requestContext(ctx)
	sheet, err := a.api.Draft(rctx, from, to)
	cancel()
	if err != nil {
		return err
	}
	if len(sheet.Drafts) == 0 {
		fmt.Fprintln(a.out, "No days in range.")
		return nil
	}

	fmt.Fprintf(a.out, "Timesheet %s to %s. Areas: %s. Type %q as hours to skip a day.\n",
		sheet.From, sheet.To, strings.Join(sheet.AreaOptions, ", "), skipRow)

	columns := sheet.AreaColumnCount
	if columns < 1 {
		columns = 1
	}

	var filled []pb.Draft
	for _, d := range sheet.Drafts {
		fmt.Fprintf(a.out, "\n%s %s\n", d.Date, d.Day)
		row, keep, err := a.fillDraft(d, columns)
		if err != nil {
			return err
		}
		if keep {
			filled = append(filled, row)
		}
	}

	if len(filled) == 0 {
		fmt.Fprintln(a.out, "No entries to submit.")
		return nil
	}

	fmt.Fprintln(a.out)
	writeDrafts(a.out, filled)

	answer, err := GetSimpleText(a.reader, fmt.Sprintf("Submit %d entries? [y/N]", len(filled)), a.out)
	if err != nil {
		return err
	}
	if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
		fmt.Fprintln(a.out, "Nothing submitted.")
		return nil
	}

	rctx, cancel = a.requestContext(ctx)
	defer cancel()

	res, err := a.api.Submit(rctx, filled)
	var rejected *client.RejectedError
	if errors.As(err, &rejected) {
		a.printRejection(rejected)
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, res.Message)
	return nil
}

// fillDraft prompts for every field of d, offering its values as defaults.
func (a *App) fillDraft(d pb.Draft, columns int) (pb.Draft, bool, error) {
	ask := func(prompt, def string) (string, error) {
		return GetTextWithDefault(a.reader, prompt, def, a.out)
	}

	hours, err := ask("Hours", d.Hours)
	if err != nil {
		return d, false, err
	}
	if hours == skipRow {
		return d, false, nil
	}
	d.Hours = hours

	if d.Overtime, err = ask("Overtime", d.Overtime); err != nil {
		return d, false, err
	}

	areas := make([]string, columns)
	for i := range areas {
		def := ""
		if i < len(d.Areas) {
			def = d.Areas[i]
		}
		v, err := ask(fmt.Sprintf("Area %d", i+1), def)
		if err != nil {
			return d, false, err
		}
		areas[i] = strings.ToUpper(v)
	}
	d.Areas = areas

	shift, err := ask("Shift", d.Shift)
	if err != nil {
		return d, false, err
	}
	if resolved, ok := resolveShift(shift); ok {
		shift = resolved
	}
	d.Shift = shift

	if d.Remark, err = ask("Remark", d.Remark); err != nil {
		return d, false, err
	}
	return d, true, nil
}

func (a *App) printRejection(err *client.RejectedError) {
	fmt.Fprintln(a.out, "Nothing was saved.")
	if err.Rejection == nil {
		fmt.Fprintln(a.out, err.Message)
		return
	}
	for _, p := range err.Rejection.Problems {
		field := p.Field
		if field != "" {
			field += ": "
		}
		fmt.Fprintf(a.out, "  %s %s%s\n", p.Date, field, p.Message)
	}
	if len(err.Rejection.Duplicates) > 0 {
		fmt.Fprintf(a.out, "  already submitted: %s\n", strings.Join(err.Rejection.Duplicates, ", "))
	}
}

// Activity lists submitted entries. Arguments are an optional from and to
// date followed by user=, shift= and area= filters.
func (a *App) Activity(ctx context.Context, args []string) error {
	opts, rest := parseOptions(args)
	req := pb.ActivityLogRequest{
		Username: opts["user"],
		Shift:    opts["shift"],
		Area:     strings.ToUpper(opts["area"]),
	}
	if req.Shift != "" {
		if s, ok := resolveShift(req.Shift); ok {
			req.Shift = s
		}
	}
	if len(rest) > 0 {
		req.From = rest[0]
	}
	if len(rest) > 1 {
		req.To = rest[1]
	}

	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	entries, err := a.api.ActivityLog(ctx, req)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(a.out, "No entries found.")
		return nil
	}
	writeEntries(a.out, entries)
	return nil
}

func (a *App) Audit(ctx context.Context, args []string) error {
	var user string
	if len(args) > 0 {
		user = args[0]
	}

	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	events, err := a.api.AuditLog(ctx, user)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		fmt.Fprintln(a.out, "No audit events.")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tUSER\tACTION\tSTATUS\tDESCRIPTION")
	for _, e := range events {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.Timestamp, e.Username, e.Action, e.Status, e.Description)
	}
	return tw.Flush()
}

func writeDrafts(w io.Writer, drafts []pb.Draft) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tHOURS\tOVERTIME\tAREAS\tSHIFT\tREMARK")
	for _, d := range drafts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			d.Date, d.Hours, d.Overtime, joinAreas(d.Areas), d.Shift, d.Remark)
	}
	tw.Flush()
}

func writeEntries(w io.Writer, entries []pb.Entry) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tDAY\tUSER\tHOURS\tOVERTIME\tAREAS\tSHIFT\tREMARK")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			e.Date, e.Day, e.Username, formatHours(e.Hours), formatHours(e.Overtime),
			joinAreas(e.Areas), e.Shift, e.Remark)
	}
	tw.Flush()
}

func joinAreas(areas []string) string {
	var out []string
	for _, a := range areas {
		if a != "" {
			out = append(out, a)
		}
	}
	return strings.Join(out, ",")
}

func formatHours(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
