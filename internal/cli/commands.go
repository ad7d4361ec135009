package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/aanand-mishra/student-records/internal/records"
	"github.com/aanand-mishra/student-records/internal/theme"
	"github.com/aanand-mishra/student-records/internal/types"
	"github.com/olekukonko/tablewriter"
)

func (a *App) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.out)
	return fs
}

func (a *App) list(args []string) error {
	fs := a.flagSet("list")
	q := fs.String("q", "", "only show records whose name or reg no contains this text")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	entries := a.sess.Store().Entries(*q)
	if len(entries) == 0 {
		a.heading("No records found.")
		return nil
	}

	a.heading(fmt.Sprintf("%d record(s)", len(entries)))

	table := tablewriter.NewWriter(a.out)
	table.SetHeader([]string{"#", "Name", "Reg No", "Dept", "Year", "Marks"})
	for _, e := range entries {
		table.Append([]string{
			strconv.Itoa(e.Position),
			e.Name,
			e.Reg,
			e.Dept,
			e.Year,
			strconv.Itoa(int(e.Marks)),
		})
	}
	table.Render()

	return nil
}

// submissionFlags registers one flag per form field on fs.
func submissionFlags(fs *flag.FlagSet, sub *types.Submission) {
	fs.StringVar(&sub.Name, "name", sub.Name, "student name")
	fs.StringVar(&sub.Reg, "reg", sub.Reg, "registration number")
	fs.StringVar(&sub.Dept, "dept", sub.Dept, "department")
	fs.StringVar(&sub.Year, "year", sub.Year, "year of study")
	fs.Func("marks", "marks, 0 to 100", func(v string) error {
		sub.Marks = types.Text(v)
		return nil
	})
}

func (a *App) add(ctx context.Context, args []string) error {
	var sub types.Submission
	fs := a.flagSet("add")
	submissionFlags(fs, &sub)
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	out, err := a.sess.Submit(ctx, sub)
	if err != nil {
		return err
	}

	a.success("%s (position %d)", out.Message(), out.Position)
	return nil
}

// update prefills the form with the stored record, overlays the flags
// that were given, and saves through the session's edit selection.
func (a *App) update(ctx context.Context, args []string) error {
	pos, flagArgs, err := trailingPosition(args)
	if err != nil {
		return err
	}

	current, err := a.sess.BeginEdit(pos)
	if err != nil {
		return err
	}

	sub := current.Submission()
	fs := a.flagSet("update")
	submissionFlags(fs, &sub)
	if err := fs.Parse(flagArgs); err != nil {
		a.sess.CancelEdit()
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	out, err := a.sess.Submit(ctx, sub)
	if err != nil {
		a.sess.CancelEdit()
		return err
	}

	a.success("%s", out.Message())
	return nil
}

func (a *App) remove(ctx context.Context, args []string) error {
	pos, flagArgs, err := trailingPosition(args)
	if err != nil {
		return err
	}

	fs := a.flagSet("remove")
	yes := fs.Bool("yes", false, "do not ask for confirmation")
	if err := fs.Parse(flagArgs); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	p, err := a.sess.RequestDelete(pos)
	if err != nil {
		return err
	}

	ok := *yes
	if !ok {
		a.heading("Confirm Deletion")
		if ok, err = a.confirm(p.Prompt); err != nil {
			a.sess.CancelDelete()
			return err
		}
	}

	if !ok {
		a.sess.CancelDelete()
		fmt.Fprintln(a.out, "Deletion cancelled.")
		return nil
	}

	if _, err := a.sess.ConfirmDelete(ctx, p.Token); err != nil {
		return err
	}

	a.success("Record deleted successfully.")
	return nil
}

// importFile adds every record from a JSON array, e.g. the "students"
// value exported from the browser's local storage. Records that fail
// validation or collide are reported and skipped; a storage failure
// stops the import.
func (a *App) importFile(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: import needs exactly one file", ErrUsage)
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}
	defer f.Close()

	return a.importFrom(ctx, f)
}

func (a *App) importFrom(ctx context.Context, r io.Reader) error {
	var subs []types.Submission
	if err := json.NewDecoder(r).Decode(&subs); err != nil {
		return fmt.Errorf("import: decode: %w", err)
	}

	added, skipped := 0, 0
	for i, sub := range subs {
		_, _, err := a.sess.Store().Add(ctx, sub)
		switch {
		case err == nil:
			added++
		case errors.Is(err, records.ErrValidation), errors.Is(err, records.ErrDuplicateKey):
			skipped++
			a.fail(fmt.Sprintf("record %d skipped", i), err)
		default:
			return fmt.Errorf("import: record %d: %w", i, err)
		}
	}

	a.success("Imported %d record(s), skipped %d.", added, skipped)
	return nil
}

func (a *App) theme(ctx context.Context, args []string) error {
	current, err := theme.Load(ctx, a.slots)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		fmt.Fprintf(a.out, "Theme: %s\n", current)
		return nil
	}

	next := current.Toggle()
	if args[0] != "toggle" {
		if next, err = theme.Parse(args[0]); err != nil {
			return fmt.Errorf("%w: %v", ErrUsage, err)
		}
	}

	if err := theme.Save(ctx, a.slots, next); err != nil {
		return err
	}

	a.success("Theme: %s", next)
	return nil
}

// trailingPosition splits "[flags...] <position>" into the position and
// the flag arguments.
func trailingPosition(args []string) (int, []string, error) {
	if len(args) == 0 {
		return 0, nil, fmt.Errorf("%w: missing position", ErrUsage)
	}

	last := args[len(args)-1]
	pos, err := strconv.Atoi(last)
	if err != nil || pos < 0 {
		return 0, nil, fmt.Errorf("%w: invalid position %q", ErrUsage, last)
	}

	return pos, args[:len(args)-1], nil
}
