// Package cli is the terminal front end for the record store.
//
// Each invocation runs one command:
//
//	records list [-q text]
//	records add -name N -reg R [-dept D] [-year Y] -marks M
//	records update [-name N] [-reg R] [-dept D] [-year Y] [-marks M] <position>
//	records remove [-yes] <position>
//	records import <file.json>
//	records theme [dark|light|toggle]
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aanand-mishra/student-records/internal/records"
	"github.com/aanand-mishra/student-records/internal/session"
	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/fatih/color"
)

// ErrUsage is returned for unknown commands and bad arguments.
var ErrUsage = errors.New("usage error")

const usage = `Usage: records [-config path] <command> [arguments]

Commands:
  list [-q text]                 list records, optionally filtered by name or reg no
  add -name -reg -marks [...]    add a record
  update [flags] <position>      change fields of the record at position
  remove [-yes] <position>       delete the record at position after confirmation
  import <file.json>             add every record from a browser export
  theme [dark|light|toggle]      show or change the theme preference`

// App runs CLI commands against one session.
type App struct {
	sess  *session.Session
	slots storage.Slots
	in    *bufio.Reader
	out   io.Writer
}

// New returns an App reading confirmations from in and writing to out.
func New(sess *session.Session, slots storage.Slots, in io.Reader, out io.Writer) *App {
	return &App{
		sess:  sess,
		slots: slots,
		in:    bufio.NewReader(in),
		out:   out,
	}
}

// Run executes the command named by args[0].
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(a.out, usage)
		return ErrUsage
	}

	cmd, rest := args[0], args[1:]
	var err error
	switch cmd {
	case "help", "-h", "--help":
		fmt.Fprintln(a.out, usage)
		return nil
	case "l", "list":
		err = a.list(rest)
	case "add":
		err = a.add(ctx, rest)
	case "update", "edit":
		err = a.update(ctx, rest)
	case "rm", "remove", "delete":
		err = a.remove(ctx, rest)
	case "import":
		err = a.importFile(ctx, rest)
	case "theme":
		err = a.theme(ctx, rest)
	default:
		fmt.Fprintln(a.out, usage)
		return fmt.Errorf("%w: unknown command %q", ErrUsage, cmd)
	}

	if err != nil {
		a.fail(title(err), err)
	}
	return err
}

// title picks the heading the front end shows for each kind of failure.
func title(err error) string {
	switch {
	case errors.Is(err, records.ErrValidation):
		return "Validation Error"
	case errors.Is(err, records.ErrDuplicateKey):
		return "Uniqueness Error"
	case errors.Is(err, records.ErrNotFound):
		return "Not Found"
	case errors.Is(err, records.ErrConflict):
		return "Conflict"
	case errors.Is(err, ErrUsage):
		return "Usage"
	default:
		return "Error"
	}
}

func (a *App) success(format string, args ...any) {
	color.New(color.FgGreen).Fprintf(a.out, format+"\n", args...)
}

func (a *App) fail(heading string, err error) {
	color.New(color.FgRed).Fprintf(a.out, "%s: %v\n", heading, err)
}

func (a *App) heading(text string) {
	color.New(color.FgYellow).Fprintln(a.out, text)
}

// confirm asks a yes/no question. Anything but y/yes is a no.
func (a *App) confirm(question string) (bool, error) {
	fmt.Fprintf(a.out, "%s [y/N]: ", question)
	line, err := a.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
