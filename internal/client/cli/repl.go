package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL dispatches to.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Me(ctx context.Context) error
	ChangePassword(ctx context.Context) error
	Preferences(ctx context.Context) error
	SetAreas(ctx context.Context, args []string) error
	SetShift(ctx context.Context, args []string) error
	SetColumns(ctx context.Context, args []string) error
	Rename(ctx context.Context, args []string) error
	Timesheet(ctx context.Context, args []string) error
	Activity(ctx context.Context, args []string) error
	Audit(ctx context.Context, args []string) error
}

const (
	helpLoggedOut = "Available commands: login, exit"
	helpLoggedIn  = `Available commands:
  timesheet [from] [to]          fill in and submit days (default: last 7 days)
  activity [from] [to] [user=..] [shift=..] [area=..]
  audit [user]                   audit trail, newest first
  me                             who am I
  settings                       show preferences
  areas CODE...                  set preferred areas (e.g. areas ER GCP)
  shift NAME                     set preferred shift
  columns N                      number of area columns (1-4)
  rename NAME                    change username
  passwd                         change password
  logout, exit`
)

// runREPL reads commands from reader until EOF, "exit" or "quit".
//
// The first word of a line is the command; the rest are its arguments.
// Errors from handlers are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("ts %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := strings.ToLower(parts[0]), parts[1:]

		if cmd == "exit" || cmd == "quit" {
			printlnFn("Bye!")
			return
		}
		if err := dispatch(ctx, a, cmd, args); err != nil {
			printlnFn("Error:", err)
		}
	}
}

func dispatch(ctx context.Context, a execIface, cmd string, args []string) error {
	switch cmd {
	case "help":
		if a.isLoggedIn() {
			printlnFn(helpLoggedIn)
		} else {
			printlnFn(helpLoggedOut)
		}
		return nil
	case "login":
		return a.Login(ctx)
	}

	if !a.isLoggedIn() {
		if isCommand(cmd) {
			printlnFn("Please log in first.")
		} else {
			printlnFn("Unknown command:", cmd)
		}
		return nil
	}

	switch cmd {
	case "logout":
		return a.Logout(ctx)
	case "me", "whoami":
		return a.Me(ctx)
	case "passwd", "password":
		return a.ChangePassword(ctx)
	case "settings", "prefs":
		return a.Preferences(ctx)
	case "areas":
		return a.SetAreas(ctx, args)
	case "shift":
		return a.SetShift(ctx, args)
	case "columns":
		return a.SetColumns(ctx, args)
	case "rename":
		return a.Rename(ctx, args)
	case "t", "timesheet":
		return a.Timesheet(ctx, args)
	case "a", "activity":
		return a.Activity(ctx, args)
	case "audit":
		return a.Audit(ctx, args)
	}

	printlnFn("Unknown command:", cmd)
	return nil
}

func isCommand(cmd string) bool {
	switch cmd {
	case "logout", "me", "whoami", "passwd", "password", "settings", "prefs", "areas",
		"shift", "columns", "rename", "t", "timesheet", "a", "activity", "audit":
		return true
	}
	return false
}
