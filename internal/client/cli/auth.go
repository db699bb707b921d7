package cli

import (
	"context"
	"fmt"
	"strings"
)

// Login prompts for a username and password. The server never says which
// of the two was wrong.
func (a *App) Login(ctx context.Context) error {
	userName, err := GetSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	if strings.TrimSpace(userName) == "" {
		return fmt.Errorf("username is required")
	}

	password, err := GetPassword("Enter password", a.out)
	if err != nil {
		return err
	}

	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	info, err := a.api.Login(ctx, userName, password)
	if err != nil {
		return fmt.Errorf("login unsuccessful: %w", err)
	}

	a.setUserName(info.Username)
	fmt.Fprintf(a.out, "Welcome, %s!\n", info.Username)
	a.printSession(info.Username, info.Role, info.Grade)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	err := a.api.Logout(ctx)
	a.setUserName("")
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

func (a *App) Me(ctx context.Context) error {
	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	info, err := a.api.Me(ctx)
	if err != nil {
		return err
	}
	a.printSession(info.Username, info.Role, info.Grade)
	if !info.ExpiresAt.IsZero() {
		fmt.Fprintf(a.out, "Session ends: %s\n", info.ExpiresAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

func (a *App) printSession(username, role, grade string) {
	fmt.Fprintf(a.out, "User: %s\nRole: %s\nGrade: %s\n", username, role, grade)
}

// ChangePassword asks for the current password and the new one twice. On
// success the server ends every session of the user, so the client is
// logged out.
func (a *App) ChangePassword(ctx context.Context) error {
	current, err := GetPassword("Current password", a.out)
	if err != nil {
		return err
	}
	next, err := GetPassword("New password", a.out)
	if err != nil {
		return err
	}
	confirm, err := GetPassword("Confirm new password", a.out)
	if err != nil {
		return err
	}

	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	msg, err := a.api.ChangePassword(ctx, current, next, confirm)
	if err != nil {
		return err
	}
	a.setUserName("")
	fmt.Fprintln(a.out, msg)
	return nil
}
