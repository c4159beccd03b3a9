package cli

import (
	"context"
	"errors"
	"net/url"
	"os"

	"github.com/dnovikovs/recordkeeper/internal/client/models"
	"github.com/dnovikovs/recordkeeper/internal/validate"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// printValidation shows field errors inline; they never become toasts.
func printValidation(err error) bool {
	var verr *validate.ValidationError
	if !errors.As(err, &verr) {
		return false
	}
	for _, f := range verr.Fields {
		printlnFn("  " + f.Message)
	}
	return true
}

// Login prompts for credentials and authenticates. On success the session
// manager navigates to the landing page; if the user was bounced here by the
// guard, they are then returned to the path they originally wanted.
//
// Transport and server failures have already been toasted by the HTTP layer;
// only validation errors are rendered here.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}

	creds := models.Credentials{Email: email, Password: password}
	if err := a.sessions.Login(ctx, creds); err != nil {
		printValidation(err)
		return err
	}

	printlnFn("Welcome back!")
	a.followPendingRedirect(ctx)
	return nil
}

// Register prompts for a new account and signs the user in on success.
func (a *App) Register(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter name", os.Stdout)
	if err != nil {
		return err
	}

	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}

	reg := models.Registration{Name: name, Email: email, Password: password}
	if err := a.sessions.Register(ctx, reg); err != nil {
		printValidation(err)
		return err
	}

	printlnFn("Account created!")
	a.followPendingRedirect(ctx)
	return nil
}

// Logout clears the session. Local state is cleared and the app lands on the
// login view even when the server cannot be reached.
func (a *App) Logout(ctx context.Context) error {
	a.sessions.Logout(ctx)
	a.pendingRedirect = ""
	printlnFn("Logged out")
	return nil
}

func (a *App) followPendingRedirect(ctx context.Context) {
	if a.pendingRedirect == "" {
		return
	}
	target := a.pendingRedirect
	a.pendingRedirect = ""
	_ = a.GoTo(ctx, target)
}

// GoTo routes a navigation request through the guard. A redirect decision
// prints the reason, remembers the intended path, and moves to the login
// view instead.
func (a *App) GoTo(ctx context.Context, target string) error {
	decision := a.guard.Check(ctx, target)
	if decision.Allowed {
		a.path = target
		return nil
	}

	u, err := url.Parse(decision.Redirect)
	if err != nil {
		return err
	}

	q := u.Query()
	if message := q.Get("message"); message != "" {
		printlnFn(message)
	}
	if redirect := q.Get("redirect"); redirect != "" {
		a.pendingRedirect = redirect
	}
	a.path = u.Path
	return nil
}
