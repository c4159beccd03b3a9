package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
)

// getStatus renders the prompt status: current view path, signed-in user
// and connectivity mode.
func (a *App) getStatus() string {
	s := a.path
	if user := a.sessions.User(); user != nil {
		s = s + " " + user.Email
	}
	if a.Mode != "" {
		s = fmt.Sprintf("%s (%s)", s, a.Mode)
	}
	return s
}

// Root runs the interactive loop until EOF or an exit command.
func (a *App) Root(ctx context.Context) {
	printlnFn("Welcome to RecordKeeper CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}
