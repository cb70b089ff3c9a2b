package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"recipecapture/app"
	"recipecapture/auth"
	"recipecapture/coordinator"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive recipe shell",
	RunE:  runShell,
}

func runShell(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	in := bufio.NewScanner(cmd.InOrStdin())
	out := cmd.OutOrStdout()

	s, err := newSession(ctx, app.Deps{Prompter: stdinPrompter(in, out)})
	if err != nil {
		return err
	}
	defer func() {
		if err := s.cleanup(); err != nil {
			red.Fprintf(cmd.ErrOrStderr(), "cleanup: %v\n", err)
		}
	}()

	return (&shell{app: s.Session, in: in, out: out}).run(ctx)
}

// stdinPrompter plays the native permission dialog on the terminal.
func stdinPrompter(in *bufio.Scanner, out io.Writer) func(context.Context) (bool, error) {
	return func(ctx context.Context) (bool, error) {
		yellow.Fprint(out, "Allow camera access? [y/N] ")
		if !in.Scan() {
			if err := in.Err(); err != nil {
				return false, err
			}
			return false, io.EOF
		}
		switch strings.ToLower(strings.TrimSpace(in.Text())) {
		case "y", "yes", "po":
			return true, nil
		default:
			return false, nil
		}
	}
}

type shell struct {
	app *app.Session
	in  *bufio.Scanner
	out io.Writer
}

func (sh *shell) run(ctx context.Context) error {
	cyan.Fprintln(sh.out, "Recipe shell. Type 'help' for commands.")
	renderHome(sh.out, sh.app.Home(ctx))

	for {
		fmt.Fprint(sh.out, "> ")
		if !sh.in.Scan() {
			fmt.Fprintln(sh.out)
			return sh.in.Err()
		}
		if quit := sh.exec(ctx, sh.in.Text()); quit {
			return nil
		}
	}
}

// exec handles one input line and reports whether the shell should exit.
func (sh *shell) exec(ctx context.Context, line string) bool {
	cmd, ok, err := parseLine(line)
	switch {
	case err != nil:
		renderError(sh.out, err)
		return false
	case !ok:
		return false
	}

	switch cmd.Action {
	case "quit":
		return true
	case "help":
		renderHelp(sh.out)
		return false
	case "list":
		renderHome(sh.out, sh.app.Home(ctx))
		return false
	}

	err = sh.app.Apply(ctx, cmd)
	renderAlerts(sh.out, sh.app.Alerts.Drain())
	if err != nil && !surfaced(err) {
		renderError(sh.out, err)
	}

	switch cmd.Action {
	case "save", "snap", "login", "logout":
		renderHome(sh.out, sh.app.Home(ctx))
	default:
		renderMode(sh.out, sh.app.Home(ctx).Snapshot)
	}
	return false
}

// surfaced reports whether err already reached the user as an alert.
func surfaced(err error) bool {
	switch coordinator.Kind(err) {
	case "validation", "capability_unavailable", "permission_denied", "capture_failed":
		return true
	}
	var ae *auth.AuthError
	return errors.As(err, &ae)
}

// parseLine turns a typed line into a step. ok is false for blank lines.
func parseLine(line string) (step app.Step, ok bool, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return app.Step{}, false, nil
	}

	action := strings.ToLower(fields[0])
	args := fields[1:]
	step = app.Step{Action: action}

	switch action {
	case "exit", "q":
		step.Action = "quit"
	case "title":
		_, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
		step.Text = rest
	case "login":
		if len(args) > 0 {
			step.Email = args[0]
		}
		if len(args) > 1 {
			step.Password = args[1]
		}
	case "signup":
		if len(args) > 4 {
			return app.Step{}, false, fmt.Errorf("usage: signup <first> <last> <email> <password>")
		}
		dst := []*string{&step.FirstName, &step.LastName, &step.Email, &step.Password}
		for i, a := range args {
			*dst[i] = a
		}
	}
	return step, true, nil
}
