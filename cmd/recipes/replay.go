package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"recipecapture"
	"recipecapture/app"
)

var replayCmd = &cobra.Command{
	Use:   "replay <script.yaml>",
	Short: "Run a YAML script of actions and print the resulting recipe list",
	Args:  cobra.ExactArgs(1),
	RunE:  runReplay,
}

func init() {
	replayCmd.Flags().Bool("dump", false, "dump the final home state with go-spew")
}

func runReplay(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open script: %w", err)
	}
	defer f.Close()

	script, err := app.ParseScript(f)
	if err != nil {
		return err
	}

	s, err := newSession(ctx, app.Deps{})
	if err != nil {
		return err
	}
	defer func() {
		if err := s.cleanup(); err != nil {
			red.Fprintf(cmd.ErrOrStderr(), "cleanup: %v\n", err)
		}
	}()

	if script.Name != "" {
		cyan.Fprintf(out, "replaying %s (%d steps)\n", script.Name, len(script.Steps))
	}

	failed := 0
	for i, step := range script.Steps {
		err := s.Apply(ctx, step)
		faint.Fprintf(out, "%3d %-8s ", i+1, step.Action)
		if err != nil {
			failed++
			renderError(out, err)
		} else {
			green.Fprintln(out, "ok")
		}
		renderAlerts(out, s.Alerts.Drain())
	}

	home := s.Home(ctx)
	renderHome(out, home)
	if dump, _ := cmd.Flags().GetBool("dump"); dump {
		recipecapture.Dump(out, home)
	}

	if failed > 0 {
		yellow.Fprintf(out, "%d of %d steps returned an error\n", failed, len(script.Steps))
	}
	return nil
}
