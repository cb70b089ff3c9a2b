package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"recipecapture/alert"
	"recipecapture/app"
	"recipecapture/coordinator"
)

var (
	cyan   = color.New(color.FgCyan)
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed)
	faint  = color.New(color.Faint)
)

func renderHome(w io.Writer, home app.Home) {
	if home.User != nil {
		faint.Fprintf(w, "signed in as %s\n", displayName(home))
	}
	cyan.Fprintf(w, "Recetat (%d)\n", len(home.Recipes))
	if len(home.Recipes) == 0 {
		faint.Fprintln(w, "  no recipes yet; try 'add' or 'camera'")
	}
	for i, r := range home.Recipes {
		fmt.Fprintf(w, "  %2d. %s", i+1, r.Title)
		if r.HasImage() {
			faint.Fprintf(w, "  [%s]", r.ImageRef)
		}
		fmt.Fprintln(w)
	}
	renderMode(w, home.Snapshot)
}

func renderMode(w io.Writer, snap coordinator.Snapshot) {
	switch snap.Mode {
	case coordinator.ManualEntryOpen:
		yellow.Fprintf(w, "manual entry: %q (title <text>, save, cancel)\n", snap.DraftTitle)
	case coordinator.CameraOpen:
		yellow.Fprintln(w, "camera open (snap, close)")
	default:
		if snap.PermissionPending {
			faint.Fprintln(w, "waiting for camera permission...")
		}
	}
}

func renderAlerts(w io.Writer, msgs []alert.Message) {
	for _, m := range msgs {
		c := yellow
		if m.Title == "Sukses" {
			c = green
		}
		c.Fprintf(w, "[%s] ", m.Title)
		fmt.Fprintln(w, m.Body)
	}
}

func renderError(w io.Writer, err error) {
	red.Fprintf(w, "%s: %v\n", coordinator.Kind(err), err)
}

func renderHelp(w io.Writer) {
	yellow.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  list                              Show the recipe list")
	fmt.Fprintln(w, "  add                               Open the manual entry form")
	fmt.Fprintln(w, "  title <text>                      Type the recipe title")
	fmt.Fprintln(w, "  save | cancel                     Submit or discard the form")
	fmt.Fprintln(w, "  camera                            Ask for camera access and open the camera")
	fmt.Fprintln(w, "  snap | close                      Take a photo or close the camera")
	fmt.Fprintln(w, "  login <email> <password>          Sign in")
	fmt.Fprintln(w, "  signup <first> <last> <email> <password>")
	fmt.Fprintln(w, "  logout                            Sign out")
	fmt.Fprintln(w, "  quit                              Leave the shell")
}

func displayName(home app.Home) string {
	if name := home.User.Profile.DisplayName(); name != "" {
		return name
	}
	return home.User.Email
}
