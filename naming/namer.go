// Package naming decides the title of a recipe created from a photo.
package naming

import (
	"context"
	"strings"

	"recipecapture/camera"
)

type Namer interface {
	Name(ctx context.Context, photo camera.Photo) (string, error)
}

// Static gives every photo the same title.
type Static string

func (s Static) Name(context.Context, camera.Photo) (string, error) {
	return string(s), nil
}

// Clean normalizes a title suggested by a model: one line, no surrounding quotes or
// punctuation, at most maxLen runes.
func Clean(title string, maxLen int) string {
	title = strings.TrimSpace(title)
	if i := strings.IndexAny(title, "\r\n"); i >= 0 {
		title = title[:i]
	}
	title = strings.Trim(title, " \t\"'`.“”„")
	if r := []rune(title); maxLen > 0 && len(r) > maxLen {
		title = strings.TrimSpace(string(r[:maxLen]))
	}
	return title
}
