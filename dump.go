package recipecapture

import (
	"fmt"
	"io"
	"path/filepath"
	"runtime"

	"github.com/davecgh/go-spew/spew"
)

var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// Dump writes a caller-annotated deep dump of v to w.
func Dump(w io.Writer, v ...any) {
	_, file, line, _ := runtime.Caller(1)
	fmt.Fprintf(w, "%s:%d:\n", filepath.Base(file), line)
	dumpConfig.Fdump(w, v...)
}
