package version

import (
	"fmt"
	"io"
	"runtime"
)

// These are set at build time with -ldflags "-X ..."
var (
	BuildVersion = "dev"
	BuildRef     = "unknown"
	BuildDate    = "unknown"
)

// String returns a one line description of the build
func String() string {
	return fmt.Sprintf("%s (ref %s, built %s, %s)", BuildVersion, BuildRef, BuildDate, runtime.Version())
}

// ShowVersion prints version information to w
func ShowVersion(w io.Writer) {
	fmt.Fprintf(w, "version: %s\n", String()) //nolint:errcheck
}
