// Package version provides build and version information.
package version

import (
	"fmt"
	"runtime"
)

// Version is the current application version.
const Version = "0.3.0"

// Commit is set at build time with -ldflags "-X .../version.Commit=<sha>".
var Commit = "dev"

// String returns the version line printed by the version command.
func String() string {
	return fmt.Sprintf("moon-proximity v%s (%s, %s)", Version, Commit, runtime.Version())
}

// Milestones:
// 0.3.0 - Event browser TUI, JSON export, YAML/env configuration
// 0.2.0 - Perigee/apogee and phase detection with parallel bracket refinement
// 0.1.0 - Initial release: Chebyshev ephemeris reader, Earth/Moon/Sun positions
