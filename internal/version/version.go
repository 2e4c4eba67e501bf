package version

import (
	"fmt"
	"runtime"
)

// Заполняются через -ldflags "-X github.com/vladislavdragonenkov/salesbook/internal/version.version=...".
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Info returns version information populated via -ldflags.
func Info() (v, c, d string) { return version, commit, date }

// Version возвращает номер версии.
func Version() string { return version }

func String() string {
	return fmt.Sprintf("salesbook version=%s commit=%s date=%s go=%s", version, commit, date, runtime.Version())
}
