package review

import (
	"os"

	"golang.org/x/term"
)

// IsTTY checks if the given file descriptor is a terminal.
func IsTTY(fd uintptr) bool {
	return term.IsTerminal(int(fd))
}

// IsOutputTerminal checks if stdout is a TTY. Used to pick the default
// report format: the human-readable report when a user is watching,
// machine-readable JSON when output is piped or redirected.
func IsOutputTerminal() bool {
	return IsTTY(os.Stdout.Fd())
}
