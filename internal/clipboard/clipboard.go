// Package clipboard copies text to the system clipboard via shell commands.
package clipboard

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// ErrClipboardUnavailable is returned when no clipboard command is installed.
var ErrClipboardUnavailable = errors.New("clipboard unavailable")

// commands lists the clipboard writers to try on goos, in preference order.
func commands(goos string) [][]string {
	switch goos {
	case "darwin":
		return [][]string{{"pbcopy"}}
	case "linux", "freebsd", "openbsd":
		return [][]string{
			{"wl-copy"},
			{"xclip", "-selection", "clipboard"},
			{"xsel", "--clipboard", "--input"},
		}
	case "windows":
		return [][]string{{"clip"}}
	default:
		return nil
	}
}

// findCommand returns the first installed clipboard writer for goos.
func findCommand(goos string, lookPath func(string) (string, error)) ([]string, error) {
	for _, argv := range commands(goos) {
		if _, err := lookPath(argv[0]); err == nil {
			return argv, nil
		}
	}
	return nil, ErrClipboardUnavailable
}

// IsAvailable checks if clipboard functionality is available on this system.
func IsAvailable() bool {
	_, err := findCommand(runtime.GOOS, exec.LookPath)
	return err == nil
}

// Copy copies the given text to the system clipboard.
// Returns ErrClipboardUnavailable if clipboard access is not available.
func Copy(text string) error {
	argv, err := findCommand(runtime.GOOS, exec.LookPath)
	if err != nil {
		return err
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = strings.NewReader(text)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("running %s: %w", argv[0], err)
	}
	return nil
}
