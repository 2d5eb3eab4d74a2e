package pdf

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// Opener opens library PDFs in the configured reader.
type Opener struct {
	reader string
}

// NewOpener creates an opener for a reader name ("system" if empty).
func NewOpener(reader string) *Opener {
	if reader == "" {
		reader = "system"
	}
	return &Opener{reader: reader}
}

// Open starts the reader on path without waiting for it to exit.
func (o *Opener) Open(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("PDF file does not exist: %s", path)
		}
		return fmt.Errorf("checking PDF file: %w", err)
	}

	cmd, err := o.Command(runtime.GOOS, path)
	if err != nil {
		return err
	}
	return cmd.Start()
}

// Command returns the command that opens path on the given platform.
func (o *Opener) Command(goos, path string) (*exec.Cmd, error) {
	switch goos {
	case "darwin":
		switch o.reader {
		case "skim":
			return exec.Command("open", "-a", "Skim", path), nil
		case "preview":
			return exec.Command("open", "-a", "Preview", path), nil
		default:
			return exec.Command("open", path), nil
		}
	case "linux":
		switch o.reader {
		case "zathura", "evince", "okular":
			return exec.Command(o.reader, path), nil
		default:
			return exec.Command("xdg-open", path), nil
		}
	default:
		return nil, fmt.Errorf("unsupported platform: %s", goos)
	}
}
