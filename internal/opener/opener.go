// Package opener hands a finished output file to the operating system's
// default viewer.
package opener

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/rs/zerolog/log"
)

// ErrRemoved is returned when the file to open no longer exists.
var ErrRemoved = errors.New("file has been removed")

// Command returns the program and arguments that open path on goos.
func Command(goos, path string) (string, []string) {
	switch goos {
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", path}
	case "darwin":
		return "open", []string{path}
	default:
		return "xdg-open", []string{path}
	}
}

// Open checks that path exists and starts the platform viewer without
// waiting for it.
func Open(path string) error {
	st, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrRemoved, path)
		}
		return err
	}
	if st.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}

	name, args := Command(runtime.GOOS, path)
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", name, err)
	}
	log.Debug().Str("cmd", name).Str("file", path).Msg("opened output file")
	go func() { _ = cmd.Wait() }()
	return nil
}
