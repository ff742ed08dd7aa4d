package repair

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// FixedName is the file name the repaired copy is written to inside the
// output directory. Only one exists at a time.
const FixedName = "pdfsm_fixed.pdf"

// DefaultTimeout bounds a single Ghostscript run.
const DefaultTimeout = 3 * time.Minute

// ErrRepairFailed wraps every failure to produce a repaired copy.
var ErrRepairFailed = errors.New("repair failed")

// Repairer rewrites a malformed PDF into a well-formed copy.
type Repairer interface {
	Repair(ctx context.Context, corruptPath, outputDir string) (string, error)
}

// Ghostscript repairs PDFs by re-distilling them with the pdfwrite device.
type Ghostscript struct {
	binary  string
	timeout time.Duration
}

// NewGhostscript returns a Repairer that runs binary. A non-positive timeout uses DefaultTimeout.
func NewGhostscript(binary string, timeout time.Duration) *Ghostscript {
	if binary == "" {
		binary = "gs"
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Ghostscript{binary: binary, timeout: timeout}
}

// FixedPath returns where the repaired copy for outputDir lives.
func FixedPath(outputDir string) string {
	return filepath.Join(outputDir, FixedName)
}

// RemoveStale deletes a repaired copy left in outputDir, if any.
func RemoveStale(outputDir string) error {
	err := os.Remove(FixedPath(outputDir))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Available verifies the Ghostscript binary can be found.
func (g *Ghostscript) Available() error {
	if _, err := exec.LookPath(g.binary); err != nil {
		return fmt.Errorf("ghostscript not found (%s): %w", g.binary, err)
	}
	return nil
}

// Args returns the command-line arguments for repairing corruptPath into fixedPath.
func Args(corruptPath, fixedPath string) []string {
	return []string{
		"-o", fixedPath,
		"-sDEVICE=pdfwrite",
		"-dPDFSETTINGS=/prepress",
		corruptPath,
	}
}

// Repair writes a repaired copy of corruptPath to FixedPath(outputDir) and
// returns that path. It blocks until Ghostscript exits or the timeout hits.
func (g *Ghostscript) Repair(ctx context.Context, corruptPath, outputDir string) (string, error) {
	start := time.Now()
	fixed := FixedPath(outputDir)

	if err := RemoveStale(outputDir); err != nil {
		return "", fmt.Errorf("%w: remove stale %s: %v", ErrRepairFailed, fixed, err)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, g.binary, Args(corruptPath, fixed)...)
	cmd.WaitDelay = 2 * time.Second
	log.Debug().Str("cmd", strings.Join(cmd.Args, " ")).Msg("ghostscript command")

	output, err := cmd.CombinedOutput()
	if ctx.Err() == context.DeadlineExceeded {
		_ = RemoveStale(outputDir)
		return "", fmt.Errorf("%w: ghostscript timeout after %v", ErrRepairFailed, g.timeout)
	}
	if err != nil {
		_ = RemoveStale(outputDir)
		return "", fmt.Errorf("%w: %v: %s", ErrRepairFailed, err, lastLine(output))
	}

	info, err := os.Stat(fixed)
	if err != nil {
		return "", fmt.Errorf("%w: output file not created: %v", ErrRepairFailed, err)
	}
	if info.Size() == 0 {
		_ = RemoveStale(outputDir)
		return "", fmt.Errorf("%w: output file is empty", ErrRepairFailed)
	}

	log.Info().Str("input", corruptPath).Str("output", fixed).Dur("duration", time.Since(start)).Msg("repair successful")
	return fixed, nil
}

func lastLine(b []byte) string {
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	msg := strings.TrimSpace(lines[len(lines)-1])
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
