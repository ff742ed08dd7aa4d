// Package pdfdoc opens input documents and accumulates copied pages into an
// output document.
package pdfdoc

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrPageOutOfRange is returned when a requested page does not exist.
var ErrPageOutOfRange = errors.New("page out of range")

// Document is an opened, read-only input PDF.
type Document interface {
	Path() string
	PageCount() int
	// ExtractPage returns page n (1-based) as a standalone one-page PDF.
	ExtractPage(n int) ([]byte, error)
}

// Backend opens documents and merges extracted pages.
type Backend interface {
	Open(path string) (Document, error)
	Merge(pages [][]byte, w io.Writer) error
}

// Output accumulates pages in append order.
type Output struct {
	backend Backend
	pages   [][]byte
}

// NewOutput returns an empty output document.
func NewOutput(b Backend) *Output {
	return &Output{backend: b}
}

// Append copies page n of doc to the end of the output. The output keeps
// its own copy; doc may be discarded afterwards.
func (o *Output) Append(doc Document, n int) error {
	if n < 1 || n > doc.PageCount() {
		return fmt.Errorf("%w: page %d of %d", ErrPageOutOfRange, n, doc.PageCount())
	}
	data, err := doc.ExtractPage(n)
	if err != nil {
		return fmt.Errorf("extract page %d: %w", n, err)
	}
	o.pages = append(o.pages, data)
	return nil
}

// PageCount returns the number of pages appended so far.
func (o *Output) PageCount() int { return len(o.pages) }

// Save writes the output to path. The file is written next to its final
// location first so a failed save never leaves a truncated output behind.
func (o *Output) Save(path string) error {
	if len(o.pages) == 0 {
		return errors.New("output has no pages")
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".pdfsm-*.pdf")
	if err != nil {
		return fmt.Errorf("create temp output: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	var buf bytes.Buffer
	if err := o.backend.Merge(o.pages, &buf); err != nil {
		tmp.Close()
		return fmt.Errorf("merge pages: %w", err)
	}
	if _, err := buf.WriteTo(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("write output: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod output: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("move output into place: %w", err)
	}
	return nil
}
