// Package selector is a typed view over a selector file: the INI document
// that lists which pages to take from which input files.
package selector

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/local/pdfsm/internal/inistore"
)

const (
	generalSection = "General"

	keyDescription       = "Description"
	keyInputFilesCount   = "InputFilesCount"
	keyDefaultOutputName = "DefaultOutputName"
	keyInputFile         = "InputFile"
	keySelectPages       = "SelectPages"
)

var (
	// ErrInvalidCount is returned when InputFilesCount is not a non-negative integer.
	ErrInvalidCount = errors.New("invalid InputFilesCount")
	// ErrInvalidPage marks a SelectPages token that is not a positive integer.
	ErrInvalidPage = errors.New("invalid page number")
)

// File is a loaded selector file.
type File struct {
	path string
	snap *inistore.Snapshot
}

// Input is one [InputN] section.
type Input struct {
	Index int
	// File is the input file stem, without the .pdf extension.
	File  string
	Pages []PageToken
}

// PageToken is one comma-separated entry of SelectPages.
type PageToken struct {
	Raw  string
	Page int
	Err  error
}

// Valid reports whether the token names a usable 1-based page.
func (t PageToken) Valid() bool { return t.Err == nil }

// Load reads the selector file at path.
func Load(path string) (*File, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("selector file: %w", err)
	}
	if st.IsDir() {
		return nil, fmt.Errorf("selector file: %s is a directory", path)
	}
	return &File{path: path, snap: inistore.New(path).Load()}, nil
}

// Path returns the file the selector was loaded from.
func (f *File) Path() string { return f.path }

// Description returns the optional free-text description.
func (f *File) Description() string {
	return strings.TrimSpace(f.snap.Read(generalSection, keyDescription, ""))
}

// DefaultOutputName returns the suggested output file name, if any.
func (f *File) DefaultOutputName() string {
	return strings.TrimSpace(f.snap.Read(generalSection, keyDefaultOutputName, ""))
}

// InputFilesCount returns the number of [InputN] sections to process.
// An absent key is 0. A value that is not a non-negative integer is 0 plus
// an error wrapping ErrInvalidCount.
func (f *File) InputFilesCount() (int, error) {
	raw := strings.TrimSpace(f.snap.Read(generalSection, keyInputFilesCount, ""))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCount, raw)
	}
	return n, nil
}

// Input returns section Input{i}.
func (f *File) Input(i int) Input {
	section := "Input" + strconv.Itoa(i)
	return Input{
		Index: i,
		File:  strings.TrimSpace(f.snap.Read(section, keyInputFile, "")),
		Pages: ParsePages(f.snap.Read(section, keySelectPages, "")),
	}
}

// ParsePages splits a SelectPages value on commas. Tokens are trimmed.
// A blank value yields no tokens; blank or non-positive tokens are kept
// with Err set so the caller can report them.
func ParsePages(s string) []PageToken {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]PageToken, 0, len(parts))
	for _, p := range parts {
		tok := PageToken{Raw: strings.TrimSpace(p)}
		n, err := strconv.Atoi(tok.Raw)
		switch {
		case err != nil:
			tok.Err = fmt.Errorf("%w: %q is not a number", ErrInvalidPage, tok.Raw)
		case n < 1:
			tok.Err = fmt.Errorf("%w: %d, pages start at 1", ErrInvalidPage, n)
		default:
			tok.Page = n
		}
		out = append(out, tok)
	}
	return out
}
