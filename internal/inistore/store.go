// Package inistore reads and writes plain string values in INI files.
//
// Reads never fail: a missing file, section or key yields the caller's
// default. Values are stored as text; parsing them is up to the caller.
package inistore

import (
	"fmt"

	"gopkg.in/ini.v1"
)

// Store is an INI file addressed by (section, key).
type Store struct {
	path string
}

// New returns a Store backed by path. The file need not exist.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// readOptions follow the Windows profile API the selector files were written
// for: names are case-insensitive, ';' or '#' inside a value is text and a
// trailing backslash (as in C:\in\) ends the value instead of continuing it.
var readOptions = ini.LoadOptions{
	Loose:                   true,
	Insensitive:             true,
	IgnoreInlineComment:     true,
	IgnoreContinuation:      true,
	SkipUnrecognizableLines: true,
}

var writeOptions = ini.LoadOptions{
	Loose:               true,
	IgnoreInlineComment: true,
	IgnoreContinuation:  true,
}

// Load parses the file once for repeated lookups.
func (s *Store) Load() *Snapshot {
	if s.path == "" {
		return &Snapshot{}
	}
	f, err := ini.LoadSources(readOptions, s.path)
	if err != nil {
		return &Snapshot{}
	}
	return &Snapshot{f: f}
}

// Read returns the value under section/key, or def when absent.
func (s *Store) Read(section, key, def string) string {
	return s.Load().Read(section, key, def)
}

// Write upserts value under section/key, creating the file when needed.
func (s *Store) Write(section, key, value string) error {
	if s.path == "" {
		return fmt.Errorf("inistore: no file configured")
	}
	f, err := ini.LoadSources(writeOptions, s.path)
	if err != nil {
		return fmt.Errorf("inistore: parse %s: %w", s.path, err)
	}
	sec := f.Section(section)
	if sec.HasKey(key) {
		sec.Key(key).SetValue(value)
	} else if _, err := sec.NewKey(key, value); err != nil {
		return fmt.Errorf("inistore: add %s.%s: %w", section, key, err)
	}
	if err := f.SaveTo(s.path); err != nil {
		return fmt.Errorf("inistore: save %s: %w", s.path, err)
	}
	return nil
}

// Snapshot is a parsed view of a Store at one point in time.
type Snapshot struct {
	f *ini.File
}

// Read returns the value under section/key, or def when absent.
func (sn *Snapshot) Read(section, key, def string) string {
	if sn == nil || sn.f == nil {
		return def
	}
	sec, err := sn.f.GetSection(section)
	if err != nil {
		return def
	}
	if !sec.HasKey(key) {
		return def
	}
	return sec.Key(key).String()
}

// Has reports whether section/key is present.
func (sn *Snapshot) Has(section, key string) bool {
	if sn == nil || sn.f == nil {
		return false
	}
	sec, err := sn.f.GetSection(section)
	if err != nil {
		return false
	}
	return sec.HasKey(key)
}
