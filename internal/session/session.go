// Package session remembers the last-used selector file, input path and
// output file between invocations.
package session

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/local/pdfsm/internal/inistore"
	"github.com/local/pdfsm/internal/selector"
)

// ConfigName is the config store file name, kept next to the executable.
const ConfigName = "pdfsm_config.ini"

// WritableTip is shown once when the config store cannot be written.
const WritableTip = "Tip: If you move this program to a writable directory, it could remember your configured paths. ;)"

const (
	section      = "General"
	keySelect    = "SelectFile"
	keyInputPath = "InputPath"
	keySaveFile  = "SaveFile"
)

// Paths are the three locations a merge needs.
type Paths struct {
	SelectFile string `json:"select_file"`
	InputPath  string `json:"input_path"`
	SaveFile   string `json:"save_file"`
}

// Ready reports whether a merge can be started.
func (p Paths) Ready() bool {
	return p.SelectFile != "" && p.InputPath != "" && p.SaveFile != ""
}

// Session reads and writes the persisted paths.
type Session struct {
	store   *inistore.Store
	tipOnce sync.Once
}

// DefaultConfigPath returns the config store path next to the running executable.
func DefaultConfigPath() string {
	exe, err := os.Executable()
	if err != nil {
		return ConfigName
	}
	return filepath.Join(filepath.Dir(exe), ConfigName)
}

// New returns a Session backed by the config store at path; empty means DefaultConfigPath.
func New(path string) *Session {
	if path == "" {
		path = DefaultConfigPath()
	}
	return &Session{store: inistore.New(path)}
}

// ConfigPath returns the config store location.
func (s *Session) ConfigPath() string { return s.store.Path() }

// Saved returns the persisted paths.
func (s *Session) Saved() Paths {
	sn := s.store.Load()
	return Paths{
		SelectFile: sn.Read(section, keySelect, ""),
		InputPath:  sn.Read(section, keyInputPath, ""),
		SaveFile:   sn.Read(section, keySaveFile, ""),
	}
}

// Resolve fills the blanks in explicit from the persisted paths. When the
// output is not given and the selector suggests a DefaultOutputName, that
// name is used in the directory of the last output (or of the selector).
func (s *Session) Resolve(explicit Paths) Paths {
	saved := s.Saved()
	p := explicit
	if p.SelectFile == "" {
		p.SelectFile = saved.SelectFile
	}
	if p.InputPath == "" {
		p.InputPath = saved.InputPath
	}
	if p.SaveFile == "" {
		p.SaveFile = defaultOutput(p.SelectFile, saved.SaveFile)
	}
	p.InputPath = NormalizeInputPath(p.InputPath)
	return p
}

func defaultOutput(selectFile, lastSave string) string {
	name := ""
	if selectFile != "" {
		if sel, err := selector.Load(selectFile); err == nil {
			name = sel.DefaultOutputName()
		}
	}
	if name == "" {
		return lastSave
	}
	if !strings.HasSuffix(strings.ToLower(name), ".pdf") {
		name += ".pdf"
	}
	dir := filepath.Dir(selectFile)
	if lastSave != "" {
		dir = filepath.Dir(lastSave)
	}
	return filepath.Join(dir, name)
}

// NormalizeInputPath makes local input directories absolute with a trailing
// separator. Remote locations are returned unchanged.
func NormalizeInputPath(p string) string {
	if p == "" || strings.Contains(p, "://") {
		return p
	}
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	if !strings.HasSuffix(p, string(os.PathSeparator)) {
		p += string(os.PathSeparator)
	}
	return p
}

// Remember persists p best-effort. It returns WritableTip the first time a
// write fails and "" otherwise.
func (s *Session) Remember(p Paths) string {
	var failed bool
	for _, kv := range [][2]string{
		{keySelect, absIfLocal(p.SelectFile)},
		{keyInputPath, p.InputPath},
		{keySaveFile, absIfLocal(p.SaveFile)},
	} {
		if kv[1] == "" {
			continue
		}
		if err := s.store.Write(section, kv[0], kv[1]); err != nil {
			log.Debug().Err(err).Str("config", s.store.Path()).Msg("could not persist path")
			failed = true
			break
		}
	}
	tip := ""
	if failed {
		s.tipOnce.Do(func() { tip = WritableTip })
	}
	return tip
}

func absIfLocal(p string) string {
	if p == "" || strings.Contains(p, "://") {
		return p
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
