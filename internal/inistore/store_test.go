package inistore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadMissingFileReturnsDefault(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "absent.ini"))
	if got := s.Read("General", "InputFilesCount", "0"); got != "0" {
		t.Errorf("got %q", got)
	}
	if got := New("").Read("General", "Description", "x"); got != "x" {
		t.Errorf("empty path: got %q", got)
	}
}

func TestReadValues(t *testing.T) {
	p := filepath.Join(t.TempDir(), "sel.ini")
	content := "[General]\r\nDescription=Weekly report; part 1 # draft\r\nInputFilesCount=2\r\n\r\n[Input1]\r\nInputFile=a\r\nSelectPages=1,3\r\n"
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	s := New(p)

	tests := []struct {
		section, key, def, want string
	}{
		{"General", "Description", "", "Weekly report; part 1 # draft"},
		{"General", "InputFilesCount", "0", "2"},
		{"general", "inputfilescount", "0", "2"},
		{"Input1", "SelectPages", "", "1,3"},
		{"Input2", "InputFile", "none", "none"},
		{"Input1", "Missing", "d", "d"},
	}
	for _, tc := range tests {
		if got := s.Read(tc.section, tc.key, tc.def); got != tc.want {
			t.Errorf("Read(%s, %s) = %q, want %q", tc.section, tc.key, got, tc.want)
		}
	}

	sn := s.Load()
	if !sn.Has("Input1", "InputFile") || sn.Has("Input1", "Nope") {
		t.Error("Has mismatch")
	}
}

func TestWriteCreatesAndUpserts(t *testing.T) {
	p := filepath.Join(t.TempDir(), "pdfsm_config.ini")
	s := New(p)

	if err := s.Write("General", "SelectFile", "/a/sel.ini"); err != nil {
		t.Fatal(err)
	}
	if err := s.Write("General", "InputPath", "/a/in/"); err != nil {
		t.Fatal(err)
	}
	if err := s.Write("General", "SelectFile", "/b/sel.ini"); err != nil {
		t.Fatal(err)
	}

	if got := s.Read("General", "SelectFile", ""); got != "/b/sel.ini" {
		t.Errorf("SelectFile = %q", got)
	}
	if got := s.Read("General", "InputPath", ""); got != "/a/in/" {
		t.Errorf("InputPath = %q", got)
	}
	raw, err := os.ReadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(string(raw), "SelectFile"); n != 1 {
		t.Errorf("SelectFile written %d times:\n%s", n, raw)
	}
}

func TestWriteUnwritableLocation(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "no", "such", "dir", "cfg.ini"))
	if err := s.Write("General", "SaveFile", "x"); err == nil {
		t.Fatal("expected error")
	}
	if err := New("").Write("General", "SaveFile", "x"); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestTrailingBackslashEndsValue(t *testing.T) {
	p := filepath.Join(t.TempDir(), "sel.ini")
	content := "[General]\r\nDescription=Scans from C:\\in\\\r\nInputFilesCount=1\r\n"
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	s := New(p)
	if got := s.Read("General", "Description", ""); got != `Scans from C:\in\` {
		t.Errorf("Description = %q", got)
	}
	if got := s.Read("General", "InputFilesCount", "0"); got != "1" {
		t.Errorf("InputFilesCount = %q", got)
	}

	if err := s.Write("General", "InputPath", `C:\scans\`); err != nil {
		t.Fatal(err)
	}
	if err := s.Write("General", "SaveFile", `C:\out\pack.pdf`); err != nil {
		t.Fatal(err)
	}
	if got := New(p).Read("General", "InputPath", ""); got != `C:\scans\` {
		t.Errorf("InputPath = %q", got)
	}
	if got := New(p).Read("General", "SaveFile", ""); got != `C:\out\pack.pdf` {
		t.Errorf("SaveFile = %q", got)
	}
}
