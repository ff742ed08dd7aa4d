package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/local/pdfsm/internal/pdftest"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestMergeCommand(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PDFSM_CONFIG_FILE", filepath.Join(dir, "pdfsm_config.ini"))
	t.Setenv("LOG_LEVEL", "error")

	in := filepath.Join(dir, "in")
	if err := os.Mkdir(in, 0o755); err != nil {
		t.Fatal(err)
	}
	if _, err := pdftest.Write(in, "a.pdf", 2, 100); err != nil {
		t.Fatal(err)
	}
	if _, err := pdftest.Write(in, "b.pdf", 3, 200); err != nil {
		t.Fatal(err)
	}
	sel := filepath.Join(dir, "sel.ini")
	if err := os.WriteFile(sel, []byte(`[General]
InputFilesCount=2
[Input1]
InputFile=a
SelectPages=2
[Input2]
InputFile=b
SelectPages=3,1
`), 0o644); err != nil {
		t.Fatal(err)
	}
	outFile := filepath.Join(dir, "out.pdf")

	got, err := execute(t, "merge", "-s", sel, "-i", in, "-o", outFile)
	if err != nil {
		t.Fatalf("merge: %v\n%s", err, got)
	}
	if !strings.Contains(got, "Using file 1 of 2...") || !strings.HasSuffix(strings.TrimSpace(got), "Finished.") {
		t.Errorf("output:\n%s", got)
	}
	n, err := api.PageCountFile(outFile)
	if err != nil || n != 3 {
		t.Fatalf("page count = %d, %v", n, err)
	}

	got, err = execute(t, "paths")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, sel) || !strings.Contains(got, outFile) {
		t.Errorf("paths output:\n%s", got)
	}
}

func TestMergeCommandIncomplete(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PDFSM_CONFIG_FILE", filepath.Join(dir, "pdfsm_config.ini"))
	t.Setenv("LOG_LEVEL", "error")

	if _, err := execute(t, "merge", "-s", "", "-i", "", "-o", ""); err == nil {
		t.Fatal("expected error without paths")
	}
}
