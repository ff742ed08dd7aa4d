package pdfdoc

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/local/pdfsm/internal/pdftest"
)

func writeFixture(t *testing.T, dir, name string, n, base int) string {
	t.Helper()
	p, err := pdftest.Write(dir, name, n, base)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestPdfcpuOpen(t *testing.T) {
	dir := t.TempDir()
	p := writeFixture(t, dir, "a.pdf", 3, 100)

	doc, err := NewPdfcpu("relaxed").Open(p)
	if err != nil {
		t.Fatal(err)
	}
	if doc.PageCount() != 3 {
		t.Errorf("PageCount = %d", doc.PageCount())
	}
	if doc.Path() != p {
		t.Errorf("Path = %q", doc.Path())
	}
}

func TestPdfcpuOpenMalformed(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "broken.pdf")
	if err := os.WriteFile(p, pdftest.Corrupt, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewPdfcpu("relaxed").Open(p); err == nil {
		t.Fatal("expected error")
	}
	if _, err := NewPdfcpu("relaxed").Open(filepath.Join(dir, "absent.pdf")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("absent: err = %v", err)
	}
}

func TestOutputCopiesPagesInOrder(t *testing.T) {
	dir := t.TempDir()
	backend := NewPdfcpu("relaxed")
	a, err := backend.Open(writeFixture(t, dir, "a.pdf", 3, 100))
	if err != nil {
		t.Fatal(err)
	}
	b, err := backend.Open(writeFixture(t, dir, "b.pdf", 2, 300))
	if err != nil {
		t.Fatal(err)
	}

	out := NewOutput(backend)
	for _, step := range []struct {
		doc  Document
		page int
	}{{a, 1}, {a, 3}, {b, 2}} {
		if err := out.Append(step.doc, step.page); err != nil {
			t.Fatalf("Append(%s, %d): %v", step.doc.Path(), step.page, err)
		}
	}
	if err := out.Append(b, 9); !errors.Is(err, ErrPageOutOfRange) {
		t.Fatalf("out of range: err = %v", err)
	}
	if out.PageCount() != 3 {
		t.Fatalf("PageCount = %d", out.PageCount())
	}

	target := filepath.Join(dir, "merged.pdf")
	if err := out.Save(target); err != nil {
		t.Fatal(err)
	}

	dims, err := api.PageDimsFile(target)
	if err != nil {
		t.Fatal(err)
	}
	var widths []float64
	for _, d := range dims {
		widths = append(widths, d.Width)
	}
	want := []float64{pdftest.PageWidth(100, 1), pdftest.PageWidth(100, 3), pdftest.PageWidth(300, 2)}
	if diff := cmp.Diff(want, widths); diff != "" {
		t.Errorf("page widths (-want +got):\n%s", diff)
	}
}

func TestOutputSingleAndDuplicatePages(t *testing.T) {
	dir := t.TempDir()
	backend := NewPdfcpu("relaxed")
	a, err := backend.Open(writeFixture(t, dir, "a.pdf", 2, 100))
	if err != nil {
		t.Fatal(err)
	}

	single := NewOutput(backend)
	if err := single.Append(a, 2); err != nil {
		t.Fatal(err)
	}
	target := filepath.Join(dir, "single.pdf")
	if err := single.Save(target); err != nil {
		t.Fatal(err)
	}
	if n, err := api.PageCountFile(target); err != nil || n != 1 {
		t.Errorf("single: pages = %d, %v", n, err)
	}

	dup := NewOutput(backend)
	for _, p := range []int{1, 1, 2} {
		if err := dup.Append(a, p); err != nil {
			t.Fatal(err)
		}
	}
	target = filepath.Join(dir, "dup.pdf")
	if err := dup.Save(target); err != nil {
		t.Fatal(err)
	}
	if n, err := api.PageCountFile(target); err != nil || n != 3 {
		t.Errorf("dup: pages = %d, %v", n, err)
	}
}

func TestOutputSaveFailures(t *testing.T) {
	dir := t.TempDir()
	backend := NewPdfcpu("relaxed")

	if err := NewOutput(backend).Save(filepath.Join(dir, "empty.pdf")); err == nil {
		t.Error("expected error saving empty output")
	}

	a, err := backend.Open(writeFixture(t, dir, "a.pdf", 1, 100))
	if err != nil {
		t.Fatal(err)
	}
	out := NewOutput(backend)
	if err := out.Append(a, 1); err != nil {
		t.Fatal(err)
	}
	if err := out.Save(filepath.Join(dir, "missing", "dir", "out.pdf")); err == nil {
		t.Error("expected error saving into a missing directory")
	}
	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".pdf" && e.Name() != "a.pdf" {
			t.Errorf("stray file %s", e.Name())
		}
	}
}

func TestExtractAfterSourceRemoved(t *testing.T) {
	dir := t.TempDir()
	backend := NewPdfcpu("relaxed")
	p := writeFixture(t, dir, "a.pdf", 3, 100)
	a, err := backend.Open(p)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(p); err != nil {
		t.Fatal(err)
	}

	out := NewOutput(backend)
	for _, n := range []int{3, 2, 3} {
		if err := out.Append(a, n); err != nil {
			t.Fatalf("Append(%d): %v", n, err)
		}
	}
	target := filepath.Join(dir, "out.pdf")
	if err := out.Save(target); err != nil {
		t.Fatal(err)
	}
	dims, err := api.PageDimsFile(target)
	if err != nil {
		t.Fatal(err)
	}
	var widths []float64
	for _, d := range dims {
		widths = append(widths, d.Width)
	}
	want := []float64{pdftest.PageWidth(100, 3), pdftest.PageWidth(100, 2), pdftest.PageWidth(100, 3)}
	if diff := cmp.Diff(want, widths); diff != "" {
		t.Errorf("page widths (-want +got):\n%s", diff)
	}
}
